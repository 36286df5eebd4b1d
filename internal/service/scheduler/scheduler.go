package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"review-responder-go/internal/config"
	"review-responder-go/internal/generator"
	"review-responder-go/internal/guard"
	metricsPkg "review-responder-go/internal/metrics"
	"review-responder-go/internal/model"
	"review-responder-go/internal/source"
)

// ErrAccountBusy is returned by TriggerAccountNow when the account's pipeline
// is already running.
var ErrAccountBusy = errors.New("account is already being processed")

// Store is the persistence the automation needs.
type Store interface {
	ListAutoReplySettings(ctx context.Context) ([]model.UserSettings, error)
	GetSettings(ctx context.Context, userID uint) (*model.UserSettings, error)
	ListPlatforms(ctx context.Context, userID uint) ([]model.Platform, error)
	ReviewExists(ctx context.Context, userID uint, externalReviewID string) (bool, error)
	CreateReview(ctx context.Context, review *model.Review) error
	UpdateLastCheckTime(ctx context.Context, userID uint, at time.Time) error
}

// Generator produces response text; it never fails.
type Generator interface {
	Generate(ctx context.Context, req generator.Request) generator.Result
}

// Scheduler runs the periodic review automation sweep
type Scheduler struct {
	cron      *cron.Cron
	entryID   cron.EntryID
	config    *config.SchedulerConfig
	store     Store
	generator Generator
	source    source.Source
	guard     guard.Guard
	metrics   *metricsPkg.Metrics
	now       func() time.Time
	wg        sync.WaitGroup
	isRunning bool
	stopped   context.Context
	lastSweep time.Time
	mu        sync.RWMutex
}

// New creates a new scheduler
func New(cfg *config.SchedulerConfig, store Store, gen Generator, src source.Source, g guard.Guard, metrics *metricsPkg.Metrics) *Scheduler {
	return &Scheduler{
		config:    cfg,
		store:     store,
		generator: gen,
		source:    src,
		guard:     g,
		metrics:   metrics,
		now:       time.Now,
	}
}

// Start runs one sweep immediately and then every configured interval.
// Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		logrus.Debug("Scheduler already running, ignoring start")
		return nil
	}

	cronLogger := cron.PrintfLogger(logrus.StandardLogger())
	c := cron.New(
		cron.WithLogger(cronLogger),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
	)

	entryID, err := c.AddFunc(fmt.Sprintf("@every %s", s.config.Interval()), s.scheduledSweep)
	if err != nil {
		return fmt.Errorf("failed to add cron job: %w", err)
	}

	s.cron = c
	s.entryID = entryID
	s.isRunning = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.RunSweepNow(context.Background())
	}()

	c.Start()

	logrus.Infof("Scheduler started with interval: %s", s.config.Interval())
	return nil
}

// Stop prevents future sweeps. Pipelines already running are left to finish;
// use Wait to block until they do.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	s.stopped = s.cron.Stop()
	s.isRunning = false

	logrus.Info("Scheduler stopped")
	return nil
}

// IsRunning returns whether the scheduler is running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled sweep
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

// GetLastRun returns when the most recent sweep started
func (s *Scheduler) GetLastRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSweep
}

// Processing returns the guard keys currently held, when the guard can list them.
func (s *Scheduler) Processing() []string {
	if lister, ok := s.guard.(interface{ Keys() []string }); ok {
		return lister.Keys()
	}
	return nil
}

// IsProcessing reports whether the account's pipeline is running right now.
func (s *Scheduler) IsProcessing(userID uint) bool {
	if holder, ok := s.guard.(interface{ Held(key string) bool }); ok {
		return holder.Held(accountKey(userID))
	}
	return false
}

// Wait blocks until in-flight sweeps have finished. After Stop it first waits
// for cron to finish its running jobs, so no sweep can start afterwards.
func (s *Scheduler) Wait() {
	s.mu.RLock()
	stopped := s.stopped
	s.mu.RUnlock()

	if stopped != nil {
		<-stopped.Done()
	}
	s.wg.Wait()
}

func (s *Scheduler) scheduledSweep() {
	s.wg.Add(1)
	defer s.wg.Done()

	if !s.IsRunning() {
		logrus.Info("Scheduler not running, skipping sweep")
		return
	}

	// pipelines outlive Stop, so they run on a context of their own
	s.RunSweepNow(context.Background())
}

// SweepReport summarises one pass over the automation-enabled accounts
type SweepReport struct {
	StartedAt   time.Time     `json:"started_at"`
	Duration    time.Duration `json:"duration"`
	Accounts    int           `json:"accounts"`
	Processed   int           `json:"processed"`
	SkippedBusy int           `json:"skipped_busy"`
	Failed      int           `json:"failed"`
	Err         error         `json:"-"`
}

// RunSweepNow processes every automation-enabled account once, synchronously.
// A failing account is logged and counted; the sweep moves on.
func (s *Scheduler) RunSweepNow(ctx context.Context) SweepReport {
	report := SweepReport{StartedAt: s.now()}

	s.mu.Lock()
	s.lastSweep = report.StartedAt
	s.mu.Unlock()

	s.metrics.SweepCount.Inc()
	logrus.Info("Starting review automation sweep")

	defer func() {
		report.Duration = time.Since(report.StartedAt)
		s.metrics.SweepDuration.Observe(report.Duration.Seconds())
		logrus.Infof("Review automation sweep completed in %v (accounts: %d, processed: %d, busy: %d, failed: %d)",
			report.Duration, report.Accounts, report.Processed, report.SkippedBusy, report.Failed)
	}()

	accounts, err := s.store.ListAutoReplySettings(ctx)
	if err != nil {
		logrus.Errorf("Failed to list auto-reply accounts: %v", err)
		report.Err = err
		return report
	}
	report.Accounts = len(accounts)

	for _, settings := range accounts {
		release, ok := s.guard.TryAcquire(accountKey(settings.UserID))
		if !ok {
			logrus.WithField("user_id", settings.UserID).Debug("Account already processing, skipping")
			s.metrics.AccountsBusy.Inc()
			report.SkippedBusy++
			continue
		}

		if _, err := s.runGuarded(ctx, settings.UserID, release); err != nil {
			logrus.WithField("user_id", settings.UserID).Errorf("Review automation failed for account: %v", err)
			report.Failed++
			continue
		}
		report.Processed++
	}

	return report
}

// TriggerAccountNow runs the pipeline for one account outside the regular
// cadence. It returns ErrAccountBusy at once if the account is already being
// processed.
func (s *Scheduler) TriggerAccountNow(ctx context.Context, userID uint) (*AccountReport, error) {
	release, ok := s.guard.TryAcquire(accountKey(userID))
	if !ok {
		s.metrics.AccountsBusy.Inc()
		return nil, ErrAccountBusy
	}

	logrus.WithField("user_id", userID).Info("Running review check on demand")
	report, err := s.runGuarded(ctx, userID, release)
	if err != nil {
		logrus.WithField("user_id", userID).Errorf("On-demand review check failed: %v", err)
	}
	return report, err
}

// runGuarded runs the pipeline and always releases the account's guard.
func (s *Scheduler) runGuarded(ctx context.Context, userID uint, release func()) (report *AccountReport, err error) {
	s.metrics.AccountsInProgress.Inc()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing account %d: %v", userID, r)
		}
		if err != nil {
			s.metrics.AccountFailures.Inc()
		}
		s.metrics.AccountsInProgress.Dec()
		release()
	}()

	return s.processAccount(ctx, userID)
}

func accountKey(userID uint) string {
	return fmt.Sprintf("account:%d", userID)
}
