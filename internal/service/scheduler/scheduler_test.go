package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-responder-go/internal/config"
	"review-responder-go/internal/generator"
	"review-responder-go/internal/guard"
	"review-responder-go/internal/metrics"
	"review-responder-go/internal/model"
	"review-responder-go/internal/repository"
	"review-responder-go/internal/source"
)

type fakeStore struct {
	mu          sync.Mutex
	settings    map[uint]*model.UserSettings
	platforms   map[uint][]model.Platform
	reviews     []model.Review
	platformErr map[uint]error
	createErr   func(review *model.Review) error
	existsErr   func(externalReviewID string) error
	listCalls   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		settings:    make(map[uint]*model.UserSettings),
		platforms:   make(map[uint][]model.Platform),
		platformErr: make(map[uint]error),
	}
}

func (f *fakeStore) addAccount(userID uint, tone string, platforms ...model.Platform) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.settings[userID] = &model.UserSettings{UserID: userID, DefaultTone: tone, Language: "English", AutoReplyEnabled: true}
	for _, p := range platforms {
		p.UserID = userID
		f.platforms[userID] = append(f.platforms[userID], p)
	}
}

func (f *fakeStore) ListAutoReplySettings(ctx context.Context) ([]model.UserSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	var out []model.UserSettings
	for _, s := range f.settings {
		if s.AutoReplyEnabled {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (f *fakeStore) GetSettings(ctx context.Context, userID uint) (*model.UserSettings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.settings[userID]
	if !ok {
		return nil, nil
	}
	cp := *s
	return &cp, nil
}

func (f *fakeStore) ListPlatforms(ctx context.Context, userID uint) ([]model.Platform, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.platformErr[userID]; err != nil {
		return nil, err
	}
	return append([]model.Platform(nil), f.platforms[userID]...), nil
}

func (f *fakeStore) ReviewExists(ctx context.Context, userID uint, externalReviewID string) (bool, error) {
	if f.existsErr != nil {
		if err := f.existsErr(externalReviewID); err != nil {
			return false, err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.UserID == userID && r.ExternalReviewID != nil && *r.ExternalReviewID == externalReviewID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreateReview(ctx context.Context, review *model.Review) error {
	if f.createErr != nil {
		if err := f.createErr(review); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	review.ID = uint(len(f.reviews) + 1)
	f.reviews = append(f.reviews, *review)
	return nil
}

func (f *fakeStore) UpdateLastCheckTime(ctx context.Context, userID uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.settings[userID]; ok {
		s.LastCheckTime = &at
	}
	return nil
}

func (f *fakeStore) reviewsFor(userID uint) []model.Review {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Review
	for _, r := range f.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeStore) lastCheck(userID uint) *time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.settings[userID].LastCheckTime
}

type fakeSource struct {
	mu         sync.Mutex
	byPlatform map[uint][]source.Candidate
	errs       map[uint]error
	panicFor   map[uint]bool
	calls      int
	entered    chan struct{}
	block      chan struct{}
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		byPlatform: make(map[uint][]source.Candidate),
		errs:       make(map[uint]error),
		panicFor:   make(map[uint]bool),
	}
}

func (f *fakeSource) FetchCandidates(ctx context.Context, platform model.Platform, count int) ([]source.Candidate, error) {
	f.mu.Lock()
	f.calls++
	entered, block := f.entered, f.block
	candidates := f.byPlatform[platform.ID]
	err := f.errs[platform.ID]
	shouldPanic := f.panicFor[platform.ID]
	f.mu.Unlock()

	if entered != nil {
		entered <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if shouldPanic {
		panic("source exploded")
	}
	return candidates, err
}

func (f *fakeSource) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type stubBackend struct{ err error }

func (stubBackend) Name() string { return "stub" }

func (b stubBackend) Complete(ctx context.Context, _, _ string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return "Thank you for the review!", nil
}

func newTestScheduler(store Store, src source.Source, gen Generator) *Scheduler {
	cfg := &config.SchedulerConfig{IntervalMinutes: 60, CandidatesPerCheck: 2}
	return New(cfg, store, gen, src, guard.NewLocal(), metrics.NewMetrics(prometheus.NewRegistry()))
}

func candidate(id string, rating int) source.Candidate {
	return source.Candidate{ExternalID: id, CustomerName: "Ann", ReviewText: "Review " + id, StarRating: rating}
}

func TestPipelineIngestionIsIdempotent(t *testing.T) {
	store := newFakeStore()
	store.addAccount(1, model.ToneProfessional, model.Platform{ID: 10, Provider: "google"})
	src := newFakeSource()
	src.byPlatform[10] = []source.Candidate{candidate("g_1", 5), candidate("g_2", 2)}
	sched := newTestScheduler(store, src, generator.NewService(stubBackend{}))

	first, err := sched.TriggerAccountNow(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Ingested)

	second, err := sched.TriggerAccountNow(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Ingested)
	assert.Equal(t, 2, second.Duplicates)

	assert.Len(t, store.reviewsFor(1), 2)
}

func TestTriggerAccountNowRejectsConcurrentRun(t *testing.T) {
	store := newFakeStore()
	store.addAccount(1, model.ToneFriendly, model.Platform{ID: 10, Provider: "google"})
	src := newFakeSource()
	src.entered = make(chan struct{}, 1)
	src.block = make(chan struct{})
	sched := newTestScheduler(store, src, generator.NewService(stubBackend{}))

	done := make(chan error, 1)
	go func() {
		_, err := sched.TriggerAccountNow(context.Background(), 1)
		done <- err
	}()
	<-src.entered

	_, err := sched.TriggerAccountNow(context.Background(), 1)
	assert.ErrorIs(t, err, ErrAccountBusy)

	sweep := sched.RunSweepNow(context.Background())
	assert.Equal(t, 1, sweep.SkippedBusy)
	assert.Equal(t, 0, sweep.Processed)
	assert.Equal(t, []string{"account:1"}, sched.Processing())

	close(src.block)
	require.NoError(t, <-done)
	assert.Equal(t, 1, src.callCount(), "no second pipeline may run while the first is in flight")
	assert.Empty(t, sched.Processing())

	// guard released once the first run completed
	src.mu.Lock()
	src.entered = nil
	src.block = nil
	src.mu.Unlock()
	_, err = sched.TriggerAccountNow(context.Background(), 1)
	assert.NoError(t, err)
}

func TestGenerationFailureStoresFallbackResponse(t *testing.T) {
	store := newFakeStore()
	store.addAccount(1, model.ToneApologetic, model.Platform{ID: 10, Provider: "yelp"})
	src := newFakeSource()
	src.byPlatform[10] = []source.Candidate{candidate("y_1", 1)}
	sched := newTestScheduler(store, src, generator.NewService(stubBackend{err: errors.New("status code: 503")}))

	report, err := sched.TriggerAccountNow(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Ingested)
	assert.Equal(t, 1, report.Fallbacks)

	reviews := store.reviewsFor(1)
	require.Len(t, reviews, 1)
	require.NotNil(t, reviews[0].ResponseText)
	assert.Equal(t, generator.FallbackText(model.ToneApologetic, 1), *reviews[0].ResponseText)
	assert.True(t, reviews[0].AutoResponded)
}

func TestSweepContinuesPastFailingAccount(t *testing.T) {
	store := newFakeStore()
	store.addAccount(1, model.ToneProfessional, model.Platform{ID: 10, Provider: "google"})
	store.addAccount(2, model.ToneFriendly, model.Platform{ID: 20, Provider: "google"})
	store.platformErr[1] = errors.New("connection lost")
	src := newFakeSource()
	src.byPlatform[20] = []source.Candidate{candidate("g_20", 4)}
	sched := newTestScheduler(store, src, generator.NewService(stubBackend{}))

	before := time.Now()
	report := sched.RunSweepNow(context.Background())

	assert.Equal(t, 2, report.Accounts)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Processed)
	assert.Nil(t, store.lastCheck(1))
	require.NotNil(t, store.lastCheck(2))
	assert.False(t, store.lastCheck(2).Before(before))
	assert.Len(t, store.reviewsFor(2), 1)
}

func TestSweepRecoversFromPanickingAccount(t *testing.T) {
	store := newFakeStore()
	store.addAccount(1, model.ToneProfessional, model.Platform{ID: 10, Provider: "google"})
	store.addAccount(2, model.ToneProfessional, model.Platform{ID: 20, Provider: "google"})
	src := newFakeSource()
	src.panicFor[10] = true
	src.byPlatform[20] = []source.Candidate{candidate("g_20", 3)}
	sched := newTestScheduler(store, src, generator.NewService(stubBackend{}))

	report := sched.RunSweepNow(context.Background())
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Processed)
	assert.NotNil(t, store.lastCheck(2))

	// the panicking account's guard was released
	src.mu.Lock()
	src.panicFor[10] = false
	src.mu.Unlock()
	_, err := sched.TriggerAccountNow(context.Background(), 1)
	assert.NoError(t, err)
}

func TestWatermarkAdvancesWithoutCandidates(t *testing.T) {
	store := newFakeStore()
	store.addAccount(1, model.ToneProfessional, model.Platform{ID: 10, Provider: "google"})
	sched := newTestScheduler(store, newFakeSource(), generator.NewService(nil))

	before := time.Now()
	report, err := sched.TriggerAccountNow(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, report.Candidates)

	checked := store.lastCheck(1)
	require.NotNil(t, checked)
	assert.False(t, checked.Before(before))
}

func TestPipelineEarlyExits(t *testing.T) {
	store := newFakeStore()
	store.addAccount(1, model.ToneProfessional)
	src := newFakeSource()
	sched := newTestScheduler(store, src, generator.NewService(nil))

	report, err := sched.TriggerAccountNow(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, SkipNoPlatforms, report.Skipped)
	assert.Nil(t, store.lastCheck(1))

	// platforms but no settings row
	store.platforms[2] = []model.Platform{{ID: 20, UserID: 2, Provider: "google"}}
	report, err = sched.TriggerAccountNow(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, SkipNoSettings, report.Skipped)
	assert.Zero(t, src.callCount())
}

func TestPlatformFailureDoesNotStopOtherPlatforms(t *testing.T) {
	store := newFakeStore()
	store.addAccount(1, model.ToneProfessional,
		model.Platform{ID: 10, Provider: "google"},
		model.Platform{ID: 11, Provider: "yelp"},
	)
	src := newFakeSource()
	src.errs[10] = errors.New("api down")
	src.byPlatform[11] = []source.Candidate{candidate("y_1", 4)}
	sched := newTestScheduler(store, src, generator.NewService(stubBackend{}))

	report, err := sched.TriggerAccountNow(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.PlatformFailures)
	assert.Equal(t, 1, report.Ingested)
	assert.NotNil(t, store.lastCheck(1))
}

func TestPersistenceFailureSkipsOnlyThatCandidate(t *testing.T) {
	store := newFakeStore()
	store.addAccount(1, model.ToneProfessional, model.Platform{ID: 10, Provider: "google"})
	store.createErr = func(review *model.Review) error {
		if *review.ExternalReviewID == "bad" {
			return errors.New("disk full")
		}
		return nil
	}
	src := newFakeSource()
	src.byPlatform[10] = []source.Candidate{candidate("bad", 5), candidate("good", 5)}
	sched := newTestScheduler(store, src, generator.NewService(stubBackend{}))

	report, err := sched.TriggerAccountNow(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failures)
	assert.Equal(t, 1, report.Ingested)

	reviews := store.reviewsFor(1)
	require.Len(t, reviews, 1)
	assert.Equal(t, "good", *reviews[0].ExternalReviewID)
}

func TestExistenceCheckFailureSkipsOnlyThatCandidate(t *testing.T) {
	store := newFakeStore()
	store.addAccount(1, model.ToneProfessional, model.Platform{ID: 10, Provider: "google"})
	store.existsErr = func(externalReviewID string) error {
		if externalReviewID == "g_flaky" {
			return errors.New("read timeout")
		}
		return nil
	}
	src := newFakeSource()
	src.byPlatform[10] = []source.Candidate{candidate("g_1", 4), candidate("g_flaky", 2), candidate("g_3", 5)}
	sched := newTestScheduler(store, src, generator.NewService(stubBackend{}))

	report, err := sched.TriggerAccountNow(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failures)
	assert.Equal(t, 2, report.Ingested)
	assert.NotNil(t, store.lastCheck(1))

	var ids []string
	for _, r := range store.reviewsFor(1) {
		ids = append(ids, *r.ExternalReviewID)
	}
	assert.ElementsMatch(t, []string{"g_1", "g_3"}, ids)
}

func TestDuplicateKeyOnInsertCountsAsDuplicate(t *testing.T) {
	store := newFakeStore()
	store.addAccount(1, model.ToneProfessional, model.Platform{ID: 10, Provider: "google"})
	store.createErr = func(*model.Review) error {
		return fmt.Errorf("failed to create review: %w", repository.ErrDuplicate)
	}
	src := newFakeSource()
	src.byPlatform[10] = []source.Candidate{candidate("raced", 5)}
	sched := newTestScheduler(store, src, generator.NewService(stubBackend{}))

	report, err := sched.TriggerAccountNow(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 0, report.Failures)
}

func TestStartRunsImmediateSweepAndIsIdempotent(t *testing.T) {
	store := newFakeStore()
	sched := newTestScheduler(store, newFakeSource(), generator.NewService(nil))

	require.NoError(t, sched.Start())
	require.NoError(t, sched.Start())
	assert.True(t, sched.IsRunning())
	assert.False(t, sched.GetNextRun().IsZero())

	assert.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.listCalls == 1
	}, time.Second, 5*time.Millisecond)
	assert.False(t, sched.GetLastRun().IsZero())

	require.NoError(t, sched.Stop())
	require.NoError(t, sched.Stop())
	assert.False(t, sched.IsRunning())
	assert.True(t, sched.GetNextRun().IsZero())
	sched.Wait()

	store.mu.Lock()
	assert.Equal(t, 1, store.listCalls, "second Start must not trigger another sweep")
	store.mu.Unlock()
}

func TestSchedulerRestart(t *testing.T) {
	sched := newTestScheduler(newFakeStore(), newFakeSource(), generator.NewService(nil))

	require.NoError(t, sched.Start())
	require.NoError(t, sched.Stop())
	require.NoError(t, sched.Start())
	assert.True(t, sched.IsRunning())
	require.NoError(t, sched.Stop())
	sched.Wait()
}

func TestWaitBlocksUntilInFlightSweepFinishes(t *testing.T) {
	store := newFakeStore()
	store.addAccount(1, model.ToneProfessional, model.Platform{ID: 10, Provider: "google"})
	src := newFakeSource()
	src.entered = make(chan struct{}, 1)
	src.block = make(chan struct{})
	sched := newTestScheduler(store, src, generator.NewService(nil))

	require.NoError(t, sched.Start())
	<-src.entered
	require.NoError(t, sched.Stop())

	waited := make(chan struct{})
	go func() {
		sched.Wait()
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("Wait returned while a sweep was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(src.block)
	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after the sweep finished")
	}
	assert.NotNil(t, store.lastCheck(1))
}
