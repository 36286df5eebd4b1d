package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"review-responder-go/internal/generator"
	"review-responder-go/internal/model"
	"review-responder-go/internal/repository"
	"review-responder-go/internal/source"
)

// Reasons a pipeline ended before looking at any platform.
const (
	SkipNoPlatforms = "no_platforms"
	SkipNoSettings  = "no_settings"
)

// AccountReport summarises one pipeline run for an account
type AccountReport struct {
	UserID           uint      `json:"user_id"`
	Skipped          string    `json:"skipped,omitempty"`
	Platforms        int       `json:"platforms"`
	PlatformFailures int       `json:"platform_failures"`
	Candidates       int       `json:"candidates"`
	Ingested         int       `json:"ingested"`
	Duplicates       int       `json:"duplicates"`
	Fallbacks        int       `json:"fallbacks"`
	Failures         int       `json:"failures"`
	CheckedAt        time.Time `json:"checked_at"`
}

// processAccount is the per-account pipeline: fetch, dedup, generate, persist,
// then advance the watermark. Callers must hold the account's guard.
func (s *Scheduler) processAccount(ctx context.Context, userID uint) (*AccountReport, error) {
	report := &AccountReport{UserID: userID}
	log := logrus.WithField("user_id", userID)

	platforms, err := s.store.ListPlatforms(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("failed to load platforms: %w", err)
	}
	if len(platforms) == 0 {
		log.Debug("No connected platforms, nothing to check")
		report.Skipped = SkipNoPlatforms
		return report, nil
	}

	settings, err := s.store.GetSettings(ctx, userID)
	if err != nil {
		return report, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings == nil {
		log.Debug("No settings for account, nothing to check")
		report.Skipped = SkipNoSettings
		return report, nil
	}

	report.Platforms = len(platforms)
	for _, platform := range platforms {
		if err := s.processPlatform(ctx, settings, platform, report); err != nil {
			log.WithField("platform_id", platform.ID).Errorf("Failed to process platform %s: %v", platform.Provider, err)
			s.metrics.PlatformFailures.Inc()
			report.PlatformFailures++
		}
	}

	checkedAt := s.now()
	if err := s.store.UpdateLastCheckTime(ctx, userID, checkedAt); err != nil {
		return report, fmt.Errorf("failed to advance last check time: %w", err)
	}
	report.CheckedAt = checkedAt
	s.metrics.AccountsProcessed.Inc()

	log.Infof("Review check finished: %d candidates, %d new, %d duplicates, %d failed",
		report.Candidates, report.Ingested, report.Duplicates, report.Failures)
	return report, nil
}

// processPlatform ingests one platform's candidates. Only a fetch failure is
// returned; per-candidate failures are logged and counted.
func (s *Scheduler) processPlatform(ctx context.Context, settings *model.UserSettings, platform model.Platform, report *AccountReport) error {
	candidates, err := s.source.FetchCandidates(ctx, platform, s.config.CandidatesPerCheck)
	if err != nil {
		return fmt.Errorf("failed to fetch candidates: %w", err)
	}
	report.Candidates += len(candidates)

	for _, candidate := range candidates {
		outcome, err := s.ingest(ctx, settings, platform, candidate)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"user_id":     settings.UserID,
				"platform_id": platform.ID,
				"external_id": candidate.ExternalID,
			}).Errorf("Failed to ingest review: %v", err)
			s.metrics.CandidateFailures.Inc()
			report.Failures++
			continue
		}

		switch outcome {
		case outcomeDuplicate:
			s.metrics.DuplicatesSkipped.Inc()
			report.Duplicates++
		case outcomeIngestedFallback:
			s.metrics.FallbackResponses.Inc()
			report.Fallbacks++
			fallthrough
		case outcomeIngested:
			s.metrics.ReviewsIngested.Inc()
			report.Ingested++
		}
	}
	return nil
}

type ingestOutcome int

const (
	outcomeIngested ingestOutcome = iota
	outcomeIngestedFallback
	outcomeDuplicate
)

func (s *Scheduler) ingest(ctx context.Context, settings *model.UserSettings, platform model.Platform, candidate source.Candidate) (ingestOutcome, error) {
	exists, err := s.store.ReviewExists(ctx, settings.UserID, candidate.ExternalID)
	if err != nil {
		return 0, fmt.Errorf("failed to check if review exists: %w", err)
	}
	if exists {
		logrus.Debugf("Review %s already stored for account %d, skipping", candidate.ExternalID, settings.UserID)
		return outcomeDuplicate, nil
	}

	tone := settings.DefaultTone
	if tone == "" {
		tone = model.DefaultTone
	}

	result := s.generator.Generate(ctx, generator.Request{
		ReviewText:   candidate.ReviewText,
		StarRating:   candidate.StarRating,
		Tone:         tone,
		Language:     settings.Language,
		CustomerName: candidate.CustomerName,
	})

	externalID := candidate.ExternalID
	platformID := platform.ID
	text := result.Text
	respondedAt := result.GeneratedAt
	review := &model.Review{
		UserID:           settings.UserID,
		PlatformID:       &platformID,
		ExternalReviewID: &externalID,
		CustomerName:     candidate.CustomerName,
		ReviewText:       candidate.ReviewText,
		StarRating:       candidate.StarRating,
		ResponseText:     &text,
		ResponseTone:     &tone,
		AutoResponded:    true,
		RespondedAt:      &respondedAt,
	}

	if err := s.store.CreateReview(ctx, review); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return outcomeDuplicate, nil
		}
		return 0, err
	}

	if result.Fallback() {
		logrus.WithField("user_id", settings.UserID).Warnf("Stored review %s with fallback response: %v", externalID, result.Err)
		return outcomeIngestedFallback, nil
	}
	return outcomeIngested, nil
}
