package scheduler

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"review-responder-go/internal/config"
	"review-responder-go/internal/db"
	"review-responder-go/internal/generator"
	"review-responder-go/internal/model"
	"review-responder-go/internal/repository"
	"review-responder-go/internal/source"
)

func setupRepoAccount(t *testing.T, tone string) (*repository.Repository, *model.User, *model.Platform) {
	t.Helper()
	gdb, err := db.Init(config.DatabaseConfig{
		Driver:     config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "e2e.sqlite3"),
	})
	require.NoError(t, err)
	repo := repository.New(gdb)
	ctx := context.Background()

	user := &model.User{Email: "owner@example.com", PasswordHash: "x"}
	require.NoError(t, repo.CreateUser(ctx, user))

	settings, err := repo.GetOrCreateSettings(ctx, user.ID)
	require.NoError(t, err)
	settings.AutoReplyEnabled = true
	settings.DefaultTone = tone
	require.NoError(t, repo.UpdateSettings(ctx, settings))

	platform := &model.Platform{UserID: user.ID, Provider: "google"}
	require.NoError(t, repo.CreatePlatform(ctx, platform))
	return repo, user, platform
}

func TestEndToEndFriendlyFiveStar(t *testing.T) {
	repo, user, platform := setupRepoAccount(t, model.ToneFriendly)
	src := newFakeSource()
	src.byPlatform[platform.ID] = []source.Candidate{candidate("google_abc", 5)}
	sched := newTestScheduler(repo, src, generator.NewService(stubBackend{}))

	sweep := sched.RunSweepNow(context.Background())
	require.NoError(t, sweep.Err)
	assert.Equal(t, 1, sweep.Processed)

	reviews, total, err := repo.ListReviews(context.Background(), user.ID, repository.ReviewFilter{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)

	review := reviews[0]
	assert.True(t, review.AutoResponded)
	require.NotNil(t, review.ResponseTone)
	assert.Equal(t, model.ToneFriendly, *review.ResponseTone)
	require.NotNil(t, review.ResponseText)
	assert.NotEmpty(t, *review.ResponseText)
	assert.NotNil(t, review.RespondedAt)
	require.NotNil(t, review.PlatformID)
	assert.Equal(t, platform.ID, *review.PlatformID)

	settings, err := repo.GetSettings(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, settings.LastCheckTime)
}

func TestEndToEndExistingExternalIDIsSkipped(t *testing.T) {
	repo, user, platform := setupRepoAccount(t, model.ToneProfessional)
	ctx := context.Background()

	existing := "google_known"
	require.NoError(t, repo.CreateReview(ctx, &model.Review{
		UserID:           user.ID,
		ExternalReviewID: &existing,
		ReviewText:       "Already here",
		StarRating:       4,
	}))

	src := newFakeSource()
	src.byPlatform[platform.ID] = []source.Candidate{candidate(existing, 4)}
	sched := newTestScheduler(repo, src, generator.NewService(stubBackend{}))

	report, err := sched.TriggerAccountNow(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 0, report.Ingested)

	_, total, err := repo.ListReviews(ctx, user.ID, repository.ReviewFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
}

func TestEndToEndWithSimulator(t *testing.T) {
	repo, user, _ := setupRepoAccount(t, model.ToneEnthusiastic)
	sched := newTestScheduler(repo, source.NewSimulator(1, 7), generator.NewService(nil))

	report, err := sched.TriggerAccountNow(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Ingested)
	assert.Equal(t, 2, report.Fallbacks)

	_, total, err := repo.ListReviews(context.Background(), user.ID, repository.ReviewFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}
