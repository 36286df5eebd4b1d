package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"review-responder-go/internal/model"
)

// ErrNotFound is returned when an owner-scoped lookup matches no row.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
var ErrDuplicate = errors.New("duplicate record")

// Repository is the persistence gateway for accounts, settings, platforms,
// reviews and reply templates.
type Repository struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Ping checks database connectivity.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	default:
		return err
	}
}

// Users

func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", translate(err))
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Settings

// GetSettings returns the account's settings, or nil when none exist yet.
func (r *Repository) GetSettings(ctx context.Context, userID uint) (*model.UserSettings, error) {
	var settings model.UserSettings
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&settings)
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if result.Error != nil {
		return nil, fmt.Errorf("database error loading settings: %w", result.Error)
	}
	return &settings, nil
}

// GetOrCreateSettings returns the account's settings, creating the default row on first access.
func (r *Repository) GetOrCreateSettings(ctx context.Context, userID uint) (*model.UserSettings, error) {
	settings := model.UserSettings{
		UserID:      userID,
		DefaultTone: model.DefaultTone,
		Language:    model.DefaultLanguage,
	}
	result := r.db.WithContext(ctx).Where(model.UserSettings{UserID: userID}).FirstOrCreate(&settings)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
			// lost a create race against another request for the same account
			return r.GetSettings(ctx, userID)
		}
		return nil, fmt.Errorf("failed to get or create settings: %w", result.Error)
	}
	return &settings, nil
}

// UpdateSettings persists the mutable preference fields. Callers resolve
// ownership first; a missing row is not reported.
func (r *Repository) UpdateSettings(ctx context.Context, settings *model.UserSettings) error {
	result := r.db.WithContext(ctx).Model(&model.UserSettings{}).
		Where("user_id = ?", settings.UserID).
		Updates(map[string]interface{}{
			"default_tone":       settings.DefaultTone,
			"language":           settings.Language,
			"auto_reply_enabled": settings.AutoReplyEnabled,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update settings: %w", result.Error)
	}
	return nil
}

// ListAutoReplySettings returns settings of every account with automation enabled, ordered by account.
func (r *Repository) ListAutoReplySettings(ctx context.Context) ([]model.UserSettings, error) {
	var settings []model.UserSettings
	result := r.db.WithContext(ctx).Where("auto_reply_enabled = ?", true).Order("user_id").Find(&settings)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list auto-reply accounts: %w", result.Error)
	}
	return settings, nil
}

// UpdateLastCheckTime advances the account's automation watermark.
func (r *Repository) UpdateLastCheckTime(ctx context.Context, userID uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&model.UserSettings{}).
		Where("user_id = ?", userID).
		Update("last_check_time", at)
	if result.Error != nil {
		return fmt.Errorf("failed to update last check time: %w", result.Error)
	}
	return nil
}

// Platforms

func (r *Repository) ListPlatforms(ctx context.Context, userID uint) ([]model.Platform, error) {
	var platforms []model.Platform
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&platforms)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list platforms: %w", result.Error)
	}
	return platforms, nil
}

func (r *Repository) GetPlatform(ctx context.Context, userID, id uint) (*model.Platform, error) {
	var platform model.Platform
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&platform).Error; err != nil {
		return nil, translate(err)
	}
	return &platform, nil
}

func (r *Repository) CreatePlatform(ctx context.Context, platform *model.Platform) error {
	if err := r.db.WithContext(ctx).Create(platform).Error; err != nil {
		return fmt.Errorf("failed to create platform: %w", translate(err))
	}
	return nil
}

func (r *Repository) UpdatePlatform(ctx context.Context, platform *model.Platform) error {
	result := r.db.WithContext(ctx).Model(&model.Platform{}).
		Where("id = ? AND user_id = ?", platform.ID, platform.UserID).
		Updates(map[string]interface{}{
			"provider":            platform.Provider,
			"provider_account_id": platform.ProviderAccountID,
			"api_key":             platform.APIKey,
			"access_token":        platform.AccessToken,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update platform: %w", result.Error)
	}
	return nil
}

func (r *Repository) DeletePlatform(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Review{}).
			Where("platform_id = ? AND user_id = ?", id, userID).
			Update("platform_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach reviews from platform: %w", err)
		}
		result := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&model.Platform{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete platform: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// Reviews

// ReviewExists reports whether the account already holds a review with the external id.
func (r *Repository) ReviewExists(ctx context.Context, userID uint, externalReviewID string) (bool, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("user_id = ? AND external_review_id = ?", userID, externalReviewID).
		Count(&count)
	if result.Error != nil {
		return false, fmt.Errorf("database error checking review: %w", result.Error)
	}
	return count > 0, nil
}

func (r *Repository) CreateReview(ctx context.Context, review *model.Review) error {
	if err := r.db.WithContext(ctx).Create(review).Error; err != nil {
		return fmt.Errorf("failed to create review: %w", translate(err))
	}
	return nil
}

func (r *Repository) GetReview(ctx context.Context, userID, id uint) (*model.Review, error) {
	var review model.Review
	if err := r.db.WithContext(ctx).Preload("Platform").
		Where("id = ? AND user_id = ?", id, userID).First(&review).Error; err != nil {
		return nil, translate(err)
	}
	return &review, nil
}

// ReviewFilter narrows ListReviews.
type ReviewFilter struct {
	PlatformID    *uint
	AutoResponded *bool
	Page          int
	Limit         int
}

// ListReviews returns a page of the account's reviews, newest first, and the total match count.
func (r *Repository) ListReviews(ctx context.Context, userID uint, filter ReviewFilter) ([]model.Review, int64, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 50
	}

	query := r.db.WithContext(ctx).Model(&model.Review{}).Where("user_id = ?", userID)
	if filter.PlatformID != nil {
		query = query.Where("platform_id = ?", *filter.PlatformID)
	}
	if filter.AutoResponded != nil {
		query = query.Where("auto_responded = ?", *filter.AutoResponded)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	var reviews []model.Review
	if err := query.Preload("Platform").
		Order("created_at DESC").Order("id DESC").
		Offset((filter.Page - 1) * filter.Limit).Limit(filter.Limit).
		Find(&reviews).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, total, nil
}

// UpdateReviewResponse overwrites the response fields; the review itself is immutable.
func (r *Repository) UpdateReviewResponse(ctx context.Context, review *model.Review) error {
	result := r.db.WithContext(ctx).Model(&model.Review{}).
		Where("id = ? AND user_id = ?", review.ID, review.UserID).
		Updates(map[string]interface{}{
			"response_text":  review.ResponseText,
			"response_tone":  review.ResponseTone,
			"responded_at":   review.RespondedAt,
			"auto_responded": review.AutoResponded,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update review response: %w", result.Error)
	}
	return nil
}

// Templates

func (r *Repository) ListTemplates(ctx context.Context, userID uint) ([]model.ReplyTemplate, error) {
	var templates []model.ReplyTemplate
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&templates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list templates: %w", result.Error)
	}
	return templates, nil
}

func (r *Repository) GetTemplate(ctx context.Context, userID, id uint) (*model.ReplyTemplate, error) {
	var template model.ReplyTemplate
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&template).Error; err != nil {
		return nil, translate(err)
	}
	return &template, nil
}

// FindTemplate returns the best template for tone and rating: an exact rating
// match first, then a rating-agnostic one. Returns nil when none matches.
func (r *Repository) FindTemplate(ctx context.Context, userID uint, tone string, rating int) (*model.ReplyTemplate, error) {
	var template model.ReplyTemplate
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND tone = ? AND star_rating = ?", userID, tone, rating).
		First(&template)
	if result.Error == nil {
		return &template, nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	result = r.db.WithContext(ctx).
		Where("user_id = ? AND tone = ? AND star_rating IS NULL", userID, tone).
		First(&template)
	if result.Error == nil {
		return &template, nil
	}
	if !errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("database error: %w", result.Error)
	}
	return nil, nil
}

func (r *Repository) CreateTemplate(ctx context.Context, template *model.ReplyTemplate) error {
	if err := r.db.WithContext(ctx).Create(template).Error; err != nil {
		return fmt.Errorf("failed to create template: %w", translate(err))
	}
	return nil
}

func (r *Repository) UpdateTemplate(ctx context.Context, template *model.ReplyTemplate) error {
	result := r.db.WithContext(ctx).Model(&model.ReplyTemplate{}).
		Where("id = ? AND user_id = ?", template.ID, template.UserID).
		Updates(map[string]interface{}{
			"name":        template.Name,
			"tone":        template.Tone,
			"star_rating": template.StarRating,
			"content":     template.Content,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update template: %w", result.Error)
	}
	return nil
}

func (r *Repository) DeleteTemplate(ctx context.Context, userID, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.ReplyTemplate{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete template: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
