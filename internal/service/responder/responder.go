// Package responder implements the user-initiated response operations:
// entering a review by hand, regenerating a response, applying a reply
// template, and previewing a response without storing it.
package responder

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"review-responder-go/internal/generator"
	"review-responder-go/internal/model"
	"review-responder-go/internal/parser"
)

var (
	// ErrInvalidRating is returned for star ratings outside 1-5.
	ErrInvalidRating = errors.New("star rating must be between 1 and 5")
	// ErrInvalidTone is returned for tones the generator does not know.
	ErrInvalidTone = errors.New("unsupported response tone")
	// ErrEmptyReview is returned when the review text is blank.
	ErrEmptyReview = errors.New("review text is required")
	// ErrNoTemplate is returned when no reply template matches a review.
	ErrNoTemplate = errors.New("no matching reply template")
)

// Store is the persistence the responder needs.
type Store interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	GetOrCreateSettings(ctx context.Context, userID uint) (*model.UserSettings, error)
	GetPlatform(ctx context.Context, userID, id uint) (*model.Platform, error)
	CreateReview(ctx context.Context, review *model.Review) error
	GetReview(ctx context.Context, userID, id uint) (*model.Review, error)
	UpdateReviewResponse(ctx context.Context, review *model.Review) error
	GetTemplate(ctx context.Context, userID, id uint) (*model.ReplyTemplate, error)
	FindTemplate(ctx context.Context, userID uint, tone string, rating int) (*model.ReplyTemplate, error)
}

// Generator produces response text; it never fails.
type Generator interface {
	Generate(ctx context.Context, req generator.Request) generator.Result
}

// Input is a review entered by the user.
type Input struct {
	CustomerName string
	ReviewText   string
	StarRating   int
	Tone         string
	PlatformID   *uint
}

// Outcome is a stored review together with how its response was produced.
type Outcome struct {
	Review *model.Review
	Kind   generator.Kind
}

// Service handles user-initiated response operations
type Service struct {
	store     Store
	generator Generator
	now       func() time.Time
}

// New creates a new responder service
func New(store Store, gen Generator) *Service {
	return &Service{store: store, generator: gen, now: time.Now}
}

// CreateReview stores a manually entered review with a freshly generated
// response. Manual reviews carry no external id and are never auto-responded.
func (s *Service) CreateReview(ctx context.Context, userID uint, in Input) (*Outcome, error) {
	if err := validate(in); err != nil {
		return nil, err
	}
	if in.PlatformID != nil {
		if _, err := s.store.GetPlatform(ctx, userID, *in.PlatformID); err != nil {
			return nil, fmt.Errorf("failed to load platform: %w", err)
		}
	}

	result, tone, err := s.generate(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	text := result.Text
	respondedAt := result.GeneratedAt
	review := &model.Review{
		UserID:        userID,
		PlatformID:    in.PlatformID,
		CustomerName:  strings.TrimSpace(in.CustomerName),
		ReviewText:    strings.TrimSpace(in.ReviewText),
		StarRating:    in.StarRating,
		ResponseText:  &text,
		ResponseTone:  &tone,
		AutoResponded: false,
		RespondedAt:   &respondedAt,
	}
	if err := s.store.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	logrus.WithField("user_id", userID).Infof("Created review %d with %s response", review.ID, result.Kind)
	return &Outcome{Review: review, Kind: result.Kind}, nil
}

// Regenerate replaces a review's response with a new one in the given tone,
// or in the account default when tone is empty.
func (s *Service) Regenerate(ctx context.Context, userID, reviewID uint, tone string) (*Outcome, error) {
	if tone != "" && !model.ValidTone(tone) {
		return nil, ErrInvalidTone
	}

	review, err := s.store.GetReview(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}

	result, usedTone, err := s.generate(ctx, userID, Input{
		CustomerName: review.CustomerName,
		ReviewText:   review.ReviewText,
		StarRating:   review.StarRating,
		Tone:         tone,
	})
	if err != nil {
		return nil, err
	}

	text := result.Text
	respondedAt := result.GeneratedAt
	review.ResponseText = &text
	review.ResponseTone = &usedTone
	review.RespondedAt = &respondedAt
	review.AutoResponded = false
	if err := s.store.UpdateReviewResponse(ctx, review); err != nil {
		return nil, err
	}
	return &Outcome{Review: review, Kind: result.Kind}, nil
}

// ApplyTemplate renders a reply template into the review's response. With a
// zero templateID the best template for the review's tone and rating is used.
func (s *Service) ApplyTemplate(ctx context.Context, userID, reviewID, templateID uint) (*model.Review, error) {
	review, err := s.store.GetReview(ctx, userID, reviewID)
	if err != nil {
		return nil, err
	}

	var template *model.ReplyTemplate
	if templateID != 0 {
		template, err = s.store.GetTemplate(ctx, userID, templateID)
		if err != nil {
			return nil, err
		}
	} else {
		tone := ""
		if review.ResponseTone != nil {
			tone = *review.ResponseTone
		}
		if tone == "" {
			settings, err := s.store.GetOrCreateSettings(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("failed to load settings: %w", err)
			}
			tone = settings.DefaultTone
		}
		template, err = s.store.FindTemplate(ctx, userID, tone, review.StarRating)
		if err != nil {
			return nil, err
		}
		if template == nil {
			return nil, ErrNoTemplate
		}
	}

	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	text := parser.Render(template.Content, parser.ValuesFor(review, user))
	tone := template.Tone
	respondedAt := s.now()
	review.ResponseText = &text
	review.ResponseTone = &tone
	review.RespondedAt = &respondedAt
	review.AutoResponded = false
	if err := s.store.UpdateReviewResponse(ctx, review); err != nil {
		return nil, err
	}
	return review, nil
}

// Preview generates a response without storing anything.
func (s *Service) Preview(ctx context.Context, userID uint, in Input) (generator.Result, error) {
	if err := validate(in); err != nil {
		return generator.Result{}, err
	}
	result, _, err := s.generate(ctx, userID, in)
	return result, err
}

// generate resolves tone and language from the account settings and calls the generator.
func (s *Service) generate(ctx context.Context, userID uint, in Input) (generator.Result, string, error) {
	settings, err := s.store.GetOrCreateSettings(ctx, userID)
	if err != nil {
		return generator.Result{}, "", fmt.Errorf("failed to load settings: %w", err)
	}
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return generator.Result{}, "", fmt.Errorf("failed to load user: %w", err)
	}

	tone := in.Tone
	if tone == "" {
		tone = settings.DefaultTone
	}
	if tone == "" {
		tone = model.DefaultTone
	}

	result := s.generator.Generate(ctx, generator.Request{
		ReviewText:   in.ReviewText,
		StarRating:   in.StarRating,
		Tone:         tone,
		Language:     settings.Language,
		CustomerName: in.CustomerName,
		BusinessName: user.BusinessName,
	})
	return result, tone, nil
}

func validate(in Input) error {
	if strings.TrimSpace(in.ReviewText) == "" {
		return ErrEmptyReview
	}
	if !model.ValidRating(in.StarRating) {
		return ErrInvalidRating
	}
	if in.Tone != "" && !model.ValidTone(in.Tone) {
		return ErrInvalidTone
	}
	return nil
}
