// Package generator turns a customer review into a business response using an
// LLM backend, degrading to a canned reply when the backend is unavailable.
package generator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"review-responder-go/internal/model"
)

// Backend is a text-generation provider.
type Backend interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Request describes the review to respond to.
type Request struct {
	ReviewText   string
	StarRating   int
	Tone         string
	Language     string
	CustomerName string
	BusinessName string
}

// Kind tells whether a response came from the backend or the fallback table.
type Kind int

const (
	KindGenerated Kind = iota
	KindFallback
)

func (k Kind) String() string {
	if k == KindFallback {
		return "fallback"
	}
	return "generated"
}

// Result is the outcome of Generate. Err is set only for KindFallback and
// explains why the backend output was not used.
type Result struct {
	Text        string
	Kind        Kind
	Err         error
	GeneratedAt time.Time
}

// Fallback reports whether the canned reply was used.
func (r Result) Fallback() bool {
	return r.Kind == KindFallback
}

// Service generates review responses. A nil backend always falls back.
type Service struct {
	backend Backend
	timeout time.Duration
	now     func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithTimeout bounds each backend call. Zero means no bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Service) { s.timeout = d }
}

// NewService creates a generator around backend
func NewService(backend Backend, opts ...Option) *Service {
	s := &Service{backend: backend, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// BackendName returns the configured backend name, or "none".
func (s *Service) BackendName() string {
	if s.backend == nil {
		return "none"
	}
	return s.backend.Name()
}

// Generate never fails: any backend problem yields the canned reply for the
// request's tone and sentiment.
func (s *Service) Generate(ctx context.Context, req Request) Result {
	tone := normalizeTone(req.Tone)

	if s.backend == nil {
		return s.fallback(tone, req.StarRating, ErrNoBackend)
	}

	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	text, err := s.backend.Complete(callCtx, systemPrompt, buildPrompt(req, tone))
	if err != nil {
		classified := Classify(err)
		logrus.WithFields(logrus.Fields{
			"backend":    s.backend.Name(),
			"error_type": classified.Type,
		}).Warnf("Response generation failed, using fallback: %v", err)
		return s.fallback(tone, req.StarRating, classified)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		logrus.WithField("backend", s.backend.Name()).Warn("Response generation returned empty text, using fallback")
		return s.fallback(tone, req.StarRating, ErrEmptyResponse)
	}

	return Result{Text: text, Kind: KindGenerated, GeneratedAt: s.now()}
}

func (s *Service) fallback(tone string, rating int, cause error) Result {
	return Result{
		Text:        FallbackText(tone, rating),
		Kind:        KindFallback,
		Err:         cause,
		GeneratedAt: s.now(),
	}
}

func normalizeTone(tone string) string {
	for _, t := range model.Tones {
		if strings.EqualFold(t, strings.TrimSpace(tone)) {
			return t
		}
	}
	return model.ToneProfessional
}

const systemPrompt = "You write replies from a business owner to customer reviews. " +
	"Replies are concise, specific to the review, and never invent facts about the business."

func buildPrompt(req Request, tone string) string {
	language := req.Language
	if language == "" {
		language = model.DefaultLanguage
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Write a response to the following %d-star customer review.\n", req.StarRating)
	if req.BusinessName != "" {
		fmt.Fprintf(&b, "Business: %s\n", req.BusinessName)
	}
	if req.CustomerName != "" {
		fmt.Fprintf(&b, "Customer: %s\n", req.CustomerName)
	}
	fmt.Fprintf(&b, "Tone: %s\n", tone)
	fmt.Fprintf(&b, "Language: %s\n", language)
	fmt.Fprintf(&b, "Review: %q\n\n", req.ReviewText)

	switch model.SentimentFor(req.StarRating) {
	case model.SentimentNegative:
		b.WriteString("Acknowledge the problem, apologise sincerely, and invite the customer to get in touch so it can be resolved.\n")
	case model.SentimentNeutral:
		b.WriteString("Thank the customer, acknowledge what could be better, and mention you are working to improve.\n")
	default:
		b.WriteString("Thank the customer warmly and invite them back.\n")
	}
	b.WriteString("Keep it under 100 words. Return only the response text.")
	return b.String()
}
