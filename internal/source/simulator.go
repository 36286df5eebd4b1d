// Package source supplies candidate reviews for connected platforms. No real
// platform integration exists; Simulator fabricates arrivals.
package source

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"review-responder-go/internal/model"
)

// Candidate is a review as reported by a platform, before ingestion
type Candidate struct {
	ExternalID   string
	CustomerName string
	ReviewText   string
	StarRating   int
}

// Source fetches new candidate reviews for a platform.
type Source interface {
	FetchCandidates(ctx context.Context, platform model.Platform, count int) ([]Candidate, error)
}

// Simulator produces synthetic reviews. Each of the count slots requested
// yields a review with probability arrivalRate.
type Simulator struct {
	arrivalRate float64

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulator creates a simulator; arrivalRate is clamped to [0, 1]
func NewSimulator(arrivalRate float64, seed int64) *Simulator {
	if arrivalRate < 0 {
		arrivalRate = 0
	}
	if arrivalRate > 1 {
		arrivalRate = 1
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Simulator{
		arrivalRate: arrivalRate,
		rng:         rand.New(rand.NewSource(seed)),
	}
}

// FetchCandidates implements Source
func (s *Simulator) FetchCandidates(ctx context.Context, platform model.Platform, count int) ([]Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prefix := strings.ToLower(strings.TrimSpace(platform.Provider))
	if prefix == "" {
		prefix = "review"
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []Candidate
	for i := 0; i < count; i++ {
		if s.rng.Float64() >= s.arrivalRate {
			continue
		}
		rating := s.rng.Intn(5) + 1
		texts := sampleTexts[model.SentimentFor(rating)]
		candidates = append(candidates, Candidate{
			ExternalID:   fmt.Sprintf("%s_%s", prefix, uuid.NewString()),
			CustomerName: sampleNames[s.rng.Intn(len(sampleNames))],
			ReviewText:   texts[s.rng.Intn(len(texts))],
			StarRating:   rating,
		})
	}
	return candidates, nil
}

var sampleNames = []string{
	"Sarah M.", "James K.", "Priya R.", "Tom B.", "Elena G.",
	"Marcus L.", "Aiko T.", "Daniel O.", "Fatima Z.", "Chris P.",
}

var sampleTexts = map[model.Sentiment][]string{
	model.SentimentPositive: {
		"Amazing service and friendly staff. Will definitely come back!",
		"Best experience I've had in a long time. Highly recommend.",
		"Everything was perfect, from the welcome to the checkout.",
		"Great value and the team went above and beyond.",
	},
	model.SentimentNeutral: {
		"Decent overall, but the wait was longer than expected.",
		"Good product, service could be a bit faster.",
		"It was fine. Nothing special but nothing wrong either.",
	},
	model.SentimentNegative: {
		"Very disappointed. The order was wrong and nobody apologised.",
		"Rude staff and a long wait. Won't be returning.",
		"Product broke after two days and support never replied.",
	},
}
