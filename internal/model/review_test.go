package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSentimentFor(t *testing.T) {
	assert.Equal(t, SentimentNegative, SentimentFor(1))
	assert.Equal(t, SentimentNegative, SentimentFor(2))
	assert.Equal(t, SentimentNeutral, SentimentFor(3))
	assert.Equal(t, SentimentPositive, SentimentFor(4))
	assert.Equal(t, SentimentPositive, SentimentFor(5))
}

func TestValidToneAndRating(t *testing.T) {
	assert.True(t, ValidTone(ToneFriendly))
	assert.False(t, ValidTone("friendly"))
	assert.True(t, ValidRating(1))
	assert.False(t, ValidRating(0))
	assert.False(t, ValidRating(6))
}
