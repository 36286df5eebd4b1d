package model

import "time"

// Review is a customer review and, once generated, the business response to it.
// (UserID, ExternalReviewID) identifies an externally sourced review; manually
// entered reviews carry no external id.
type Review struct {
	ID               uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID           uint       `json:"user_id" gorm:"not null;uniqueIndex:ux_reviews_user_external,priority:1"`
	PlatformID       *uint      `json:"platform_id" gorm:"index"`
	ExternalReviewID *string    `json:"external_review_id" gorm:"type:varchar(255);uniqueIndex:ux_reviews_user_external,priority:2"`
	CustomerName     string     `json:"customer_name" gorm:"type:varchar(255)"`
	ReviewText       string     `json:"review_text" gorm:"type:text;not null"`
	StarRating       int        `json:"star_rating" gorm:"not null"`
	ResponseText     *string    `json:"response_text" gorm:"type:text"`
	ResponseTone     *string    `json:"response_tone" gorm:"type:varchar(50)"`
	AutoResponded    bool       `json:"auto_responded" gorm:"not null;default:false"`
	CreatedAt        time.Time  `json:"created_at"`
	RespondedAt      *time.Time `json:"responded_at"`

	Platform *Platform `json:"platform,omitempty" gorm:"foreignKey:PlatformID;constraint:OnDelete:SET NULL"`
}

// TableName specifies the table name for Review
func (Review) TableName() string {
	return "reviews"
}

// Sentiment buckets a star rating.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

// SentimentFor returns positive for 4-5 stars, negative for 1-2, neutral otherwise
func SentimentFor(rating int) Sentiment {
	switch {
	case rating >= 4:
		return SentimentPositive
	case rating <= 2:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}

// ValidRating reports whether rating is a 1-5 star value
func ValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}
