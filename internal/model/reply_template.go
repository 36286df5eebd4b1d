package model

import "time"

// Response tones understood by the generator and templates.
const (
	ToneProfessional = "Professional"
	ToneFriendly     = "Friendly"
	ToneApologetic   = "Apologetic"
	ToneEnthusiastic = "Enthusiastic"
)

// Tones lists the supported tones.
var Tones = []string{ToneProfessional, ToneFriendly, ToneApologetic, ToneEnthusiastic}

// ValidTone reports whether tone is one of Tones
func ValidTone(tone string) bool {
	for _, t := range Tones {
		if t == tone {
			return true
		}
	}
	return false
}

// ReplyTemplate is reusable canned response content keyed by tone and optionally by rating
type ReplyTemplate struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     uint      `json:"user_id" gorm:"not null;index"`
	Name       string    `json:"name" gorm:"type:varchar(255);not null"`
	Tone       string    `json:"tone" gorm:"type:varchar(50);not null"`
	StarRating *int      `json:"star_rating"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for ReplyTemplate
func (ReplyTemplate) TableName() string {
	return "reply_templates"
}
