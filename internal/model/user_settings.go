package model

import "time"

// Default values applied when settings are created lazily.
const (
	DefaultTone     = ToneProfessional
	DefaultLanguage = "English"
)

// UserSettings holds per-account response preferences and the automation watermark
type UserSettings struct {
	ID               uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID           uint       `json:"user_id" gorm:"not null;uniqueIndex"`
	DefaultTone      string     `json:"default_tone" gorm:"type:varchar(50);not null;default:'Professional'"`
	Language         string     `json:"language" gorm:"type:varchar(50);not null;default:'English'"`
	AutoReplyEnabled bool       `json:"auto_reply_enabled" gorm:"not null;default:false;index"`
	LastCheckTime    *time.Time `json:"last_check_time"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName specifies the table name for UserSettings
func (UserSettings) TableName() string {
	return "user_settings"
}
