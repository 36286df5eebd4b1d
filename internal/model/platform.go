package model

import "time"

// Platform is a review platform connected to an account
type Platform struct {
	ID                uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID            uint      `json:"user_id" gorm:"not null;index"`
	Provider          string    `json:"provider" gorm:"type:varchar(100);not null"`
	ProviderAccountID string    `json:"provider_account_id" gorm:"type:varchar(255)"`
	APIKey            *string   `json:"-" gorm:"type:text"`
	AccessToken       *string   `json:"-" gorm:"type:text"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName specifies the table name for Platform
func (Platform) TableName() string {
	return "connected_platforms"
}
