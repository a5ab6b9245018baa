package models

import "time"

// File is one logical upload. The hash column is the content identity:
// it determines the blob path on disk and carries a unique index, so a
// given content is stored and cataloged at most once.
type File struct {
	ID          string    `gorm:"type:varchar(36);primaryKey" json:"_id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Hash        string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"hash"`
	Size        int64     `gorm:"not null" json:"size"`
	AuthorID    string    `gorm:"type:varchar(36);index" json:"author"`
	TagID       *string   `gorm:"type:varchar(36);index" json:"tag"`
	Private     bool      `gorm:"default:false" json:"private"`
	Description string    `gorm:"type:varchar(1000)" json:"description"`
	IsAd        bool      `gorm:"default:false" json:"is_ad"`
	PhoneNumber string    `gorm:"type:varchar(50)" json:"phoneNumber,omitempty"`
	Email       string    `gorm:"type:varchar(255)" json:"email,omitempty"`
	MimeType    string    `gorm:"type:varchar(100)" json:"mime_type"`
	HasThumb    bool      `gorm:"default:false" json:"has_thumb"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
