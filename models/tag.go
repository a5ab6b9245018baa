package models

import "time"

// Tag text is stored lowercase and looked up by exact match. Tags are
// created lazily on first use and never deleted.
type Tag struct {
	ID        string    `gorm:"type:varchar(36);primaryKey" json:"_id"`
	Tag       string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"tag"`
	CreatedAt time.Time `json:"created_at"`
}
