package models

import "time"

type Notification struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Message     string    `gorm:"type:varchar(512);not null" json:"message"`
	IsRead      bool      `gorm:"not null;default:false" json:"is_read"`
	RecipientID uint64    `gorm:"not null;index:idx_notifications_dedup,priority:1" json:"recipient_id"`
	TaskID      *uint64   `gorm:"index:idx_notifications_dedup,priority:2" json:"task_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// FcmToken is a push delivery device token registered by a user.
type FcmToken struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_fcm_tokens_user_token" json:"user_id"`
	Token     string    `gorm:"type:varchar(512);not null;uniqueIndex:idx_fcm_tokens_user_token" json:"token"`
	CreatedAt time.Time `json:"created_at"`
}
