package models

import "time"

// Team is owned by exactly one TO user and referenced by its members.
type Team struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	OwnerID   uint64    `gorm:"uniqueIndex;not null" json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
