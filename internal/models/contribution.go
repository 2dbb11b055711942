package models

import "time"

type Contribution struct {
	UserID    uint64    `gorm:"primarykey;autoIncrement:false" json:"user_id"`
	TaskID    uint64    `gorm:"primarykey;autoIncrement:false;index" json:"task_id"`
	CreatedAt time.Time `json:"created_at"`
}
