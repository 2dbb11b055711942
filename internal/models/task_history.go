package models

import "time"

type HistoryAction string

const (
	ActionTaskCreated      HistoryAction = "TASK_CREATED"
	ActionTaskUpdated      HistoryAction = "TASK_UPDATED"
	ActionTaskCompleted    HistoryAction = "TASK_COMPLETED"
	ActionTaskReassigned   HistoryAction = "TASK_REASSIGNED"
	ActionTaskCommentAdded HistoryAction = "TASK_COMMENT_ADDED"
)

// TaskHistory is an append-only audit row. Rows are never updated or deleted
// except together with their task.
type TaskHistory struct {
	ID        uint64        `gorm:"primarykey" json:"id"`
	TaskID    uint64        `gorm:"index;not null" json:"task_id"`
	UserID    uint64        `gorm:"not null" json:"user_id"`
	Action    HistoryAction `gorm:"type:varchar(40);not null" json:"action"`
	Details   string        `gorm:"type:text" json:"details"`
	CreatedAt time.Time     `json:"created_at"`
}

func (TaskHistory) TableName() string {
	return "task_histories"
}
