package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "Pending"
	TaskStatusCompleted TaskStatus = "Completed"
)

func (s TaskStatus) Valid() bool {
	return s == TaskStatusPending || s == TaskStatusCompleted
}

type TaskType string

const (
	TaskTypeGeneral   TaskType = "General"
	TaskTypeBrand     TaskType = "Brand"
	TaskTypeInventory TaskType = "Inventory"
	TaskTypeEvent     TaskType = "Event"
)

func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeGeneral, TaskTypeBrand, TaskTypeInventory, TaskTypeEvent:
		return true
	}
	return false
}

// Subject is what a task is about. A General subject carries no reference;
// every other type carries exactly one.
type Subject struct {
	Type TaskType
	ID   *uint64
}

// GeneralSubject returns the subject of a task with no linked record.
func GeneralSubject() Subject {
	return Subject{Type: TaskTypeGeneral}
}

// NewSubject links a task to a brand, inventory or event record.
func NewSubject(t TaskType, id uint64) Subject {
	return Subject{Type: t, ID: &id}
}

type Task struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Title       string     `gorm:"not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Type        TaskType   `gorm:"type:varchar(20);not null;default:'General';index:idx_tasks_subject" json:"type"`
	SubjectID   *uint64    `gorm:"index:idx_tasks_subject" json:"subject_id"`
	Status      TaskStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`
	AssignedTo  uint64     `gorm:"not null;index" json:"assigned_to"`
	CreatedBy   uint64     `gorm:"not null;index" json:"created_by"`
	DueDate     time.Time  `gorm:"index" json:"due_date"`
	CreatedAt   time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// Subject returns the tagged subject of the task.
func (t *Task) Subject() Subject {
	return Subject{Type: t.Type, ID: t.SubjectID}
}

// SetSubject stores s on the task. A General subject clears the reference.
func (t *Task) SetSubject(s Subject) {
	t.Type = s.Type
	if s.Type == TaskTypeGeneral {
		t.SubjectID = nil
		return
	}
	t.SubjectID = s.ID
}

func (t *Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}
