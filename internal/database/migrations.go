package database

import (
	"fmt"

	"github.com/yukikurage/orgtask-api/internal/logging"
	"gorm.io/gorm"
)

// compositeIndexes are the multi-column indexes that the list, dedup and
// analytics queries rely on.
var compositeIndexes = []struct {
	table   string
	name    string
	columns string
}{
	{"tasks", "idx_tasks_assigned_status", "assigned_to, status"},
	{"tasks", "idx_tasks_status_due_date", "status, due_date"},
	{"notifications", "idx_notifications_unread", "recipient_id, is_read"},
	{"task_histories", "idx_task_histories_task_created", "task_id, created_at"},
	{"task_comments", "idx_task_comments_task_created", "task_id, created_at"},
	{"contributions", "idx_contributions_user", "user_id"},
}

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()
	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
			logging.Logger.Debugf("Index %s already exists, skipping", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logging.Logger.Infof("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}

// MigrateDatabase runs the migrations that AutoMigrate cannot express
func MigrateDatabase(db *gorm.DB) error {
	if err := AddIndexes(db); err != nil {
		return fmt.Errorf("failed to add indexes: %w", err)
	}

	return nil
}
