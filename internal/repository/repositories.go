package repository

import "gorm.io/gorm"

// NewRepositories creates the GORM implementation of every repository
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:         NewUserRepository(db),
		Teams:         NewTeamRepository(db),
		Tasks:         NewTaskRepository(db),
		Contributions: NewContributionRepository(db),
		Notifications: NewNotificationRepository(db),
		History:       NewHistoryRepository(db),
		Comments:      NewCommentRepository(db),
		FcmTokens:     NewFcmTokenRepository(db),
		Catalog:       NewCatalogRepository(db),
	}
}
