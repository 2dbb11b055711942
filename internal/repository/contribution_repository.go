package repository

import (
	"context"

	"github.com/yukikurage/orgtask-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormContributionRepository is a GORM implementation of ContributionRepository
type GormContributionRepository struct {
	db *gorm.DB
}

// NewContributionRepository creates a new ContributionRepository
func NewContributionRepository(db *gorm.DB) ContributionRepository {
	return &GormContributionRepository{db: db}
}

// UserIDsByTask returns the contributor ids of a task
func (r *GormContributionRepository) UserIDsByTask(ctx context.Context, taskID uint64) ([]uint64, error) {
	ids := []uint64{}
	err := r.db.WithContext(ctx).Model(&models.Contribution{}).
		Where("task_id = ?", taskID).
		Order("user_id").
		Pluck("user_id", &ids).Error
	return ids, err
}

// CreateBatch inserts contributions; existing pairs are left untouched
func (r *GormContributionRepository) CreateBatch(ctx context.Context, contributions []models.Contribution) error {
	if len(contributions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "task_id"}},
			DoNothing: true,
		}).
		Create(&contributions).Error
}

// Find finds a specific contribution
func (r *GormContributionRepository) Find(ctx context.Context, userID, taskID uint64) (*models.Contribution, error) {
	var contribution models.Contribution
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		First(&contribution).Error; err != nil {
		return nil, err
	}
	return &contribution, nil
}

// Delete removes a contribution
func (r *GormContributionRepository) Delete(ctx context.Context, userID, taskID uint64) error {
	return r.db.WithContext(ctx).
		Where("user_id = ? AND task_id = ?", userID, taskID).
		Delete(&models.Contribution{}).Error
}
