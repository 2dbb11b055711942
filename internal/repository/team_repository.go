package repository

import (
	"context"

	"github.com/yukikurage/orgtask-api/internal/database"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/utils"
	"gorm.io/gorm"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(ctx context.Context, id uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByOwner finds the team owned by a user
func (r *GormTeamRepository) FindByOwner(ctx context.Context, ownerID uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// Count returns the number of teams
func (r *GormTeamRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Team{}).Count(&count).Error
	return count, err
}

// List returns a page of teams ordered by id
func (r *GormTeamRepository) List(ctx context.Context, page utils.PaginationParams) ([]models.Team, int64, error) {
	return listPage[models.Team](r.db.WithContext(ctx).Order("id"), page)
}

// listPage counts every row of query's model and returns the requested page.
func listPage[T any](query *gorm.DB, page utils.PaginationParams) ([]T, int64, error) {
	base := query.Model(new(T)).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	rows := []T{}
	if err := base.Scopes(database.Paginate(page)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
