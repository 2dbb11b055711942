package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/orgtask-api/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

var (
	// ErrCreateUser is returned when creating a user fails inside the team transaction.
	ErrCreateUser = errors.New("user repository: create user failed")
	// ErrCreateTeam is returned when creating the owned team fails inside the team transaction.
	ErrCreateTeam = errors.New("user repository: create team failed")
	// ErrReparent is returned when moving children fails inside the delete transaction.
	ErrReparent = errors.New("user repository: reparent children failed")
)

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// createOwnedTeam creates a team owned by user and links the user to it.
func createOwnedTeam(tx *gorm.DB, user *models.User) error {
	team := &models.Team{OwnerID: user.ID}
	if err := tx.Create(team).Error; err != nil {
		return fmt.Errorf("%w: %v", ErrCreateTeam, err)
	}
	user.TeamID = &team.ID
	return tx.Model(user).Update("team_id", team.ID).Error
}

// CreateWithTeam creates a user and their team atomically.
func (r *GormUserRepository) CreateWithTeam(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateUser, err)
		}

		return createOwnedTeam(tx, user)
	})
}

// Update saves a user, creating its team in the same transaction when asked
func (r *GormUserRepository) Update(ctx context.Context, user *models.User, createTeam bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(user).Error; err != nil {
			return err
		}
		if !createTeam {
			return nil
		}
		return createOwnedTeam(tx, user)
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByIDs returns the users that exist among ids
func (r *GormUserRepository) FindByIDs(ctx context.Context, ids []uint64) ([]models.User, error) {
	users := []models.User{}
	if len(ids) == 0 {
		return users, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists reports whether a user exists
func (r *GormUserRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	return count > 0, err
}

// Count returns the number of users
func (r *GormUserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

// ChildIDs returns the direct children of a user
func (r *GormUserRepository) ChildIDs(ctx context.Context, id uint64) ([]uint64, error) {
	ids := []uint64{}
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("parent_id = ?", id).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// List returns every user ordered by id
func (r *GormUserRepository) List(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteAndReparent moves children one level up and deletes the user atomically
func (r *GormUserRepository) DeleteAndReparent(ctx context.Context, id uint64, newParent *uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).
			Where("parent_id = ?", id).
			Update("parent_id", newParent).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrReparent, err)
		}

		return tx.Delete(&models.User{}, id).Error
	})
}
