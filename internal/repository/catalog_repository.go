package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/utils"
	"gorm.io/gorm"
)

// ErrBrandInUse is returned when deleting a brand that tasks are about.
var ErrBrandInUse = errors.New("catalog repository: brand is referenced by tasks")

// GormCatalogRepository is a GORM implementation of CatalogRepository
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &GormCatalogRepository{db: db}
}

func catalogModel(kind models.TaskType) (interface{}, error) {
	switch kind {
	case models.TaskTypeBrand:
		return &models.Brand{}, nil
	case models.TaskTypeInventory:
		return &models.Inventory{}, nil
	case models.TaskTypeEvent:
		return &models.Event{}, nil
	default:
		return nil, fmt.Errorf("no catalog record for task type %q", kind)
	}
}

// SubjectExists reports whether the record behind a subject exists. A
// General subject has no record and always exists.
func (r *GormCatalogRepository) SubjectExists(ctx context.Context, subject models.Subject) (bool, error) {
	if subject.Type == models.TaskTypeGeneral {
		return true, nil
	}
	if subject.ID == nil {
		return false, nil
	}
	model, err := catalogModel(subject.Type)
	if err != nil {
		return false, err
	}

	var count int64
	err = r.db.WithContext(ctx).Model(model).Where("id = ?", *subject.ID).Count(&count).Error
	return count > 0, err
}

// NameTaken reports whether a record of kind other than except already uses name
func (r *GormCatalogRepository) NameTaken(ctx context.Context, kind models.TaskType, name string, except uint64) (bool, error) {
	model, err := catalogModel(kind)
	if err != nil {
		return false, err
	}

	query := r.db.WithContext(ctx).Model(model).Where("name = ?", name)
	if except != 0 {
		query = query.Where("id <> ?", except)
	}
	var count int64
	err = query.Count(&count).Error
	return count > 0, err
}

func (r *GormCatalogRepository) CreateBrand(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Create(brand).Error
}

func (r *GormCatalogRepository) CreateInventory(ctx context.Context, inventory *models.Inventory) error {
	return r.db.WithContext(ctx).Create(inventory).Error
}

func (r *GormCatalogRepository) CreateEvent(ctx context.Context, event *models.Event) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *GormCatalogRepository) ListBrands(ctx context.Context, page utils.PaginationParams) ([]models.Brand, int64, error) {
	return listPage[models.Brand](r.db.WithContext(ctx).Order("name"), page)
}

func (r *GormCatalogRepository) ListInventories(ctx context.Context, page utils.PaginationParams) ([]models.Inventory, int64, error) {
	return listPage[models.Inventory](r.db.WithContext(ctx).Order("name"), page)
}

func (r *GormCatalogRepository) ListEvents(ctx context.Context, page utils.PaginationParams) ([]models.Event, int64, error) {
	return listPage[models.Event](r.db.WithContext(ctx).Order("name"), page)
}

func (r *GormCatalogRepository) FindBrand(ctx context.Context, id uint64) (*models.Brand, error) {
	var brand models.Brand
	if err := r.db.WithContext(ctx).First(&brand, id).Error; err != nil {
		return nil, err
	}
	return &brand, nil
}

func (r *GormCatalogRepository) UpdateBrand(ctx context.Context, brand *models.Brand) error {
	return r.db.WithContext(ctx).Save(brand).Error
}

// DeleteBrand removes a brand with its contacts and ownerships in one
// transaction. Tasks keep pointing at their subject, so a referenced brand
// stays.
func (r *GormCatalogRepository) DeleteBrand(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var tasks int64
		if err := tx.Model(&models.Task{}).
			Where("type = ? AND subject_id = ?", models.TaskTypeBrand, id).
			Count(&tasks).Error; err != nil {
			return err
		}
		if tasks > 0 {
			return ErrBrandInUse
		}
		if err := tx.Where("brand_id = ?", id).Delete(&models.BrandContact{}).Error; err != nil {
			return err
		}
		if err := tx.Where("brand_id = ?", id).Delete(&models.BrandOwnership{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Brand{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormCatalogRepository) CreateContact(ctx context.Context, contact *models.BrandContact) error {
	return r.db.WithContext(ctx).Create(contact).Error
}

func (r *GormCatalogRepository) FindContact(ctx context.Context, brandID, contactID uint64) (*models.BrandContact, error) {
	var contact models.BrandContact
	err := r.db.WithContext(ctx).Where("brand_id = ?", brandID).First(&contact, contactID).Error
	if err != nil {
		return nil, err
	}
	return &contact, nil
}

func (r *GormCatalogRepository) UpdateContact(ctx context.Context, contact *models.BrandContact) error {
	return r.db.WithContext(ctx).Save(contact).Error
}

func (r *GormCatalogRepository) ListContacts(ctx context.Context, brandID uint64) ([]models.BrandContact, error) {
	var contacts []models.BrandContact
	err := r.db.WithContext(ctx).Where("brand_id = ?", brandID).Order("id").Find(&contacts).Error
	return contacts, err
}

func (r *GormCatalogRepository) CreateOwnership(ctx context.Context, ownership *models.BrandOwnership) error {
	return r.db.WithContext(ctx).Create(ownership).Error
}

func (r *GormCatalogRepository) OwnershipExists(ctx context.Context, brandID, boUserID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BrandOwnership{}).
		Where("brand_id = ? AND bo_user_id = ?", brandID, boUserID).
		Count(&count).Error
	return count > 0, err
}

func (r *GormCatalogRepository) OwnerIDs(ctx context.Context, brandID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&models.BrandOwnership{}).
		Where("brand_id = ?", brandID).
		Order("bo_user_id").
		Pluck("bo_user_id", &ids).Error
	return ids, err
}
