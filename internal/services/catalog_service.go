package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	apierrors "github.com/yukikurage/orgtask-api/internal/errors"
	"github.com/yukikurage/orgtask-api/internal/logging"
	"github.com/yukikurage/orgtask-api/internal/models"
	"github.com/yukikurage/orgtask-api/internal/repository"
	"github.com/yukikurage/orgtask-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrNameRequired        = apierrors.BadRequest("Name is required.")
	ErrBrandInUse          = apierrors.Conflict("Brand is the subject of tasks and cannot be deleted.")
	ErrBrandAccessDenied   = apierrors.Forbidden("You do not have permission to view this brand.")
	ErrContactAccessDenied = apierrors.Forbidden("You do not have permission to add contacts for this brand")
	ErrContactNotFound     = apierrors.NotFound("Brand contact not found")
	ErrContactNameRequired = apierrors.BadRequest("Contact person name is required.")
	ErrOwnershipExists     = apierrors.BadRequest("Brand ownership already exist")
	ErrNotTeamOwnerOfBO    = apierrors.Forbidden("You can only add BO users below you in the hierarchy as brand owners.")
	ErrFailedToDeleteBrand = errors.New("failed to delete brand")
	brandDetailRoles       = []models.Role{models.RoleAdmin, models.RoleManagement}
)

// CatalogService manages the brand, inventory and event records tasks refer
// to, along with the contacts and BO owners of brands.
type CatalogService struct {
	catalogRepo repository.CatalogRepository
	userRepo    repository.UserRepository
}

// NewCatalogService creates a new CatalogService
func NewCatalogService(catalogRepo repository.CatalogRepository, userRepo repository.UserRepository) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo, userRepo: userRepo}
}

// checkName trims name and rejects empty or duplicate names of kind. except
// is the id of the record being renamed, or 0.
func (s *CatalogService) checkName(ctx context.Context, kind models.TaskType, name string, except uint64) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	taken, err := s.catalogRepo.NameTaken(ctx, kind, name, except)
	if err != nil {
		return "", fmt.Errorf("failed to check %s name: %w", strings.ToLower(string(kind)), err)
	}
	if taken {
		return "", apierrors.Conflict("%s already exists with the same name", kind)
	}
	return name, nil
}

func (s *CatalogService) CreateBrand(ctx context.Context, brand *models.Brand) error {
	name, err := s.checkName(ctx, models.TaskTypeBrand, brand.Name, 0)
	if err != nil {
		return err
	}
	brand.Name = name
	if err := s.catalogRepo.CreateBrand(ctx, brand); err != nil {
		return fmt.Errorf("failed to create brand: %w", err)
	}
	return nil
}

func (s *CatalogService) CreateInventory(ctx context.Context, inventory *models.Inventory) error {
	name, err := s.checkName(ctx, models.TaskTypeInventory, inventory.Name, 0)
	if err != nil {
		return err
	}
	inventory.Name = name
	if err := s.catalogRepo.CreateInventory(ctx, inventory); err != nil {
		return fmt.Errorf("failed to create inventory: %w", err)
	}
	return nil
}

func (s *CatalogService) CreateEvent(ctx context.Context, event *models.Event) error {
	name, err := s.checkName(ctx, models.TaskTypeEvent, event.Name, 0)
	if err != nil {
		return err
	}
	event.Name = name
	if err := s.catalogRepo.CreateEvent(ctx, event); err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}

func (s *CatalogService) ListBrands(ctx context.Context, page utils.PaginationParams) ([]models.Brand, int64, error) {
	return s.catalogRepo.ListBrands(ctx, page)
}

func (s *CatalogService) ListInventories(ctx context.Context, page utils.PaginationParams) ([]models.Inventory, int64, error) {
	return s.catalogRepo.ListInventories(ctx, page)
}

func (s *CatalogService) ListEvents(ctx context.Context, page utils.PaginationParams) ([]models.Event, int64, error) {
	return s.catalogRepo.ListEvents(ctx, page)
}

// UpdateBrandInput holds the brand fields to change. Nil fields are left unchanged.
type UpdateBrandInput struct {
	Name        *string
	Revenue     *float64
	DealClosed  *bool
	Description *string
}

// ContactInput holds the contact fields to change. Nil fields are left unchanged.
type ContactInput struct {
	Name  *string
	Phone *string
	Email *string
}

// BrandDetail is a brand with its contacts and owners.
type BrandDetail struct {
	Brand    *models.Brand
	Contacts []models.BrandContact
	Owners   []models.User
}

func (s *CatalogService) findBrand(ctx context.Context, id uint64) (*models.Brand, error) {
	brand, err := s.catalogRepo.FindBrand(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBrandNotFound
		}
		return nil, fmt.Errorf("failed to find brand: %w", err)
	}
	return brand, nil
}

func (s *CatalogService) isOwner(ctx context.Context, brandID, userID uint64) (bool, error) {
	owns, err := s.catalogRepo.OwnershipExists(ctx, brandID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check brand ownership: %w", err)
	}
	return owns, nil
}

// UpdateBrand changes a brand. A new name must not be used by another brand.
func (s *CatalogService) UpdateBrand(ctx context.Context, id uint64, input UpdateBrandInput) (*models.Brand, error) {
	brand, err := s.findBrand(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name, err := s.checkName(ctx, models.TaskTypeBrand, *input.Name, brand.ID)
		if err != nil {
			return nil, err
		}
		brand.Name = name
	}
	if input.Revenue != nil {
		brand.Revenue = *input.Revenue
	}
	if input.DealClosed != nil {
		brand.DealClosed = *input.DealClosed
	}
	if input.Description != nil {
		brand.Description = *input.Description
	}

	if err := s.catalogRepo.UpdateBrand(ctx, brand); err != nil {
		return nil, fmt.Errorf("failed to update brand: %w", err)
	}
	return brand, nil
}

// DeleteBrand removes a brand with its contacts and ownerships. Brands that
// tasks are about cannot be deleted.
func (s *CatalogService) DeleteBrand(ctx context.Context, id uint64) error {
	if err := s.catalogRepo.DeleteBrand(ctx, id); err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrBrandNotFound
		case errors.Is(err, repository.ErrBrandInUse):
			return ErrBrandInUse
		default:
			logging.Logger.WithError(err).WithField("brand_id", id).Error("brand delete failed")
			return ErrFailedToDeleteBrand
		}
	}

	logging.Logger.WithField("brand_id", id).Info("brand deleted")
	return nil
}

// GetBrandDetail returns a brand with its contacts and owners. Owners of the
// brand, ADMIN and MANAGEMENT holders, and users holding both PO and TO may
// read it.
func (s *CatalogService) GetBrandDetail(ctx context.Context, id uint64, actor Actor) (*BrandDetail, error) {
	brand, err := s.findBrand(ctx, id)
	if err != nil {
		return nil, err
	}

	allowed := models.HasAnyRole(actor.Roles, brandDetailRoles...) ||
		(models.HasRole(actor.Roles, models.RolePO) && models.HasRole(actor.Roles, models.RoleTO))
	ownerIDs, err := s.catalogRepo.OwnerIDs(ctx, brand.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brand owners: %w", err)
	}
	for _, ownerID := range ownerIDs {
		if ownerID == actor.ID {
			allowed = true
		}
	}
	if !allowed {
		return nil, ErrBrandAccessDenied
	}

	contacts, err := s.catalogRepo.ListContacts(ctx, brand.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list brand contacts: %w", err)
	}
	owners := []models.User{}
	if len(ownerIDs) > 0 {
		if owners, err = s.userRepo.FindByIDs(ctx, ownerIDs); err != nil {
			return nil, fmt.Errorf("failed to find brand owners: %w", err)
		}
	}
	if contacts == nil {
		contacts = []models.BrandContact{}
	}
	return &BrandDetail{Brand: brand, Contacts: contacts, Owners: owners}, nil
}

// AddBrandContact records a contact person for a brand. Only owners of the
// brand may do so.
func (s *CatalogService) AddBrandContact(ctx context.Context, brandID uint64, contact *models.BrandContact, actor Actor) error {
	brand, err := s.findBrand(ctx, brandID)
	if err != nil {
		return err
	}
	owns, err := s.isOwner(ctx, brand.ID, actor.ID)
	if err != nil {
		return err
	}
	if !owns {
		return ErrContactAccessDenied
	}
	contact.ContactPersonName = strings.TrimSpace(contact.ContactPersonName)
	if contact.ContactPersonName == "" {
		return ErrContactNameRequired
	}

	contact.ID = 0
	contact.BrandID = brand.ID
	if err := s.catalogRepo.CreateContact(ctx, contact); err != nil {
		return fmt.Errorf("failed to create brand contact: %w", err)
	}
	return nil
}

// UpdateBrandContact changes a contact of a brand. Only owners of the brand
// may do so.
func (s *CatalogService) UpdateBrandContact(ctx context.Context, brandID, contactID uint64, input ContactInput, actor Actor) (*models.BrandContact, error) {
	brand, err := s.findBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}
	owns, err := s.isOwner(ctx, brand.ID, actor.ID)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, ErrContactAccessDenied
	}

	contact, err := s.catalogRepo.FindContact(ctx, brand.ID, contactID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactNotFound
		}
		return nil, fmt.Errorf("failed to find brand contact: %w", err)
	}
	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, ErrContactNameRequired
		}
		contact.ContactPersonName = name
	}
	if input.Phone != nil {
		contact.ContactPersonPhone = *input.Phone
	}
	if input.Email != nil {
		contact.ContactPersonEmail = *input.Email
	}

	if err := s.catalogRepo.UpdateContact(ctx, contact); err != nil {
		return nil, fmt.Errorf("failed to update brand contact: %w", err)
	}
	return contact, nil
}

// AddBrandOwnership makes a BO user an owner of a brand. The actor must hold
// TO somewhere above the BO user in the hierarchy.
func (s *CatalogService) AddBrandOwnership(ctx context.Context, brandID, boUserID uint64, actor Actor) (*models.BrandOwnership, error) {
	brand, err := s.findBrand(ctx, brandID)
	if err != nil {
		return nil, err
	}
	bo, err := s.userRepo.FindByID(ctx, boUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !bo.HasRole(models.RoleBO) {
		return nil, apierrors.NotFound("There is no BO role user with this user id: %d", boUserID)
	}

	owners, err := toAncestors(ctx, s.userRepo, bo.ID)
	if err != nil {
		return nil, err
	}
	above := false
	for _, owner := range owners {
		if owner.ID == actor.ID {
			above = true
			break
		}
	}
	if !above {
		return nil, ErrNotTeamOwnerOfBO
	}

	exists, err := s.isOwner(ctx, brand.ID, bo.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrOwnershipExists
	}

	ownership := &models.BrandOwnership{BrandID: brand.ID, BoUserID: bo.ID}
	if err := s.catalogRepo.CreateOwnership(ctx, ownership); err != nil {
		return nil, fmt.Errorf("failed to create brand ownership: %w", err)
	}

	logging.Logger.WithFields(logrus.Fields{
		"brand_id":   brand.ID,
		"bo_user_id": bo.ID,
		"actor_id":   actor.ID,
	}).Info("brand owner added")
	return ownership, nil
}
