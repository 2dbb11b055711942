package dto

import (
	"time"

	"github.com/yukikurage/orgtask-api/internal/models"
)

type BrandRequest struct {
	Name        string  `json:"name" binding:"required"`
	Revenue     float64 `json:"revenue"`
	DealClosed  bool    `json:"deal_closed"`
	Description string  `json:"description"`
}

func (r BrandRequest) Model() *models.Brand {
	return &models.Brand{Name: r.Name, Revenue: r.Revenue, DealClosed: r.DealClosed, Description: r.Description}
}

// UpdateBrandRequest changes the set fields of a brand
type UpdateBrandRequest struct {
	Name        *string  `json:"name"`
	Revenue     *float64 `json:"revenue"`
	DealClosed  *bool    `json:"deal_closed"`
	Description *string  `json:"description"`
}

type BrandContactRequest struct {
	ContactPersonName  string `json:"contact_person_name" binding:"required"`
	ContactPersonPhone string `json:"contact_person_phone"`
	ContactPersonEmail string `json:"contact_person_email"`
}

func (r BrandContactRequest) Model() *models.BrandContact {
	return &models.BrandContact{
		ContactPersonName:  r.ContactPersonName,
		ContactPersonPhone: r.ContactPersonPhone,
		ContactPersonEmail: r.ContactPersonEmail,
	}
}

type UpdateBrandContactRequest struct {
	ContactPersonName  *string `json:"contact_person_name"`
	ContactPersonPhone *string `json:"contact_person_phone"`
	ContactPersonEmail *string `json:"contact_person_email"`
}

type BrandOwnershipRequest struct {
	BoUserID uint64 `json:"bo_user_id" binding:"required"`
}

type InventoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

func (r InventoryRequest) Model() *models.Inventory {
	return &models.Inventory{Name: r.Name, Description: r.Description}
}

type EventRequest struct {
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
}

func (r EventRequest) Model() *models.Event {
	return &models.Event{Name: r.Name, Description: r.Description, StartsAt: r.StartsAt}
}

// CommentRequest is the body for creating or editing a task comment
type CommentRequest struct {
	Comment  string  `json:"comment"`
	FilePath *string `json:"file_path"`
	FileType *string `json:"file_type"`
}
