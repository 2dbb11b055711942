package models

import "time"

// Brand, Inventory and Event are the records a task can be about.

type Brand struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Revenue     float64   `json:"revenue"`
	DealClosed  bool      `gorm:"not null;default:false" json:"deal_closed"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type Inventory struct {
	ID          uint64    `gorm:"primarykey" json:"id"`
	Name        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Inventory) TableName() string {
	return "inventories"
}

type Event struct {
	ID          uint64     `gorm:"primarykey" json:"id"`
	Name        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"name"`
	Description string     `gorm:"type:text" json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// BrandContact is a contact person kept for a brand.
type BrandContact struct {
	ID                 uint64    `gorm:"primarykey" json:"id"`
	BrandID            uint64    `gorm:"not null;index" json:"brand_id"`
	ContactPersonName  string    `gorm:"type:varchar(255);not null" json:"contact_person_name"`
	ContactPersonPhone string    `gorm:"type:varchar(50)" json:"contact_person_phone"`
	ContactPersonEmail string    `gorm:"type:varchar(255)" json:"contact_person_email"`
	CreatedAt          time.Time `json:"created_at"`
}

// BrandOwnership makes a BO user an owner of a brand.
type BrandOwnership struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	BrandID   uint64    `gorm:"not null;uniqueIndex:idx_brand_owner" json:"brand_id"`
	BoUserID  uint64    `gorm:"not null;uniqueIndex:idx_brand_owner;index" json:"bo_user_id"`
	CreatedAt time.Time `json:"created_at"`
}
