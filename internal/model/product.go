package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalogue item managed from the dashboard.
type Product struct {
	ID          string          `json:"_id" gorm:"type:varchar(36);primaryKey"`
	Name        string          `json:"name" gorm:"size:100;not null;index"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null;default:0"`
	Category    string          `json:"category,omitempty" gorm:"size:50;index"`
	Stock       int             `json:"stock" gorm:"not null;default:0"`
	IsActive    bool            `json:"isActive" gorm:"default:true;index"`
	CreatedBy   string          `json:"createdBy,omitempty" gorm:"type:varchar(36);index"`
	CreatedAt   time.Time       `json:"createdAt" gorm:"index"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// ProductPatch carries the fields of a partial product update. Nil fields
// are left untouched.
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Category    *string
	Stock       *int
	IsActive    *bool
}

// Apply copies the set fields onto p.
func (pp ProductPatch) Apply(p *Product) {
	if pp.Name != nil {
		p.Name = *pp.Name
	}
	if pp.Description != nil {
		p.Description = *pp.Description
	}
	if pp.Price != nil {
		p.Price = *pp.Price
	}
	if pp.Category != nil {
		p.Category = *pp.Category
	}
	if pp.Stock != nil {
		p.Stock = *pp.Stock
	}
	if pp.IsActive != nil {
		p.IsActive = *pp.IsActive
	}
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// NewPagination computes the page count for total items.
func NewPagination(page, limit int, total int64) Pagination {
	pages := int64(0)
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return Pagination{Page: page, Limit: limit, Total: total, Pages: pages}
}
