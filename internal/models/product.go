package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iudanet/vitrina/internal/validation"
)

// KindProduct is the entity kind name used in keys, logs and errors.
const KindProduct = "product"

// Product представляет товар каталога
type Product struct {
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	ID          string          `json:"id"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	CategoryID  string          `json:"category_id,omitempty"`
	ImageURL    string          `json:"image_url,omitempty" validate:"omitempty,url"`
	Sizes       []string        `json:"sizes,omitempty" validate:"dive,max=20"`
	Colors      []string        `json:"colors,omitempty" validate:"dive,max=40"`
	Stock       int             `json:"stock" validate:"gte=0"`
}

// RecordID returns the product id.
func (p Product) RecordID() string { return p.ID }

// WithID returns a copy with the id replaced.
func (p Product) WithID(id string) Product {
	p.ID = id
	return p
}

// Normalize trims strings and rounds the price to cents.
func (p Product) Normalize() Product {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.CategoryID = strings.TrimSpace(p.CategoryID)
	p.ImageURL = strings.TrimSpace(p.ImageURL)
	p.Sizes = trimAll(p.Sizes)
	p.Colors = trimAll(p.Colors)
	p.Price = p.Price.Round(2)
	return p
}

// Validate checks required fields and formats.
func (p Product) Validate() error {
	return validation.Struct(KindProduct, p)
}

// IdentityKey returns the case-folded product name.
func (p Product) IdentityKey() string { return foldName(p.Name) }

// Stamp sets timestamps.
func (p Product) Stamp(now time.Time) Product {
	stamp(&p.CreatedAt, &p.UpdatedAt, now)
	return p
}
