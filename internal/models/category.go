package models

import (
	"strings"
	"time"

	"github.com/iudanet/vitrina/internal/validation"
)

// KindCategory is the entity kind name used in keys, logs and errors.
const KindCategory = "category"

// Category представляет категорию каталога (платья, обувь, аксессуары...)
type Category struct {
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	ID          string    `json:"id"`
	Name        string    `json:"name" validate:"required,max=100"`
	Slug        string    `json:"slug" validate:"omitempty,max=120,slug"`
	Description string    `json:"description" validate:"max=2000"`
	ParentID    string    `json:"parent_id,omitempty"`
	ImageURL    string    `json:"image_url,omitempty" validate:"omitempty,url"`
}

// RecordID returns the category id.
func (c Category) RecordID() string { return c.ID }

// WithID returns a copy with the id replaced.
func (c Category) WithID(id string) Category {
	c.ID = id
	return c
}

// Normalize trims strings and derives the slug from the name when it is empty.
func (c Category) Normalize() Category {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	c.ParentID = strings.TrimSpace(c.ParentID)
	c.ImageURL = strings.TrimSpace(c.ImageURL)
	c.Slug = strings.ToLower(strings.TrimSpace(c.Slug))
	if c.Slug == "" {
		c.Slug = Slugify(c.Name)
	}
	return c
}

// Validate checks required fields and formats.
func (c Category) Validate() error {
	if err := validation.Struct(KindCategory, c); err != nil {
		return err
	}
	return c.CheckRules()
}

// CheckRules rejects a category that is its own parent.
func (c Category) CheckRules() error {
	if c.ParentID != "" && c.ParentID == c.ID {
		return validation.New(KindCategory, "parent_id", "must not reference the category itself")
	}
	return nil
}

// IdentityKey returns the case-folded category name.
func (c Category) IdentityKey() string { return foldName(c.Name) }

// Stamp sets timestamps.
func (c Category) Stamp(now time.Time) Category {
	stamp(&c.CreatedAt, &c.UpdatedAt, now)
	return c
}

// Slugify converts a name into a URL slug: "Summer Sale 2025" -> "summer-sale-2025".
// Characters outside [a-z0-9] are treated as separators.
func Slugify(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}
