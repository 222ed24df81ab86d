package models

import (
	"strings"
	"time"

	"github.com/iudanet/vitrina/internal/validation"
)

// KindAttribute is the entity kind name used in keys, logs and errors.
const KindAttribute = "attribute"

// AttributeType определяет, как значение атрибута выбирается в витрине
type AttributeType string

const (
	AttributeTypeSelect AttributeType = "select"
	AttributeTypeText   AttributeType = "text"
	AttributeTypeColor  AttributeType = "color"
	AttributeTypeSize   AttributeType = "size"
)

// Attribute is a filterable product property such as "Material" or "Fit".
type Attribute struct {
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	ID        string        `json:"id"`
	Name      string        `json:"name" validate:"required,max=100"`
	Type      AttributeType `json:"type" validate:"oneof=select text color size"`
	Values    []string      `json:"values,omitempty" validate:"dive,max=100"`
}

// RecordID returns the attribute id.
func (a Attribute) RecordID() string { return a.ID }

// WithID returns a copy with the id replaced.
func (a Attribute) WithID(id string) Attribute {
	a.ID = id
	return a
}

// Normalize trims strings, defaults the type and drops duplicate values (case-insensitive).
func (a Attribute) Normalize() Attribute {
	a.Name = strings.TrimSpace(a.Name)
	a.Type = AttributeType(strings.ToLower(strings.TrimSpace(string(a.Type))))
	if a.Type == "" {
		a.Type = AttributeTypeSelect
	}

	values := trimAll(a.Values)
	seen := make(map[string]struct{}, len(values))
	a.Values = values[:0:0]
	for _, v := range values {
		key := strings.ToLower(v)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		a.Values = append(a.Values, v)
	}
	return a
}

// Validate checks required fields and formats.
func (a Attribute) Validate() error {
	return validation.Struct(KindAttribute, a)
}

// IdentityKey returns the case-folded attribute name.
func (a Attribute) IdentityKey() string { return foldName(a.Name) }

// Stamp sets timestamps.
func (a Attribute) Stamp(now time.Time) Attribute {
	stamp(&a.CreatedAt, &a.UpdatedAt, now)
	return a
}
