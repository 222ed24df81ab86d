package models

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// LocalIDPrefix marks identifiers generated on the client while the remote store was unreachable.
const LocalIDPrefix = "local-"

// RecordOrigin describes which store a record id was issued by.
type RecordOrigin string

const (
	OriginRemote RecordOrigin = "remote"
	OriginLocal  RecordOrigin = "local"
)

// Entity is implemented by every catalog record kind.
// Methods use value receivers so services can pass records around by value.
type Entity[T any] interface {
	// RecordID returns the record identifier (empty for unsaved records)
	RecordID() string
	// WithID returns a copy of the record with the id replaced
	WithID(id string) T
	// Normalize returns the canonical shape: trimmed strings, defaults applied
	Normalize() T
	// Validate checks required fields and formats
	Validate() error
	// IdentityKey returns the dedup key used when merging stores; empty disables dedup
	IdentityKey() string
	// Stamp sets created_at when it is zero and always refreshes updated_at
	Stamp(now time.Time) T
}

// RuleChecker is implemented by entities with rules that span fields or
// depend on the record id, which struct tags cannot express.
type RuleChecker interface {
	CheckRules() error
}

// IsLocalID reports whether id was generated by the client.
func IsLocalID(id string) bool {
	return strings.HasPrefix(id, LocalIDPrefix)
}

// Origin infers record provenance from the id prefix.
func Origin(id string) RecordOrigin {
	if IsLocalID(id) {
		return OriginLocal
	}
	return OriginRemote
}

// Patch is a field-level edit keyed by JSON field name.
type Patch map[string]any

// Clone returns a shallow copy of the patch.
func (p Patch) Clone() Patch {
	out := make(Patch, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Fields returns the patched field names in sorted order.
func (p Patch) Fields() []string {
	return slices.Sorted(maps.Keys(p))
}

// Normalized returns a copy with string values trimmed and the id field removed.
func (p Patch) Normalized() Patch {
	out := make(Patch, len(p))
	for k, v := range p {
		if k == "id" {
			continue
		}
		if s, ok := v.(string); ok {
			v = strings.TrimSpace(s)
		}
		out[k] = v
	}
	return out
}

// MergePatch merges two patches field by field, newer wins.
func MergePatch(older, newer Patch) Patch {
	out := make(Patch, len(older)+len(newer))
	for k, v := range older {
		out[k] = v
	}
	for k, v := range newer {
		out[k] = v
	}
	return out
}

// ApplyPatch overlays patch fields onto rec; patch fields win.
// The overlay goes through the JSON representation, so patch keys are JSON field names.
func ApplyPatch[T any](rec T, patch Patch) (T, error) {
	if len(patch) == 0 {
		return rec, nil
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return rec, fmt.Errorf("failed to marshal record: %w", err)
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return rec, fmt.Errorf("failed to unmarshal record fields: %w", err)
	}

	for k, v := range patch {
		fields[k] = v
	}

	merged, err := json.Marshal(fields)
	if err != nil {
		return rec, fmt.Errorf("failed to marshal patched fields: %w", err)
	}

	var out T
	if err := json.Unmarshal(merged, &out); err != nil {
		return rec, fmt.Errorf("failed to apply patch: %w", err)
	}

	return out, nil
}

// PatchFromRecord converts a record into a full patch (all JSON fields except id).
func PatchFromRecord[T any](rec T) (Patch, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}

	patch := make(Patch)
	if err := json.Unmarshal(raw, &patch); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	delete(patch, "id")

	return patch, nil
}

// foldName is the shared identity-key rule: case-insensitive, surrounding whitespace ignored.
func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func trimAll(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func stamp(createdAt, updatedAt *time.Time, now time.Time) {
	if createdAt.IsZero() {
		*createdAt = now
	}
	*updatedAt = now
}
