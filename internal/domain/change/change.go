// Package change models the partial-update events emitted when upstream
// rows mutate. Row changes carry plain field assignments; tag changes carry
// the full tag assignment state of a property.
package change

import (
	"fmt"

	"github.com/parcelworks/stacker/internal/domain"
)

// Entity is the upstream row type a change originates from. It decides
// which id field the update-by-query keys on.
type Entity string

// Change entities.
const (
	EntityAddress  Entity = "address"
	EntityProperty Entity = "property"
	EntityProspect Entity = "prospect"
)

// ParseEntity validates a raw entity value.
func ParseEntity(s string) (Entity, error) {
	e := Entity(s)
	if !e.IsValid() {
		return "", fmt.Errorf("%w %q", domain.ErrUnknownEntity, s)
	}
	return e, nil
}

// IsValid checks if the entity is one of the supported values.
func (e Entity) IsValid() bool {
	return e == EntityAddress || e == EntityProperty || e == EntityProspect
}

func (e Entity) String() string { return string(e) }

// IDField returns the document field updates key on for this entity.
func (e Entity) IDField() string {
	return string(e) + "_id"
}

// Row is a field-level change to documents referencing the entity ids.
// Fields hold the new values keyed by document field name; an empty set is
// a no-op.
type Row struct {
	Entity Entity
	IDs    []int64
	Fields map[string]any
}

// NewRow validates and creates a row change.
func NewRow(entity string, ids []int64, fields map[string]any) (Row, error) {
	e, err := ParseEntity(entity)
	if err != nil {
		return Row{}, err
	}
	if len(ids) == 0 {
		return Row{}, fmt.Errorf("at least one id is required")
	}
	cloned := make(map[string]any, len(fields))
	for k, v := range fields {
		cloned[k] = v
	}
	return Row{Entity: e, IDs: append([]int64(nil), ids...), Fields: cloned}, nil
}

// IsEmpty reports whether the change carries no assignments.
func (r Row) IsEmpty() bool { return len(r.Fields) == 0 }

// Tags is the full tag state of one property after an assignment change.
// DistressIndicators is the count of assigned tags flagged as distress.
type Tags struct {
	PropertyID         int64
	TagIDs             []int64
	DistressIndicators int
}

// NewTags validates and creates a tag change.
func NewTags(propertyID int64, tagIDs []int64, distress int) (Tags, error) {
	if propertyID <= 0 {
		return Tags{}, fmt.Errorf("property id is required")
	}
	if distress < 0 {
		return Tags{}, fmt.Errorf("distress count must not be negative")
	}
	if distress > len(tagIDs) {
		return Tags{}, fmt.Errorf("distress count %d exceeds tag count %d", distress, len(tagIDs))
	}
	return Tags{
		PropertyID:         propertyID,
		TagIDs:             append([]int64(nil), tagIDs...),
		DistressIndicators: distress,
	}, nil
}
