package kind

import (
	"fmt"

	"github.com/parcelworks/stacker/internal/domain"
)

// Kind is a stacker document kind. The stacker keeps one index per kind,
// both built from the same mapping; the property index carries prospect
// attributes grouped into arrays, the prospect index keeps them scalar.
type Kind string

// Document kind constants.
const (
	Property Kind = "property"
	Prospect Kind = "prospect"
)

// Parse validates a raw kind value.
func Parse(s string) (Kind, error) {
	k := Kind(s)
	if !k.IsValid() {
		return "", fmt.Errorf("%w %q", domain.ErrUnknownKind, s)
	}
	return k, nil
}

// IsValid checks if the kind is one of the supported values.
func (k Kind) IsValid() bool {
	return k == Property || k == Prospect
}

func (k Kind) String() string { return string(k) }

// IDField returns the document field holding the kind's own id.
// Updates and id scans key on this field.
func (k Kind) IDField() string {
	if k == Property {
		return "property_id"
	}
	return "prospect_id"
}

// IndexBase returns the index name before the deployment prefix.
func (k Kind) IndexBase() string {
	if k == Property {
		return "stacker-property"
	}
	return "stacker-prospect"
}

// Index returns the full index name under the given deployment prefix.
func (k Kind) Index(prefix string) string {
	if prefix == "" {
		return k.IndexBase()
	}
	return prefix + "-" + k.IndexBase()
}

// All returns both kinds, property first.
func All() []Kind {
	return []Kind{Property, Prospect}
}
