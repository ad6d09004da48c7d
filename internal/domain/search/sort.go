package search

import "fmt"

// Sort orders. Descending is the default.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// SortFields are the accepted sort fields. The tags field sorts on the
// tag count rather than the tag ids.
var SortFields = []string{"tags", "campaigns", "last_contact", "created_date", "last_modified", "_score"}

// Sort is a validated sort choice.
type Sort struct {
	field string
	order string
}

// NewSort validates and creates a Sort. An empty order defaults to desc.
func NewSort(field, order string) (Sort, error) {
	if !validSortField(field) {
		return Sort{}, fmt.Errorf("unknown sort field %q", field)
	}
	switch order {
	case "":
		order = OrderDesc
	case OrderAsc, OrderDesc:
	default:
		return Sort{}, fmt.Errorf("unknown sort order %q", order)
	}
	return Sort{field: field, order: order}, nil
}

// Field returns the sort field.
func (s Sort) Field() string { return s.field }

// Order returns the sort order.
func (s Sort) Order() string { return s.order }

// IsZero reports whether no sort was set.
func (s Sort) IsZero() bool { return s.field == "" }

func validSortField(field string) bool {
	for _, f := range SortFields {
		if field == f {
			return true
		}
	}
	return false
}
