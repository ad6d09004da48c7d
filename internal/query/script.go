package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Assignment sets one document field to a new value in a painless script.
type Assignment struct {
	Field string
	Value any
}

// Script renders assignments into a painless source. Strings are quoted
// and escaped, times rendered as quoted dates, slices as list literals.
func Script(assignments []Assignment) (string, error) {
	statements := make([]string, 0, len(assignments))
	for _, a := range assignments {
		if !validFieldName(a.Field) {
			return "", fmt.Errorf("invalid field name %q", a.Field)
		}
		rendered, err := renderValue(a.Value)
		if err != nil {
			return "", fmt.Errorf("field %s: %w", a.Field, err)
		}
		statements = append(statements, "ctx._source."+a.Field+"="+rendered)
	}
	return strings.Join(statements, ";") + ";", nil
}

// ScriptFromFields renders a field map in field-name order, so the same
// change always produces the same script.
func ScriptFromFields(fields map[string]any) (string, error) {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	assignments := make([]Assignment, 0, len(names))
	for _, name := range names {
		assignments = append(assignments, Assignment{Field: name, Value: fields[name]})
	}
	return Script(assignments)
}

func renderValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "null", nil
	case string:
		return quote(val), nil
	case bool:
		if val {
			return "true", nil
		}
		return "false", nil
	case int:
		return strconv.Itoa(val), nil
	case int32:
		return strconv.FormatInt(int64(val), 10), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32), nil
	case time.Time:
		return quote(val.UTC().Format("2006-01-02")), nil
	case []int64:
		parts := make([]string, len(val))
		for i, item := range val {
			parts[i] = strconv.FormatInt(item, 10)
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	case []any:
		parts := make([]string, len(val))
		for i, item := range val {
			rendered, err := renderValue(item)
			if err != nil {
				return "", err
			}
			parts[i] = rendered
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func quote(s string) string {
	escaped := strings.ReplaceAll(s, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return "'" + escaped + "'"
}

func validFieldName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// UpdateByQueryBody builds the update-by-query body: an id lookup on
// idField plus the painless script. A single id compiles to a term
// clause, several to terms.
func UpdateByQueryBody(idField string, ids []int64, scriptSource string) map[string]any {
	var lookup map[string]any
	if len(ids) == 1 {
		lookup = term(idField, ids[0])
	} else {
		lookup = terms(idField, ids)
	}
	return map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"must": []any{lookup},
			},
		},
		"script": map[string]any{
			"source": scriptSource,
			"lang":   "painless",
		},
	}
}
