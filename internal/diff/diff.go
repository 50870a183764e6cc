package diff

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FieldDiff is one changed field between two audit snapshots. Before/After
// are display-formatted; nil means the value was absent on that side.
type FieldDiff struct {
	Field  string  `json:"field"`
	Label  string  `json:"label"`
	Before *string `json:"before"`
	After  *string `json:"after"`
}

// Diff compares two audit snapshots field by field and reports one entry per
// key whose value differs. Equality is structural (canonical JSON), so key
// order and formatting inside nested values never produce false positives.
func Diff(previous, next map[string]any) []FieldDiff {
	keys := make([]string, 0, len(previous)+len(next))
	seen := make(map[string]bool, len(previous)+len(next))
	for k := range previous {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	for k := range next {
		if !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	var out []FieldDiff
	for _, k := range keys {
		before, hasBefore := previous[k]
		after, hasAfter := next[k]
		if hasBefore && hasAfter && canonical(before) == canonical(after) {
			continue
		}
		if !hasBefore && !hasAfter {
			continue
		}
		if hasBefore && !hasAfter && before == nil {
			hasBefore = false
		}
		if hasAfter && !hasBefore && after == nil {
			hasAfter = false
		}
		if !hasBefore && !hasAfter {
			continue
		}
		fd := FieldDiff{Field: k, Label: Label(k)}
		if hasBefore && before != nil {
			v := FormatValue(before)
			fd.Before = &v
		}
		if hasAfter && after != nil {
			v := FormatValue(after)
			fd.After = &v
		}
		if fd.Before == nil && fd.After == nil {
			continue
		}
		out = append(out, fd)
	}
	return out
}

// DiffJSON is Diff over raw snapshot bytes as stored in the history table.
// Malformed or null snapshots degrade to empty maps; it never fails.
func DiffJSON(previous, next []byte) []FieldDiff {
	return Diff(parseSnapshot(previous), parseSnapshot(next))
}

func parseSnapshot(raw []byte) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

// canonical renders a value for structural comparison. encoding/json sorts
// map keys, which makes the output order-insensitive.
func canonical(v any) string {
	if v == nil {
		return "null"
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("!%v", v)
	}
	return string(b)
}

// FormatValue renders any snapshot value for display. Total: every input
// produces a string, unknown shapes fall back to a raw structural dump.
func FormatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case bool:
		if val {
			return "Yes"
		}
		return "No"
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	case []any:
		return formatArray(val)
	case map[string]any:
		return formatObject(val)
	default:
		return structuralDump(v)
	}
}

func formatArray(items []any) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		if obj, ok := item.(map[string]any); ok {
			parts = append(parts, formatArrayElement(obj))
			continue
		}
		parts = append(parts, FormatValue(item))
	}
	return strings.Join(parts, ", ")
}

// formatArrayElement prefers a human-readable name for object elements,
// falling back to the full structural dump.
func formatArrayElement(obj map[string]any) string {
	if name, ok := obj["cut_name"].(string); ok && name != "" {
		return name
	}
	if name, ok := obj["name"].(string); ok && name != "" {
		return name
	}
	return structuralDump(obj)
}

func formatObject(obj map[string]any) string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if obj[k] == nil {
			continue
		}
		parts = append(parts, Label(k)+": "+FormatValue(obj[k]))
	}
	if len(parts) == 0 {
		return "Empty"
	}
	return strings.Join(parts, ", ")
}

func structuralDump(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
