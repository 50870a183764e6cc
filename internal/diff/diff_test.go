package diff

import "testing"

func findDiff(t *testing.T, diffs []FieldDiff, field string) FieldDiff {
	t.Helper()
	for _, d := range diffs {
		if d.Field == field {
			return d
		}
	}
	t.Fatalf("no diff for field %q in %+v", field, diffs)
	return FieldDiff{}
}

func TestDiffDetectsChangedField(t *testing.T) {
	prev := map[string]any{"hanging_weight_lbs": 650.0}
	next := map[string]any{"hanging_weight_lbs": 675.5}
	diffs := Diff(prev, next)
	if len(diffs) != 1 {
		t.Fatalf("expected 1 diff, got %d", len(diffs))
	}
	d := diffs[0]
	if d.Label != "Hanging Weight (lbs)" {
		t.Fatalf("wrong label %q", d.Label)
	}
	if d.Before == nil || *d.Before != "650" {
		t.Fatalf("wrong before %v", d.Before)
	}
	if d.After == nil || *d.After != "675.5" {
		t.Fatalf("wrong after %v", d.After)
	}
}

func TestDiffIgnoresEqualValues(t *testing.T) {
	prev := map[string]any{
		"status": "draft",
		"items":  []any{map[string]any{"cut_id": "ribeye", "cut_name": "Ribeye"}},
	}
	next := map[string]any{
		"status": "draft",
		"items":  []any{map[string]any{"cut_name": "Ribeye", "cut_id": "ribeye"}},
	}
	if diffs := Diff(prev, next); len(diffs) != 0 {
		t.Fatalf("expected no diffs for structurally equal snapshots, got %+v", diffs)
	}
}

func TestDiffKeyOnlyOnOneSide(t *testing.T) {
	diffs := Diff(map[string]any{}, map[string]any{"processor_notes": "call before delivery"})
	d := findDiff(t, diffs, "processor_notes")
	if d.Before != nil {
		t.Fatalf("expected nil before, got %q", *d.Before)
	}
	if d.After == nil || *d.After != "call before delivery" {
		t.Fatalf("wrong after %v", d.After)
	}
}

func TestDiffNullEqualsAbsent(t *testing.T) {
	// A key present with a JSON null on one side and missing on the other is
	// not a change.
	if diffs := Diff(map[string]any{"thickness": nil}, map[string]any{}); len(diffs) != 0 {
		t.Fatalf("null-vs-absent should not diff, got %+v", diffs)
	}
	if diffs := Diff(map[string]any{}, map[string]any{"thickness": nil}); len(diffs) != 0 {
		t.Fatalf("absent-vs-null should not diff, got %+v", diffs)
	}
}

func TestDiffSortedByField(t *testing.T) {
	prev := map[string]any{"b_field": 1.0, "a_field": 1.0}
	next := map[string]any{"b_field": 2.0, "a_field": 2.0}
	diffs := Diff(prev, next)
	if len(diffs) != 2 {
		t.Fatalf("expected 2 diffs, got %d", len(diffs))
	}
	if diffs[0].Field != "a_field" || diffs[1].Field != "b_field" {
		t.Fatalf("diffs not sorted: %+v", diffs)
	}
}

func TestDiffJSONToleratesNullAndGarbage(t *testing.T) {
	diffs := DiffJSON(nil, []byte(`{"status":"submitted"}`))
	d := findDiff(t, diffs, "status")
	if d.After == nil || *d.After != "submitted" {
		t.Fatalf("wrong after %v", d.After)
	}
	if diffs := DiffJSON([]byte(`not json`), []byte(`also not json`)); len(diffs) != 0 {
		t.Fatalf("malformed snapshots should produce no diffs, got %+v", diffs)
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		name string
		in   any
		want string
	}{
		{name: "nil", in: nil, want: ""},
		{name: "bool_true", in: true, want: "Yes"},
		{name: "bool_false", in: false, want: "No"},
		{name: "string", in: "sliced", want: "sliced"},
		{name: "whole_float", in: 650.0, want: "650"},
		{name: "fractional_float", in: 1.25, want: "1.25"},
		{name: "primitive_array", in: []any{"ribeye", "brisket"}, want: "ribeye, brisket"},
		{
			name: "object_array_cut_name",
			in:   []any{map[string]any{"cut_id": "ribeye", "cut_name": "Ribeye"}},
			want: "Ribeye",
		},
		{
			name: "object_array_name_fallback",
			in:   []any{map[string]any{"name": "Maple Breakfast"}},
			want: "Maple Breakfast",
		},
		{
			name: "object_pairs_sorted",
			in:   map[string]any{"pounds": 25.0, "flavor": "sage"},
			want: "Flavor: sage, Pounds: 25",
		},
		{name: "object_skips_nils", in: map[string]any{"thickness": nil}, want: "Empty"},
		{name: "empty_object", in: map[string]any{}, want: "Empty"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatValue(tc.in); got != tc.want {
				t.Fatalf("FormatValue(%v)=%q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestLabelFallback(t *testing.T) {
	if got := Label("hanging_weight_lbs"); got != "Hanging Weight (lbs)" {
		t.Fatalf("known label wrong: %q", got)
	}
	if got := Label("custom_smoker_setting"); got != "Custom Smoker Setting" {
		t.Fatalf("fallback label wrong: %q", got)
	}
}
