package services

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

func TestGetHistoryNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)

	tick()
	if err := env.cutSheets.UpdateProcessorNotes(env.processorCtx(), sheet.ID, "first"); err != nil {
		t.Fatalf("notes: %v", err)
	}
	tick()
	if err := env.cutSheets.UpdateHangingWeight(env.processorCtx(), sheet.ID, 700); err != nil {
		t.Fatalf("weight: %v", err)
	}

	entries, err := env.history.GetHistory(env.producerCtx(), sheet.ID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
			t.Fatalf("entries not newest-first at index %d", i)
		}
	}
	if entries[len(entries)-1].ChangeCategory != types.CategoryInitialCreation {
		t.Fatalf("oldest entry category = %q", entries[len(entries)-1].ChangeCategory)
	}
}

func TestGetHistoryFilters(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)

	tick()
	if err := env.cutSheets.RemoveCut(env.processorCtx(), sheet.ID, "ribeye", "Ribeye", ""); err != nil {
		t.Fatalf("remove: %v", err)
	}
	tick()
	if err := env.cutSheets.SubmitCutSheet(env.producerCtx(), sheet.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}

	byCategory, err := env.history.GetHistoryByCategory(env.producerCtx(), sheet.ID, types.CategoryCutRemoved)
	if err != nil {
		t.Fatalf("by category: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].ChangeCategory != types.CategoryCutRemoved {
		t.Fatalf("category filter returned %d entries", len(byCategory))
	}

	byRole, err := env.history.GetHistoryByRole(env.producerCtx(), sheet.ID, types.OrgTypeProducer)
	if err != nil {
		t.Fatalf("by role: %v", err)
	}
	if len(byRole) != 2 {
		t.Fatalf("producer entries = %d, want 2 (creation + submit)", len(byRole))
	}
	for _, e := range byRole {
		if e.ChangedByRole != types.OrgTypeProducer {
			t.Fatalf("role filter leaked %q entry", e.ChangedByRole)
		}
	}

	if _, err := env.history.GetHistoryByRole(env.producerCtx(), sheet.ID, "auditor"); !apierr.IsCode(err, apierr.CodeInvalidArgument) {
		t.Fatalf("unknown role should be invalid_argument, got %v", err)
	}
}

func TestGetOriginalStateSurvivesEdits(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)

	tick()
	if err := env.cutSheets.UpdateHangingWeight(env.processorCtx(), sheet.ID, 720); err != nil {
		t.Fatalf("weight: %v", err)
	}

	original, err := env.history.GetOriginalState(env.producerCtx(), sheet.ID)
	if err != nil {
		t.Fatalf("original state: %v", err)
	}
	var snapshot map[string]any
	if err := json.Unmarshal(original.NewState, &snapshot); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snapshot["hanging_weight_lbs"] != 650.0 {
		t.Fatalf("original weight = %v, want the as-created value", snapshot["hanging_weight_lbs"])
	}
}

func TestGenerateDiffForWeightChange(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)

	tick()
	if err := env.cutSheets.UpdateHangingWeight(env.processorCtx(), sheet.ID, 675.5); err != nil {
		t.Fatalf("weight: %v", err)
	}
	entryID := env.entries(t, sheet.ID)[0].ID

	view, err := env.history.GenerateDiff(env.producerCtx(), sheet.ID, entryID)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	if len(view.Diffs) != 1 {
		t.Fatalf("expected 1 field diff, got %d", len(view.Diffs))
	}
	d := view.Diffs[0]
	if d.Field != "hanging_weight_lbs" {
		t.Fatalf("diff field = %q", d.Field)
	}
	if d.Label != "Hanging Weight (lbs)" {
		t.Fatalf("diff label = %q", d.Label)
	}
	if d.Before == nil || *d.Before != "650" {
		t.Fatalf("diff before = %v", d.Before)
	}
	if d.After == nil || *d.After != "675.5" {
		t.Fatalf("diff after = %v", d.After)
	}

	if _, err := env.history.GenerateDiff(env.producerCtx(), sheet.ID, uuid.New()); !apierr.IsCode(err, apierr.CodeNotFound) {
		t.Fatalf("unknown entry should be not_found, got %v", err)
	}
}

func TestHistoryAccessRequiresParty(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)

	strangerOrg := &types.Organization{ID: uuid.New(), Name: "Third Wheel Farms", Type: types.OrgTypeProducer}
	if err := env.db.Create(strangerOrg).Error; err != nil {
		t.Fatalf("seed stranger org: %v", err)
	}
	strangerCtx := env.ctxFor(uuid.New(), strangerOrg.ID, types.OrgTypeProducer)

	if _, err := env.history.GetHistory(strangerCtx, sheet.ID); !apierr.IsCode(err, apierr.CodeNotAuthorized) {
		t.Fatalf("stranger should be rejected, got %v", err)
	}
}
