package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

func TestCreateCutSheetWritesCreationEntry(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)

	if sheet.Status != types.CutSheetStatusDraft {
		t.Fatalf("new sheet status = %q, want draft", sheet.Status)
	}
	entries := env.entries(t, sheet.ID)
	if len(entries) != 1 {
		t.Fatalf("expected exactly one history entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.ChangeCategory != types.CategoryInitialCreation {
		t.Fatalf("creation entry category = %q", entry.ChangeCategory)
	}
	if entry.ChangeType != types.ChangeTypeCreated {
		t.Fatalf("creation entry type = %q", entry.ChangeType)
	}
	if entry.PreviousState != nil {
		t.Fatalf("creation entry must have null previous state, got %s", entry.PreviousState)
	}
	var snapshot map[string]any
	if err := json.Unmarshal(entry.NewState, &snapshot); err != nil {
		t.Fatalf("unmarshal creation snapshot: %v", err)
	}
	if snapshot["animal_type"] != "beef" {
		t.Fatalf("snapshot animal_type = %v", snapshot["animal_type"])
	}
	items, ok := snapshot["items"].([]any)
	if !ok || len(items) != 2 {
		t.Fatalf("snapshot items = %v", snapshot["items"])
	}
	if entry.ChangedByRole != types.OrgTypeProducer {
		t.Fatalf("creation entry role = %q", entry.ChangedByRole)
	}
}

func TestCreateCutSheetRejectsUnknownCut(t *testing.T) {
	env := newTestEnv(t)
	state := beefState()
	state.Items = append(state.Items, CutSheetItemInput{CutID: "unicorn_steak", CutName: "Unicorn"})
	_, err := env.cutSheets.CreateCutSheet(env.producerCtx(), env.order.ID, state)
	if !apierr.IsCode(err, apierr.CodeInvalidArgument) {
		t.Fatalf("expected invalid_argument, got %v", err)
	}
}

func TestCreateCutSheetRequiresProducer(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.cutSheets.CreateCutSheet(env.processorCtx(), env.order.ID, beefState())
	if !apierr.IsCode(err, apierr.CodeNotAuthorized) {
		t.Fatalf("expected not_authorized, got %v", err)
	}
}

func TestRemoveCutIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)
	ctx := env.processorCtx()

	tick()
	if err := env.cutSheets.RemoveCut(ctx, sheet.ID, "ribeye", "Ribeye", "bad marbling"); err != nil {
		t.Fatalf("first remove: %v", err)
	}
	entriesAfterFirst := env.entries(t, sheet.ID)
	if len(entriesAfterFirst) != 2 {
		t.Fatalf("expected 2 history entries after remove, got %d", len(entriesAfterFirst))
	}
	if entriesAfterFirst[0].ChangeCategory != types.CategoryCutRemoved {
		t.Fatalf("latest entry category = %q", entriesAfterFirst[0].ChangeCategory)
	}
	if entriesAfterFirst[0].AffectedCutID == nil || *entriesAfterFirst[0].AffectedCutID != "ribeye" {
		t.Fatalf("affected cut = %v", entriesAfterFirst[0].AffectedCutID)
	}

	// Second removal of the same cut succeeds silently and appends nothing.
	if err := env.cutSheets.RemoveCut(ctx, sheet.ID, "ribeye", "Ribeye", "again"); err != nil {
		t.Fatalf("second remove should be silent success, got %v", err)
	}
	if got := len(env.entries(t, sheet.ID)); got != 2 {
		t.Fatalf("idempotent remove must not append history, got %d entries", got)
	}
}

func TestRestoreCut(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)
	ctx := env.processorCtx()

	// Restoring a cut that is not removed is a silent no-op.
	if err := env.cutSheets.RestoreCut(ctx, sheet.ID, "ribeye"); err != nil {
		t.Fatalf("restore of not-removed cut: %v", err)
	}
	if got := len(env.entries(t, sheet.ID)); got != 1 {
		t.Fatalf("no-op restore must not append history, got %d entries", got)
	}

	tick()
	if err := env.cutSheets.RemoveCut(ctx, sheet.ID, "ribeye", "Ribeye", ""); err != nil {
		t.Fatalf("remove: %v", err)
	}
	tick()
	if err := env.cutSheets.RestoreCut(ctx, sheet.ID, "ribeye"); err != nil {
		t.Fatalf("restore: %v", err)
	}
	removed, err := env.removedRepo.ListBySheet(context.Background(), nil, sheet.ID)
	if err != nil {
		t.Fatalf("list removed: %v", err)
	}
	if len(removed) != 0 {
		t.Fatalf("removed overlay should be empty after restore, got %d rows", len(removed))
	}
	// The producer's original item rows are untouched throughout.
	items, err := env.itemRepo.ListBySheet(context.Background(), nil, sheet.ID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("producer items must survive remove/restore, got %d", len(items))
	}
}

func TestAddCutConflicts(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)
	ctx := env.processorCtx()

	tick()
	input := AddCutInput{CutID: "flank_steak", CutName: "Flank Steak"}
	if err := env.cutSheets.AddCut(ctx, sheet.ID, input); err != nil {
		t.Fatalf("add cut: %v", err)
	}
	err := env.cutSheets.AddCut(ctx, sheet.ID, input)
	if !apierr.IsCode(err, apierr.CodeAlreadyAdded) {
		t.Fatalf("duplicate add should conflict, got %v", err)
	}
	if got := len(env.entries(t, sheet.ID)); got != 2 {
		t.Fatalf("failed add must not append history, got %d entries", got)
	}
}

func TestUpdateCutParametersMergesAndAudits(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)
	ctx := env.processorCtx()

	thickness := "1in"
	tick()
	if err := env.cutSheets.UpdateCutParameters(ctx, sheet.ID, "ribeye", CutParameterUpdates{Thickness: &thickness}); err != nil {
		t.Fatalf("first update: %v", err)
	}
	pieces := 4
	tick()
	if err := env.cutSheets.UpdateCutParameters(ctx, sheet.ID, "ribeye", CutParameterUpdates{PiecesPerPackage: &pieces}); err != nil {
		t.Fatalf("second update: %v", err)
	}

	view, err := env.cutSheets.GetCutSheet(ctx, sheet.ID)
	if err != nil {
		t.Fatalf("get sheet: %v", err)
	}
	mod, ok := view.ProcessorModifications["ribeye"]
	if !ok {
		t.Fatal("no modification row for ribeye")
	}
	// The second patch must not clobber the first: merges are field-wise.
	if mod.Thickness == nil || *mod.Thickness != "1in" {
		t.Fatalf("thickness lost after second patch: %v", mod.Thickness)
	}
	if mod.PiecesPerPackage == nil || *mod.PiecesPerPackage != 4 {
		t.Fatalf("pieces = %v", mod.PiecesPerPackage)
	}

	entries := env.entries(t, sheet.ID)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	latest := entries[0]
	if latest.ChangeCategory != types.CategoryCutModified {
		t.Fatalf("latest category = %q", latest.ChangeCategory)
	}
	var prev map[string]map[string]map[string]any
	if err := json.Unmarshal(latest.PreviousState, &prev); err != nil {
		t.Fatalf("unmarshal previous state: %v", err)
	}
	if prev["processor_modifications"]["ribeye"]["thickness"] != "1in" {
		t.Fatalf("previous state missing first patch: %v", prev)
	}
}

func TestUpdateCutParametersUnknownCut(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)
	note := "extra lean"
	err := env.cutSheets.UpdateCutParameters(env.processorCtx(), sheet.ID, "unicorn_steak", CutParameterUpdates{Note: &note})
	if !apierr.IsCode(err, apierr.CodeInvalidArgument) {
		t.Fatalf("expected invalid_argument, got %v", err)
	}
}

func TestProcessorNotesAndHangingWeight(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)
	ctx := env.processorCtx()

	tick()
	if err := env.cutSheets.UpdateProcessorNotes(ctx, sheet.ID, "call before delivery"); err != nil {
		t.Fatalf("update notes: %v", err)
	}
	tick()
	if err := env.cutSheets.UpdateHangingWeight(ctx, sheet.ID, 712.5); err != nil {
		t.Fatalf("update weight: %v", err)
	}

	entries := env.entries(t, sheet.ID)
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ChangeCategory != types.CategoryWeightEntered {
		t.Fatalf("latest category = %q", entries[0].ChangeCategory)
	}
	if entries[1].ChangeCategory != types.CategoryNotesUpdated {
		t.Fatalf("second category = %q", entries[1].ChangeCategory)
	}
	var newState map[string]any
	if err := json.Unmarshal(entries[0].NewState, &newState); err != nil {
		t.Fatalf("unmarshal new state: %v", err)
	}
	if newState["hanging_weight_lbs"] != 712.5 {
		t.Fatalf("weight snapshot = %v", newState["hanging_weight_lbs"])
	}
	var prevState map[string]any
	if err := json.Unmarshal(entries[0].PreviousState, &prevState); err != nil {
		t.Fatalf("unmarshal previous state: %v", err)
	}
	if prevState["hanging_weight_lbs"] != 650.0 {
		t.Fatalf("previous weight snapshot = %v", prevState["hanging_weight_lbs"])
	}
}

func TestHangingWeightValidatedAgainstConfig(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)

	minW := 400.0
	maxW := 900.0
	if err := env.configs.UpsertConfig(env.processorCtx(), ConfigPatch{
		MinHangingWeightLbs: &minW,
		MaxHangingWeightLbs: &maxW,
	}); err != nil {
		t.Fatalf("upsert config: %v", err)
	}

	if err := env.cutSheets.UpdateHangingWeight(env.processorCtx(), sheet.ID, 350); !apierr.IsCode(err, apierr.CodeInvalidArgument) {
		t.Fatalf("below-minimum weight should be rejected, got %v", err)
	}
	if err := env.cutSheets.UpdateHangingWeight(env.processorCtx(), sheet.ID, 950); !apierr.IsCode(err, apierr.CodeInvalidArgument) {
		t.Fatalf("above-maximum weight should be rejected, got %v", err)
	}
	if err := env.cutSheets.UpdateHangingWeight(env.processorCtx(), sheet.ID, 700); err != nil {
		t.Fatalf("in-range weight: %v", err)
	}
}

func TestSubmitCutSheet(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)
	ctx := env.producerCtx()

	tick()
	if err := env.cutSheets.SubmitCutSheet(ctx, sheet.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	reloaded, err := env.sheetRepo.GetByID(context.Background(), nil, sheet.ID)
	if err != nil || reloaded == nil {
		t.Fatalf("reload sheet: %v", err)
	}
	if reloaded.Status != types.CutSheetStatusSubmitted {
		t.Fatalf("status = %q, want submitted", reloaded.Status)
	}
	err = env.cutSheets.SubmitCutSheet(ctx, sheet.ID)
	if !apierr.IsCode(err, apierr.CodeAlreadyExists) {
		t.Fatalf("resubmission should conflict, got %v", err)
	}
	entries := env.entries(t, sheet.ID)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ChangeType != types.ChangeTypeStatusChanged {
		t.Fatalf("submit entry type = %q", entries[0].ChangeType)
	}
}

func TestReplaceItemsLockedAfterSubmission(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)
	ctx := env.producerCtx()

	if err := env.cutSheets.SubmitCutSheet(ctx, sheet.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	err := env.cutSheets.ReplaceItems(ctx, sheet.ID, []CutSheetItemInput{{CutID: "ribeye", CutName: "Ribeye"}})
	if !apierr.IsCode(err, apierr.CodeInvalidArgument) {
		t.Fatalf("post-submission edit should be rejected, got %v", err)
	}
}

func TestOverlayOpsRejectProducer(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)
	ctx := env.producerCtx()

	if err := env.cutSheets.RemoveCut(ctx, sheet.ID, "ribeye", "Ribeye", ""); !apierr.IsCode(err, apierr.CodeNotAuthorized) {
		t.Fatalf("producer remove should be rejected, got %v", err)
	}
	if err := env.cutSheets.UpdateProcessorNotes(ctx, sheet.ID, "hi"); !apierr.IsCode(err, apierr.CodeNotAuthorized) {
		t.Fatalf("producer notes update should be rejected, got %v", err)
	}
}

func TestTwoPartyLifecycleHistory(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)

	tick()
	if err := env.cutSheets.SubmitCutSheet(env.producerCtx(), sheet.ID); err != nil {
		t.Fatalf("submit: %v", err)
	}
	tick()
	if err := env.cutSheets.RemoveCut(env.processorCtx(), sheet.ID, "brisket_whole", "Whole Brisket", "freezer space"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	tick()
	thickness := "2in"
	if err := env.cutSheets.UpdateCutParameters(env.processorCtx(), sheet.ID, "ribeye", CutParameterUpdates{Thickness: &thickness}); err != nil {
		t.Fatalf("modify: %v", err)
	}

	summary, err := env.history.GetHistorySummary(env.producerCtx(), sheet.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalChanges != 4 {
		t.Fatalf("total changes = %d, want 4", summary.TotalChanges)
	}
	if summary.ProducerChanges != 2 {
		t.Fatalf("producer changes = %d, want 2", summary.ProducerChanges)
	}
	if summary.ProcessorChanges != 2 {
		t.Fatalf("processor changes = %d, want 2", summary.ProcessorChanges)
	}
	if summary.LastModifiedBy != types.OrgTypeProcessor {
		t.Fatalf("last modified by = %q", summary.LastModifiedBy)
	}

	entries := env.entries(t, sheet.ID)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	// Newest first.
	if entries[0].ChangeCategory != types.CategoryCutModified || entries[3].ChangeCategory != types.CategoryInitialCreation {
		t.Fatalf("unexpected ordering: first=%q last=%q", entries[0].ChangeCategory, entries[3].ChangeCategory)
	}
}

func TestGetCutSheetRequiresParty(t *testing.T) {
	env := newTestEnv(t)
	sheet := env.mustCreateSheet(t)

	if _, err := env.cutSheets.GetCutSheet(context.Background(), sheet.ID); !apierr.IsCode(err, apierr.CodeNotAuthenticated) {
		t.Fatal("anonymous read should be rejected")
	}
	if _, err := env.cutSheets.GetCutSheet(env.processorCtx(), sheet.ID); err != nil {
		t.Fatalf("processor read: %v", err)
	}
	if _, err := env.cutSheets.GetCutSheet(env.producerCtx(), sheet.ID); err != nil {
		t.Fatalf("producer read: %v", err)
	}
}
