package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/requestdata"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

// Processor-side overlay operations. Each one writes its primary row first,
// stamps the sheet's last-modified columns, then appends a ledger entry with
// a narrow before/after snapshot of just the overlay it touched.

func (cs *cutSheetService) UpdateCutParameters(ctx context.Context, sheetID uuid.UUID, cutID string, updates CutParameterUpdates) error {
	sheet, err := cs.mustGetSheet(ctx, sheetID)
	if err != nil {
		return err
	}
	rd, err := cs.requireAssignedProcessor(ctx, sheet)
	if err != nil {
		return err
	}
	if err := cs.requireCutOnSheet(ctx, sheet, cutID); err != nil {
		return err
	}

	existing, err := cs.modRepo.GetBySheetAndCut(ctx, nil, sheetID, cutID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("load cut modification: %w", err))
	}

	previous := map[string]any{"processor_modifications": modificationMap(existing)}

	now := time.Now().UTC()
	merged := existing
	if merged == nil {
		merged = &types.CutSheetModification{
			ID:         uuid.New(),
			CutSheetID: sheetID,
			CutID:      cutID,
		}
	}
	if updates.Thickness != nil {
		merged.Thickness = updates.Thickness
	}
	if updates.WeightLbs != nil {
		merged.WeightLbs = updates.WeightLbs
	}
	if updates.PiecesPerPackage != nil {
		merged.PiecesPerPackage = updates.PiecesPerPackage
	}
	if updates.ProcessingStyle != nil {
		merged.ProcessingStyle = updates.ProcessingStyle
	}
	if updates.Note != nil {
		merged.Note = updates.Note
	}
	merged.ModifiedAt = now

	if existing == nil {
		if _, err := cs.modRepo.Create(ctx, nil, merged); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				// Another processor user created the row between our read
				// and write. Last write wins on the contested fields.
				return cs.UpdateCutParameters(ctx, sheetID, cutID, updates)
			}
			return apierr.Persistence(fmt.Errorf("create cut modification: %w", err))
		}
	} else {
		fields := map[string]interface{}{
			"thickness":          merged.Thickness,
			"weight_lbs":         merged.WeightLbs,
			"pieces_per_package": merged.PiecesPerPackage,
			"processing_style":   merged.ProcessingStyle,
			"note":               merged.Note,
			"modified_at":        merged.ModifiedAt,
		}
		if err := cs.modRepo.UpdateFields(ctx, nil, merged.ID, fields); err != nil {
			return apierr.Persistence(fmt.Errorf("update cut modification: %w", err))
		}
	}
	cs.stampLastModified(ctx, sheetID, rd)

	cutName := cs.cutDisplayName(ctx, sheet, cutID)
	cs.audit.record(ctx, auditRecord{
		Sheet:         sheet,
		Actor:         rd,
		ChangeType:    types.ChangeTypeUpdated,
		Category:      types.CategoryCutModified,
		Summary:       fmt.Sprintf("Modified %s", cutName),
		Previous:      previous,
		New:           map[string]any{"processor_modifications": modificationMap(merged)},
		ChangedFields: []string{"processor_modifications"},
		AffectedCutID: &cutID,
	})
	return nil
}

// RemoveCut is idempotent: removing an already-removed cut succeeds silently
// and leaves no ledger entry.
func (cs *cutSheetService) RemoveCut(ctx context.Context, sheetID uuid.UUID, cutID, cutName, reason string) error {
	sheet, err := cs.mustGetSheet(ctx, sheetID)
	if err != nil {
		return err
	}
	rd, err := cs.requireAssignedProcessor(ctx, sheet)
	if err != nil {
		return err
	}

	existing, err := cs.removedRepo.GetBySheetAndCut(ctx, nil, sheetID, cutID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("load removed cut: %w", err))
	}
	if existing != nil {
		return nil
	}

	before, err := cs.removedRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("list removed cuts: %w", err))
	}

	row := &types.CutSheetRemovedCut{
		ID:         uuid.New(),
		CutSheetID: sheetID,
		CutID:      cutID,
		CutName:    cutName,
		Reason:     reason,
		RemovedAt:  time.Now().UTC(),
	}
	if _, err := cs.removedRepo.Create(ctx, nil, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return apierr.Persistence(fmt.Errorf("create removed cut: %w", err))
	}
	cs.stampLastModified(ctx, sheetID, rd)

	summary := fmt.Sprintf("Removed %s", cutName)
	if reason != "" {
		summary = fmt.Sprintf("Removed %s (%s)", cutName, reason)
	}
	cs.audit.record(ctx, auditRecord{
		Sheet:         sheet,
		Actor:         rd,
		ChangeType:    types.ChangeTypeUpdated,
		Category:      types.CategoryCutRemoved,
		Summary:       summary,
		Previous:      map[string]any{"removed_cuts": removedCutList(before)},
		New:           map[string]any{"removed_cuts": removedCutList(append(before, row))},
		ChangedFields: []string{"removed_cuts"},
		AffectedCutID: &cutID,
	})
	return nil
}

// RestoreCut undoes a removal. Restoring a cut that is not removed succeeds
// silently, mirroring RemoveCut's idempotence. The producer's original item
// rows are never touched.
func (cs *cutSheetService) RestoreCut(ctx context.Context, sheetID uuid.UUID, cutID string) error {
	sheet, err := cs.mustGetSheet(ctx, sheetID)
	if err != nil {
		return err
	}
	rd, err := cs.requireAssignedProcessor(ctx, sheet)
	if err != nil {
		return err
	}

	existing, err := cs.removedRepo.GetBySheetAndCut(ctx, nil, sheetID, cutID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("load removed cut: %w", err))
	}
	if existing == nil {
		return nil
	}

	before, err := cs.removedRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("list removed cuts: %w", err))
	}
	if err := cs.removedRepo.DeleteBySheetAndCut(ctx, nil, sheetID, cutID); err != nil {
		return apierr.Persistence(fmt.Errorf("delete removed cut: %w", err))
	}
	cs.stampLastModified(ctx, sheetID, rd)

	after := make([]*types.CutSheetRemovedCut, 0, len(before))
	for _, r := range before {
		if r.CutID != cutID {
			after = append(after, r)
		}
	}
	cs.audit.record(ctx, auditRecord{
		Sheet:         sheet,
		Actor:         rd,
		ChangeType:    types.ChangeTypeUpdated,
		Category:      types.CategoryCutAdded,
		Summary:       fmt.Sprintf("Restored %s", existing.CutName),
		Previous:      map[string]any{"removed_cuts": removedCutList(before)},
		New:           map[string]any{"removed_cuts": removedCutList(after)},
		ChangedFields: []string{"removed_cuts"},
		AffectedCutID: &cutID,
	})
	return nil
}

// AddCut is not idempotent: adding a cut that is already on the overlay is a
// conflict the caller must see.
func (cs *cutSheetService) AddCut(ctx context.Context, sheetID uuid.UUID, cut AddCutInput) error {
	sheet, err := cs.mustGetSheet(ctx, sheetID)
	if err != nil {
		return err
	}
	rd, err := cs.requireAssignedProcessor(ctx, sheet)
	if err != nil {
		return err
	}
	if cut.CutID == "" || cut.CutName == "" {
		return apierr.InvalidArgument(fmt.Errorf("added cut requires cut id and name"))
	}

	existing, err := cs.addedRepo.GetBySheetAndCut(ctx, nil, sheetID, cut.CutID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("load added cut: %w", err))
	}
	if existing != nil {
		return apierr.AlreadyAdded(fmt.Errorf("cut %s already added to this sheet", cut.CutID))
	}

	before, err := cs.addedRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("list added cuts: %w", err))
	}

	row := &types.CutSheetAddedCut{
		ID:               uuid.New(),
		CutSheetID:       sheetID,
		CutID:            cut.CutID,
		CutName:          cut.CutName,
		PrimalID:         cut.PrimalID,
		Thickness:        cut.Thickness,
		PiecesPerPackage: cut.PiecesPerPackage,
		Note:             cut.Note,
		AddedAt:          time.Now().UTC(),
	}
	if _, err := cs.addedRepo.Create(ctx, nil, row); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apierr.AlreadyAdded(fmt.Errorf("cut %s already added to this sheet", cut.CutID))
		}
		return apierr.Persistence(fmt.Errorf("create added cut: %w", err))
	}
	cs.stampLastModified(ctx, sheetID, rd)

	cs.audit.record(ctx, auditRecord{
		Sheet:         sheet,
		Actor:         rd,
		ChangeType:    types.ChangeTypeUpdated,
		Category:      types.CategoryCutAdded,
		Summary:       fmt.Sprintf("Added %s", cut.CutName),
		Previous:      map[string]any{"added_cuts": addedCutList(before)},
		New:           map[string]any{"added_cuts": addedCutList(append(before, row))},
		ChangedFields: []string{"added_cuts"},
		AffectedCutID: &row.CutID,
	})
	return nil
}

func (cs *cutSheetService) UpdateProcessorNotes(ctx context.Context, sheetID uuid.UUID, notes string) error {
	sheet, err := cs.mustGetSheet(ctx, sheetID)
	if err != nil {
		return err
	}
	rd, err := cs.requireAssignedProcessor(ctx, sheet)
	if err != nil {
		return err
	}

	previous := map[string]any{"processor_notes": ptrValue(sheet.ProcessorNotes)}
	fields := map[string]interface{}{
		"processor_notes":          notes,
		"last_modified_by_role":    string(rd.OrganizationType),
		"last_modified_by_user_id": rd.UserID,
	}
	if err := cs.sheetRepo.UpdateFields(ctx, nil, sheetID, fields); err != nil {
		return apierr.Persistence(fmt.Errorf("update processor notes: %w", err))
	}

	cs.audit.record(ctx, auditRecord{
		Sheet:         sheet,
		Actor:         rd,
		ChangeType:    types.ChangeTypeUpdated,
		Category:      types.CategoryNotesUpdated,
		Summary:       "Processor notes updated",
		Previous:      previous,
		New:           map[string]any{"processor_notes": notes},
		ChangedFields: []string{"processor_notes"},
	})
	return nil
}

func (cs *cutSheetService) UpdateHangingWeight(ctx context.Context, sheetID uuid.UUID, weight float64) error {
	sheet, err := cs.mustGetSheet(ctx, sheetID)
	if err != nil {
		return err
	}
	rd, err := cs.requireAssignedProcessor(ctx, sheet)
	if err != nil {
		return err
	}
	if weight <= 0 {
		return apierr.InvalidArgument(fmt.Errorf("hanging weight must be positive"))
	}
	config, err := cs.configRepo.GetByOrgID(ctx, nil, *sheet.ProcessorOrgID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("load processor cut config: %w", err))
	}
	if config != nil {
		if config.MinHangingWeightLbs != nil && weight < *config.MinHangingWeightLbs {
			return apierr.InvalidArgument(fmt.Errorf("hanging weight %.1f is below this processor's minimum of %.1f lbs", weight, *config.MinHangingWeightLbs))
		}
		if config.MaxHangingWeightLbs != nil && weight > *config.MaxHangingWeightLbs {
			return apierr.InvalidArgument(fmt.Errorf("hanging weight %.1f is above this processor's maximum of %.1f lbs", weight, *config.MaxHangingWeightLbs))
		}
	}

	previous := map[string]any{"hanging_weight_lbs": ptrValue(sheet.HangingWeightLbs)}
	fields := map[string]interface{}{
		"hanging_weight_lbs":       weight,
		"last_modified_by_role":    string(rd.OrganizationType),
		"last_modified_by_user_id": rd.UserID,
	}
	if err := cs.sheetRepo.UpdateFields(ctx, nil, sheetID, fields); err != nil {
		return apierr.Persistence(fmt.Errorf("update hanging weight: %w", err))
	}

	cs.audit.record(ctx, auditRecord{
		Sheet:         sheet,
		Actor:         rd,
		ChangeType:    types.ChangeTypeUpdated,
		Category:      types.CategoryWeightEntered,
		Summary:       fmt.Sprintf("Hanging weight recorded: %.1f lbs", weight),
		Previous:      previous,
		New:           map[string]any{"hanging_weight_lbs": weight},
		ChangedFields: []string{"hanging_weight_lbs"},
	})
	return nil
}

func (cs *cutSheetService) SubmitCutSheet(ctx context.Context, sheetID uuid.UUID) error {
	sheet, err := cs.mustGetSheet(ctx, sheetID)
	if err != nil {
		return err
	}
	rd, err := requireProducer(ctx, sheet.ProducerOrgID)
	if err != nil {
		return err
	}
	if sheet.IsTemplate {
		return apierr.InvalidArgument(fmt.Errorf("templates cannot be submitted"))
	}
	if sheet.Status == types.CutSheetStatusSubmitted {
		return apierr.AlreadyExists(fmt.Errorf("cut sheet has already been submitted"))
	}

	fields := map[string]interface{}{
		"status":                   types.CutSheetStatusSubmitted,
		"last_modified_by_role":    string(rd.OrganizationType),
		"last_modified_by_user_id": rd.UserID,
	}
	if err := cs.sheetRepo.UpdateFields(ctx, nil, sheetID, fields); err != nil {
		return apierr.Persistence(fmt.Errorf("submit cut sheet: %w", err))
	}

	cs.audit.record(ctx, auditRecord{
		Sheet:         sheet,
		Actor:         rd,
		ChangeType:    types.ChangeTypeStatusChanged,
		Category:      types.CategoryGeneral,
		Summary:       "Cut sheet submitted to processor",
		Previous:      map[string]any{"status": types.CutSheetStatusDraft},
		New:           map[string]any{"status": types.CutSheetStatusSubmitted},
		ChangedFields: []string{"status"},
	})
	return nil
}

func (cs *cutSheetService) ReplaceItems(ctx context.Context, sheetID uuid.UUID, items []CutSheetItemInput) error {
	sheet, err := cs.mustGetSheet(ctx, sheetID)
	if err != nil {
		return err
	}
	rd, err := requireProducer(ctx, sheet.ProducerOrgID)
	if err != nil {
		return err
	}
	if !sheet.IsTemplate && sheet.Status != types.CutSheetStatusDraft {
		return apierr.InvalidArgument(fmt.Errorf("cannot edit cut selections after submission"))
	}
	state := CutSheetState{AnimalType: sheet.AnimalType, Items: items}
	if err := cs.validateState(ctx, &state, sheet.ProcessorOrgID); err != nil {
		return err
	}

	before, err := cs.itemRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("load cut sheet items: %w", err))
	}
	rows := itemRows(sheetID, items)
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cs.itemRepo.DeleteBySheet(ctx, tx, sheetID); err != nil {
			return err
		}
		if _, err := cs.itemRepo.CreateBatch(ctx, tx, rows); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return apierr.Persistence(fmt.Errorf("replace cut sheet items: %w", err))
	}
	cs.stampLastModified(ctx, sheetID, rd)

	cs.audit.record(ctx, auditRecord{
		Sheet:         sheet,
		Actor:         rd,
		ChangeType:    types.ChangeTypeUpdated,
		Category:      types.CategoryGeneral,
		Summary:       fmt.Sprintf("Cut selections updated (%d cuts)", len(rows)),
		Previous:      map[string]any{"items": itemSnapshotList(before)},
		New:           map[string]any{"items": itemInputList(items)},
		ChangedFields: []string{"items"},
	})
	return nil
}

func (cs *cutSheetService) ReplaceSausages(ctx context.Context, sheetID uuid.UUID, sausages []SausageInput) error {
	sheet, err := cs.mustGetSheet(ctx, sheetID)
	if err != nil {
		return err
	}
	rd, err := requireProducer(ctx, sheet.ProducerOrgID)
	if err != nil {
		return err
	}
	if !sheet.IsTemplate && sheet.Status != types.CutSheetStatusDraft {
		return apierr.InvalidArgument(fmt.Errorf("cannot edit sausage orders after submission"))
	}

	before, err := cs.sausageRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("load cut sheet sausages: %w", err))
	}
	rows := sausageRows(sheetID, sausages)
	err = cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := cs.sausageRepo.DeleteBySheet(ctx, tx, sheetID); err != nil {
			return err
		}
		if _, err := cs.sausageRepo.CreateBatch(ctx, tx, rows); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return apierr.Persistence(fmt.Errorf("replace cut sheet sausages: %w", err))
	}
	cs.stampLastModified(ctx, sheetID, rd)

	cs.audit.record(ctx, auditRecord{
		Sheet:         sheet,
		Actor:         rd,
		ChangeType:    types.ChangeTypeUpdated,
		Category:      types.CategoryGeneral,
		Summary:       fmt.Sprintf("Sausage orders updated (%d flavors)", len(rows)),
		Previous:      map[string]any{"sausages": sausageSnapshotList(before)},
		New:           map[string]any{"sausages": sausageInputList(sausages)},
		ChangedFields: []string{"sausages"},
	})
	return nil
}

// stampLastModified records who touched the sheet last. Failure here is
// logged but does not fail the operation: the primary write has already
// landed.
func (cs *cutSheetService) stampLastModified(ctx context.Context, sheetID uuid.UUID, rd *requestdata.RequestData) {
	fields := map[string]interface{}{
		"last_modified_by_role":    string(rd.OrganizationType),
		"last_modified_by_user_id": rd.UserID,
	}
	if err := cs.sheetRepo.UpdateFields(ctx, nil, sheetID, fields); err != nil {
		cs.log.Error("failed to stamp last-modified on cut sheet", "error", err, "cut_sheet_id", sheetID)
	}
}

// requireCutOnSheet accepts cuts the producer selected, cuts the processor
// added, and any cut known to the taxonomy.
func (cs *cutSheetService) requireCutOnSheet(ctx context.Context, sheet *types.CutSheet, cutID string) error {
	if _, ok := cs.tax.FindCut(cutID); ok {
		return nil
	}
	items, err := cs.itemRepo.ListBySheet(ctx, nil, sheet.ID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("load cut sheet items: %w", err))
	}
	for _, it := range items {
		if it.CutID == cutID {
			return nil
		}
	}
	added, err := cs.addedRepo.GetBySheetAndCut(ctx, nil, sheet.ID, cutID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("load added cut: %w", err))
	}
	if added != nil {
		return nil
	}
	return apierr.InvalidArgument(fmt.Errorf("cut %q is not on this sheet", cutID))
}

func (cs *cutSheetService) cutDisplayName(ctx context.Context, sheet *types.CutSheet, cutID string) string {
	if cut, ok := cs.tax.FindCut(cutID); ok {
		return cut.Name
	}
	items, err := cs.itemRepo.ListBySheet(ctx, nil, sheet.ID)
	if err == nil {
		for _, it := range items {
			if it.CutID == cutID {
				return it.CutName
			}
		}
	}
	added, err := cs.addedRepo.GetBySheetAndCut(ctx, nil, sheet.ID, cutID)
	if err == nil && added != nil {
		return added.CutName
	}
	return cutID
}

// Snapshot helpers. Snapshots use the wire shapes the ledger diffs against,
// not the row types, so absent optional fields stay absent.

func modificationMap(mods ...*types.CutSheetModification) map[string]any {
	out := map[string]any{}
	for _, m := range mods {
		if m == nil {
			continue
		}
		entry := map[string]any{}
		if m.Thickness != nil {
			entry["thickness"] = *m.Thickness
		}
		if m.WeightLbs != nil {
			entry["weight_lbs"] = *m.WeightLbs
		}
		if m.PiecesPerPackage != nil {
			entry["pieces_per_package"] = *m.PiecesPerPackage
		}
		if m.ProcessingStyle != nil {
			entry["processing_style"] = *m.ProcessingStyle
		}
		if m.Note != nil {
			entry["note"] = *m.Note
		}
		out[m.CutID] = entry
	}
	return out
}

func removedCutList(rows []*types.CutSheetRemovedCut) []any {
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		entry := map[string]any{
			"cut_id":   r.CutID,
			"cut_name": r.CutName,
		}
		if r.Reason != "" {
			entry["reason"] = r.Reason
		}
		out = append(out, entry)
	}
	return out
}

func addedCutList(rows []*types.CutSheetAddedCut) []any {
	out := make([]any, 0, len(rows))
	for _, r := range rows {
		entry := map[string]any{
			"cut_id":   r.CutID,
			"cut_name": r.CutName,
		}
		if r.Thickness != nil {
			entry["thickness"] = *r.Thickness
		}
		if r.PiecesPerPackage != nil {
			entry["pieces_per_package"] = *r.PiecesPerPackage
		}
		if r.Note != nil {
			entry["note"] = *r.Note
		}
		out = append(out, entry)
	}
	return out
}

func itemSnapshotList(rows []*types.CutSheetItem) []any {
	out := make([]any, 0, len(rows))
	for _, it := range rows {
		entry := map[string]any{
			"cut_id":   it.CutID,
			"cut_name": it.CutName,
		}
		if it.Thickness != nil {
			entry["thickness"] = *it.Thickness
		}
		if it.WeightLbs != nil {
			entry["weight_lbs"] = *it.WeightLbs
		}
		if it.PiecesPerPackage != nil {
			entry["pieces_per_package"] = *it.PiecesPerPackage
		}
		out = append(out, entry)
	}
	return out
}

func itemInputList(inputs []CutSheetItemInput) []any {
	out := make([]any, 0, len(inputs))
	for _, in := range inputs {
		entry := map[string]any{
			"cut_id":   in.CutID,
			"cut_name": in.CutName,
		}
		if in.Thickness != nil {
			entry["thickness"] = *in.Thickness
		}
		if in.WeightLbs != nil {
			entry["weight_lbs"] = *in.WeightLbs
		}
		if in.PiecesPerPackage != nil {
			entry["pieces_per_package"] = *in.PiecesPerPackage
		}
		out = append(out, entry)
	}
	return out
}

func sausageSnapshotList(rows []*types.CutSheetSausage) []any {
	out := make([]any, 0, len(rows))
	for _, s := range rows {
		out = append(out, map[string]any{"flavor": s.Flavor, "pounds": s.Pounds})
	}
	return out
}

func sausageInputList(inputs []SausageInput) []any {
	out := make([]any, 0, len(inputs))
	for _, in := range inputs {
		out = append(out, map[string]any{"flavor": in.Flavor, "pounds": in.Pounds})
	}
	return out
}
