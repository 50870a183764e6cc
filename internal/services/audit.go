package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/repos"
	"github.com/pasturelink/pasturelink-backend/internal/requestdata"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

// auditWriter appends ledger entries for the mutating cut-sheet operations.
// The append runs after the primary write has already succeeded: an append
// failure is logged as an audit gap and does not fail the operation, while a
// primary-write failure aborts before this code is ever reached.
type auditWriter struct {
	log         *logger.Logger
	historyRepo repos.CutSheetHistoryRepo
	notifier    ChangeNotifier
}

func newAuditWriter(log *logger.Logger, historyRepo repos.CutSheetHistoryRepo, notifier ChangeNotifier) *auditWriter {
	return &auditWriter{
		log:         log.With("component", "AuditWriter"),
		historyRepo: historyRepo,
		notifier:    notifier,
	}
}

type auditRecord struct {
	Sheet             *types.CutSheet
	Actor             *requestdata.RequestData
	ChangeType        string
	Category          string
	Summary           string
	Previous          map[string]any // nil for creation entries
	New               map[string]any
	ChangedFields     []string
	AffectedCutID     *string
	AffectedPackageID *uuid.UUID
}

func (aw *auditWriter) record(ctx context.Context, rec auditRecord) {
	entry := &types.CutSheetHistory{
		ID:                uuid.New(),
		CutSheetID:        rec.Sheet.ID,
		ProcessingOrderID: rec.Sheet.ProcessingOrderID,
		ChangedByUserID:   rec.Actor.UserID,
		ChangedByOrgID:    rec.Actor.OrganizationID,
		ChangedByRole:     string(rec.Actor.OrganizationType),
		ChangeType:        rec.ChangeType,
		ChangeCategory:    rec.Category,
		ChangeSummary:     rec.Summary,
		PreviousState:     marshalSnapshot(rec.Previous),
		NewState:          marshalSnapshot(rec.New),
		ChangedFields:     marshalFieldList(rec.ChangedFields),
		AffectedCutID:     rec.AffectedCutID,
		AffectedPackageID: rec.AffectedPackageID,
	}
	if _, err := aw.historyRepo.Append(ctx, nil, entry); err != nil {
		aw.log.Error("audit gap: history append failed after primary write",
			"error", err,
			"cut_sheet_id", rec.Sheet.ID,
			"change_category", rec.Category,
		)
		return
	}
	if aw.notifier != nil {
		aw.notifier.NotifyHistoryEntry(ctx, entry)
	}
}

func marshalSnapshot(state map[string]any) datatypes.JSON {
	if state == nil {
		return nil
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}

func marshalFieldList(fields []string) datatypes.JSON {
	if fields == nil {
		fields = []string{}
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return datatypes.JSON([]byte("[]"))
	}
	return datatypes.JSON(raw)
}
