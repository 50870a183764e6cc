package services

import (
	"context"

	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/realtime/bus"
	"github.com/pasturelink/pasturelink-backend/internal/sse"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

// ChangeNotifier pushes cut-sheet change events to SSE subscribers.
// Publishing is fire-and-forget: a notification failure never fails the
// operation that produced it.
type ChangeNotifier interface {
	NotifyHistoryEntry(ctx context.Context, entry *types.CutSheetHistory)
}

type changeNotifier struct {
	log *logger.Logger
	hub *sse.Hub
	bus bus.Bus
}

func NewChangeNotifier(log *logger.Logger, hub *sse.Hub, eventBus bus.Bus) ChangeNotifier {
	return &changeNotifier{
		log: log.With("service", "ChangeNotifier"),
		hub: hub,
		bus: eventBus,
	}
}

func (cn *changeNotifier) NotifyHistoryEntry(ctx context.Context, entry *types.CutSheetHistory) {
	if entry == nil {
		return
	}
	event := sse.EventCutSheetUpdated
	switch {
	case entry.ChangeType == types.ChangeTypeCreated:
		event = sse.EventCutSheetCreated
	case entry.ChangeType == types.ChangeTypeStatusChanged:
		event = sse.EventCutSheetSubmitted
	case entry.ChangeCategory == types.CategoryPackageCreated:
		event = sse.EventPackageRecorded
	}
	msg := sse.Message{
		Channel: sse.CutSheetChannel(entry.CutSheetID),
		Event:   event,
		Data: map[string]any{
			"cut_sheet_id":    entry.CutSheetID,
			"change_category": entry.ChangeCategory,
			"change_summary":  entry.ChangeSummary,
			"changed_by_role": entry.ChangedByRole,
		},
	}
	if cn.hub != nil {
		cn.hub.Broadcast(msg)
	}
	if cn.bus != nil {
		if err := cn.bus.Publish(ctx, msg); err != nil {
			cn.log.Warn("Failed to publish change event to bus", "error", err, "cut_sheet_id", entry.CutSheetID)
		}
	}
}
