package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/diff"
	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/repos"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

// HistorySummary aggregates a sheet's ledger for the header card: how many
// changes each side has made and who touched the sheet last.
type HistorySummary struct {
	TotalChanges     int        `json:"total_changes"`
	ProducerChanges  int        `json:"producer_changes"`
	ProcessorChanges int        `json:"processor_changes"`
	LastModified     *time.Time `json:"last_modified,omitempty"`
	LastModifiedBy   string     `json:"last_modified_by,omitempty"`
}

type HistoryEntryView struct {
	Entry *types.CutSheetHistory `json:"entry"`
	Diffs []diff.FieldDiff       `json:"diffs"`
}

type HistoryService interface {
	GetHistory(ctx context.Context, sheetID uuid.UUID) ([]*types.CutSheetHistory, error)
	GetHistoryByCategory(ctx context.Context, sheetID uuid.UUID, category string) ([]*types.CutSheetHistory, error)
	GetHistoryByRole(ctx context.Context, sheetID uuid.UUID, role string) ([]*types.CutSheetHistory, error)
	GetHistorySummary(ctx context.Context, sheetID uuid.UUID) (*HistorySummary, error)
	GetOriginalState(ctx context.Context, sheetID uuid.UUID) (*types.CutSheetHistory, error)
	GenerateDiff(ctx context.Context, sheetID, entryID uuid.UUID) (*HistoryEntryView, error)
}

type historyService struct {
	db          *gorm.DB
	log         *logger.Logger
	sheetRepo   repos.CutSheetRepo
	historyRepo repos.CutSheetHistoryRepo
}

func NewHistoryService(db *gorm.DB, log *logger.Logger, sheetRepo repos.CutSheetRepo, historyRepo repos.CutSheetHistoryRepo) HistoryService {
	return &historyService{
		db:          db,
		log:         log.With("service", "HistoryService"),
		sheetRepo:   sheetRepo,
		historyRepo: historyRepo,
	}
}

func (hs *historyService) authorizeSheet(ctx context.Context, sheetID uuid.UUID) (*types.CutSheet, error) {
	sheet, err := hs.sheetRepo.GetByID(ctx, nil, sheetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("load cut sheet: %w", err))
	}
	if sheet == nil {
		return nil, apierr.NotFound(fmt.Errorf("cut sheet %s not found", sheetID))
	}
	if _, err := requireSheetParty(ctx, sheet); err != nil {
		return nil, err
	}
	return sheet, nil
}

func (hs *historyService) GetHistory(ctx context.Context, sheetID uuid.UUID) ([]*types.CutSheetHistory, error) {
	if _, err := hs.authorizeSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	entries, err := hs.historyRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list history: %w", err))
	}
	return entries, nil
}

func (hs *historyService) GetHistoryByCategory(ctx context.Context, sheetID uuid.UUID, category string) ([]*types.CutSheetHistory, error) {
	if _, err := hs.authorizeSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	entries, err := hs.historyRepo.ListBySheetAndCategory(ctx, nil, sheetID, category)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list history by category: %w", err))
	}
	return entries, nil
}

func (hs *historyService) GetHistoryByRole(ctx context.Context, sheetID uuid.UUID, role string) ([]*types.CutSheetHistory, error) {
	if role != types.OrgTypeProducer && role != types.OrgTypeProcessor {
		return nil, apierr.InvalidArgument(fmt.Errorf("unknown role %q", role))
	}
	if _, err := hs.authorizeSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	entries, err := hs.historyRepo.ListBySheetAndRole(ctx, nil, sheetID, role)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list history by role: %w", err))
	}
	return entries, nil
}

func (hs *historyService) GetHistorySummary(ctx context.Context, sheetID uuid.UUID) (*HistorySummary, error) {
	if _, err := hs.authorizeSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	entries, err := hs.historyRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list history: %w", err))
	}
	summary := &HistorySummary{TotalChanges: len(entries)}
	for _, e := range entries {
		switch e.ChangedByRole {
		case types.OrgTypeProducer:
			summary.ProducerChanges++
		case types.OrgTypeProcessor:
			summary.ProcessorChanges++
		}
	}
	// Entries come back newest first.
	if len(entries) > 0 {
		latest := entries[0]
		t := latest.CreatedAt
		summary.LastModified = &t
		summary.LastModifiedBy = latest.ChangedByRole
	}
	return summary, nil
}

// GetOriginalState returns the creation entry, whose NewState is the full
// document as the producer first wrote it.
func (hs *historyService) GetOriginalState(ctx context.Context, sheetID uuid.UUID) (*types.CutSheetHistory, error) {
	if _, err := hs.authorizeSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	entry, err := hs.historyRepo.GetCreationEntry(ctx, nil, sheetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("load creation entry: %w", err))
	}
	if entry == nil {
		return nil, apierr.NotFound(fmt.Errorf("no creation entry for cut sheet %s", sheetID))
	}
	return entry, nil
}

// GenerateDiff renders one entry's before/after snapshots as display rows.
func (hs *historyService) GenerateDiff(ctx context.Context, sheetID, entryID uuid.UUID) (*HistoryEntryView, error) {
	if _, err := hs.authorizeSheet(ctx, sheetID); err != nil {
		return nil, err
	}
	entries, err := hs.historyRepo.ListBySheet(ctx, nil, sheetID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("list history: %w", err))
	}
	for _, e := range entries {
		if e.ID == entryID {
			return &HistoryEntryView{
				Entry: e,
				Diffs: diff.DiffJSON(e.PreviousState, e.NewState),
			}, nil
		}
	}
	return nil, apierr.NotFound(fmt.Errorf("history entry %s not found on cut sheet %s", entryID, sheetID))
}
