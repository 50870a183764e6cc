package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

// CutSheetHistoryRepo is append-only. There is deliberately no update or
// delete method; ledger entries are immutable once written.
type CutSheetHistoryRepo interface {
	Append(ctx context.Context, tx *gorm.DB, entry *types.CutSheetHistory) (*types.CutSheetHistory, error)
	ListBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) ([]*types.CutSheetHistory, error)
	ListBySheetAndCategory(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, category string) ([]*types.CutSheetHistory, error)
	ListBySheetAndRole(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, role string) ([]*types.CutSheetHistory, error)
	GetCreationEntry(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) (*types.CutSheetHistory, error)
}

type cutSheetHistoryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCutSheetHistoryRepo(db *gorm.DB, baseLog *logger.Logger) CutSheetHistoryRepo {
	repoLog := baseLog.With("repo", "CutSheetHistoryRepo")
	return &cutSheetHistoryRepo{db: db, log: repoLog}
}

func (hr *cutSheetHistoryRepo) Append(ctx context.Context, tx *gorm.DB, entry *types.CutSheetHistory) (*types.CutSheetHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	if err := transaction.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (hr *cutSheetHistoryRepo) ListBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) ([]*types.CutSheetHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	var results []*types.CutSheetHistory
	if err := transaction.WithContext(ctx).
		Where("cut_sheet_id = ?", sheetID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (hr *cutSheetHistoryRepo) ListBySheetAndCategory(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, category string) ([]*types.CutSheetHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	var results []*types.CutSheetHistory
	if err := transaction.WithContext(ctx).
		Where("cut_sheet_id = ? AND change_category = ?", sheetID, category).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (hr *cutSheetHistoryRepo) ListBySheetAndRole(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, role string) ([]*types.CutSheetHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	var results []*types.CutSheetHistory
	if err := transaction.WithContext(ctx).
		Where("cut_sheet_id = ? AND changed_by_role = ?", sheetID, role).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (hr *cutSheetHistoryRepo) GetCreationEntry(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) (*types.CutSheetHistory, error) {
	transaction := tx
	if transaction == nil {
		transaction = hr.db
	}
	var result types.CutSheetHistory
	if err := transaction.WithContext(ctx).
		Where("cut_sheet_id = ? AND change_type = ?", sheetID, types.ChangeTypeCreated).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}
