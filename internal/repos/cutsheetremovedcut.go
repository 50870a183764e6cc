package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

type CutSheetRemovedCutRepo interface {
	GetBySheetAndCut(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, cutID string) (*types.CutSheetRemovedCut, error)
	Create(ctx context.Context, tx *gorm.DB, removed *types.CutSheetRemovedCut) (*types.CutSheetRemovedCut, error)
	DeleteBySheetAndCut(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, cutID string) error
	ListBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) ([]*types.CutSheetRemovedCut, error)
}

type cutSheetRemovedCutRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCutSheetRemovedCutRepo(db *gorm.DB, baseLog *logger.Logger) CutSheetRemovedCutRepo {
	repoLog := baseLog.With("repo", "CutSheetRemovedCutRepo")
	return &cutSheetRemovedCutRepo{db: db, log: repoLog}
}

func (rr *cutSheetRemovedCutRepo) GetBySheetAndCut(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, cutID string) (*types.CutSheetRemovedCut, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var result types.CutSheetRemovedCut
	if err := transaction.WithContext(ctx).
		Where("cut_sheet_id = ? AND cut_id = ?", sheetID, cutID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (rr *cutSheetRemovedCutRepo) Create(ctx context.Context, tx *gorm.DB, removed *types.CutSheetRemovedCut) (*types.CutSheetRemovedCut, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if err := transaction.WithContext(ctx).Create(removed).Error; err != nil {
		return nil, err
	}
	return removed, nil
}

func (rr *cutSheetRemovedCutRepo) DeleteBySheetAndCut(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, cutID string) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	return transaction.WithContext(ctx).
		Where("cut_sheet_id = ? AND cut_id = ?", sheetID, cutID).
		Delete(&types.CutSheetRemovedCut{}).Error
}

func (rr *cutSheetRemovedCutRepo) ListBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) ([]*types.CutSheetRemovedCut, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.CutSheetRemovedCut
	if err := transaction.WithContext(ctx).
		Where("cut_sheet_id = ?", sheetID).
		Order("removed_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
