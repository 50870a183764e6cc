package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

type CutSheetAddedCutRepo interface {
	GetBySheetAndCut(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, cutID string) (*types.CutSheetAddedCut, error)
	Create(ctx context.Context, tx *gorm.DB, added *types.CutSheetAddedCut) (*types.CutSheetAddedCut, error)
	DeleteBySheetAndCut(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, cutID string) error
	ListBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) ([]*types.CutSheetAddedCut, error)
}

type cutSheetAddedCutRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCutSheetAddedCutRepo(db *gorm.DB, baseLog *logger.Logger) CutSheetAddedCutRepo {
	repoLog := baseLog.With("repo", "CutSheetAddedCutRepo")
	return &cutSheetAddedCutRepo{db: db, log: repoLog}
}

func (ar *cutSheetAddedCutRepo) GetBySheetAndCut(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, cutID string) (*types.CutSheetAddedCut, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var result types.CutSheetAddedCut
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

func (ar *cutSheetAddedCutRepo) Create(ctx context.Context, tx *gorm.DB, added *types.CutSheetAddedCut) (*types.CutSheetAddedCut, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	if err := transaction.WithContext(ctx).Create(added).Error; err != nil {
		return nil, err
	}
	return added, nil
}

func (ar *cutSheetAddedCutRepo) DeleteBySheetAndCut(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, cutID string) error {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	return transaction.WithContext(ctx).
		Where("cut_sheet_id = ? AND cut_id = ?", sheetID, cutID).
		Delete(&types.CutSheetAddedCut{}).Error
}

func (ar *cutSheetAddedCutRepo) ListBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) ([]*types.CutSheetAddedCut, error) {
	transaction := tx
	if transaction == nil {
		transaction = ar.db
	}
	var results []*types.CutSheetAddedCut
	if err := transaction.WithContext(ctx).
		Where("cut_sheet_id = ?", sheetID).
		Order("added_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
