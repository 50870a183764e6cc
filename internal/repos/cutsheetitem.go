package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

type CutSheetItemRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, items []*types.CutSheetItem) ([]*types.CutSheetItem, error)
	ListBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) ([]*types.CutSheetItem, error)
	DeleteBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) error
}

type cutSheetItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCutSheetItemRepo(db *gorm.DB, baseLog *logger.Logger) CutSheetItemRepo {
	repoLog := baseLog.With("repo", "CutSheetItemRepo")
	return &cutSheetItemRepo{db: db, log: repoLog}
}

func (ir *cutSheetItemRepo) CreateBatch(ctx context.Context, tx *gorm.DB, items []*types.CutSheetItem) ([]*types.CutSheetItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	if len(items) == 0 {
		return []*types.CutSheetItem{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (ir *cutSheetItemRepo) ListBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) ([]*types.CutSheetItem, error) {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	var results []*types.CutSheetItem
	if err := transaction.WithContext(ctx).
		Where("cut_sheet_id = ?", sheetID).
		Order("sort_order ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (ir *cutSheetItemRepo) DeleteBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = ir.db
	}
	return transaction.WithContext(ctx).
		Where("cut_sheet_id = ?", sheetID).
		Delete(&types.CutSheetItem{}).Error
}
