package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

type CutSheetModificationRepo interface {
	GetBySheetAndCut(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, cutID string) (*types.CutSheetModification, error)
	Create(ctx context.Context, tx *gorm.DB, mod *types.CutSheetModification) (*types.CutSheetModification, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, modID uuid.UUID, fields map[string]interface{}) error
	ListBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) ([]*types.CutSheetModification, error)
}

type cutSheetModificationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCutSheetModificationRepo(db *gorm.DB, baseLog *logger.Logger) CutSheetModificationRepo {
	repoLog := baseLog.With("repo", "CutSheetModificationRepo")
	return &cutSheetModificationRepo{db: db, log: repoLog}
}

func (mr *cutSheetModificationRepo) GetBySheetAndCut(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, cutID string) (*types.CutSheetModification, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var result types.CutSheetModification
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

func (mr *cutSheetModificationRepo) Create(ctx context.Context, tx *gorm.DB, mod *types.CutSheetModification) (*types.CutSheetModification, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if err := transaction.WithContext(ctx).Create(mod).Error; err != nil {
		return nil, err
	}
	return mod, nil
}

func (mr *cutSheetModificationRepo) UpdateFields(ctx context.Context, tx *gorm.DB, modID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.CutSheetModification{}).
		Where("id = ?", modID).
		Updates(fields).Error
}

func (mr *cutSheetModificationRepo) ListBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) ([]*types.CutSheetModification, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}
	var results []*types.CutSheetModification
	if err := transaction.WithContext(ctx).
		Where("cut_sheet_id = ?", sheetID).
		Order("modified_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
