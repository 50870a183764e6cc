package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

type CutSheetSausageRepo interface {
	CreateBatch(ctx context.Context, tx *gorm.DB, sausages []*types.CutSheetSausage) ([]*types.CutSheetSausage, error)
	ListBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) ([]*types.CutSheetSausage, error)
	DeleteBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) error
}

type cutSheetSausageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCutSheetSausageRepo(db *gorm.DB, baseLog *logger.Logger) CutSheetSausageRepo {
	repoLog := baseLog.With("repo", "CutSheetSausageRepo")
	return &cutSheetSausageRepo{db: db, log: repoLog}
}

func (sr *cutSheetSausageRepo) CreateBatch(ctx context.Context, tx *gorm.DB, sausages []*types.CutSheetSausage) ([]*types.CutSheetSausage, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(sausages) == 0 {
		return []*types.CutSheetSausage{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&sausages).Error; err != nil {
		return nil, err
	}
	return sausages, nil
}

func (sr *cutSheetSausageRepo) ListBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) ([]*types.CutSheetSausage, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.CutSheetSausage
	if err := transaction.WithContext(ctx).
		Where("cut_sheet_id = ?", sheetID).
		Order("flavor ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *cutSheetSausageRepo) DeleteBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	return transaction.WithContext(ctx).
		Where("cut_sheet_id = ?", sheetID).
		Delete(&types.CutSheetSausage{}).Error
}
