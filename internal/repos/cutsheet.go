package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

type CutSheetRepo interface {
	Create(ctx context.Context, tx *gorm.DB, sheet *types.CutSheet) (*types.CutSheet, error)
	GetByID(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) (*types.CutSheet, error)
	GetByIDWithChildren(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) (*types.CutSheet, error)
	ListForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]*types.CutSheet, error)
	ListTemplatesForOrg(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) ([]*types.CutSheet, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, fields map[string]interface{}) error
}

type cutSheetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCutSheetRepo(db *gorm.DB, baseLog *logger.Logger) CutSheetRepo {
	repoLog := baseLog.With("repo", "CutSheetRepo")
	return &cutSheetRepo{db: db, log: repoLog}
}

func (sr *cutSheetRepo) Create(ctx context.Context, tx *gorm.DB, sheet *types.CutSheet) (*types.CutSheet, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if err := transaction.WithContext(ctx).Create(sheet).Error; err != nil {
		return nil, err
	}
	return sheet, nil
}

func (sr *cutSheetRepo) GetByID(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) (*types.CutSheet, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var result types.CutSheet
	if err := transaction.WithContext(ctx).
		Where("id = ?", sheetID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (sr *cutSheetRepo) GetByIDWithChildren(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) (*types.CutSheet, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var result types.CutSheet
	if err := transaction.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Sausages").
		Where("id = ?", sheetID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (sr *cutSheetRepo) ListForOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) ([]*types.CutSheet, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.CutSheet
	if err := transaction.WithContext(ctx).
		Where("processing_order_id = ?", orderID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *cutSheetRepo) ListTemplatesForOrg(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) ([]*types.CutSheet, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.CutSheet
	if err := transaction.WithContext(ctx).
		Where("producer_org_id = ? AND is_template = ?", orgID, true).
		Order("template_name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *cutSheetRepo) UpdateFields(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.CutSheet{}).
		Where("id = ?", sheetID).
		Updates(fields).Error
}
