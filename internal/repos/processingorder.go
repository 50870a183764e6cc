package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

type ProcessingOrderRepo interface {
	Create(ctx context.Context, tx *gorm.DB, order *types.ProcessingOrder) (*types.ProcessingOrder, error)
	GetByID(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*types.ProcessingOrder, error)
	ListForOrg(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) ([]*types.ProcessingOrder, error)
}

type processingOrderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProcessingOrderRepo(db *gorm.DB, baseLog *logger.Logger) ProcessingOrderRepo {
	repoLog := baseLog.With("repo", "ProcessingOrderRepo")
	return &processingOrderRepo{db: db, log: repoLog}
}

func (pr *processingOrderRepo) Create(ctx context.Context, tx *gorm.DB, order *types.ProcessingOrder) (*types.ProcessingOrder, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (pr *processingOrderRepo) GetByID(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) (*types.ProcessingOrder, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var result types.ProcessingOrder
	if err := transaction.WithContext(ctx).
		Where("id = ?", orderID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (pr *processingOrderRepo) ListForOrg(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) ([]*types.ProcessingOrder, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.ProcessingOrder
	if err := transaction.WithContext(ctx).
		Where("producer_org_id = ? OR processor_org_id = ?", orgID, orgID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
