package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

type OrganizationRepo interface {
	Create(ctx context.Context, tx *gorm.DB, org *types.Organization) (*types.Organization, error)
	GetByID(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) (*types.Organization, error)
	ListByType(ctx context.Context, tx *gorm.DB, orgType string) ([]*types.Organization, error)
}

type organizationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrganizationRepo(db *gorm.DB, baseLog *logger.Logger) OrganizationRepo {
	repoLog := baseLog.With("repo", "OrganizationRepo")
	return &organizationRepo{db: db, log: repoLog}
}

func (or *organizationRepo) Create(ctx context.Context, tx *gorm.DB, org *types.Organization) (*types.Organization, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	if err := transaction.WithContext(ctx).Create(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}

func (or *organizationRepo) GetByID(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) (*types.Organization, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	var result types.Organization
	if err := transaction.WithContext(ctx).
		Where("id = ?", orgID).
		First(&result).Error; err != nil {
		return nil, err
	}
	return &result, nil
}

func (or *organizationRepo) ListByType(ctx context.Context, tx *gorm.DB, orgType string) ([]*types.Organization, error) {
	transaction := tx
	if transaction == nil {
		transaction = or.db
	}
	var results []*types.Organization
	if err := transaction.WithContext(ctx).
		Where("type = ?", orgType).
		Order("name ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
