package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

type ProducedPackageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, pkg *types.ProducedPackage) (*types.ProducedPackage, error)
	GetByID(ctx context.Context, tx *gorm.DB, packageID uuid.UUID) (*types.ProducedPackage, error)
	ListBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) ([]*types.ProducedPackage, error)
	MaxPackageNumber(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, cutID string) (int, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, packageID uuid.UUID, fields map[string]interface{}) error
	Delete(ctx context.Context, tx *gorm.DB, packageID uuid.UUID) error
}

type producedPackageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProducedPackageRepo(db *gorm.DB, baseLog *logger.Logger) ProducedPackageRepo {
	repoLog := baseLog.With("repo", "ProducedPackageRepo")
	return &producedPackageRepo{db: db, log: repoLog}
}

func (pr *producedPackageRepo) Create(ctx context.Context, tx *gorm.DB, pkg *types.ProducedPackage) (*types.ProducedPackage, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if err := transaction.WithContext(ctx).Create(pkg).Error; err != nil {
		return nil, err
	}
	return pkg, nil
}

func (pr *producedPackageRepo) GetByID(ctx context.Context, tx *gorm.DB, packageID uuid.UUID) (*types.ProducedPackage, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var result types.ProducedPackage
	if err := transaction.WithContext(ctx).
		Where("id = ?", packageID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (pr *producedPackageRepo) ListBySheet(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID) ([]*types.ProducedPackage, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var results []*types.ProducedPackage
	if err := transaction.WithContext(ctx).
		Where("cut_sheet_id = ?", sheetID).
		Order("cut_id ASC, package_number ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// MaxPackageNumber returns 0 when no packages exist for the cut yet. The
// read-max-then-insert pair is racy on its own; the unique index on
// (cut_sheet_id, cut_id, package_number) is what makes numbering safe.
func (pr *producedPackageRepo) MaxPackageNumber(ctx context.Context, tx *gorm.DB, sheetID uuid.UUID, cutID string) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	var max *int
	if err := transaction.WithContext(ctx).
		Model(&types.ProducedPackage{}).
		Select("MAX(package_number)").
		Where("cut_sheet_id = ? AND cut_id = ?", sheetID, cutID).
		Scan(&max).Error; err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max, nil
}

func (pr *producedPackageRepo) UpdateFields(ctx context.Context, tx *gorm.DB, packageID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.ProducedPackage{}).
		Where("id = ?", packageID).
		Updates(fields).Error
}

func (pr *producedPackageRepo) Delete(ctx context.Context, tx *gorm.DB, packageID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}
	return transaction.WithContext(ctx).
		Where("id = ?", packageID).
		Delete(&types.ProducedPackage{}).Error
}
