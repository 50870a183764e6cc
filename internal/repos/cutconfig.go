package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

type CutConfigRepo interface {
	GetByOrgID(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) (*types.ProcessorCutConfig, error)
	Create(ctx context.Context, tx *gorm.DB, config *types.ProcessorCutConfig) (*types.ProcessorCutConfig, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, configID uuid.UUID, fields map[string]interface{}) error
}

type cutConfigRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCutConfigRepo(db *gorm.DB, baseLog *logger.Logger) CutConfigRepo {
	repoLog := baseLog.With("repo", "CutConfigRepo")
	return &cutConfigRepo{db: db, log: repoLog}
}

// GetByOrgID returns nil without error when no config row exists; absence is
// a valid steady state the service resolves to the implicit default.
func (cr *cutConfigRepo) GetByOrgID(ctx context.Context, tx *gorm.DB, orgID uuid.UUID) (*types.ProcessorCutConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var result types.ProcessorCutConfig
	if err := transaction.WithContext(ctx).
		Where("organization_id = ?", orgID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &result, nil
}

func (cr *cutConfigRepo) Create(ctx context.Context, tx *gorm.DB, config *types.ProcessorCutConfig) (*types.ProcessorCutConfig, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if err := transaction.WithContext(ctx).Create(config).Error; err != nil {
		return nil, err
	}
	return config, nil
}

// UpdateFields writes only the given columns. Callers build the map from
// field-presence detection so explicit zero values still land.
func (cr *cutConfigRepo) UpdateFields(ctx context.Context, tx *gorm.DB, configID uuid.UUID, fields map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.ProcessorCutConfig{}).
		Where("id = ?", configID).
		Updates(fields).Error
}
