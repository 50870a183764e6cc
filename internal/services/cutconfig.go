package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pasturelink/pasturelink-backend/internal/apierr"
	"github.com/pasturelink/pasturelink-backend/internal/logger"
	"github.com/pasturelink/pasturelink-backend/internal/repos"
	"github.com/pasturelink/pasturelink-backend/internal/taxonomy"
	"github.com/pasturelink/pasturelink-backend/internal/types"
)

type ConfigSource string

const (
	ConfigSourceExplicit ConfigSource = "explicit"
	ConfigSourceDefault  ConfigSource = "default"
)

// ResolvedConfig is the sum of "the processor saved a config" and "no row
// exists, so everything the taxonomy offers is enabled". Callers never see a
// nil config.
type ResolvedConfig struct {
	Source ConfigSource              `json:"source"`
	Config *types.ProcessorCutConfig `json:"config"`
}

// ConfigPatch updates only the fields the caller supplied. Presence is
// pointer-based: a nil pointer means "leave alone", a pointer to an empty
// slice is an explicit empty value.
type ConfigPatch struct {
	EnabledAnimals         *[]string             `json:"enabled_animals,omitempty"`
	DisabledCuts           *[]string             `json:"disabled_cuts,omitempty"`
	DisabledSausageFlavors *[]string             `json:"disabled_sausage_flavors,omitempty"`
	CustomCuts             *[]types.CustomCutDef `json:"custom_cuts,omitempty"`
	DefaultTemplates       *[]types.TemplateRef  `json:"default_templates,omitempty"`
	ProcessingFees         *map[string]int64     `json:"processing_fees,omitempty"`
	MinHangingWeightLbs    *float64              `json:"min_hanging_weight_lbs,omitempty"`
	MaxHangingWeightLbs    *float64              `json:"max_hanging_weight_lbs,omitempty"`
	ProducerNotes          *string               `json:"producer_notes,omitempty"`
}

type CutConfigService interface {
	GetConfig(ctx context.Context, processorID uuid.UUID) (*ResolvedConfig, error)
	UpsertConfig(ctx context.Context, patch ConfigPatch) error
	ToggleCut(ctx context.Context, cutID string) error
	CutCounts(ctx context.Context, processorID uuid.UUID, animal string) (taxonomy.CutCounts, error)
}

type cutConfigService struct {
	db         *gorm.DB
	log        *logger.Logger
	configRepo repos.CutConfigRepo
	tax        *taxonomy.Taxonomy
}

func NewCutConfigService(db *gorm.DB, log *logger.Logger, configRepo repos.CutConfigRepo, tax *taxonomy.Taxonomy) CutConfigService {
	serviceLog := log.With("service", "CutConfigService")
	return &cutConfigService{
		db:         db,
		log:        serviceLog,
		configRepo: configRepo,
		tax:        tax,
	}
}

// GetConfig never errors on a missing row; absence of configuration is the
// common steady state for a processor that has not customized anything.
func (cs *cutConfigService) GetConfig(ctx context.Context, processorID uuid.UUID) (*ResolvedConfig, error) {
	if _, err := requirePrincipal(ctx); err != nil {
		return nil, err
	}
	row, err := cs.configRepo.GetByOrgID(ctx, nil, processorID)
	if err != nil {
		return nil, apierr.Persistence(fmt.Errorf("load processor cut config: %w", err))
	}
	if row == nil {
		return &ResolvedConfig{
			Source: ConfigSourceDefault,
			Config: cs.defaultConfig(processorID),
		}, nil
	}
	return &ResolvedConfig{Source: ConfigSourceExplicit, Config: row}, nil
}

func (cs *cutConfigService) defaultConfig(processorID uuid.UUID) *types.ProcessorCutConfig {
	return &types.ProcessorCutConfig{
		OrganizationID:         processorID,
		EnabledAnimals:         mustJSONValue(cs.tax.Animals()),
		DisabledCuts:           mustJSONValue([]string{}),
		DisabledSausageFlavors: mustJSONValue([]string{}),
		CustomCuts:             mustJSONValue([]types.CustomCutDef{}),
		DefaultTemplates:       mustJSONValue([]types.TemplateRef{}),
		ProcessingFees:         mustJSONValue(map[string]int64{}),
	}
}

// UpsertConfig merges the patch into the caller's own config row, creating
// it on first write. Only supplied fields are written; an untouched field
// keeps whatever value it already had.
func (cs *cutConfigService) UpsertConfig(ctx context.Context, patch ConfigPatch) error {
	rd, err := requireProcessor(ctx, uuid.Nil)
	if err != nil {
		return err
	}
	existing, err := cs.configRepo.GetByOrgID(ctx, nil, rd.OrganizationID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("load processor cut config: %w", err))
	}
	if existing == nil {
		row := cs.defaultConfig(rd.OrganizationID)
		row.ID = uuid.New()
		applyPatch(row, patch)
		if _, err := cs.configRepo.Create(ctx, nil, row); err != nil {
			return apierr.Persistence(fmt.Errorf("create processor cut config: %w", err))
		}
		cs.log.Info("Processor cut config created", "organization_id", rd.OrganizationID)
		return nil
	}
	fields := patchFields(patch)
	if len(fields) == 0 {
		return nil
	}
	if err := cs.configRepo.UpdateFields(ctx, nil, existing.ID, fields); err != nil {
		return apierr.Persistence(fmt.Errorf("update processor cut config: %w", err))
	}
	return nil
}

// ToggleCut flips a cut's membership in the disabled set. Fetch-flip-write
// without optimistic locking: concurrent toggles are last-write-wins.
func (cs *cutConfigService) ToggleCut(ctx context.Context, cutID string) error {
	rd, err := requireProcessor(ctx, uuid.Nil)
	if err != nil {
		return err
	}
	if _, ok := cs.tax.FindCut(cutID); !ok {
		return apierr.NotFound(fmt.Errorf("unknown cut %q", cutID))
	}
	existing, err := cs.configRepo.GetByOrgID(ctx, nil, rd.OrganizationID)
	if err != nil {
		return apierr.Persistence(fmt.Errorf("load processor cut config: %w", err))
	}
	if existing == nil {
		row := cs.defaultConfig(rd.OrganizationID)
		row.ID = uuid.New()
		row.DisabledCuts = mustJSONValue([]string{cutID})
		if _, err := cs.configRepo.Create(ctx, nil, row); err != nil {
			return apierr.Persistence(fmt.Errorf("create processor cut config: %w", err))
		}
		return nil
	}
	disabled := decodeStringSlice(existing.DisabledCuts)
	flipped := make([]string, 0, len(disabled)+1)
	found := false
	for _, id := range disabled {
		if id == cutID {
			found = true
			continue
		}
		flipped = append(flipped, id)
	}
	if !found {
		flipped = append(flipped, cutID)
	}
	err = cs.configRepo.UpdateFields(ctx, nil, existing.ID, map[string]interface{}{
		"disabled_cuts": mustJSONValue(flipped),
		"updated_at":    time.Now().UTC(),
	})
	if err != nil {
		return apierr.Persistence(fmt.Errorf("toggle cut: %w", err))
	}
	return nil
}

func (cs *cutConfigService) CutCounts(ctx context.Context, processorID uuid.UUID, animal string) (taxonomy.CutCounts, error) {
	resolved, err := cs.GetConfig(ctx, processorID)
	if err != nil {
		return taxonomy.CutCounts{}, err
	}
	disabled := make(map[string]bool)
	for _, id := range decodeStringSlice(resolved.Config.DisabledCuts) {
		disabled[id] = true
	}
	return cs.tax.CountCuts(animal, disabled), nil
}

func applyPatch(row *types.ProcessorCutConfig, patch ConfigPatch) {
	if patch.EnabledAnimals != nil {
		row.EnabledAnimals = mustJSONValue(*patch.EnabledAnimals)
	}
	if patch.DisabledCuts != nil {
		row.DisabledCuts = mustJSONValue(*patch.DisabledCuts)
	}
	if patch.DisabledSausageFlavors != nil {
		row.DisabledSausageFlavors = mustJSONValue(*patch.DisabledSausageFlavors)
	}
	if patch.CustomCuts != nil {
		row.CustomCuts = mustJSONValue(*patch.CustomCuts)
	}
	if patch.DefaultTemplates != nil {
		row.DefaultTemplates = mustJSONValue(*patch.DefaultTemplates)
	}
	if patch.ProcessingFees != nil {
		row.ProcessingFees = mustJSONValue(*patch.ProcessingFees)
	}
	if patch.MinHangingWeightLbs != nil {
		row.MinHangingWeightLbs = patch.MinHangingWeightLbs
	}
	if patch.MaxHangingWeightLbs != nil {
		row.MaxHangingWeightLbs = patch.MaxHangingWeightLbs
	}
	if patch.ProducerNotes != nil {
		row.ProducerNotes = patch.ProducerNotes
	}
}

// patchFields maps supplied patch fields to columns. Field-presence, not
// truthiness: a pointer to an empty slice still produces a write.
func patchFields(patch ConfigPatch) map[string]interface{} {
	fields := map[string]interface{}{}
	if patch.EnabledAnimals != nil {
		fields["enabled_animals"] = mustJSONValue(*patch.EnabledAnimals)
	}
	if patch.DisabledCuts != nil {
		fields["disabled_cuts"] = mustJSONValue(*patch.DisabledCuts)
	}
	if patch.DisabledSausageFlavors != nil {
		fields["disabled_sausage_flavors"] = mustJSONValue(*patch.DisabledSausageFlavors)
	}
	if patch.CustomCuts != nil {
		fields["custom_cuts"] = mustJSONValue(*patch.CustomCuts)
	}
	if patch.DefaultTemplates != nil {
		fields["default_templates"] = mustJSONValue(*patch.DefaultTemplates)
	}
	if patch.ProcessingFees != nil {
		fields["processing_fees"] = mustJSONValue(*patch.ProcessingFees)
	}
	if patch.MinHangingWeightLbs != nil {
		fields["min_hanging_weight_lbs"] = *patch.MinHangingWeightLbs
	}
	if patch.MaxHangingWeightLbs != nil {
		fields["max_hanging_weight_lbs"] = *patch.MaxHangingWeightLbs
	}
	if patch.ProducerNotes != nil {
		fields["producer_notes"] = *patch.ProducerNotes
	}
	if len(fields) > 0 {
		fields["updated_at"] = time.Now().UTC()
	}
	return fields
}

func mustJSONValue(v any) datatypes.JSON {
	raw, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON([]byte("null"))
	}
	return datatypes.JSON(raw)
}

func decodeStringSlice(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}
