package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// CustomCutDef is a processor-defined cut that is not part of the static
// taxonomy. Serialized into the custom_cuts jsonb column.
type CustomCutDef struct {
	CutID         string `json:"cut_id"`
	Name          string `json:"name"`
	PrimalID      string `json:"primal_id,omitempty"`
	AdditionalFee bool   `json:"additional_fee"`
}

type TemplateRef struct {
	TemplateID uuid.UUID `json:"template_id"`
	Name       string    `json:"name"`
	AnimalType string    `json:"animal_type"`
}

type ProcessorCutConfig struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrganizationID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"organization_id"`
	EnabledAnimals         datatypes.JSON `gorm:"type:jsonb;column:enabled_animals" json:"enabled_animals"`
	DisabledCuts           datatypes.JSON `gorm:"type:jsonb;column:disabled_cuts" json:"disabled_cuts"`
	DisabledSausageFlavors datatypes.JSON `gorm:"type:jsonb;column:disabled_sausage_flavors" json:"disabled_sausage_flavors"`
	CustomCuts             datatypes.JSON `gorm:"type:jsonb;column:custom_cuts" json:"custom_cuts"`
	DefaultTemplates       datatypes.JSON `gorm:"type:jsonb;column:default_templates" json:"default_templates"`
	ProcessingFees         datatypes.JSON `gorm:"type:jsonb;column:processing_fees" json:"processing_fees"` // cut_id -> fee in cents
	MinHangingWeightLbs *float64 `gorm:"column:min_hanging_weight_lbs" json:"min_hanging_weight_lbs,omitempty"`
	MaxHangingWeightLbs *float64 `gorm:"column:max_hanging_weight_lbs" json:"max_hanging_weight_lbs,omitempty"`
	ProducerNotes       *string  `gorm:"column:producer_notes" json:"producer_notes,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ProcessorCutConfig) TableName() string { return "processor_cut_config" }
