package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CutSheetStatusDraft     = "draft"
	CutSheetStatusSubmitted = "submitted"
)

const (
	AnimalBeef = "beef"
	AnimalPork = "pork"
	AnimalLamb = "lamb"
	AnimalGoat = "goat"
)

// CutSheet is one producer's cut instructions for one processing order, or a
// reusable template when IsTemplate is set (templates carry no order id and
// never receive weight or package data). Processor-side edits live in the
// overlay tables (CutSheetModification, CutSheetRemovedCut, CutSheetAddedCut)
// so the producer's original selections are never destructively edited.
type CutSheet struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	ProcessingOrderID *uuid.UUID       `gorm:"type:uuid;index" json:"processing_order_id,omitempty"`
	ProcessingOrder   *ProcessingOrder `gorm:"foreignKey:ProcessingOrderID;references:ID" json:"processing_order,omitempty"`
	ProducerOrgID     uuid.UUID        `gorm:"type:uuid;not null;index" json:"producer_org_id"`
	ProcessorOrgID    *uuid.UUID       `gorm:"type:uuid;index" json:"processor_org_id,omitempty"`
	IsTemplate        bool             `gorm:"column:is_template;not null;default:false;index" json:"is_template"`
	TemplateName      *string          `gorm:"column:template_name" json:"template_name,omitempty"`
	AnimalType        string           `gorm:"column:animal_type;not null" json:"animal_type"`
	Status            string           `gorm:"column:status;not null;default:'draft'" json:"status"`

	HangingWeightLbs       *float64 `gorm:"column:hanging_weight_lbs" json:"hanging_weight_lbs,omitempty"`
	GroundType             string   `gorm:"column:ground_type" json:"ground_type,omitempty"` // e.g. ground_beef|ground_chuck|none
	GroundPackageWeightLbs *float64 `gorm:"column:ground_package_weight_lbs" json:"ground_package_weight_lbs,omitempty"`
	PattySize              string   `gorm:"column:patty_size" json:"patty_size,omitempty"`

	// Organ retention.
	KeepHeart   bool `gorm:"column:keep_heart;not null;default:false" json:"keep_heart"`
	KeepLiver   bool `gorm:"column:keep_liver;not null;default:false" json:"keep_liver"`
	KeepTongue  bool `gorm:"column:keep_tongue;not null;default:false" json:"keep_tongue"`
	KeepOxtail  bool `gorm:"column:keep_oxtail;not null;default:false" json:"keep_oxtail"`
	KeepKidneys bool `gorm:"column:keep_kidneys;not null;default:false" json:"keep_kidneys"`
	KeepTripe   bool `gorm:"column:keep_tripe;not null;default:false" json:"keep_tripe"`

	StewMeat  bool `gorm:"column:stew_meat;not null;default:false" json:"stew_meat"`
	ShortRibs bool `gorm:"column:short_ribs;not null;default:false" json:"short_ribs"`
	SoupBones bool `gorm:"column:soup_bones;not null;default:false" json:"soup_bones"`

	// Pork only.
	BaconPreference    string `gorm:"column:bacon_preference" json:"bacon_preference,omitempty"`       // sliced|slab|none
	HamPreference      string `gorm:"column:ham_preference" json:"ham_preference,omitempty"`           // cured|fresh|steaks
	ShoulderPreference string `gorm:"column:shoulder_preference" json:"shoulder_preference,omitempty"` // roast|steaks|ground
	KeepJowls          bool   `gorm:"column:keep_jowls;not null;default:false" json:"keep_jowls"`
	KeepFatBack        bool   `gorm:"column:keep_fat_back;not null;default:false" json:"keep_fat_back"`
	KeepLardFat        bool   `gorm:"column:keep_lard_fat;not null;default:false" json:"keep_lard_fat"`

	SpecialInstructions *string `gorm:"column:special_instructions" json:"special_instructions,omitempty"`
	ProcessorNotes      *string `gorm:"column:processor_notes" json:"processor_notes,omitempty"`

	LastModifiedByRole   string     `gorm:"column:last_modified_by_role" json:"last_modified_by_role,omitempty"`
	LastModifiedByUserID *uuid.UUID `gorm:"type:uuid;column:last_modified_by_user_id" json:"last_modified_by_user_id,omitempty"`

	Items    []*CutSheetItem    `gorm:"foreignKey:CutSheetID;references:ID" json:"items,omitempty"`
	Sausages []*CutSheetSausage `gorm:"foreignKey:CutSheetID;references:ID" json:"sausages,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CutSheet) TableName() string { return "cut_sheet" }
