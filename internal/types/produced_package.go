package types

import (
	"time"

	"github.com/google/uuid"
)

// ProducedPackage records one physical output package. PackageNumber is
// 1-based per (cut_sheet_id, cut_id); the unique index backs the retry
// guard against concurrent numbering.
type ProducedPackage struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CutSheetID    uuid.UUID `gorm:"type:uuid;not null;index:idx_produced_package_number,unique,priority:1" json:"cut_sheet_id"`
	CutID         string    `gorm:"column:cut_id;not null;index:idx_produced_package_number,unique,priority:2" json:"cut_id"`
	PackageNumber int       `gorm:"column:package_number;not null;index:idx_produced_package_number,unique,priority:3" json:"package_number"`
	CutName             string   `gorm:"column:cut_name;not null" json:"cut_name"`
	PrimalID            *string  `gorm:"column:primal_id" json:"primal_id,omitempty"`
	QuantityInPackage   int      `gorm:"column:quantity_in_package;not null;default:1" json:"quantity_in_package"`
	ActualWeightLbs     *float64 `gorm:"column:actual_weight_lbs" json:"actual_weight_lbs,omitempty"`
	Thickness           *string  `gorm:"column:thickness" json:"thickness,omitempty"`
	ProcessingStyle     *string  `gorm:"column:processing_style" json:"processing_style,omitempty"`
	ProcessorAdded      bool     `gorm:"column:processor_added;not null;default:false" json:"processor_added"`
	ProcessorNotes      *string  `gorm:"column:processor_notes" json:"processor_notes,omitempty"`
	LivestockTrackingID *string  `gorm:"column:livestock_tracking_id" json:"livestock_tracking_id,omitempty"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (ProducedPackage) TableName() string { return "produced_package" }
