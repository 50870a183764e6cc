package types

import (
	"time"

	"github.com/google/uuid"
)

// CutSheetItem is one producer-selected cut. Rows are never deleted by
// processor actions; processor removals live in cut_sheet_removed_cut.
type CutSheetItem struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CutSheetID       uuid.UUID `gorm:"type:uuid;not null;index" json:"cut_sheet_id"`
	CutID            string    `gorm:"column:cut_id;not null;index" json:"cut_id"`
	CutName          string    `gorm:"column:cut_name;not null" json:"cut_name"`
	Thickness        *string   `gorm:"column:thickness" json:"thickness,omitempty"`
	WeightLbs        *float64  `gorm:"column:weight_lbs" json:"weight_lbs,omitempty"`
	PiecesPerPackage *int      `gorm:"column:pieces_per_package" json:"pieces_per_package,omitempty"`
	SortOrder        int       `gorm:"column:sort_order;not null;default:0" json:"sort_order"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

func (CutSheetItem) TableName() string { return "cut_sheet_item" }
