package types

import (
	"time"

	"github.com/google/uuid"
)

// Processor overlay rows. Each map-like overlay is keyed by
// (cut_sheet_id, cut_id) with a unique index so concurrent edits to
// different cuts of the same sheet touch different rows.

type CutSheetModification struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CutSheetID uuid.UUID `gorm:"type:uuid;not null;index:idx_cut_sheet_modification,unique,priority:1" json:"cut_sheet_id"`
	CutID      string    `gorm:"column:cut_id;not null;index:idx_cut_sheet_modification,unique,priority:2" json:"cut_id"`
	Thickness        *string   `gorm:"column:thickness" json:"thickness,omitempty"`
	WeightLbs        *float64  `gorm:"column:weight_lbs" json:"weight_lbs,omitempty"`
	PiecesPerPackage *int      `gorm:"column:pieces_per_package" json:"pieces_per_package,omitempty"`
	ProcessingStyle  *string   `gorm:"column:processing_style" json:"processing_style,omitempty"`
	Note             *string   `gorm:"column:note" json:"note,omitempty"`
	ModifiedAt       time.Time `gorm:"column:modified_at;not null" json:"modified_at"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null" json:"updated_at"`
}

func (CutSheetModification) TableName() string { return "cut_sheet_modification" }

type CutSheetRemovedCut struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CutSheetID uuid.UUID `gorm:"type:uuid;not null;index:idx_cut_sheet_removed_cut,unique,priority:1" json:"cut_sheet_id"`
	CutID      string    `gorm:"column:cut_id;not null;index:idx_cut_sheet_removed_cut,unique,priority:2" json:"cut_id"`
	CutName    string    `gorm:"column:cut_name;not null" json:"cut_name"`
	Reason     string    `gorm:"column:reason" json:"reason,omitempty"`
	RemovedAt  time.Time `gorm:"column:removed_at;not null" json:"removed_at"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
}

func (CutSheetRemovedCut) TableName() string { return "cut_sheet_removed_cut" }

type CutSheetAddedCut struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CutSheetID uuid.UUID `gorm:"type:uuid;not null;index:idx_cut_sheet_added_cut,unique,priority:1" json:"cut_sheet_id"`
	CutID      string    `gorm:"column:cut_id;not null;index:idx_cut_sheet_added_cut,unique,priority:2" json:"cut_id"`
	CutName    string    `gorm:"column:cut_name;not null" json:"cut_name"`
	PrimalID         *string   `gorm:"column:primal_id" json:"primal_id,omitempty"`
	Thickness        *string   `gorm:"column:thickness" json:"thickness,omitempty"`
	PiecesPerPackage *int      `gorm:"column:pieces_per_package" json:"pieces_per_package,omitempty"`
	Note             *string   `gorm:"column:note" json:"note,omitempty"`
	AddedAt          time.Time `gorm:"column:added_at;not null" json:"added_at"`
	CreatedAt        time.Time `gorm:"not null" json:"created_at"`
}

func (CutSheetAddedCut) TableName() string { return "cut_sheet_added_cut" }
