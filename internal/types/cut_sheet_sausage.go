package types

import (
	"time"

	"github.com/google/uuid"
)

// CutSheetSausage is a producer-selected sausage flavor allocation, pork only.
type CutSheetSausage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CutSheetID uuid.UUID `gorm:"type:uuid;not null;index" json:"cut_sheet_id"`
	Flavor     string    `gorm:"column:flavor;not null" json:"flavor"`
	Pounds     float64   `gorm:"column:pounds;not null" json:"pounds"`
	CreatedAt  time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time `gorm:"not null" json:"updated_at"`
}

func (CutSheetSausage) TableName() string { return "cut_sheet_sausage" }
