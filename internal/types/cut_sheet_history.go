package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	ChangeTypeCreated       = "created"
	ChangeTypeUpdated       = "updated"
	ChangeTypeStatusChanged = "status_changed"
)

const (
	CategoryInitialCreation = "initial_creation"
	CategoryCutAdded        = "cut_added"
	CategoryCutRemoved      = "cut_removed"
	CategoryCutModified     = "cut_modified"
	CategoryWeightEntered   = "weight_entered"
	CategoryPackageCreated  = "package_created"
	CategoryNotesUpdated    = "notes_updated"
	CategoryGeneral         = "general"
)

// CutSheetHistory is append-only. Rows are never updated or deleted.
// PreviousState/NewState hold only the keys touched by the one operation
// that produced the entry; the sole whole-document snapshot is the creation
// entry, whose PreviousState is null.
type CutSheetHistory struct {
	ID                uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CutSheetID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"cut_sheet_id"`
	ProcessingOrderID *uuid.UUID     `gorm:"type:uuid;index" json:"processing_order_id,omitempty"`
	ChangedByUserID   uuid.UUID      `gorm:"type:uuid;not null" json:"changed_by_user_id"`
	ChangedByOrgID    uuid.UUID      `gorm:"type:uuid;not null" json:"changed_by_org_id"`
	ChangedByRole     string         `gorm:"column:changed_by_role;not null;index" json:"changed_by_role"` // producer|processor
	ChangeType        string         `gorm:"column:change_type;not null" json:"change_type"`
	ChangeCategory    string         `gorm:"column:change_category;not null;index" json:"change_category"`
	ChangeSummary     string         `gorm:"column:change_summary;not null" json:"change_summary"`
	PreviousState     datatypes.JSON `gorm:"type:jsonb;column:previous_state" json:"previous_state,omitempty"`
	NewState          datatypes.JSON `gorm:"type:jsonb;column:new_state" json:"new_state"`
	ChangedFields     datatypes.JSON `gorm:"type:jsonb;column:changed_fields" json:"changed_fields"`
	AffectedCutID     *string        `gorm:"column:affected_cut_id" json:"affected_cut_id,omitempty"`
	AffectedPackageID *uuid.UUID     `gorm:"type:uuid;column:affected_package_id" json:"affected_package_id,omitempty"`
	CreatedAt         time.Time      `gorm:"not null;index" json:"created_at"`
}

func (CutSheetHistory) TableName() string { return "cut_sheet_history" }
