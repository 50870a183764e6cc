package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrderStatusRequested  = "requested"
	OrderStatusScheduled  = "scheduled"
	OrderStatusProcessing = "processing"
	OrderStatusComplete   = "complete"
)

// ProcessingOrder anchors a cut sheet to a scheduled slaughter/processing
// appointment. The broader order lifecycle lives outside this service.
type ProcessingOrder struct {
	ID             uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	ProducerOrgID  uuid.UUID     `gorm:"type:uuid;not null;index" json:"producer_org_id"`
	ProducerOrg    *Organization `gorm:"foreignKey:ProducerOrgID;references:ID" json:"producer_org,omitempty"`
	ProcessorOrgID uuid.UUID     `gorm:"type:uuid;not null;index" json:"processor_org_id"`
	ProcessorOrg   *Organization `gorm:"foreignKey:ProcessorOrgID;references:ID" json:"processor_org,omitempty"`
	AnimalType     string        `gorm:"column:animal_type;not null" json:"animal_type"`
	HeadCount      int           `gorm:"column:head_count;not null;default:1" json:"head_count"`
	Status         string        `gorm:"column:status;not null;index" json:"status"`
	DropOffDate    *time.Time    `gorm:"column:drop_off_date" json:"drop_off_date,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (ProcessingOrder) TableName() string { return "processing_order" }
