package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OrgTypeProducer  = "producer"
	OrgTypeProcessor = "processor"
)

type Organization struct {
	ID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name  string    `gorm:"column:name;not null" json:"name"`
	Type  string    `gorm:"column:type;not null;index" json:"type"` // producer|processor
	Phone string    `gorm:"column:phone" json:"phone,omitempty"`
	City  string    `gorm:"column:city" json:"city,omitempty"`
	State string    `gorm:"column:state" json:"state,omitempty"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Organization) TableName() string { return "organization" }
