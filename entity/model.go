package entity

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModelStatus string

var ErrInvalidModelStatus = errors.New("invalid model status")

const (
	ModelStatusPending   ModelStatus = "pending"
	ModelStatusTraining  ModelStatus = "training"
	ModelStatusCompleted ModelStatus = "completed"
	ModelStatusFailed    ModelStatus = "failed"
)

func (s ModelStatus) Valid() bool {
	switch s {
	case ModelStatusPending, ModelStatusTraining, ModelStatusCompleted, ModelStatusFailed:
		return true
	default:
		return false
	}
}

// Model is one catalog row. StoragePath maps to the minio_model_path column
// that downstream services already read.
type Model struct {
	ID                  UUID        `gorm:"primaryKey;column:id" json:"id"`
	Name                string      `gorm:"column:name;size:255;not null" json:"name"`
	Version             string      `gorm:"column:version;size:50;not null" json:"version"`
	Architecture        string      `gorm:"column:architecture;size:50;not null" json:"architecture"`
	ArchitectureProfile string      `gorm:"column:architecture_profile;size:50;not null" json:"architecture_profile"`
	StoragePath         string      `gorm:"column:minio_model_path;size:512;not null;uniqueIndex" json:"storage_path"`
	Status              ModelStatus `gorm:"column:status;size:20;not null" json:"status"`
	OwnerID             *UUID       `gorm:"column:user_id" json:"owner_id"`
	IsSystem            bool        `gorm:"column:is_system;not null" json:"is_system"`
	BaseModelID         *UUID       `gorm:"column:base_model_id" json:"base_model_id"`
	DatasetID           *UUID       `gorm:"column:dataset_id" json:"dataset_id"`
	CreatedAt           time.Time   `gorm:"column:created_at;autoCreateTime:false;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Model) TableName() string {
	return "models"
}

// BeforeCreate assigns the id once; an id set by the caller is kept.
func (m *Model) BeforeCreate(*gorm.DB) error {
	if m.ID.UUID == uuid.Nil {
		m.ID = NewUUID()
	}
	return nil
}
