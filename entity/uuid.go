package entity

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// UUID is a uuid column stored natively on postgres and as char(36) on the
// other dialects. Scan, Value and the text codecs come from uuid.UUID.
type UUID struct {
	uuid.UUID
}

func NewUUID() UUID {
	return UUID{UUID: uuid.New()}
}

func (UUID) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db != nil && db.Dialector != nil && db.Dialector.Name() == "postgres" {
		return "uuid"
	}
	return "char(36)"
}
