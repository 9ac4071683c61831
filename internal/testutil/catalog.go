package testutil

import (
	"path/filepath"
	"testing"

	"system_model_importer/config"
	"system_model_importer/infrastructure/db"

	"gorm.io/gorm"
)

// NewSQLiteCatalog opens a file-backed sqlite catalog in a temp dir with the
// models table created. It is closed when the test ends.
func NewSQLiteCatalog(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := db.Open(config.DBConfig{
		Driver: "sqlite",
		Path:   filepath.Join(t.TempDir(), "catalog.db"),
	})
	if err != nil {
		t.Fatalf("open sqlite catalog failed: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(conn)
	})
	return conn
}
