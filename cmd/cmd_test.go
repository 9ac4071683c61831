package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"system_model_importer/config"
	"system_model_importer/internal/testutil"
	"system_model_importer/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestIngestOverridesApplyOnlyChangedFlags(t *testing.T) {
	cmd := NewIngestCommand()
	require.NoError(t, cmd.Flags().Set(flagWorkers, "4"))

	cfg := config.Default()
	require.NoError(t, ingestOverrides(cmd)(cfg))
	assert.Equal(t, "./models", cfg.Ingest.ModelsDir)
	assert.Equal(t, 4, cfg.Ingest.Workers)

	require.NoError(t, cmd.Flags().Set(flagDir, " /data/weights "))
	require.NoError(t, ingestOverrides(cmd)(cfg))
	assert.Equal(t, "/data/weights", cfg.Ingest.ModelsDir)
}

func TestIngestOnceReportsSummary(t *testing.T) {
	cfg := config.Default()
	cfg.Ingest.ModelsDir = t.TempDir()
	for _, name := range []string{"yolov8_small.pt", "faster_rcnn.pth", "readme.md"} {
		require.NoError(t, os.WriteFile(filepath.Join(cfg.Ingest.ModelsDir, name), []byte(name), 0o644))
	}

	a := &app{cfg: cfg, logger: config.NewLogger(config.LogConfig{Path: t.TempDir()}), db: testutil.NewSQLiteCatalog(t)}
	store := testutil.NewMemoryObjectStore("models")
	a.wire(store)

	var out bytes.Buffer
	require.NoError(t, ingestOnce(context.Background(), a, &out))
	assert.Equal(t, "Model ingestion completed: total=2 succeeded=2 failed=0\n", out.String())
	assert.Len(t, store.Keys(), 2)
}

func TestIngestOnceFailsOnMissingDirectory(t *testing.T) {
	cfg := config.Default()
	cfg.Ingest.ModelsDir = filepath.Join(t.TempDir(), "missing")

	a := &app{cfg: cfg, logger: config.NewLogger(config.LogConfig{Path: t.TempDir()}), db: testutil.NewSQLiteCatalog(t)}
	a.wire(testutil.NewMemoryObjectStore("models"))

	var out bytes.Buffer
	err := ingestOnce(context.Background(), a, &out)
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrStartupFailed))
	assert.Empty(t, out.String())
}

func TestNewAppRejectsUnsupportedBackend(t *testing.T) {
	cfg := config.Default()
	cfg.DB = config.DBConfig{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "catalog.db")}
	cfg.Storage.Backend = "ftp"

	_, err := newApp(context.Background(), cfg, config.NewLogger(config.LogConfig{Path: t.TempDir()}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrStartupFailed))
}

func TestRootCommandStartupFailure(t *testing.T) {
	dir := t.TempDir()
	path := writeConfigFile(t, strings.Join([]string{
		"db:",
		"  driver: sqlite",
		"  path: " + filepath.Join(dir, "catalog.db"),
		"storage:",
		"  backend: sftp",
		"  sftp:",
		"    server: nas-01",
		"    ip: 127.0.0.1",
		"    user: root",
		"    private_key_path: " + filepath.Join(dir, "missing_key"),
		"    root: /project/models",
		"ingest:",
		"  models_dir: " + dir,
		"log:",
		"  path: " + filepath.Join(dir, "logs"),
		"",
	}, "\n"))

	rootCmd := NewRootCommand()
	rootCmd.SetArgs([]string{"--config", path})
	var out bytes.Buffer
	rootCmd.SetOut(&out)

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrStartupFailed))
	assert.NotContains(t, out.String(), "completed")
}

func TestRootCommandRejectsMalformedConfig(t *testing.T) {
	path := writeConfigFile(t, "db: [unterminated\n")

	rootCmd := NewRootCommand()
	rootCmd.SetArgs([]string{"ensure-bucket", "--config", path})
	require.Error(t, rootCmd.Execute())
}
