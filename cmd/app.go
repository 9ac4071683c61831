package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"system_model_importer/config"
	"system_model_importer/dao"
	"system_model_importer/infrastructure/db"
	"system_model_importer/infrastructure/objectstore"
	"system_model_importer/service"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// app holds every long-lived dependency of one process. It is built once
// from the loaded config and never reconfigured.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB
	redis  *redis.Client

	store    objectstore.ObjectStore
	uploader *service.ArtifactUploadService
	models   *service.ModelService
	ingest   *service.IngestService
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	conn, err := db.Open(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", service.ErrStartupFailed, err)
	}
	a.db = conn

	if cfg.Redis.Enabled {
		client, err := config.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("%w: %w", service.ErrStartupFailed, err)
		}
		a.redis = client
	}

	store, err := a.buildObjectStore(ctx)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("%w: %w", service.ErrStartupFailed, err)
	}

	a.wire(store)
	return a, nil
}

// wire builds the service graph on top of an already opened catalog.
func (a *app) wire(store objectstore.ObjectStore) {
	a.store = store
	a.uploader = service.NewArtifactUploadService(store, a.logger)
	a.models = service.NewModelService(dao.NewModelDAO(a.db, a.logger), a.logger)

	var events *service.EventPublisher
	if a.redis != nil {
		events = service.NewEventPublisher(a.redis, a.cfg.Redis.EventsKey, a.logger)
	}
	a.ingest = service.NewIngestService(a.cfg.Ingest, a.uploader, a.models, events, a.logger)
}

func (a *app) buildObjectStore(ctx context.Context) (objectstore.ObjectStore, error) {
	switch strings.ToLower(strings.TrimSpace(a.cfg.Storage.Backend)) {
	case config.StorageBackendMinIO:
		return objectstore.NewMinIOStore(a.cfg.Storage.MinIO, a.logger)
	case config.StorageBackendSFTP:
		sftpCfg := a.cfg.Storage.SFTP
		fallback := objectstore.ServerConfig{
			Name:           sftpCfg.Server,
			IP:             sftpCfg.IP,
			Port:           sftpCfg.Port,
			User:           sftpCfg.User,
			PrivateKeyPath: sftpCfg.PrivateKeyPath,
			Timeout:        time.Duration(sftpCfg.TimeoutSeconds) * time.Second,
		}

		var servers *service.StorageServerService
		if a.redis != nil {
			servers = service.NewStorageServerService(a.redis, a.cfg.Redis.StorageServersKey, fallback, a.logger)
		} else {
			servers = service.NewStorageServerService(nil, "", fallback, a.logger)
		}

		server, err := servers.Resolve(ctx, sftpCfg.Server)
		if err != nil {
			return nil, err
		}
		return objectstore.NewSFTPStore(server, sftpCfg.Root, a.logger)
	default:
		return nil, fmt.Errorf("unsupported storage backend: %s", a.cfg.Storage.Backend)
	}
}

func (a *app) close() {
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("close redis failed", "error", err)
		}
	}
	if a.db != nil {
		if err := db.Close(a.db); err != nil {
			a.logger.Warn("close database failed", "error", err)
		}
	}
}
