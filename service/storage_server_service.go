package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"system_model_importer/infrastructure/objectstore"

	"github.com/redis/go-redis/v9"
)

const DefaultStorageServersHashKey = "storage-servers"

var ErrStorageServerNameRequired = errors.New("storage server name is required")

// serverHashReader is the part of *redis.Client used for server lookups.
type serverHashReader interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

type storageServerValue struct {
	IP             string `json:"ip"`
	Port           int    `json:"port"`
	User           string `json:"user"`
	PrivateKeyPath string `json:"private_key_path"`
}

// StorageServerService resolves ssh storage servers by name, first from the
// redis registry and then from the static fallback.
type StorageServerService struct {
	client   serverHashReader
	hashKey  string
	fallback objectstore.ServerConfig
	logger   *slog.Logger
}

// NewStorageServerService accepts a nil client; lookups then use fallback only.
func NewStorageServerService(client serverHashReader, hashKey string, fallback objectstore.ServerConfig, logger *slog.Logger) *StorageServerService {
	if strings.TrimSpace(hashKey) == "" {
		hashKey = DefaultStorageServersHashKey
	}
	return &StorageServerService{
		client:   client,
		hashKey:  hashKey,
		fallback: fallback,
		logger:   serviceLogger(logger).With("service", "StorageServerService"),
	}
}

func (s *StorageServerService) Resolve(ctx context.Context, serverName string) (objectstore.ServerConfig, error) {
	name := strings.TrimSpace(serverName)
	if name == "" {
		name = strings.TrimSpace(s.fallback.Name)
	}
	if name == "" {
		return objectstore.ServerConfig{}, ErrStorageServerNameRequired
	}

	server := s.fallback
	server.Name = name

	if s.client == nil {
		return objectstore.NormalizeServerConfig(server)
	}
	if ctx == nil {
		ctx = context.Background()
	}

	raw, err := s.client.HGet(ctx, s.hashKey, name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.logger.Warn("storage server not in registry, use static config", "server_name", name, "server_ip", server.IP)
			return objectstore.NormalizeServerConfig(server)
		}
		return objectstore.ServerConfig{}, fmt.Errorf("hget %s failed (key=%s): %w", s.hashKey, name, err)
	}

	var value storageServerValue
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &value); err != nil {
		return objectstore.ServerConfig{}, fmt.Errorf("parse storage server failed (key=%s): %w", name, err)
	}
	if ip := strings.TrimSpace(value.IP); ip != "" {
		server.IP = ip
	}
	if value.Port != 0 {
		server.Port = value.Port
	}
	if user := strings.TrimSpace(value.User); user != "" {
		server.User = user
	}
	if keyPath := strings.TrimSpace(value.PrivateKeyPath); keyPath != "" {
		server.PrivateKeyPath = keyPath
	}

	s.logger.Info("storage server resolved from registry", "server_name", name, "server_ip", server.IP, "port", server.Port)
	return objectstore.NormalizeServerConfig(server)
}
