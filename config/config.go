package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultConfigPath = "config/config.yaml"

const (
	StorageBackendMinIO = "minio"
	StorageBackendSFTP  = "sftp"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	DB      DBConfig      `yaml:"db"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	Ingest  IngestConfig  `yaml:"ingest"`
	Log     LogConfig     `yaml:"log"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type DBConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
	// Path is only used by the sqlite driver.
	Path string `yaml:"path"`
}

type StorageConfig struct {
	Backend string      `yaml:"backend"`
	MinIO   MinIOConfig `yaml:"minio"`
	SFTP    SFTPConfig  `yaml:"sftp"`
}

type MinIOConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type SFTPConfig struct {
	// Server names an entry of the redis storage-servers hash. When redis is
	// disabled or the entry is missing, IP/Port/User below are used.
	Server         string `yaml:"server"`
	IP             string `yaml:"ip"`
	Port           int    `yaml:"port"`
	User           string `yaml:"user"`
	PrivateKeyPath string `yaml:"private_key_path"`
	Root           string `yaml:"root"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type RedisConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	Password          string `yaml:"password"`
	DB                int    `yaml:"db"`
	StorageServersKey string `yaml:"storage_servers_key"`
	EventsKey         string `yaml:"events_key"`
}

type IngestConfig struct {
	ModelsDir string `yaml:"models_dir"`
	Workers   int    `yaml:"workers"`
}

type LogConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// Default returns the settings the importer runs with when no file is present.
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		DB: DBConfig{
			Driver:   "postgres",
			Host:     "localhost",
			Port:     5432,
			User:     "admin",
			Password: "admin",
			DBName:   "schemion",
			SSLMode:  "disable",
		},
		Storage: StorageConfig{
			Backend: StorageBackendMinIO,
			MinIO: MinIOConfig{
				Endpoint:  "localhost:9000",
				AccessKey: "minioadmin",
				SecretKey: "minioadmin",
				Bucket:    "models",
			},
			SFTP: SFTPConfig{
				Port:           22,
				User:           "root",
				Root:           "/project/models",
				TimeoutSeconds: 15,
			},
		},
		Redis: RedisConfig{
			Host:              "localhost",
			Port:              6379,
			StorageServersKey: "storage-servers",
			EventsKey:         "model-ingest-events",
		},
		Ingest: IngestConfig{
			ModelsDir: "./models",
			Workers:   1,
		},
		Log: LogConfig{
			Path:  "logs/app.log",
			Level: "info",
		},
	}
}

// Load reads the yaml file at path on top of Default and then applies
// environment overrides. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if strings.TrimSpace(path) == "" {
		path = DefaultConfigPath
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal config failed: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config file failed: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Storage.Backend)) {
	case StorageBackendMinIO:
		if strings.TrimSpace(c.Storage.MinIO.Bucket) == "" {
			return errors.New("storage.minio.bucket is required")
		}
		if strings.TrimSpace(c.Storage.MinIO.Endpoint) == "" {
			return errors.New("storage.minio.endpoint is required")
		}
	case StorageBackendSFTP:
		if strings.TrimSpace(c.Storage.SFTP.Root) == "" {
			return errors.New("storage.sftp.root is required")
		}
	default:
		return fmt.Errorf("unsupported storage backend: %s", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Ingest.ModelsDir) == "" {
		return errors.New("ingest.models_dir is required")
	}
	if c.Ingest.Workers <= 0 {
		c.Ingest.Workers = 1
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.DB.Host = getEnv("IMPORTER_DB_HOST", cfg.DB.Host)
	if port, err := strconv.Atoi(getEnv("IMPORTER_DB_PORT", "")); err == nil {
		cfg.DB.Port = port
	}
	cfg.DB.User = getEnv("IMPORTER_DB_USER", cfg.DB.User)
	cfg.DB.Password = getEnv("IMPORTER_DB_PASSWORD", cfg.DB.Password)
	cfg.DB.DBName = getEnv("IMPORTER_DB_NAME", cfg.DB.DBName)
	cfg.Storage.MinIO.Endpoint = getEnv("IMPORTER_MINIO_ENDPOINT", cfg.Storage.MinIO.Endpoint)
	cfg.Storage.MinIO.AccessKey = getEnv("IMPORTER_MINIO_ACCESS_KEY", cfg.Storage.MinIO.AccessKey)
	cfg.Storage.MinIO.SecretKey = getEnv("IMPORTER_MINIO_SECRET_KEY", cfg.Storage.MinIO.SecretKey)
	cfg.Storage.MinIO.Bucket = getEnv("IMPORTER_MINIO_BUCKET", cfg.Storage.MinIO.Bucket)
	cfg.Ingest.ModelsDir = getEnv("IMPORTER_MODELS_DIR", cfg.Ingest.ModelsDir)
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
