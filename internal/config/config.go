package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Storage     StorageConfig     `yaml:"storage"`
	Persistence PersistenceConfig `yaml:"persistence"`
	HTTP        HTTPConfig        `yaml:"http"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory", "file", "redis" или "postgres"
	Key      string         `yaml:"key"`
	File     FileConfig     `yaml:"file"`
	Redis    RedisConfig    `yaml:"redis"`
	Database DatabaseConfig `yaml:"database"`
}

type FileConfig struct {
	Dir string `yaml:"dir"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int32         `yaml:"max_connections"`
	MinConnections int32         `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type PersistenceConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	Retries      uint64        `yaml:"retries"`
	InitialDelay time.Duration `yaml:"initial_delay"`
}

type HTTPConfig struct {
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RateLimit      int           `yaml:"rate_limit"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Storage: StorageConfig{
			Type: StorageFile,
			Key:  "tasksState",
			File: FileConfig{Dir: "./data"},
		},
		Persistence: PersistenceConfig{
			Timeout:      5 * time.Second,
			Retries:      3,
			InitialDelay: 100 * time.Millisecond,
		},
		HTTP: HTTPConfig{
			RequestTimeout: 30 * time.Second,
			RateLimit:      100,
			AllowedOrigins: []string{"*"},
		},
	}
}

// Load читает YAML поверх значений по умолчанию
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}
	defer file.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(file)
	if err := decoder.Decode(cfg); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Type {
	case StorageMemory:
	case StorageFile:
		if c.Storage.File.Dir == "" {
			return fmt.Errorf("storage.file.dir не задан")
		}
	case StorageRedis:
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("storage.redis.addr не задан")
		}
	case StoragePostgres:
		if c.Storage.Database.URL == "" {
			return fmt.Errorf("storage.database.url не задан")
		}
	default:
		return fmt.Errorf("неизвестный тип хранилища %q", c.Storage.Type)
	}

	if c.Storage.Key == "" {
		return fmt.Errorf("storage.key не задан")
	}
	if c.HTTP.RateLimit < 0 {
		return fmt.Errorf("http.rate_limit не может быть отрицательным")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}
