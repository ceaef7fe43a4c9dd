package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

const (
	StorageRedis  = "redis"
	StorageMemory = "memory"
)

// PathEnv overrides the location of the config file.
const PathEnv = "CONFIG_PATH"

type Config struct {
	LogLevel  string    `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort  string    `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	Storage   string    `yaml:"storage" env:"STORAGE" env-default:"redis"`
	Redis     Redis     `yaml:"redis"`
	Engine    Engine    `yaml:"engine"`
	Bots      Bots      `yaml:"bots"`
	Scheduler Scheduler `yaml:"scheduler"`
}

type Redis struct {
	Host     string `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port     int    `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env:"REDIS_DB" env-default:"0"`
}

type Engine struct {
	// MaxTurnNumber rejects expiration tasks for turns above it.
	MaxTurnNumber int           `yaml:"max-turn-number" env:"ENGINE_MAX_TURN_NUMBER" env-default:"1000"`
	TxMaxElapsed  time.Duration `yaml:"tx-max-elapsed" env:"ENGINE_TX_MAX_ELAPSED" env-default:"5s"`
}

type Bots struct {
	RequestTimeout time.Duration `yaml:"request-timeout" env:"BOTS_REQUEST_TIMEOUT" env-default:"10s"`
	RulesetVersion string        `yaml:"ruleset-version" env:"BOTS_RULESET_VERSION" env-default:"v1.1.15"`
}

type Scheduler struct {
	PollInterval time.Duration `yaml:"poll-interval" env:"SCHEDULER_POLL_INTERVAL" env-default:"500ms"`
	BatchSize    int           `yaml:"batch-size" env:"SCHEDULER_BATCH_SIZE" env-default:"32"`
	LeaseTimeout time.Duration `yaml:"lease-timeout" env:"SCHEDULER_LEASE_TIMEOUT" env-default:"30s"`
}

// Path returns $CONFIG_PATH or config.yml in the working directory.
func Path() (string, error) {
	if path := os.Getenv(PathEnv); path != "" {
		return path, nil
	}

	baseDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}

	return filepath.Join(baseDir, "config.yml"), nil
}

// Level parses LogLevel. Unknown values fall back to info.
func (that *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(that.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}

// MustLoad - loads .env if present, then config.yml, then the environment.
func MustLoad(path string) *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(fmt.Errorf("unable to load .env file: %w", err))
	}

	config, err := Load(path)
	if err != nil {
		panic(err)
	}

	return config
}

func Load(path string) (*Config, error) {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		return nil, fmt.Errorf("unable to load config file: %w", err)
	}

	if config.Storage != StorageRedis && config.Storage != StorageMemory {
		return nil, fmt.Errorf("unknown storage %q", config.Storage)
	}

	return config, nil
}
