package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL     string        `env:"HR_DATABASE_URL,required"`
	MaxOpenConns    int           `env:"HR_DB_MAX_OPEN_CONNS,default=10"`
	MaxIdleConns    int           `env:"HR_DB_MAX_IDLE_CONNS,default=5"`
	ConnMaxLifetime time.Duration `env:"HR_DB_CONN_MAX_LIFETIME,default=30m"`

	LogLevel  string `env:"HR_LOG_LEVEL,default=info"`
	LogFormat string `env:"HR_LOG_FORMAT,default=text"`

	// Default page size of the review queue.
	PageSize int `env:"HR_PAGE_SIZE,default=20"`
}

// Load reads the optional dotenv files (".env" when none are given) and
// decodes the environment. Variables already set in the environment win.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load dotenv: %w", err)
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, nil
}
