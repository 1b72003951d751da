package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`

	Upload UploadConfig
	Mongo  MongoConfig
	Redis  RedisConfig
}

// UploadConfig is the one shared policy for uploaded images: the same
// allow-set and size cap apply to registration and to catalog images.
type UploadConfig struct {
	Dir               string  `env:"UPLOAD_DIR,               default=./content/img"`
	MaxSizeMB         float64 `env:"MAX_IMAGE_SIZE_MB,        default=1"`
	AllowedExtensions string  `env:"ALLOWED_IMAGE_EXTENSIONS, default=.jpg .jpeg .gif .png"`
}

// Extensions returns the allow-set as a slice.
func (u UploadConfig) Extensions() []string {
	return strings.Fields(u.AllowedExtensions)
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=b2b_backend"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
