package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Auth     AuthConfig     `koanf:"auth"`
	Database DatabaseConfig `koanf:"database"`
	Assets   AssetsConfig   `koanf:"assets"`
	NATS     NATSConfig     `koanf:"nats"`
	Blogs    BlogsConfig    `koanf:"blogs"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Addr       string        `koanf:"addr" validate:"required"`
	BaseURL    string        `koanf:"base_url" validate:"required,url"`
	Prod       bool          `koanf:"prod"`
	RateLimit  int           `koanf:"rate_limit" validate:"min=1"`
	RateWindow time.Duration `koanf:"rate_window" validate:"min=1s"`
}

type AuthConfig struct {
	GoogleKey     string `koanf:"google_key"`
	GoogleSecret  string `koanf:"google_secret"`
	SessionSecret string `koanf:"session_secret" validate:"required,min=16"`
	SessionMaxAge int    `koanf:"session_max_age" validate:"min=60"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver" validate:"oneof=postgres sqlite firestore"`
	DSN    string `koanf:"dsn" validate:"required_unless=Driver firestore"`
	// ProjectID is the Google Cloud project of the Firestore database.
	ProjectID string `koanf:"project_id" validate:"required_if=Driver firestore"`
}

type AssetsConfig struct {
	Provider string `koanf:"provider" validate:"oneof=imgbb r2"`
	// MaxWidth downscales wider images before upload. Zero keeps originals.
	MaxWidth int `koanf:"max_width" validate:"min=0"`

	ImgBBKey string `koanf:"imgbb_key" validate:"required_if=Provider imgbb"`
	ImgBBURL string `koanf:"imgbb_url" validate:"required,url"`

	AccountID       string `koanf:"account_id" validate:"required_if=Provider r2"`
	AccessKeyID     string `koanf:"access_key_id" validate:"required_if=Provider r2"`
	AccessKeySecret string `koanf:"access_key_secret" validate:"required_if=Provider r2"`
	Bucket          string `koanf:"bucket" validate:"required_if=Provider r2"`
	PublicURL       string `koanf:"public_url" validate:"required_if=Provider r2"`
}

type NATSConfig struct {
	// URL is optional; change events are dropped when empty.
	URL           string `koanf:"url"`
	SubjectPrefix string `koanf:"subject_prefix" validate:"required"`
}

type BlogsConfig struct {
	GeneratorURL string        `koanf:"generator_url"`
	Timeout      time.Duration `koanf:"timeout"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"oneof=debug info warn error disabled"`
	JSON  bool   `koanf:"json"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       ":3000",
			BaseURL:    "http://localhost:3000",
			RateLimit:  20,
			RateWindow: time.Minute,
		},
		Auth: AuthConfig{
			SessionMaxAge: 86400 * 30,
		},
		Database: DatabaseConfig{
			Driver: "postgres",
		},
		Assets: AssetsConfig{
			Provider: "imgbb",
			ImgBBURL: "https://api.imgbb.com/1/upload",
		},
		NATS: NATSConfig{
			SubjectPrefix: "catalog",
		},
		Blogs: BlogsConfig{
			Timeout: 2 * time.Minute,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// envKeys maps environment variables onto config paths. Variables not
// listed here are ignored.
var envKeys = map[string]string{
	"ADDR":               "server.addr",
	"BASE_URL":           "server.base_url",
	"PROD":               "server.prod",
	"RATE_LIMIT":         "server.rate_limit",
	"RATE_WINDOW":        "server.rate_window",
	"GOOGLE_KEY":         "auth.google_key",
	"GOOGLE_SECRET":      "auth.google_secret",
	"JWT_SECRET_KEY":     "auth.session_secret",
	"SESSION_MAX_AGE":    "auth.session_max_age",
	"DB_DRIVER":          "database.driver",
	"DSN":                "database.dsn",
	"FIRESTORE_PROJECT":  "database.project_id",
	"ASSET_PROVIDER":     "assets.provider",
	"IMAGE_MAX_WIDTH":    "assets.max_width",
	"IMGBB_API_KEY":      "assets.imgbb_key",
	"IMGBB_URL":          "assets.imgbb_url",
	"ACCOUNT_ID":         "assets.account_id",
	"ACCESS_KEY_ID":      "assets.access_key_id",
	"ACCESS_KEY_SECRET":  "assets.access_key_secret",
	"BUCKET_NAME":        "assets.bucket",
	"PUBLIC_URL":         "assets.public_url",
	"NATS_URL":           "nats.url",
	"NATS_SUBJECT":       "nats.subject_prefix",
	"BLOG_GENERATOR_URL": "blogs.generator_url",
	"BLOG_TIMEOUT":       "blogs.timeout",
	"LOG_LEVEL":          "log.level",
	"LOG_JSON":           "log.json",
}

// Load reads the given .env files (default ".env", missing files are
// fine), then layers environment variables over the defaults.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if err := k.Load(env.Provider(".", env.Opt{
		TransformFunc: func(key, value string) (string, any) {
			path, ok := envKeys[key]
			if !ok || value == "" {
				return "", nil
			}
			return path, value
		},
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			WeaklyTypedInput: true,
			Result:           &cfg,
			TagName:          "koanf",
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}
