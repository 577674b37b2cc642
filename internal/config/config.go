// Package config resolves runtime settings from .env, an optional YAML file
// and the environment, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileEnv names the variable that points at the YAML config file.
const FileEnv = "ARCHRECON_CONFIG"

type Config struct {
	Env      string         `yaml:"env"`
	LogLevel string         `yaml:"log_level"`
	Store    StoreConfig    `yaml:"store"`
	Cache    CacheConfig    `yaml:"cache"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	LLM      LLMConfig      `yaml:"llm"`
	Merge    MergeConfig    `yaml:"merge"`
}

type StoreConfig struct {
	// Backend is one of memory, disk, postgres.
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	DSN     string `yaml:"dsn"`
}

type CacheConfig struct {
	Enabled    bool          `yaml:"enabled"`
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

type SnapshotConfig struct {
	// Backend is one of none, memory, s3. Empty picks s3 when an endpoint is
	// configured.
	Backend   string `yaml:"backend"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type LLMConfig struct {
	// Provider is gemini or fake.
	Provider   string  `yaml:"provider"`
	APIKey     string  `yaml:"api_key"`
	Model      string  `yaml:"model"`
	RPS        float64 `yaml:"rps"`
	Burst      int     `yaml:"burst"`
	MaxRetries int     `yaml:"max_retries"`

	// FakeResponse is what the fake provider answers to every prompt.
	FakeResponse string `yaml:"fake_response"`
}

type MergeConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
}

const (
	StoreMemory   = "memory"
	StoreDisk     = "disk"
	StorePostgres = "postgres"

	SnapshotNone   = "none"
	SnapshotMemory = "memory"
	SnapshotS3     = "s3"

	ProviderGemini = "gemini"
	ProviderFake   = "fake"
)

func Default() Config {
	return Config{
		Env:      "local",
		LogLevel: "info",
		Store:    StoreConfig{Backend: StoreDisk, Path: ".archrecon/architectures.json"},
		Cache:    CacheConfig{Enabled: true, TTL: 5 * time.Minute, MaxEntries: 2048},
		Snapshot: SnapshotConfig{Region: "us-east-1", Bucket: "archrecon-snapshots"},
		LLM:      LLMConfig{Provider: ProviderGemini, Model: "gemini-2.5-flash", RPS: 1, Burst: 1, MaxRetries: 3},
		Merge:    MergeConfig{MaxAttempts: 5},
	}
}

// Load reads .env, then the YAML file named by ARCHRECON_CONFIG, then
// environment overrides.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path := strings.TrimSpace(os.Getenv(FileEnv)); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.Env = firstNonEmpty(env("APP_ENV"), cfg.Env)
	cfg.LogLevel = firstNonEmpty(env("LOG_LEVEL"), cfg.LogLevel)

	cfg.Store.Backend = strings.ToLower(firstNonEmpty(env("ARCHRECON_STORE"), cfg.Store.Backend))
	cfg.Store.Path = firstNonEmpty(env("ARCHRECON_STORE_PATH"), cfg.Store.Path)
	cfg.Store.DSN = firstNonEmpty(env("ARCHRECON_PG_DSN"), env("DATABASE_URL"), cfg.Store.DSN)

	var errs []error
	if v, ok, err := envBool("ARCHRECON_CACHE_ENABLED"); ok {
		cfg.Cache.Enabled = v
	} else if err != nil {
		errs = append(errs, err)
	}
	if raw := env("ARCHRECON_CACHE_TTL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			errs = append(errs, fmt.Errorf("ARCHRECON_CACHE_TTL: %w", err))
		} else {
			cfg.Cache.TTL = d
		}
	}
	if v, ok, err := envInt("ARCHRECON_CACHE_MAX_ENTRIES"); ok {
		cfg.Cache.MaxEntries = v
	} else if err != nil {
		errs = append(errs, err)
	}

	cfg.Snapshot.Backend = strings.ToLower(firstNonEmpty(env("SNAPSHOT_BACKEND"), cfg.Snapshot.Backend))
	cfg.Snapshot.Endpoint = firstNonEmpty(env("SNAPSHOT_S3_ENDPOINT"), cfg.Snapshot.Endpoint)
	cfg.Snapshot.Region = firstNonEmpty(env("SNAPSHOT_S3_REGION"), cfg.Snapshot.Region)
	cfg.Snapshot.AccessKey = firstNonEmpty(env("SNAPSHOT_S3_ACCESS_KEY"), env("MINIO_ROOT_USER"), cfg.Snapshot.AccessKey)
	cfg.Snapshot.SecretKey = firstNonEmpty(env("SNAPSHOT_S3_SECRET_KEY"), env("MINIO_ROOT_PASSWORD"), cfg.Snapshot.SecretKey)
	cfg.Snapshot.Bucket = firstNonEmpty(env("SNAPSHOT_S3_BUCKET"), cfg.Snapshot.Bucket)
	if v, ok, err := envBool("SNAPSHOT_S3_USE_SSL"); ok {
		cfg.Snapshot.UseSSL = v
	} else if err != nil {
		errs = append(errs, err)
	}
	if cfg.Snapshot.Backend == "" {
		cfg.Snapshot.Backend = SnapshotNone
		if cfg.Snapshot.Endpoint != "" {
			cfg.Snapshot.Backend = SnapshotS3
		}
	}

	cfg.LLM.Provider = strings.ToLower(firstNonEmpty(env("LLM_PROVIDER"), cfg.LLM.Provider))
	cfg.LLM.APIKey = firstNonEmpty(env("GEMINI_API_KEY"), cfg.LLM.APIKey)
	cfg.LLM.Model = firstNonEmpty(env("LLM_MODEL"), cfg.LLM.Model)
	if raw := env("LLM_RPS"); raw != "" {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("LLM_RPS: %w", err))
		} else {
			cfg.LLM.RPS = f
		}
	}
	if v, ok, err := envInt("LLM_BURST"); ok {
		cfg.LLM.Burst = v
	} else if err != nil {
		errs = append(errs, err)
	}
	if v, ok, err := envInt("LLM_MAX_RETRIES"); ok {
		cfg.LLM.MaxRetries = v
	} else if err != nil {
		errs = append(errs, err)
	}
	cfg.LLM.FakeResponse = firstNonEmpty(os.Getenv("LLM_FAKE_RESPONSE"), cfg.LLM.FakeResponse)
	if v, ok, err := envInt("MERGE_MAX_ATTEMPTS"); ok {
		cfg.Merge.MaxAttempts = v
	} else if err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Validate rejects combinations that cannot be wired.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case StoreMemory:
	case StoreDisk:
		if strings.TrimSpace(c.Store.Path) == "" {
			return fmt.Errorf("store: disk backend needs a path")
		}
	case StorePostgres:
		if strings.TrimSpace(c.Store.DSN) == "" {
			return fmt.Errorf("store: postgres backend needs a dsn")
		}
	default:
		return fmt.Errorf("store: unknown backend %q", c.Store.Backend)
	}
	switch c.Snapshot.Backend {
	case SnapshotNone, SnapshotMemory, SnapshotS3:
	default:
		return fmt.Errorf("snapshot: unknown backend %q", c.Snapshot.Backend)
	}
	switch c.LLM.Provider {
	case ProviderGemini, ProviderFake:
	default:
		return fmt.Errorf("llm: unknown provider %q", c.LLM.Provider)
	}
	if c.Merge.MaxAttempts <= 0 {
		return fmt.Errorf("merge: max_attempts must be positive")
	}
	return nil
}

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }

func envBool(key string) (bool, bool, error) {
	raw := env(key)
	if raw == "" {
		return false, false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false, fmt.Errorf("%s: %w", key, err)
	}
	return v, true, nil
}

func envInt(key string) (int, bool, error) {
	raw := env(key)
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false, fmt.Errorf("%s: %w", key, err)
	}
	return v, true, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
