package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config is the central typed configuration struct.
type Config struct {
	App        AppConfig
	Log        LogConfig
	HTTP       HTTPConfig
	Capability CapabilityConfig
}

type AppConfig struct {
	Name  string
	Env   string // local | production | testing
	Debug bool
}

type LogConfig struct {
	Level  string // debug | info | warn | error
	Format string // console | json
}

type HTTPConfig struct {
	Port string
}

type CapabilityConfig struct {
	// Manifest is the path of the module manifest, empty when unset.
	Manifest string
	// Modules lists the modules to scan, in order. Empty means all.
	Modules []string
}

// Manifest is the YAML document naming the modules to scan:
//
//	modules:
//	  - orders
//	  - audit
type Manifest struct {
	Modules []string `yaml:"modules"`
}

// Load reads .env (if present) and populates a Config from environment variables.
// Call once at bootstrap: cfg, err := config.Load()
func Load(envFiles ...string) (*Config, error) {
	files := envFiles
	if len(files) == 0 {
		files = []string{".env"}
	}
	// Non-fatal: .env may not exist in production
	_ = godotenv.Load(files...)

	appEnv := env("APP_ENV", "local")
	defaultFormat := "console"
	if appEnv == "production" {
		defaultFormat = "json"
	}

	cfg := &Config{
		App: AppConfig{
			Name:  env("APP_NAME", "GetAll"),
			Env:   appEnv,
			Debug: envBool("APP_DEBUG", appEnv != "production"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(env("LOG_LEVEL", "info")),
			Format: strings.ToLower(env("LOG_FORMAT", defaultFormat)),
		},
		HTTP: HTTPConfig{
			Port: env("HTTP_PORT", "8000"),
		},
		Capability: CapabilityConfig{
			Manifest: env("CAPABILITY_MANIFEST", ""),
		},
	}

	if cfg.Capability.Manifest != "" {
		m, err := LoadManifest(cfg.Capability.Manifest)
		if err != nil {
			return nil, err
		}
		cfg.Capability.Modules = m.Modules
	}
	return cfg, nil
}

// LoadManifest parses a module manifest file.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("config: parse manifest %s: %w", path, err)
	}
	for i, name := range m.Modules {
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("config: manifest %s: module %d has no name", path, i)
		}
	}
	return &m, nil
}

// ── helpers ─────────────────────────────────────────────────────────────────

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}
