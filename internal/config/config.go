// Package config loads the shell-layer configuration from config/shell.yaml
// with environment overrides for ports and secrets.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/MFE-Works/shell_layer/internal/registry"
)

// DefaultPath is where the mains look for configuration.
var DefaultPath = filepath.Join("config", "shell.yaml")

// Config is the root configuration document.
type Config struct {
	Shell      ShellConfig           `yaml:"shell"`
	Remotes    []registry.Descriptor `yaml:"remotes"`
	Sections   []SectionConfig       `yaml:"sections"`
	MockAPI    MockAPIConfig         `yaml:"mockapi"`
	Auth       AuthConfig            `yaml:"auth"`
	RemoteHost RemoteHostConfig      `yaml:"remotehost"`
}

// ShellConfig configures the host shell server.
type ShellConfig struct {
	Listen string `yaml:"listen"`
	Title  string `yaml:"title"`
	// APIBase is where render failures are reported (the mock API).
	APIBase string `yaml:"api_base"`
}

// SectionConfig binds a navigable shell section to a registered remote.
type SectionConfig struct {
	Title  string `yaml:"title"`
	Route  string `yaml:"route"`
	Remote string `yaml:"remote"`
}

// MockAPIConfig configures the mock data service.
type MockAPIConfig struct {
	Listen         string   `yaml:"listen"`
	DelayMS        int      `yaml:"delay_ms"`
	RateLimitRPS   int      `yaml:"rate_limit_rps"`
	RateLimitBurst int      `yaml:"rate_limit_burst"`
	CORSOrigins    []string `yaml:"cors_origins"`
	SeedUsers      int      `yaml:"seed_users"`
	SeedRows       int      `yaml:"seed_rows"`
}

// Delay returns the configured artificial response latency.
func (m MockAPIConfig) Delay() time.Duration {
	return time.Duration(m.DelayMS) * time.Millisecond
}

// AuthConfig configures token issuance for the mock auth endpoints.
// Secrets are resolved from the environment (or secret files), never from
// the YAML document itself.
type AuthConfig struct {
	AccessTokenExpireMinutes int `yaml:"access_token_expire_minutes"`
	RefreshTokenExpireDays   int `yaml:"refresh_token_expire_days"`

	SecretKey        string `yaml:"-"`
	RefreshSecretKey string `yaml:"-"`
}

// AccessTokenTTL returns the access token lifetime.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenExpireMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token lifetime.
func (a AuthConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(a.RefreshTokenExpireDays) * 24 * time.Hour
}

// RemoteHostConfig configures the example remote bundle server.
type RemoteHostConfig struct {
	Listen string `yaml:"listen"`
}

// Load reads configuration from DefaultPath.
func Load() (*Config, error) {
	return LoadFromPath(DefaultPath)
}

// LoadFromPath reads and validates configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads configuration or falls back to the built-in defaults
// when the file is missing.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		d := Default()
		d.applyEnv()
		return d
	}
	return cfg
}

// Default returns the built-in configuration: the four demo remotes wired
// against the local remote host and mock API.
func Default() *Config {
	return &Config{
		Shell: ShellConfig{
			Listen:  ":3000",
			Title:   "Shell Layer",
			APIBase: "http://localhost:8000",
		},
		Remotes: []registry.Descriptor{
			{Name: "userApp", Entry: "http://localhost:3001/remotes/userApp/manifest.json", Expose: "./UserApp", Export: "UserApp"},
			{Name: "dataApp", Entry: "http://localhost:3001/remotes/dataApp/manifest.json", Expose: "./DataGrid", Export: "DataGrid"},
			{Name: "analyticsApp", Entry: "http://localhost:3001/remotes/analyticsApp/manifest.json", Expose: "./Analytics", Export: "Analytics"},
			{Name: "settingsApp", Entry: "http://localhost:3001/remotes/settingsApp/manifest.json", Expose: "./Settings", Export: "Settings"},
		},
		Sections: []SectionConfig{
			{Title: "User Management", Route: "users", Remote: "userApp"},
			{Title: "DataGrid", Route: "data", Remote: "dataApp"},
			{Title: "Analytics", Route: "analytics", Remote: "analyticsApp"},
			{Title: "Settings", Route: "settings", Remote: "settingsApp"},
		},
		MockAPI: MockAPIConfig{
			Listen:         ":8000",
			DelayMS:        0,
			RateLimitRPS:   50,
			RateLimitBurst: 100,
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://localhost:3001",
				"http://localhost:3002",
				"http://localhost:3003",
				"http://localhost:3004",
			},
			SeedUsers: 50,
			SeedRows:  100,
		},
		Auth: AuthConfig{
			AccessTokenExpireMinutes: 15,
			RefreshTokenExpireDays:   7,
		},
		RemoteHost: RemoteHostConfig{
			Listen: ":3001",
		},
	}
}

// Validate checks the loaded document for deployment mistakes.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Shell.Listen) == "" {
		return fmt.Errorf("config: shell.listen is required")
	}
	if strings.TrimSpace(c.MockAPI.Listen) == "" {
		return fmt.Errorf("config: mockapi.listen is required")
	}
	if c.MockAPI.DelayMS < 0 {
		return fmt.Errorf("config: mockapi.delay_ms must not be negative")
	}

	byName := make(map[string]bool, len(c.Remotes))
	for _, d := range c.Remotes {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if byName[d.Name] {
			return fmt.Errorf("config: remote %q declared twice", d.Name)
		}
		byName[d.Name] = true
	}

	seenRoutes := make(map[string]bool, len(c.Sections))
	for _, s := range c.Sections {
		if strings.TrimSpace(s.Route) == "" {
			return fmt.Errorf("config: section %q: route is required", s.Title)
		}
		if seenRoutes[s.Route] {
			return fmt.Errorf("config: route %q declared twice", s.Route)
		}
		seenRoutes[s.Route] = true
		if !byName[s.Remote] {
			return fmt.Errorf("config: section %q references unknown remote %q", s.Title, s.Remote)
		}
	}
	return nil
}

// BuildRegistry constructs the read-only remote registry from the config.
func (c *Config) BuildRegistry() (*registry.Registry, error) {
	return registry.FromDescriptors(c.Remotes)
}

// applyEnv resolves environment overrides and secrets. Secrets may come
// from *_FILE paths (container secret mounts) with plain variables as
// fallback, matching how the original deployment injected them.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("SHELL_LISTEN")); v != "" {
		c.Shell.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("MOCKAPI_LISTEN")); v != "" {
		c.MockAPI.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("REMOTEHOST_LISTEN")); v != "" {
		c.RemoteHost.Listen = v
	}
	if v := strings.TrimSpace(os.Getenv("MOCKAPI_DELAY_MS")); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			c.MockAPI.DelayMS = ms
		}
	}
	if v := strings.TrimSpace(os.Getenv("CORS_ORIGINS")); v != "" {
		parts := strings.Split(v, ",")
		origins := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				origins = append(origins, trimmed)
			}
		}
		if len(origins) > 0 {
			c.MockAPI.CORSOrigins = origins
		}
	}

	c.Auth.SecretKey = secretFromEnv("JWT_SECRET_KEY", "dev-secret-key-change-in-production")
	c.Auth.RefreshSecretKey = secretFromEnv("JWT_REFRESH_SECRET_KEY", "dev-refresh-secret-key-change-in-production")
}

func secretFromEnv(name, fallback string) string {
	if path := strings.TrimSpace(os.Getenv(name + "_FILE")); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if secret := strings.TrimSpace(string(data)); secret != "" {
				return secret
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}
