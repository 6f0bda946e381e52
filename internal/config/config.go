package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

// Database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
	Coach     CoachConfig     `yaml:"coach"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Driver   string `yaml:"driver"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
	// Path is the SQLite snapshot file, used when Driver is "sqlite".
	Path string `yaml:"path"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
	// DevUserID is the user every request acts as when Tailscale identity
	// is off.
	DevUserID string `yaml:"dev_user_id"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type CoachConfig struct {
	DefaultTargetRPE float64 `yaml:"default_target_rpe"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// DevUser returns the parsed dev user ID, or uuid.Nil when none is set.
func (a AuthConfig) DevUser() uuid.UUID {
	id, err := uuid.Parse(a.DevUserID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func defaults() *Config {
	return &Config{
		Database:  DatabaseConfig{Driver: DriverPostgres},
		Tailscale: TailscaleConfig{Hostname: "liftcoach"},
		Coach:     CoachConfig{DefaultTargetRPE: 8},
	}
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix LIFTCOACH_ and underscore-separated paths:
//
//	LIFTCOACH_SERVER_HOST, LIFTCOACH_SERVER_PORT,
//	LIFTCOACH_DB_DRIVER, LIFTCOACH_DB_HOST, LIFTCOACH_DB_PORT, LIFTCOACH_DB_NAME,
//	LIFTCOACH_DB_USER, LIFTCOACH_DB_PASSWORD, LIFTCOACH_DB_SSLMODE, LIFTCOACH_DB_PATH,
//	LIFTCOACH_AUTH_API_KEY, LIFTCOACH_DEV_USER_ID,
//	LIFTCOACH_TS_ENABLED, LIFTCOACH_TS_HOSTNAME,
//	LIFTCOACH_DEFAULT_TARGET_RPE
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LIFTCOACH_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("LIFTCOACH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("LIFTCOACH_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("LIFTCOACH_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("LIFTCOACH_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("LIFTCOACH_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("LIFTCOACH_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("LIFTCOACH_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("LIFTCOACH_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("LIFTCOACH_DB_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("LIFTCOACH_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("LIFTCOACH_DEV_USER_ID"); v != "" {
		cfg.Auth.DevUserID = v
	}
	if v := os.Getenv("LIFTCOACH_TS_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Tailscale.Enabled = enabled
		}
	}
	if v := os.Getenv("LIFTCOACH_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("LIFTCOACH_DEFAULT_TARGET_RPE"); v != "" {
		if rpe, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Coach.DefaultTargetRPE = rpe
		}
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 && !c.Tailscale.Enabled {
		return fmt.Errorf("server.port is required")
	}
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Host == "" {
			return fmt.Errorf("database.host is required")
		}
		if c.Database.Port == 0 {
			return fmt.Errorf("database.port is required")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("database.name is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database.user is required")
		}
	case DriverSQLite:
		if c.Database.Path == "" {
			return fmt.Errorf("database.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("database.driver %q is not one of %s, %s", c.Database.Driver, DriverPostgres, DriverSQLite)
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Auth.DevUserID != "" {
		if _, err := uuid.Parse(c.Auth.DevUserID); err != nil {
			return fmt.Errorf("auth.dev_user_id: %w", err)
		}
	}
	if !c.Tailscale.Enabled && c.Auth.DevUserID == "" {
		return fmt.Errorf("auth.dev_user_id is required when tailscale is disabled")
	}
	if c.Tailscale.Enabled && c.Tailscale.Hostname == "" {
		return fmt.Errorf("tailscale.hostname is required")
	}
	if rpe := c.Coach.DefaultTargetRPE; rpe < 0 || rpe > 10 {
		return fmt.Errorf("coach.default_target_rpe must be within [0, 10], got %v", rpe)
	}
	return nil
}
