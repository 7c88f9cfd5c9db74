// Package config provides Viper-based configuration loading for the
// composition tools.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/paperdoll/internal/game/color"
	"github.com/cory-johannsen/paperdoll/internal/game/part"
)

// Storage drivers.
const (
	DriverFile     = "file"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// CatalogConfig locates the content the engine is built from.
type CatalogConfig struct {
	// PartsDir is the directory tree of part YAML files.
	PartsDir string `mapstructure:"parts_dir"`
	// SetupPath is a rig setup YAML file; empty selects the built-in rig.
	SetupPath string `mapstructure:"setup_path"`
	// PalettePath is a palette YAML file; empty selects the default palette.
	PalettePath string `mapstructure:"palette_path"`
}

// CompositionConfig holds the initial state of a new composition.
type CompositionConfig struct {
	// BodyType is "male" or "female".
	BodyType string `mapstructure:"body_type"`
	// InstanceMaterials clones stock materials per composition.
	InstanceMaterials bool `mapstructure:"instance_materials"`
	// SkinColor is a hex color.
	SkinColor string `mapstructure:"skin_color"`
	// TintColor is a hex color.
	TintColor string `mapstructure:"tint_color"`
}

// Body returns the parsed body type.
func (c CompositionConfig) Body() (part.BodyType, error) {
	return part.ParseBodyType(c.BodyType)
}

// Skin returns the parsed skin color.
func (c CompositionConfig) Skin() (color.Color, error) {
	return color.ParseHex(c.SkinColor)
}

// Tint returns the parsed tint color.
func (c CompositionConfig) Tint() (color.Color, error) {
	return color.ParseHex(c.TintColor)
}

// StorageConfig selects and configures the snapshot store.
type StorageConfig struct {
	// Driver is one of "file", "sqlite", "postgres".
	Driver string `mapstructure:"driver"`
	// Dir is the snapshot directory of the file driver.
	Dir string `mapstructure:"dir"`
	// SQLitePath is the database file of the sqlite driver.
	SQLitePath string `mapstructure:"sqlite_path"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging     LoggingConfig     `mapstructure:"logging"`
	Catalog     CatalogConfig     `mapstructure:"catalog"`
	Composition CompositionConfig `mapstructure:"composition"`
	Storage     StorageConfig     `mapstructure:"storage"`
	Database    DatabaseConfig    `mapstructure:"database"`
}

// Validate checks all configuration invariants. Database settings are only
// checked when the postgres storage driver is selected.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCatalog(c.Catalog); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateComposition(c.Composition); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateStorage(c.Storage); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Storage.Driver == DriverPostgres {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCatalog(c CatalogConfig) error {
	if strings.TrimSpace(c.PartsDir) == "" {
		return errors.New("catalog.parts_dir must not be empty")
	}
	return nil
}

func validateComposition(c CompositionConfig) error {
	var errs []string
	if _, err := c.Body(); err != nil {
		errs = append(errs, fmt.Sprintf("composition.body_type: %v", err))
	}
	if _, err := c.Skin(); err != nil {
		errs = append(errs, fmt.Sprintf("composition.skin_color: %v", err))
	}
	if _, err := c.Tint(); err != nil {
		errs = append(errs, fmt.Sprintf("composition.tint_color: %v", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateStorage(s StorageConfig) error {
	switch s.Driver {
	case DriverFile:
		if strings.TrimSpace(s.Dir) == "" {
			return errors.New("storage.dir must not be empty for the file driver")
		}
	case DriverSQLite:
		if strings.TrimSpace(s.SQLitePath) == "" {
			return errors.New("storage.sqlite_path must not be empty for the sqlite driver")
		}
	case DriverPostgres:
	default:
		return fmt.Errorf("storage.driver must be one of [file, sqlite, postgres], got %q", s.Driver)
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and PAPERDOLL_ environment
// overrides applied, for callers running without a config file.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("PAPERDOLL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("catalog.parts_dir", "content/parts")
	v.SetDefault("catalog.setup_path", "")
	v.SetDefault("catalog.palette_path", "")

	v.SetDefault("composition.body_type", "male")
	v.SetDefault("composition.instance_materials", true)
	v.SetDefault("composition.skin_color", "#808080")
	v.SetDefault("composition.tint_color", "#ffffff")

	v.SetDefault("storage.driver", DriverFile)
	v.SetDefault("storage.dir", "data/compositions")
	v.SetDefault("storage.sqlite_path", "data/paperdoll.db")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "paperdoll")
	v.SetDefault("database.password", "paperdoll")
	v.SetDefault("database.name", "paperdoll")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
}
