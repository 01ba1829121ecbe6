package config

import (
	"github.com/arthur-debert/myquest/pkg/codec"
	"github.com/arthur-debert/myquest/pkg/errors"
	"github.com/arthur-debert/myquest/pkg/paths"
	"github.com/arthur-debert/myquest/pkg/storage"
	"github.com/pelletier/go-toml/v2"
)

// Storage holds the persistence settings shared by every document
type Storage struct {
	CreateDirs   bool `koanf:"create_dirs" toml:"create_dirs"`
	BackupOnSave bool `koanf:"backup_on_save" toml:"backup_on_save"`
	MaxBackups   int  `koanf:"max_backups" toml:"max_backups"`
}

// Formats names the codec used for each document
type Formats struct {
	Habits   string `koanf:"habits" toml:"habits"`
	Todos    string `koanf:"todos" toml:"todos"`
	Timeline string `koanf:"timeline" toml:"timeline"`
}

// Timeline holds timeline selection settings
type Timeline struct {
	DefaultName string `koanf:"default_name" toml:"default_name"`
}

// Logging holds logging settings
type Logging struct {
	Verbosity int `koanf:"verbosity" toml:"verbosity"`
	// File is the JSON log file. Empty means <state dir>/myquest.log,
	// "off" disables file logging.
	File string `koanf:"file" toml:"file"`
}

// LogFileOff disables the log file
const LogFileOff = "off"

// LogFile resolves the configured log file against the default location
func (l Logging) LogFile(defaultPath string) string {
	switch l.File {
	case "":
		return defaultPath
	case LogFileOff:
		return ""
	default:
		return paths.ExpandHome(l.File)
	}
}

// Config is the main configuration structure
type Config struct {
	Storage  Storage  `koanf:"storage" toml:"storage"`
	Formats  Formats  `koanf:"formats" toml:"formats"`
	Timeline Timeline `koanf:"timeline" toml:"timeline"`
	Logging  Logging  `koanf:"logging" toml:"logging"`
}

// Default returns the embedded default configuration
func Default() *Config {
	cfg, err := Load(LoadOptions{SkipEnv: true})
	if err != nil {
		// Fallback to hardcoded values if the embedded file is broken
		return &Config{
			Storage:  Storage{CreateDirs: true, BackupOnSave: true, MaxBackups: 5},
			Formats:  Formats{Habits: "json", Todos: "json", Timeline: "yaml"},
			Timeline: Timeline{DefaultName: "default"},
		}
	}
	return cfg
}

// Validate checks values that the loader cannot type-check
func (c *Config) Validate() error {
	if c.Storage.MaxBackups < 0 {
		return errors.New(errors.ErrConfigValid, "storage.max_backups must not be negative").
			WithDetail("max_backups", c.Storage.MaxBackups)
	}
	for key, name := range map[string]string{
		"formats.habits":   c.Formats.Habits,
		"formats.todos":    c.Formats.Todos,
		"formats.timeline": c.Formats.Timeline,
	} {
		if _, err := codec.ByName(name); err != nil {
			return errors.Wrapf(err, errors.ErrConfigValid, "%s: unknown format %q", key, name).
				WithDetail("known", codec.Names())
		}
	}
	if err := paths.ValidateName(c.Timeline.DefaultName); err != nil {
		return errors.Wrap(err, errors.ErrConfigValid, "timeline.default_name is not a valid name")
	}
	return nil
}

// StorageConfig returns the immutable storage settings for a document
// stored in the given format.
func (c *Config) StorageConfig(format string) storage.Config {
	return storage.Config{
		CreateDirs:   c.Storage.CreateDirs,
		BackupOnSave: c.Storage.BackupOnSave,
		MaxBackups:   c.Storage.MaxBackups,
		Extension:    format,
	}
}

// TOML renders the effective configuration
func (c *Config) TOML() ([]byte, error) {
	out, err := toml.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrEncode, "failed to render configuration")
	}
	return out, nil
}
