// Package config loads the bootmgr settings from an optional YAML file, the environment and the command line.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/R-ARM/GamepadTools/internal/boot"
	"github.com/R-ARM/GamepadTools/internal/constants"
	"github.com/R-ARM/GamepadTools/internal/efivars"
	"github.com/go-logr/logr"
	"github.com/go-logr/stdr"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Supported values for the log_format key
const (
	FormatText = "text"
	FormatJSON = "json"
)

type Config struct {

	// The directory efivarfs is mounted at (Linux only)
	EfivarsDir string `yaml:"efivars_dir" mapstructure:"efivars_dir"`

	// A JSON variable store dump to use instead of the system variables
	StoreFile string `yaml:"store_file" mapstructure:"store_file"`

	// The size of the buffer each Boot#### variable is read into
	ScratchSize int `yaml:"scratch_size" mapstructure:"scratch_size"`

	// Hide entries that only point at a removable media fallback loader
	HideFallbackLoaders bool `yaml:"hide_fallback_loaders" mapstructure:"hide_fallback_loaders"`

	// The loader paths treated as fallbacks
	FallbackLoaders []string `yaml:"fallback_loaders" mapstructure:"fallback_loaders"`

	// The separator placed between device path labels when listing entries
	PathSeparator string `yaml:"path_separator" mapstructure:"path_separator"`

	LogLevel  string `yaml:"log_level" mapstructure:"log_level"`
	LogFormat string `yaml:"log_format" mapstructure:"log_format"`

	Log logr.Logger `yaml:"-" mapstructure:"-"`
}

// Options controls where the configuration is loaded from
type Options struct {

	// An explicit config file, which must exist when specified
	ConfigFile string

	// Command-line flags bound on top of the file and environment, keyed by flag name
	Flags *pflag.FlagSet

	// The filesystem config files are read from, defaults to the OS filesystem
	Fs afero.Fs

	// Receives log output, defaults to stderr
	LogOutput io.Writer
}

// Maps command-line flag names to the config keys they override
var flagKeys = map[string]string{
	"store":         "store_file",
	"hide-fallback": "hide_fallback_loaders",
	"log-level":     "log_level",
	"efivars-dir":   "efivars_dir",
}

// The directories searched for bootmgr.yaml when no config file is specified
func searchPaths() []string {
	paths := []string{filepath.Join("/etc", constants.APPLICATION)}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", constants.APPLICATION))
	}
	return append(paths, ".")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("efivars_dir", efivars.DefaultEfivarsDir)
	v.SetDefault("store_file", "")
	v.SetDefault("scratch_size", boot.DefaultScratchSize)
	v.SetDefault("hide_fallback_loaders", false)
	v.SetDefault("fallback_loaders", boot.DefaultFallbackLoaders)
	v.SetDefault("path_separator", " ")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", FormatText)
}

// Loads the configuration. Flags take precedence over the environment, which takes precedence over the file.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	if opts.Fs != nil {
		v.SetFs(opts.Fs)
	}
	setDefaults(v)

	// The config file is optional unless one was explicitly requested
	v.SetConfigType("yaml")
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(constants.APPLICATION)
		for _, path := range searchPaths() {
			v.AddConfigPath(path)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// BOOTMGR_LOG_LEVEL and friends
	v.SetEnvPrefix(constants.APPLICATION)
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if flag := opts.Flags.Lookup(name); flag != nil && flag.Changed {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
				}
			}
		}
	}

	conf := &Config{}
	if err := v.Unmarshal(conf); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}

	output := opts.LogOutput
	if output == nil {
		output = os.Stderr
	}
	conf.Log = NewLogger(conf.LogLevel, conf.LogFormat, output)
	return conf, nil
}

func (c *Config) validate() error {
	if c.ScratchSize <= 0 {
		return fmt.Errorf("invalid scratch_size %d: must be positive", c.ScratchSize)
	}
	switch c.LogFormat {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("invalid log_format \"%s\": expected \"%s\" or \"%s\"", c.LogFormat, FormatText, FormatJSON)
	}
	switch c.LogLevel {
	case "debug", "info":
	default:
		return fmt.Errorf("invalid log_level \"%s\": expected \"debug\" or \"info\"", c.LogLevel)
	}
	return nil
}

// Returns the display policy described by the configuration
func (c *Config) Policy() boot.Policy {
	return boot.Policy{
		HideFallbackLoaders: c.HideFallbackLoaders,
		FallbackLoaders:     c.FallbackLoaders,
	}
}

// Creates a logger writing to w. The "json" format uses the slog JSON handler, anything else a plain text logger.
// Level "debug" enables V(1) messages.
func NewLogger(level string, format string, w io.Writer) logr.Logger {
	if format == FormatJSON {
		return jsonLogger(level, w)
	}

	if level == "debug" {
		stdr.SetVerbosity(1)
	} else {
		stdr.SetVerbosity(0)
	}
	return stdr.New(log.New(w, "", log.LstdFlags))
}

// jsonLogger uses the slog logr implementation.
func jsonLogger(level string, w io.Writer) logr.Logger {
	// source file and function can be long, keep the last 3 parts of each.
	customAttr := func(_ []string, a slog.Attr) slog.Attr {
		if a.Key == slog.SourceKey {
			ss, ok := a.Value.Any().(*slog.Source)
			if !ok || ss == nil {
				return a
			}
			f := strings.Split(ss.Function, "/")
			if len(f) > 3 {
				ss.Function = filepath.Join(f[len(f)-3:]...)
			}
			p := strings.Split(ss.File, "/")
			if len(p) > 3 {
				ss.File = filepath.Join(p[len(p)-3:]...)
			}
		}
		return a
	}
	opts := &slog.HandlerOptions{AddSource: true, ReplaceAttr: customAttr}
	switch level {
	case "debug":
		opts.Level = slog.LevelDebug
	default:
		opts.Level = slog.LevelInfo
	}

	return logr.FromSlogHandler(slog.NewJSONHandler(w, opts))
}
