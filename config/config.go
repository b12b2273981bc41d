package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

const (
	FileName  = "dronesim"
	EnvPrefix = "DRONESIM"
)

// Config is the process configuration of the simulation driver.
type Config struct {
	LogLevel  string    `mapstructure:"logLevel"`
	LogFormat string    `mapstructure:"logFormat"`
	Log       LogConfig `mapstructure:"log"`
	Sim       SimConfig `mapstructure:"sim"`
}

// LogConfig selects where drone state changes are persisted.
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	File       string `mapstructure:"file"`
	Sink       string `mapstructure:"sink"`
	SQLitePath string `mapstructure:"sqlitePath"`
}

type SimConfig struct {
	Ticks    int    `mapstructure:"ticks"`
	Seed     uint64 `mapstructure:"seed"`
	Profile  string `mapstructure:"profile"`
	Scenario string `mapstructure:"scenario"`
	Watch    bool   `mapstructure:"watch"`
}

// Sink kinds accepted by log.sink.
const (
	SinkFile   = "file"
	SinkSQLite = "sqlite"
	SinkBoth   = "both"
	SinkNone   = "none"
)

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logFormat", "text")

	viper.SetDefault("log.dir", "./logs")
	viper.SetDefault("log.file", "drone_state.log")
	viper.SetDefault("log.sink", SinkFile)
	viper.SetDefault("log.sqlitePath", "./logs/drone_state.db")

	viper.SetDefault("sim.ticks", 1200)
	viper.SetDefault("sim.seed", 1)
	viper.SetDefault("sim.profile", "drone.yaml")
	viper.SetDefault("sim.scenario", "scenario.yaml")
	viper.SetDefault("sim.watch", false)
}

// Load reads dronesim.yaml from configDir when present, applies DRONESIM_*
// environment overrides and defaults, and returns the result. A missing
// file is not an error.
func Load(configDir string) (Config, error) {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.SetConfigType("yaml")
	if configDir != "" {
		viper.AddConfigPath(configDir)
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if lvl := strings.TrimSpace(c.LogLevel); lvl != "" {
		if _, err := zerolog.ParseLevel(strings.ToLower(lvl)); err != nil {
			return fmt.Errorf("invalid logLevel %q: %w", c.LogLevel, err)
		}
	}
	switch c.Log.Sink {
	case SinkFile, SinkSQLite, SinkBoth, SinkNone:
	default:
		return fmt.Errorf("invalid log.sink %q: want %s, %s, %s or %s", c.Log.Sink, SinkFile, SinkSQLite, SinkBoth, SinkNone)
	}
	if c.Sim.Ticks < 0 {
		return fmt.Errorf("invalid sim.ticks %d", c.Sim.Ticks)
	}
	return nil
}

// UsesFileSink reports whether state changes go to the text log.
func (c Config) UsesFileSink() bool {
	return c.Log.Sink == SinkFile || c.Log.Sink == SinkBoth
}

func (c Config) UsesSQLiteSink() bool {
	return c.Log.Sink == SinkSQLite || c.Log.Sink == SinkBoth
}
