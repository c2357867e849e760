// Package config loads CLI and server configuration from defaults, an
// optional config file and RECTFIT_* environment variables.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/piwi3910/RectFit/internal/model"
)

// EnvPrefix is prepended to every environment variable, e.g.
// RECTFIT_ENGINE_MAX_TIME_MS for engine.max_time_ms.
const EnvPrefix = "RECTFIT"

type Config struct {
	Engine   model.FitSettings `mapstructure:"engine"`
	Store    StoreConfig       `mapstructure:"store"`
	Server   ServerConfig      `mapstructure:"server"`
	GCode    GCodeConfig       `mapstructure:"gcode"`
	LogLevel string            `mapstructure:"log_level"`
}

type StoreConfig struct {
	Path string `mapstructure:"path"` // .json for the file backend, .db/.sqlite for SQLite
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	Mode string `mapstructure:"mode"` // gin mode: debug, release or test
}

type GCodeConfig struct {
	model.CutSettings `mapstructure:",squash"`
	ProfilesPath      string `mapstructure:"profiles_path"` // Optional JSON file of custom profiles
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Engine:   model.DefaultSettings(),
		Store:    StoreConfig{Path: "rectfit-results.json"},
		Server:   ServerConfig{Addr: ":8080", Mode: "release"},
		GCode:    GCodeConfig{CutSettings: model.DefaultCutSettings()},
		LogLevel: "info",
	}
}

// Load reads configuration. With an empty path it looks for rectfit.yaml
// (or .json/.toml) in the working directory. A missing file is not an
// error; defaults and environment variables still apply.
func Load(path string) (Config, error) {
	v := viper.New()
	if err := setDefaults(v, Default()); err != nil {
		return Config{}, err
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("rectfit")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var c Config
	err := v.Unmarshal(&c, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if _, err := model.ParseCentroidStrategy(string(c.Engine.CentroidStrategy)); err != nil {
		return Config{}, fmt.Errorf("invalid engine config: %w", err)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return Config{}, fmt.Errorf("invalid server mode %q", c.Server.Mode)
	}
	return c, nil
}

// setDefaults registers every field of d so that environment variables
// can override keys that appear in no config file. Keys follow the json
// tags, which match the mapstructure tags.
func setDefaults(v *viper.Viper, d Config) error {
	sections := map[string]any{
		"engine": d.Engine,
		"store":  map[string]any{"path": d.Store.Path},
		"server": map[string]any{"addr": d.Server.Addr, "mode": d.Server.Mode},
		"gcode":  d.GCode.CutSettings,
	}
	for name, section := range sections {
		data, err := json.Marshal(section)
		if err != nil {
			return fmt.Errorf("failed to encode %s defaults: %w", name, err)
		}
		var fields map[string]any
		if err := json.Unmarshal(data, &fields); err != nil {
			return fmt.Errorf("failed to decode %s defaults: %w", name, err)
		}
		for k, val := range fields {
			v.SetDefault(name+"."+k, val)
		}
	}
	v.SetDefault("gcode.profiles_path", d.GCode.ProfilesPath)
	v.SetDefault("log_level", d.LogLevel)
	return nil
}
