// Package config holds the runtime settings of the demo and soundcheck.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. SOUNDSTAGE_DEBUG=true.
const EnvPrefix = "SOUNDSTAGE"

// Config holds all runtime settings. Sound content lives in prefabs/audio.yaml.
type Config struct {
	SampleRate    int     `mapstructure:"sample_rate"`
	MasterVolume  float64 `mapstructure:"master_volume"`
	MusicVolume   float64 `mapstructure:"music_volume"`
	EffectsVolume float64 `mapstructure:"effects_volume"`

	// Debug enables nil clip warnings and other development diagnostics.
	Debug bool `mapstructure:"debug"`

	// AssetDir overlays clips on disk over the embedded ones.
	AssetDir string `mapstructure:"asset_dir"`

	// Watch reloads prefabs/audio.yaml when it changes on disk.
	Watch bool `mapstructure:"watch"`

	// Playlist overrides the default ambient playlist.
	Playlist string `mapstructure:"playlist"`
}

func Defaults() Config {
	return Config{
		SampleRate:    44100,
		MasterVolume:  1,
		MusicVolume:   0.6,
		EffectsVolume: 1,
	}
}

// Load reads path (if non-empty) over the defaults and applies SOUNDSTAGE_*
// environment overrides.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("sample_rate", d.SampleRate)
	v.SetDefault("master_volume", d.MasterVolume)
	v.SetDefault("music_volume", d.MusicVolume)
	v.SetDefault("effects_volume", d.EffectsVolume)
	v.SetDefault("debug", d.Debug)
	v.SetDefault("asset_dir", d.AssetDir)
	v.SetDefault("watch", d.Watch)
	v.SetDefault("playlist", d.Playlist)
}

func (c Config) Validate() error {
	var errs []error
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		errs = append(errs, fmt.Errorf("sample_rate %d out of range [8000, 192000]", c.SampleRate))
	}
	for _, vol := range []struct {
		key string
		v   float64
	}{
		{"master_volume", c.MasterVolume},
		{"music_volume", c.MusicVolume},
		{"effects_volume", c.EffectsVolume},
	} {
		if vol.v < 0 || vol.v > 1 {
			errs = append(errs, fmt.Errorf("%s %v out of range [0, 1]", vol.key, vol.v))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}
