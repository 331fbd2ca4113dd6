package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"oscreplay/player"
)

type Config struct {
	Playback PlaybackConfig `yaml:"playback"`
	Input    InputConfig    `yaml:"input"`
	HTTP     HTTPConfig     `yaml:"http"`
}

type PlaybackConfig struct {
	Host              string  `yaml:"host" env:"OSCREPLAY_HOST"`
	Port              int     `yaml:"port" env:"OSCREPLAY_PORT"`
	Speed             float64 `yaml:"speed" env:"OSCREPLAY_SPEED"`
	Loop              bool    `yaml:"loop" env:"OSCREPLAY_LOOP"`
	InterruptibleStop bool    `yaml:"interruptible_stop" env:"OSCREPLAY_INTERRUPTIBLE_STOP"`
}

type InputConfig struct {
	Path string `yaml:"path" env:"OSCREPLAY_INPUT"`
}

// HTTPConfig enables the control API when Addr is set.
type HTTPConfig struct {
	Addr string `yaml:"addr" env:"OSCREPLAY_HTTP_ADDR"`
}

// Load reads path (optional), applies environment overrides, then defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Playback.Host == "" {
		c.Playback.Host = player.DefaultHost
	}
	if c.Playback.Port == 0 {
		c.Playback.Port = player.DefaultPort
	}
	if c.Playback.Speed == 0 {
		c.Playback.Speed = player.DefaultSpeed
	}
}

func (c *Config) Validate() error {
	pc := c.Player()
	if err := pc.Validate(); err != nil {
		return fmt.Errorf("playback config: %w", err)
	}
	if _, err := pc.Destination(); err != nil {
		return fmt.Errorf("playback config: %w", err)
	}
	return nil
}

func (c *Config) Player() player.Config {
	return player.Config{
		Host:              c.Playback.Host,
		Port:              c.Playback.Port,
		Speed:             c.Playback.Speed,
		Loop:              c.Playback.Loop,
		InterruptibleStop: c.Playback.InterruptibleStop,
	}
}
