package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

type env struct {
	HilbertOrder     int    `mapstructure:"HILBERT_ORDER"`
	CanvasWidth      int    `mapstructure:"CANVAS_WIDTH"`
	Margin           int    `mapstructure:"MARGIN"`
	UseCanvas        bool   `mapstructure:"USE_CANVAS"`
	EnableZoom       bool   `mapstructure:"ENABLE_ZOOM"`
	ShowValueTooltip bool   `mapstructure:"SHOW_VALUE_TOOLTIP"`
	ShowRangeTooltip bool   `mapstructure:"SHOW_RANGE_TOOLTIP"`
	PickThreshold    int    `mapstructure:"PICK_THRESHOLD"`
	LODCeiling       int    `mapstructure:"LOD_CEILING"`
	Coarsen          bool   `mapstructure:"COARSEN"`
	Port             uint   `mapstructure:"PORT"`
	DBUrl            string `mapstructure:"DB_URL"`
	Dataset          string `mapstructure:"DATASET"`
	APIHost          string `mapstructure:"API_HOST"`
	LiveReload       bool   `mapstructure:"LIVE_RELOAD"`
}

var defaults = map[string]any{
	"HILBERT_ORDER":      8,
	"CANVAS_WIDTH":       512,
	"MARGIN":             90,
	"USE_CANVAS":         true,
	"ENABLE_ZOOM":        true,
	"SHOW_VALUE_TOOLTIP": true,
	"SHOW_RANGE_TOOLTIP": true,
	"PICK_THRESHOLD":     10000,
	"LOD_CEILING":        5000,
	"COARSEN":            true,
	"PORT":               8080,
	"DB_URL":             "hilbert.db",
	"DATASET":            "demo",
	"API_HOST":           "localhost:8080",
	"LIVE_RELOAD":        false,
}

type Config struct {
	env *env
}

var cfgInstance *Config

// NewConfig loads ./.env once and panics on malformed input.
func NewConfig() *Config {
	if cfgInstance != nil {
		return cfgInstance
	}
	cfg, err := Load(".env")
	if err != nil {
		panic(err)
	}
	cfgInstance = cfg
	return cfgInstance
}

// Load reads an env file, overlaid by the process environment. A missing
// file leaves the defaults in place.
func Load(path string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading config: %w", err)
	}

	var env env
	if err := v.Unmarshal(&env); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &Config{&env}, nil
}

func (c *Config) HilbertOrder() int {
	return c.env.HilbertOrder
}

func (c *Config) CanvasWidth() int {
	return c.env.CanvasWidth
}

func (c *Config) Margin() int {
	return c.env.Margin
}

func (c *Config) UseCanvas() bool {
	return c.env.UseCanvas
}

func (c *Config) EnableZoom() bool {
	return c.env.EnableZoom
}

func (c *Config) ShowValueTooltip() bool {
	return c.env.ShowValueTooltip
}

func (c *Config) ShowRangeTooltip() bool {
	return c.env.ShowRangeTooltip
}

func (c *Config) PickThreshold() int {
	return c.env.PickThreshold
}

func (c *Config) LODCeiling() int {
	return c.env.LODCeiling
}

// Coarsen lays aligned blocks out at a lower curve order, which keeps
// datasets of large blocks cheap to lay out.
func (c *Config) Coarsen() bool {
	return c.env.Coarsen
}

func (c *Config) Port() uint {
	return c.env.Port
}

func (c *Config) DBUrl() string {
	return c.env.DBUrl
}

func (c *Config) Dataset() string {
	return c.env.Dataset
}

// APIHost is the server the terminal client connects to.
func (c *Config) APIHost() string {
	return c.env.APIHost
}

// LiveReload makes served pages reload when the server restarts.
func (c *Config) LiveReload() bool {
	return c.env.LiveReload
}
