// Package config loads chess50 settings from a YAML file, CHESS50_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hailam/chess50/internal/board"
)

const (
	appName   = "chess50"
	envPrefix = "CHESS50"
)

var ErrInvalidConfig = errors.New("invalid config")

// Rules engines the self-play search can run on.
const (
	RulesBuiltin = "builtin"
	RulesNotnil  = "notnil"
)

type SelfPlay struct {
	Games    int `mapstructure:"games"`
	Workers  int `mapstructure:"workers"`
	MaxPlies int `mapstructure:"max_plies"`
}

type Config struct {
	Depth       int      `mapstructure:"depth"`
	LogLevel    string   `mapstructure:"log_level"`
	LogPretty   bool     `mapstructure:"log_pretty"`
	DataDir     string   `mapstructure:"data_dir"`
	Seed        string   `mapstructure:"seed"`
	PlayerColor string   `mapstructure:"player_color"`
	Rules       string   `mapstructure:"rules"`
	SelfPlay    SelfPlay `mapstructure:"selfplay"`

	// Args holds the positional arguments left after flag parsing.
	Args []string `mapstructure:"-"`
	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("depth", 3)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_pretty", true)
	v.SetDefault("data_dir", "")
	v.SetDefault("seed", "")
	v.SetDefault("player_color", "white")
	v.SetDefault("rules", RulesBuiltin)
	v.SetDefault("selfplay.games", 4)
	v.SetDefault("selfplay.workers", 2)
	v.SetDefault("selfplay.max_plies", 200)
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"depth":              "depth",
	"log-level":          "log_level",
	"log-pretty":         "log_pretty",
	"data-dir":           "data_dir",
	"seed":               "seed",
	"color":              "player_color",
	"rules":              "rules",
	"selfplay-games":     "selfplay.games",
	"selfplay-workers":   "selfplay.workers",
	"selfplay-max-plies": "selfplay.max_plies",
}

func newFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	fs.String("config", "", "config file (default ./chess50.yaml)")
	fs.Int("depth", 3, "search depth in plies")
	fs.String("log-level", "info", "trace, debug, info, warn or error")
	fs.Bool("log-pretty", true, "human-readable log output on stderr")
	fs.String("data-dir", "", "directory for saved games and stats")
	fs.String("seed", "", "64 hex digits seeding the engine; empty for random")
	fs.String("color", "white", "side the human plays in the shell")
	fs.String("rules", RulesBuiltin, "rules engine self-play searches on: builtin or notnil")
	fs.Int("selfplay-games", 4, "number of self-play games")
	fs.Int("selfplay-workers", 2, "self-play games run at once")
	fs.Int("selfplay-max-plies", 200, "self-play games stop after this many plies")
	return fs
}

// Load reads the configuration. args are the command-line arguments
// without the program name.
func Load(args []string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	fs := newFlagSet()
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, fs.Lookup(name)); err != nil {
			return nil, err
		}
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing default config file is fine, a missing explicit one is not.
	file, _ := fs.GetString("config")
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(appName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, appName))
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Args = fs.Args()
	cfg.File = v.ConfigFileUsed()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Depth < 1 {
		return fmt.Errorf("%w: depth must be at least 1, got %d", ErrInvalidConfig, c.Depth)
	}
	if _, err := c.Color(); err != nil {
		return err
	}
	if _, err := c.SeedBytes(); err != nil {
		return err
	}
	if c.Rules != RulesBuiltin && c.Rules != RulesNotnil {
		return fmt.Errorf("%w: rules %q", ErrInvalidConfig, c.Rules)
	}
	if c.SelfPlay.Games < 0 || c.SelfPlay.Workers < 1 || c.SelfPlay.MaxPlies < 1 {
		return fmt.Errorf("%w: selfplay needs games >= 0, workers >= 1 and max_plies >= 1", ErrInvalidConfig)
	}
	return nil
}

// Color is the side the human plays.
func (c *Config) Color() (board.Color, error) {
	switch strings.ToLower(c.PlayerColor) {
	case "white", "w":
		return board.White, nil
	case "black", "b":
		return board.Black, nil
	}
	return board.NoColor, fmt.Errorf("%w: player_color %q", ErrInvalidConfig, c.PlayerColor)
}

// SeedBytes decodes the engine seed. It returns nil when no seed is set.
func (c *Config) SeedBytes() ([]byte, error) {
	if c.Seed == "" {
		return nil, nil
	}
	seed, err := hex.DecodeString(c.Seed)
	if err != nil || len(seed) != 32 {
		return nil, fmt.Errorf("%w: seed must be 64 hex digits", ErrInvalidConfig)
	}
	return seed, nil
}
