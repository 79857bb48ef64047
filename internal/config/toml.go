// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Rank  RankConfig  `toml:"rank"`
	Paths PathsConfig `toml:"paths"`
}

// RankConfig maps ranking toggles.
type RankConfig struct {
	IncludeDLC        *bool     `toml:"include-dlc"`
	CountUnachievable *bool     `toml:"count-unachievable"`
	UnachievableGames *[]string `toml:"unachievable-games"`
	Top               *int      `toml:"top"`
}

// PathsConfig maps input and output locations.
type PathsConfig struct {
	Unlocked *string `toml:"unlocked"`
	Locked   *string `toml:"locked"`
	OutDir   *string `toml:"out-dir"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
