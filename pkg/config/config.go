// Package config loads driver settings from CUE files.
package config

import (
	"errors"
	"fmt"
)

// Schema is the closed CUE schema every config file is unified with.
const Schema = `
output?: string
width?: "byte" | "dword"
loop?: "do-while" | "pre-test"
verify?: bool
log?: close({
	level?: "debug" | "info" | "warn" | "error"
	journal?: bool
})
`

type Log struct {
	Level   string `json:"level"`
	Journal bool   `json:"journal"`
}

type Config struct {
	Output string `json:"output"`
	Width  string `json:"width"`
	Loop   string `json:"loop"`
	Verify bool   `json:"verify"`
	Log    Log    `json:"log"`
}

func Default() Config {
	return Config{
		Width: "byte",
		Loop:  "do-while",
		Log: Log{
			Level: "warn",
		},
	}
}

// Load returns Default overlaid with every key found in loader. Keys that
// are absent keep their default.
func Load(loader Loader) (Config, error) {
	cfg := Default()
	if err := loader.Err(); err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	fields := []struct {
		path   string
		target any
	}{
		{"output", &cfg.Output},
		{"width", &cfg.Width},
		{"loop", &cfg.Loop},
		{"verify", &cfg.Verify},
		{"log.level", &cfg.Log.Level},
		{"log.journal", &cfg.Log.Journal},
	}
	for _, f := range fields {
		err := loader.AssignFirst(f.path, f.target)
		if err != nil && !errors.Is(err, ErrValueNotFound) {
			return cfg, fmt.Errorf("config %s: %w", f.path, err)
		}
	}
	return cfg, nil
}

// LoadFiles is Load over a fresh Loader for paths using Schema.
func LoadFiles(paths ...string) (Config, error) {
	return Load(NewLoader(paths, Schema))
}
