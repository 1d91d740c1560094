// Package config loads stormcore settings.
//
// Settings come from, in increasing precedence: built-in defaults, a TOML
// or YAML file, and STORMCORE_* environment variables. Watch reloads the
// file when it changes.
package config

import (
	"errors"
	"slices"
	"strings"

	"github.com/dshills/stormcore/internal/engine/contents"
	"github.com/dshills/stormcore/internal/engine/token"
	"github.com/dshills/stormcore/internal/lexer"
)

// Config is the complete configuration.
type Config struct {
	Editor Editor `toml:"editor" yaml:"editor"`
	Lexer  Lexer  `toml:"lexer" yaml:"lexer"`
	Log    Log    `toml:"log" yaml:"log"`
}

// Editor tunes the core engine.
type Editor struct {
	// BucketSize is the capacity of a contents bucket in bytes.
	BucketSize int `toml:"bucket_size" yaml:"bucket_size"`
	// CheckpointInterval is the minimum distance between token checkpoints.
	CheckpointInterval uint64 `toml:"checkpoint_interval" yaml:"checkpoint_interval"`
	// MaxEditBytes bounds payload bytes per transaction. Zero is unlimited.
	MaxEditBytes int `toml:"max_edit_bytes" yaml:"max_edit_bytes"`
}

// Lexer selects the tokenizer.
type Lexer struct {
	// Name is a built-in lexer: "plain", "general" or "auto" to pick by
	// file extension.
	Name string `toml:"name" yaml:"name"`
	// Script is a Lua lexer script. It takes precedence over Name.
	Script string `toml:"script" yaml:"script"`
}

// Log configures the logger.
type Log struct {
	Level string `toml:"level" yaml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Editor: Editor{
			BucketSize:         contents.DefaultBucketSize,
			CheckpointInterval: token.DefaultInterval,
		},
		Lexer: Lexer{Name: "auto"},
		Log:   Log{Level: "info"},
	}
}

var logLevels = []string{"debug", "info", "warn", "warning", "error"}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Editor.BucketSize < 16 {
		errs = append(errs, &ValidationError{"editor.bucket_size", "must be at least 16", c.Editor.BucketSize})
	}
	if c.Editor.CheckpointInterval == 0 {
		errs = append(errs, &ValidationError{"editor.checkpoint_interval", "must be positive", c.Editor.CheckpointInterval})
	}
	if c.Editor.MaxEditBytes < 0 {
		errs = append(errs, &ValidationError{"editor.max_edit_bytes", "must not be negative", c.Editor.MaxEditBytes})
	}
	if !strings.EqualFold(c.Lexer.Name, "auto") {
		if _, err := lexer.ByName(c.Lexer.Name); err != nil {
			errs = append(errs, &ValidationError{"lexer.name", "unknown lexer", c.Lexer.Name})
		}
	}
	if !slices.Contains(logLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, &ValidationError{"log.level", "must be debug, info, warn or error", c.Log.Level})
	}
	return errors.Join(errs...)
}
