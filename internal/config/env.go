package config

import (
	"fmt"
	"strconv"
	"strings"
)

// envSetters maps environment variables, without the prefix, to setters.
var envSetters = map[string]func(c *Config, v string) error{
	"EDITOR_BUCKET_SIZE": func(c *Config, v string) (err error) {
		c.Editor.BucketSize, err = strconv.Atoi(v)
		return err
	},
	"EDITOR_CHECKPOINT_INTERVAL": func(c *Config, v string) (err error) {
		c.Editor.CheckpointInterval, err = strconv.ParseUint(v, 10, 64)
		return err
	},
	"EDITOR_MAX_EDIT_BYTES": func(c *Config, v string) (err error) {
		c.Editor.MaxEditBytes, err = strconv.Atoi(v)
		return err
	},
	"LEXER_NAME":   func(c *Config, v string) error { c.Lexer.Name = v; return nil },
	"LEXER_SCRIPT": func(c *Config, v string) error { c.Lexer.Script = v; return nil },
	"LOG_LEVEL":    func(c *Config, v string) error { c.Log.Level = v; return nil },
}

// ApplyEnv overlays STORMCORE_* variables from environ, given in
// os.Environ form. Unknown variables are ignored. Empty values are
// treated as set.
func (c *Config) ApplyEnv(environ []string) error {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		set, ok := envSetters[strings.TrimPrefix(name, EnvPrefix)]
		if !ok {
			continue
		}
		if err := set(c, value); err != nil {
			return fmt.Errorf("environment %s: %w", name, err)
		}
	}
	return nil
}
