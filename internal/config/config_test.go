package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		path   string
	}{
		{"tiny bucket", func(c *Config) { c.Editor.BucketSize = 4 }, "editor.bucket_size"},
		{"zero interval", func(c *Config) { c.Editor.CheckpointInterval = 0 }, "editor.checkpoint_interval"},
		{"negative edit budget", func(c *Config) { c.Editor.MaxEditBytes = -1 }, "editor.max_edit_bytes"},
		{"unknown lexer", func(c *Config) { c.Lexer.Name = "cobol" }, "lexer.name"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrValidationFailed) {
				t.Fatalf("Validate() = %v, want ErrValidationFailed", err)
			}
			var verr *ValidationError
			if !errors.As(err, &verr) || verr.Path != tt.path {
				t.Errorf("Validate() = %v, want error for %s", err, tt.path)
			}
		})
	}
}

func writeFile(t *testing.T, name, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"toml", "stormcore.toml", "[editor]\nbucket_size = 64\n[lexer]\nname = \"general\"\n"},
		{"yaml", "stormcore.yaml", "editor:\n  bucket_size: 64\nlexer:\n  name: general\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(writeFile(t, tt.file, tt.data))
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			want := Default()
			want.Editor.BucketSize = 64
			want.Lexer.Name = "general"
			if diff := cmp.Diff(want, cfg); diff != "" {
				t.Errorf("config mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPrecedence(t *testing.T) {
	path := writeFile(t, "stormcore.toml", "[editor]\nbucket_size = 64\ncheckpoint_interval = 32\n[log]\nlevel = \"warn\"\n")
	t.Setenv("STORMCORE_EDITOR_CHECKPOINT_INTERVAL", "16")
	t.Setenv("STORMCORE_LEXER_SCRIPT", "lex.lua")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	want.Editor.BucketSize = 64         // file
	want.Editor.CheckpointInterval = 16 // env beats file
	want.Lexer.Script = "lex.lua"       // env
	want.Log.Level = "warn"             // file
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadErrors(t *testing.T) {
	t.Run("parse error", func(t *testing.T) {
		_, err := Load(writeFile(t, "bad.toml", "[editor\n"))
		var perr *ParseError
		if !errors.As(err, &perr) {
			t.Fatalf("Load() = %v, want ParseError", err)
		}
		if perr.Line < 1 {
			t.Errorf("Line = %d, want a position", perr.Line)
		}
	})
	t.Run("unknown format", func(t *testing.T) {
		_, err := Load(writeFile(t, "config.ini", "x=1"))
		if !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("Load() = %v, want ErrUnknownFormat", err)
		}
	})
	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("STORMCORE_EDITOR_BUCKET_SIZE", "big")
		if _, err := Load(""); err == nil {
			t.Error("Load() should reject a non-numeric bucket size")
		}
	})
	t.Run("invalid value", func(t *testing.T) {
		_, err := Load(writeFile(t, "c.yml", "log:\n  level: loud\n"))
		if !errors.Is(err, ErrValidationFailed) {
			t.Errorf("Load() = %v, want ErrValidationFailed", err)
		}
	})
}

func TestWatchReloads(t *testing.T) {
	path := writeFile(t, "stormcore.toml", "[log]\nlevel = \"info\"\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config, err error) {
			if err == nil {
				reloaded <- c
			}
		})
	}()

	deadline := time.After(5 * time.Second)
	for {
		// Rewrite until the watcher, which may still be starting, sees it.
		if err := os.WriteFile(path, []byte("[log]\nlevel = \"debug\"\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		select {
		case c := <-reloaded:
			if c.Log.Level != "debug" {
				t.Errorf("reloaded level = %q, want debug", c.Log.Level)
			}
			cancel()
			if err := <-done; !errors.Is(err, context.Canceled) {
				t.Errorf("Watch() = %v, want context.Canceled", err)
			}
			return
		case <-deadline:
			t.Fatal("no reload")
		case <-time.After(200 * time.Millisecond):
		}
	}
}
