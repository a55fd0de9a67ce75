package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		depth   int
		level   slog.Level
		wantErr bool
	}{
		{"empty", "", DefaultMaxDepth, slog.LevelWarn, false},
		{"explicit", "maxDepth: 50\nlogLevel: DEBUG\n", 50, slog.LevelDebug, false},
		{"info", "logLevel: info\n", DefaultMaxDepth, slog.LevelInfo, false},
		{"negative depth", "maxDepth: -1\n", 0, 0, true},
		{"bad level", "logLevel: loud\n", 0, 0, true},
		{"not yaml", "maxDepth: [\n", 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.src))
			if tt.wantErr {
				if err == nil {
					t.Errorf("Parse(%q) succeeded, want an error", tt.src)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if cfg.MaxDepth != tt.depth {
				t.Errorf("MaxDepth = %d, want %d", cfg.MaxDepth, tt.depth)
			}
			if level, _ := cfg.Level(); level != tt.level {
				t.Errorf("Level = %v, want %v", level, tt.level)
			}
		})
	}
}

func TestLoadResolvesPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "jessie.yaml")
	src := `
scriptName: main.json
allow:
  - data/in.txt
  - /abs/in.txt
store: modules.db
endowments:
  greeting: hello
  limits: {max: 3}
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if want := filepath.Join(dir, "main.json"); cfg.ScriptName != want {
		t.Errorf("ScriptName = %q, want %q", cfg.ScriptName, want)
	}
	if want := filepath.Join(dir, "data", "in.txt"); cfg.Allow[0] != want {
		t.Errorf("Allow[0] = %q, want %q", cfg.Allow[0], want)
	}
	if cfg.Allow[1] != "/abs/in.txt" && filepath.IsAbs("/abs/in.txt") {
		t.Errorf("absolute allow entry rewritten to %q", cfg.Allow[1])
	}
	if want := filepath.Join(dir, "modules.db"); cfg.Store != want {
		t.Errorf("Store = %q, want %q", cfg.Store, want)
	}
	if cfg.Endowments["greeting"] != "hello" {
		t.Errorf("endowments = %v", cfg.Endowments)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "none.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}

func TestModuleExtensions(t *testing.T) {
	for path, want := range map[string]bool{"a.json": true, "a.YAML": true, "a.yml": true, "a.txt": false, "a": false} {
		if got := HasModuleExt(path); got != want {
			t.Errorf("HasModuleExt(%q) = %v, want %v", path, got, want)
		}
	}
	if !IsYAML("x.yml") || IsYAML("x.json") {
		t.Error("IsYAML misclassifies extensions")
	}
}
