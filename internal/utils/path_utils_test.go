package utils

import (
	"path/filepath"
	"testing"
)

func TestResolveImportPath(t *testing.T) {
	base := filepath.FromSlash("/srv/app/lib")
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"sibling", "./util.json", filepath.FromSlash("/srv/app/lib/util.json")},
		{"parent", "../main.json", filepath.FromSlash("/srv/app/main.json")},
		{"bare", "std/strings", "std/strings"},
		{"dotfile", ".hidden", ".hidden"},
		{"absolute", "/etc/mod.json", "/etc/mod.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveImportPath(base, tt.path); got != tt.expected {
				t.Errorf("ResolveImportPath(%q, %q) = %q, want %q", base, tt.path, got, tt.expected)
			}
		})
	}
}

func TestResolveImportPathIsAbsolute(t *testing.T) {
	got := ResolveImportPath("", "./mod.json")
	if !filepath.IsAbs(got) {
		t.Errorf("ResolveImportPath with empty base = %q, want an absolute path", got)
	}
}

func TestScriptDir(t *testing.T) {
	if got := ScriptDir("/a/b/mod.yaml"); got != "/a/b" {
		t.Errorf("ScriptDir(file) = %q, want /a/b", got)
	}
	if got := ScriptDir(""); !filepath.IsAbs(got) {
		t.Errorf("ScriptDir(\"\") = %q, want an absolute path", got)
	}
}
