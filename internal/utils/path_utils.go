package utils

import (
	"path/filepath"
	"strings"
)

// IsRelativeImport reports whether importPath starts with ./ or ../
func IsRelativeImport(importPath string) bool {
	return strings.HasPrefix(importPath, "./") || strings.HasPrefix(importPath, "../")
}

// ResolveImportPath resolves a relative import against baseDir, producing an
// absolute path. Any other path is returned as is.
func ResolveImportPath(baseDir, importPath string) string {
	if !IsRelativeImport(importPath) {
		return importPath
	}
	if baseDir == "" {
		baseDir = "."
	}
	joined := filepath.Join(baseDir, importPath)
	if abs, err := filepath.Abs(joined); err == nil {
		return abs
	}
	return joined
}

// ScriptDir returns the absolute directory of scriptName, or the working
// directory when scriptName is empty.
func ScriptDir(scriptName string) string {
	dir := "."
	if scriptName != "" {
		dir = filepath.Dir(scriptName)
	}
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}
