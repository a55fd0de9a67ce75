package config

import (
	"path/filepath"
	"strings"
)

// Version of the jessie runner
const Version = "0.3.0"

// ModuleFileExtensions are the recognized AST file extensions, in lookup order.
var ModuleFileExtensions = []string{".json", ".yaml", ".yml"}

// DefaultMaxDepth is the default nesting limit for dispatch.
// Prevents Go stack overflow from runaway recursion in guest programs.
const DefaultMaxDepth = 10000

// MaxArrayGap bounds how far past its end a single indexed write may grow
// an array. The gap is filled with undefined.
const MaxArrayGap = 1 << 16

// MaxArrayLength bounds the length an indexed write may give an array.
const MaxArrayLength = 1 << 24

// DefaultLogLevel is used when the configuration does not name one.
const DefaultLogLevel = "warn"

// OutputStdout is the only target writeOutput accepts.
const OutputStdout = "-"

// Root scope names
const (
	UndefinedName = "undefined"
	NaNName       = "NaN"
	InfinityName  = "Infinity"
)

// Endowment names installed by the command line runner
const (
	ReadInputFuncName   = "readInput"
	WriteOutputFuncName = "writeOutput"
	ArgvName            = "ARGV"
)

// HasModuleExt reports whether path ends in a recognized AST extension.
func HasModuleExt(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range ModuleFileExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// IsYAML reports whether path names a YAML encoded AST.
func IsYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
