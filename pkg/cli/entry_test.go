package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, stdin string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := Main(context.Background(), args, strings.NewReader(stdin), &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		module  string
		argv    []string
		allowed []string
		wantErr bool
	}{
		{"module only", []string{"main.json"}, "main.json", []string{"main.json"}, nil, false},
		{"module args", []string{"-debug", "main.json", "a", "b"}, "main.json", []string{"main.json", "a", "b"}, nil, false},
		{"allowed files", []string{"main.json", "x", "--", "in.txt", "data.txt"}, "main.json", []string{"main.json", "x"}, []string{"in.txt", "data.txt"}, false},
		{"stdin module", []string{"-", "--", "in.txt"}, "-", []string{"-"}, []string{"in.txt"}, false},
		{"flags after module belong to argv", []string{"main.json", "-debug"}, "main.json", []string{"main.json", "-debug"}, nil, false},
		{"missing value", []string{"-config"}, "", nil, nil, true},
		{"unknown flag", []string{"-x", "main.json"}, "", nil, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := parseArgs(tt.args)
			if tt.wantErr {
				if err == nil {
					t.Errorf("parseArgs(%v) succeeded, want an error", tt.args)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs: %v", err)
			}
			if inv.module != tt.module {
				t.Errorf("module = %q, want %q", inv.module, tt.module)
			}
			if !reflect.DeepEqual(inv.argv, tt.argv) {
				t.Errorf("argv = %v, want %v", inv.argv, tt.argv)
			}
			if !reflect.DeepEqual(inv.allowed, tt.allowed) {
				t.Errorf("allowed = %v, want %v", inv.allowed, tt.allowed)
			}
		})
	}
}

func TestUsageAndVersion(t *testing.T) {
	if code, out, _ := runCLI(t, "", "-h"); code != 0 || !strings.Contains(out, "Usage:") {
		t.Errorf("-h: code %d, output %q", code, out)
	}
	if code, out, _ := runCLI(t, "", "-version"); code != 0 || !strings.HasPrefix(out, "jessie ") {
		t.Errorf("-version: code %d, output %q", code, out)
	}
	if code, _, errOut := runCLI(t, "", "-bogus"); code != 2 || !strings.Contains(errOut, "unknown flag") {
		t.Errorf("-bogus: code %d, stderr %q", code, errOut)
	}
	if code, _, errOut := runCLI(t, ""); code != 1 || !strings.Contains(errOut, "MODULE") {
		t.Errorf("no module: code %d, stderr %q", code, errOut)
	}
}

func TestEvalExpression(t *testing.T) {
	code, out, errOut := runCLI(t, "", "-e", `["+",["data",40],["data",2]]`)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "42\n" {
		t.Errorf("output = %q, want 42", out)
	}
}

func TestRunModuleCallsMain(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "in.txt", "payload")
	main := writeFile(t, dir, "main.json", `["module",[
		["exportDefault",["arrow",[["def","argv"]],["block",[
			["call",["use","writeOutput"],[["data","-"],["call",["use","readInput"],[["index",["use","argv"],["data",1]]]]]],
			["return",["get",["use","argv"],"length"]]
		]]]]
	]]`)

	code, out, errOut := runCLI(t, "", main, in, "--", in)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "payload2\n" {
		t.Errorf("output = %q, want payload followed by the argv length", out)
	}
}

func TestReadInputWhitelist(t *testing.T) {
	dir := t.TempDir()
	secret := writeFile(t, dir, "secret.txt", "hidden")
	main := writeFile(t, dir, "main.json", `["module",[
		["exportDefault",["call",["use","readInput"],[["index",["use","ARGV"],["data",1]]]]]
	]]`)

	code, out, errOut := runCLI(t, "", main, secret)
	if code != 1 {
		t.Fatalf("exit %d, output %q; want a whitelist failure", code, out)
	}
	if !strings.Contains(errOut, "not in the input whitelist") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestWriteOutputTarget(t *testing.T) {
	dir := t.TempDir()
	main := writeFile(t, dir, "main.json", `["module",[
		["call",["use","writeOutput"],[["data","out.txt"],["data","x"]]]
	]]`)
	code, _, errOut := runCLI(t, "", main)
	if code != 1 || !strings.Contains(errOut, "cannot write to out.txt") {
		t.Errorf("exit %d, stderr %q", code, errOut)
	}
}

func TestModuleFromStdin(t *testing.T) {
	code, out, errOut := runCLI(t, `["module",[["exportDefault",["data","from stdin"]]]]`, "-")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "from stdin\n" {
		t.Errorf("output = %q", out)
	}
}

func TestGuestErrorReported(t *testing.T) {
	code, _, errOut := runCLI(t, `["module",[["throw",["data","boom"]]]]`, "-")
	if code != 1 {
		t.Fatalf("exit %d, want 1", code)
	}
	if !strings.HasPrefix(errOut, "Error: ") || !strings.Contains(errOut, "boom") {
		t.Errorf("stderr = %q", errOut)
	}
}

func TestStoreImports(t *testing.T) {
	dir := t.TempDir()
	db := filepath.Join(dir, "modules.db")
	lib := writeFile(t, dir, "lib.json", `["module",[["exportDefault",["data",21]]]]`)

	if code, _, errOut := runCLI(t, "", "-store", db, "-put", "/lib/answer="+lib); code != 0 {
		t.Fatalf("put: exit %d: %s", code, errOut)
	}
	if err := os.Remove(lib); err != nil {
		t.Fatal(err)
	}

	main := writeFile(t, dir, "main.json", `["module",[
		["import",["def","half"],"/lib/answer"],
		["exportDefault",["*",["use","half"],["data",2]]]
	]]`)
	code, out, errOut := runCLI(t, "", "-store", db, main)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "42\n" {
		t.Errorf("output = %q, want 42", out)
	}
}

func TestPutNeedsStore(t *testing.T) {
	code, _, errOut := runCLI(t, "", "-put", "/a=b.json")
	if code != 1 || !strings.Contains(errOut, "module store") {
		t.Errorf("exit %d, stderr %q", code, errOut)
	}
}

func TestConfigEndowments(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "jessie.yaml", "logLevel: error\nendowments:\n  greeting: hello\n")
	main := writeFile(t, dir, "main.json", `["module",[["exportDefault",["use","greeting"]]]]`)
	code, out, errOut := runCLI(t, "", "-config", cfg, main)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "hello\n" {
		t.Errorf("output = %q", out)
	}
}
