package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chazu/hlang/compiler"
	"github.com/chazu/hlang/vm"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestRunFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		src      string
		wantOut  string
		wantErr  string
		wantCode int
	}{
		{name: "ok", src: "print 1 add 1\n", wantOut: "2\n", wantCode: exitOK},
		{name: "syntax error", src: "print (1\n", wantErr: "Error: expected", wantCode: exitDataErr},
		{name: "runtime error", src: "print 1\nprint nothing add 1\n", wantOut: "1\n", wantErr: "[line 2] Error:", wantCode: exitSoftware},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, strings.ReplaceAll(tc.name, " ", "_")+".hl")
			writeFile(t, path, tc.src)

			var stdout, stderr bytes.Buffer
			code := run([]string{path}, &stdout, &stderr)
			if code != tc.wantCode {
				t.Errorf("exit code = %d, want %d (stderr %q)", code, tc.wantCode, stderr.String())
			}
			if stdout.String() != tc.wantOut {
				t.Errorf("stdout = %q, want %q", stdout.String(), tc.wantOut)
			}
			if !strings.Contains(stderr.String(), tc.wantErr) {
				t.Errorf("stderr = %q, want it to contain %q", stderr.String(), tc.wantErr)
			}
		})
	}
}

func TestRunImportedSyntaxError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.hl"), "print 1\nimport x from broken\n")
	writeFile(t, filepath.Join(dir, "broken.hl"), "define x to 1\n\nexport x add\n")

	var stdout, stderr bytes.Buffer
	code := run([]string{"-no-cache", filepath.Join(dir, "main.hl")}, &stdout, &stderr)
	if code != exitDataErr {
		t.Errorf("exit code = %d, want %d (stderr %q)", code, exitDataErr, stderr.String())
	}
	if !strings.Contains(stderr.String(), "broken.hl: [line 3] Error:") {
		t.Errorf("stderr = %q, want the module's error line", stderr.String())
	}
}

func TestRunMissingFile(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{filepath.Join(t.TempDir(), "absent.hl")}, &stdout, &stderr)
	if code != exitFailure {
		t.Errorf("exit code = %d, want %d", code, exitFailure)
	}
}

func TestRunProject(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "hlang.toml"), `
[project]
name = "demo"
entry = "main.hl"

[source]
dirs = ["lib"]

[runtime]
max-call-depth = 50
`)
	writeFile(t, filepath.Join(dir, "main.hl"), "import twice from util\nprint twice(21)\n")
	writeFile(t, filepath.Join(dir, "lib", "util.hl"), "function twice(n)\n    return n multiply 2\nexport twice\n")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-no-cache", filepath.Join(dir, "main.hl")}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, stderr.String())
	}
	if stdout.String() != "42\n" {
		t.Errorf("stdout = %q, want 42", stdout.String())
	}

	// max-call-depth comes from the manifest.
	writeFile(t, filepath.Join(dir, "deep.hl"), "function f(n)\n    return f(n add 1)\nf(0)\n")
	stdout.Reset()
	stderr.Reset()
	if code := run([]string{filepath.Join(dir, "deep.hl")}, &stdout, &stderr); code != exitSoftware {
		t.Fatalf("exit code = %d, want %d", code, exitSoftware)
	}
	if !strings.Contains(stderr.String(), "stack overflow") {
		t.Errorf("stderr = %q, want stack overflow", stderr.String())
	}
	if _, err := os.Stat(filepath.Join(dir, ".hlang", "cache")); err != nil {
		t.Errorf("disk cache not created: %v", err)
	}
}

func TestRunTokens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.hl")
	writeFile(t, path, "if x\n    print 1\n")

	var stdout, stderr bytes.Buffer
	if code := run([]string{"-tokens", path}, &stdout, &stderr); code != exitOK {
		t.Fatalf("exit code = %d, stderr %q", code, stderr.String())
	}
	tokens, err := compiler.Tokenize("if x\n    print 1\n")
	if err != nil {
		t.Fatal(err)
	}
	var want strings.Builder
	for _, tok := range tokens {
		fmt.Fprintf(&want, "%4d %s\n", tok.Line, tok)
	}
	if stdout.String() != want.String() {
		t.Errorf("stdout = %q, want %q", stdout.String(), want.String())
	}
}

func TestRunUsage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run([]string{"-bogus"}, &stdout, &stderr); code != exitUsage {
		t.Errorf("unknown flag: exit code = %d, want %d", code, exitUsage)
	}
	if code := run([]string{"a.hl", "b.hl"}, &stdout, &stderr); code != exitUsage {
		t.Errorf("two files: exit code = %d, want %d", code, exitUsage)
	}
	if code := run([]string{"-tab-width", "-1", "x.hl"}, &stdout, &stderr); code != exitFailure {
		t.Errorf("invalid tab width: exit code = %d, want %d", code, exitFailure)
	}
}

func TestVerbosityFlag(t *testing.T) {
	var v verbosity
	for _, s := range []string{"true", "true"} {
		if err := v.Set(s); err != nil {
			t.Fatal(err)
		}
	}
	if v != 2 {
		t.Errorf("after two -v flags verbosity = %d, want 2", v)
	}
	if err := v.Set("5"); err != nil || v != 5 {
		t.Errorf("Set(5) = %v, verbosity %d", err, v)
	}
	if err := v.Set("loud"); err == nil {
		t.Error("Set(loud) succeeded")
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, exitOK},
		{&compiler.SyntaxError{Line: 1, Message: "x"}, exitDataErr},
		{fmt.Errorf("wrapped: %w", &vm.RuntimeError{Line: 1, Message: "x"}), exitSoftware},
		{errors.New("other"), exitFailure},
	}
	for _, tc := range tests {
		if got := exitCode(tc.err); got != tc.want {
			t.Errorf("exitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestOpensBlock(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"if x", true},
		{"while i is less than 3", true},
		{"function f(a, b)", true},
		{"for each n in xs", true},
		{"class Dog extends Animal", true},
		{"define f to lambda(x)", true},
		{"print 1", false},
		{"if x then print 1", false},
		{"print )", false},
		{":quit", false},
	}
	for _, tc := range tests {
		if got := opensBlock(tc.line, 8); got != tc.want {
			t.Errorf("opensBlock(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestShouldEcho(t *testing.T) {
	tests := []struct {
		src   string
		value vm.Value
		want  bool
	}{
		{"1 add 2", 3.0, true},
		{"define x to 1", 1.0, false},
		{"x to 2", 2.0, false},
		{"f()", nil, false},
		{"print 1", 1.0, false},
	}
	for _, tc := range tests {
		program, err := compiler.Parse(tc.src)
		if err != nil {
			t.Fatalf("%q: %v", tc.src, err)
		}
		if got := shouldEcho(program, tc.value); got != tc.want {
			t.Errorf("shouldEcho(%q) = %v, want %v", tc.src, got, tc.want)
		}
	}
}
