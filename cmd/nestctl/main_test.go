package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	nestctlcmd "github.com/telekom/nestctl/pkg/nestctl/cmd"
)

func testConfig(t *testing.T, out *bytes.Buffer) nestctlcmd.Config {
	dir := t.TempDir()
	return nestctlcmd.Config{
		ConfigPath:     filepath.Join(dir, "config.yaml"),
		CredentialsDir: filepath.Join(dir, "nestctl"),
		OutputWriter:   out,
		ErrorWriter:    &bytes.Buffer{},
	}
}

func TestRunVersionCommand(t *testing.T) {
	if code := run([]string{"version"}); code != 0 {
		t.Fatalf("expected exit code 0, got %d", code)
	}
}

func TestRunUnknownCommand(t *testing.T) {
	if code := run([]string{"unknown-command"}); code == 0 {
		t.Fatalf("expected non-zero exit code for unknown command")
	}
}

func TestExecutePrintsErrorPrefix(t *testing.T) {
	var stderr bytes.Buffer
	code := execute(context.Background(), testConfig(t, &bytes.Buffer{}), []string{"devices", "list"}, &stderr)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.HasPrefix(stderr.String(), "Error: ") {
		t.Fatalf("expected stderr to start with \"Error: \", got %q", stderr.String())
	}
	if !strings.Contains(stderr.String(), "nestctl auth login") {
		t.Fatalf("expected login hint in %q", stderr.String())
	}
}

func TestExecuteInvalidModeFailsWithoutCredentials(t *testing.T) {
	var stderr bytes.Buffer
	code := execute(context.Background(), testConfig(t, &bytes.Buffer{}), []string{"set", "mode", "d1", "invalid"}, &stderr)
	if code != 1 {
		t.Fatalf("expected exit code 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "Unknown mode: invalid") {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}

func TestExecuteSuccess(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := execute(context.Background(), testConfig(t, &stdout), []string{"version"}, &stderr); code != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", code, stderr.String())
	}
	if stderr.Len() != 0 {
		t.Fatalf("expected empty stderr, got %q", stderr.String())
	}
	if !strings.Contains(stdout.String(), "nestctl") {
		t.Fatalf("unexpected stdout %q", stdout.String())
	}
}
