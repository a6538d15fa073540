package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// executeCmd runs the root command with args in an isolated config home.
// Returns stdout, stderr and the command error.
func executeCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("CHATMD_CONFIG_HOME", t.TempDir())

	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// sampleExport has one dated conversation, one empty one and one untitled
// conversation without timestamps. Times are mid-day mid-month so the date
// folder is the same in every timezone.
const sampleExport = `[
  {
    "title": "Trip planning",
    "mapping": {
      "a": {"message": {"author": {"role": "user"}, "create_time": 1615809600, "content": {"parts": ["Plan a trip <file>map.png</file>"]}}},
      "b": {"message": {"author": {"role": "assistant"}, "create_time": 1615809700, "content": {"parts": [{"text": "Sure!"}]}}}
    }
  },
  {"title": "Nothing here", "mapping": {"root": {"id": "root"}}},
  {
    "mapping": {
      "x": {"message": {"author": {"role": "user"}, "content": {"parts": ["no time"]}}}
    }
  }
]`

// writeExport writes sampleExport into a temp dir and returns its path.
func writeExport(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conversations.json")
	if err := os.WriteFile(path, []byte(sampleExport), 0o644); err != nil {
		t.Fatalf("writing export: %v", err)
	}
	return path
}

func TestRootCommand_Version(t *testing.T) {
	version = "1.2.3"

	stdout, _, err := executeCmd(t, "--version")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(stdout, "1.2.3") {
		t.Errorf("--version output should contain version: %q", stdout)
	}
	if !strings.Contains(stdout, "chatmd") {
		t.Errorf("--version output should contain 'chatmd': %q", stdout)
	}
}

func TestRootCommand_Help(t *testing.T) {
	stdout, _, err := executeCmd(t, "--help")
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	for _, expected := range []string{"chatmd", "Usage:", "convert", "preview", "--json", "--config", "--log-level"} {
		if !strings.Contains(stdout, expected) {
			t.Errorf("--help output should contain %q: %q", expected, stdout)
		}
	}
}

func TestRootCommand_JSONFlag_NoSubcommand(t *testing.T) {
	stdout, _, err := executeCmd(t, "--json")
	if err == nil {
		t.Fatal("Expected error when running with --json but no subcommand")
	}

	var result map[string]any
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("Output should be valid JSON: %v\nOutput: %s", err, stdout)
	}
	if _, ok := result["error"]; !ok {
		t.Errorf("JSON output should contain 'error' field: %s", stdout)
	}
	if _, ok := result["code"]; !ok {
		t.Errorf("JSON output should contain 'code' field: %s", stdout)
	}
}

func TestRootCommand_PersistentFlags(t *testing.T) {
	cmd := newRootCmd()
	for _, name := range []string{"json", "config", "log-level", "color", "tz"} {
		if cmd.PersistentFlags().Lookup(name) == nil {
			t.Errorf("--%s should be a persistent flag", name)
		}
	}
}

func TestRootCommand_InvalidColor(t *testing.T) {
	path := writeExport(t)
	_, stderr, err := executeCmd(t, "list", "--input", path, "--color", "rainbow")
	if err == nil {
		t.Fatal("expected error for invalid --color")
	}
	if !strings.Contains(stderr, "invalid --color") {
		t.Errorf("stderr = %q, want invalid --color message", stderr)
	}
}

func TestBuildVersion(t *testing.T) {
	origVersion, origCommit, origDate := version, commit, date
	t.Cleanup(func() { version, commit, date = origVersion, origCommit, origDate })

	version, commit, date = "1.0.0", "none", "unknown"
	if got := buildVersion(); got != "1.0.0" {
		t.Errorf("buildVersion() = %q", got)
	}

	commit, date = "abcdef123456", "2025-01-01"
	if got := buildVersion(); got != "1.0.0 (abcdef1, 2025-01-01)" {
		t.Errorf("buildVersion() = %q", got)
	}
}
