package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// execute runs the CLI with args and returns captured stdout+stderr.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// writeScenario drops a known-good scenario file into a temp dir.
func writeScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	content := `name: cli-smoke
description: property get against a delayed seed
seed:
  bar: baz
delay_ms: 10
steps:
  - op: get
    key: bar
    as: bar
  - op: await
    of: bar
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeBrokenScenario(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "broken.yaml")
	content := `name: broken
steps:
  - op: frobnicate
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
