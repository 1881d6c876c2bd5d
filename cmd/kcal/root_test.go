package kcal

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// isolate keeps tests away from the user's config file and KCAL_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)
	for _, key := range []string{"KCAL_DB", "KCAL_ADDR", "KCAL_TOLERANCE_MODE", "KCAL_TOLERANCE", "KCAL_ROLLING_WINDOW", "KCAL_WINDOW_MODE", "KCAL_TRAILING_DAYS", "KCAL_CLAMP_TO_FIRST_ENTRY"} {
		t.Setenv(key, "")
	}
	return filepath.Join(dir, "kcal.db")
}

// resetFlags restores defaults so one Execute does not leak flags into the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("kcal %v: %v\n%s", args, err, out)
	}
	return out
}

func mustRunJSON(t *testing.T, v any, args ...string) {
	t.Helper()
	out := mustRun(t, args...)
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("decode output of kcal %v: %v\n%s", args, err, out)
	}
}

func TestRootHelp(t *testing.T) {
	isolate(t)
	out, err := run(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if len(out) == 0 {
		t.Fatalf("expected help output")
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	path := isolate(t)
	for i := 0; i < 2; i++ {
		if _, err := run(t, "--db", path, "init"); err != nil {
			t.Fatalf("init run %d failed: %v", i+1, err)
		}
	}
}

func TestInitWritesDefaultConfig(t *testing.T) {
	path := isolate(t)
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	out := mustRun(t, "--db", path, "--config", cfgPath, "init", "--write-config")
	if !bytes.Contains([]byte(out), []byte("Wrote default config")) {
		t.Fatalf("expected config to be written, got %q", out)
	}
	mustRun(t, "--db", path, "--config", cfgPath, "config", "list", "--effective")
}

func TestVersion(t *testing.T) {
	isolate(t)
	out := mustRun(t, "version")
	if !bytes.Contains([]byte(out), []byte("schema: v")) {
		t.Fatalf("expected schema version in %q", out)
	}
}
