package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/html2deck/pkg/errors"
)

func TestRootCommand(t *testing.T) {
	root := New(os.Stderr, LogInfo).RootCommand()
	want := []string{"convert", "inspect", "scene", "serve", "cache", "version", "completion"}
	for _, name := range want {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("--config flag missing")
	}
}

func TestConvertMissingInputIsNotAnError(t *testing.T) {
	var logs bytes.Buffer
	c := New(&logs, LogInfo)
	root := c.RootCommand()
	root.SetArgs([]string{"convert", filepath.Join(t.TempDir(), "missing.html")})
	if err := root.Execute(); err != nil {
		t.Fatalf("convert on a missing path returned %v", err)
	}
	if !strings.Contains(logs.String(), "nothing to convert") {
		t.Errorf("missing input should be logged, got %q", logs.String())
	}
}

func TestConvertEmptyDirectory(t *testing.T) {
	var logs bytes.Buffer
	c := New(&logs, log.WarnLevel)
	root := c.RootCommand()
	root.SetArgs([]string{"convert", t.TempDir()})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(logs.String(), "no html files found") {
		t.Errorf("logs = %q", logs.String())
	}
}

func TestSceneRejectsFormat(t *testing.T) {
	root := New(os.Stderr, LogInfo).RootCommand()
	root.SetArgs([]string{"scene", "--format", "png", "deck.html"})
	root.SilenceErrors = true
	err := root.Execute()
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v, want INVALID_FORMAT", err)
	}
}

func TestInspectCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deck.html")
	html := `<html><head><title>Plan</title></head><body><div class="slide"><h1>Intro</h1></div></body></html>`
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", dir)

	root := New(os.Stderr, LogInfo).RootCommand()
	root.SetArgs([]string{"inspect", "--json", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("inspect: %v", err)
	}

	root.SetArgs([]string{"inspect", filepath.Join(dir, "nope.html")})
	root.SilenceErrors = true
	if err := root.Execute(); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("inspect missing file err = %v", err)
	}
}
