package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"go.uber.org/zap/zapcore"
)

func TestDecodeOverridesDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(`
addr: 127.0.0.1:9000
read_timeout: 3s
log_level: debug
definitions:
  - forms.yaml
`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	want := Default()
	want.Addr = "127.0.0.1:9000"
	want.ReadTimeout = 3 * time.Second
	want.LogLevel = "debug"
	want.Definitions = []string{"forms.yaml"}

	if diff := cmp.Diff(want, cfg, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}

	level, err := cfg.Level()
	if err != nil || level != zapcore.DebugLevel {
		t.Fatalf("expected debug level, got %v (%v)", level, err)
	}
}

func TestDecodeEmptyDocumentKeepsDefaults(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(Default(), cfg, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"unknown field":  "listen: :80\n",
		"empty addr":     "addr: \"\"\n",
		"relative base":  "base_path: api\n",
		"bad level":      "log_level: loud\n",
		"negative idle":  "idle_timeout: -1s\n",
		"zero body size": "max_body_bytes: 0\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Decode(strings.NewReader(doc)); err == nil {
				t.Fatalf("expected error for %q", doc)
			}
		})
	}

	_, err := Decode(strings.NewReader("log_level: loud\n"))
	if !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestLoadResolvesDefinitionsRelativeToFile(t *testing.T) {
	dir := t.TempDir()
	forms := `forms:
  - id: simulation
    formsets:
      - prefix: outcomes
        fields:
          - name: name
`
	if err := os.WriteFile(filepath.Join(dir, "forms.yaml"), []byte(forms), 0o644); err != nil {
		t.Fatalf("write forms: %v", err)
	}
	path := filepath.Join(dir, "server.yaml")
	if err := os.WriteFile(path, []byte("definitions:\n  - forms.yaml\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if diff := cmp.Diff([]string{filepath.Join(dir, "forms.yaml")}, cfg.DefinitionPaths()); diff != "" {
		t.Fatalf("paths mismatch (-want +got):\n%s", diff)
	}

	loaded, err := cfg.LoadForms()
	if err != nil {
		t.Fatalf("load forms: %v", err)
	}
	if len(loaded) != 1 || loaded[0].ID != "simulation" {
		t.Fatalf("unexpected forms: %+v", loaded)
	}

	cfg.AddDefinitions(filepath.Join(dir, "forms.yaml"))
	if _, err := cfg.LoadForms(); !errors.Is(err, ErrInvalid) {
		t.Fatalf("expected duplicate form error, got %v", err)
	}
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != DefaultAddr {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
}
