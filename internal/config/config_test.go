// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/playpub/playpub/internal/issue"
	"github.com/playpub/playpub/internal/publish"
	"github.com/playpub/playpub/internal/testutil"
)

// Load tests touch the environment and must not run in parallel.

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	return testutil.MustWriteFile(t, dir, ConfigFileName+"."+ConfigFileExt, []byte(content))
}

func load(t *testing.T, opts LoadOptions) (*Config, string, error) {
	t.Helper()
	return NewProvider().Load(context.Background(), opts)
}

func TestLoad_DefaultsWhenNoFile(t *testing.T) {
	cfg, path, err := load(t, LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != "" {
		t.Errorf("resolved path = %q, want empty", path)
	}
	if *cfg != *DefaultConfig() {
		t.Errorf("Load() = %+v, want defaults %+v", cfg, DefaultConfig())
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	want := writeConfig(t, dir, `
track: "beta"
credentials_file: "/keys/play.json"
verbose: true
ui: color_scheme: "dark"
`)

	cfg, path, err := load(t, LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != want {
		t.Errorf("resolved path = %q, want %q", path, want)
	}
	if cfg.Track != publish.TrackBeta {
		t.Errorf("Track = %q, want beta", cfg.Track)
	}
	if cfg.CredentialsFile != "/keys/play.json" {
		t.Errorf("CredentialsFile = %q", cfg.CredentialsFile)
	}
	if !cfg.Verbose {
		t.Error("Verbose = false, want true")
	}
	if cfg.UI.ColorScheme != ColorSchemeDark {
		t.Errorf("ColorScheme = %q, want dark", cfg.UI.ColorScheme)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `track: "production"`)

	cfg, _, err := load(t, LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Track != publish.TrackProduction {
		t.Errorf("Track = %q, want production", cfg.Track)
	}
	if cfg.UI.ColorScheme != ColorSchemeAuto {
		t.Errorf("ColorScheme = %q, want default auto", cfg.UI.ColorScheme)
	}
}

func TestLoad_SchemaViolations(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{"unknown track", `track: "canary"`, "track"},
		{"empty credentials", `credentials_file: ""`, "credentials_file"},
		{"wrong type", `verbose: "yes"`, "verbose"},
		{"unknown field", `retries: 3`, "retries"},
		{"bad color scheme", `ui: color_scheme: "neon"`, "color_scheme"},
		{"syntax error", `track: `, ConfigFileName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, tt.content)

			_, _, err := load(t, LoadOptions{ConfigDirPath: dir})
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}

			var ae *issue.ActionableError
			if !errors.As(err, &ae) {
				t.Fatalf("error should be *issue.ActionableError, got %T", err)
			}
			if ae.Issue != issue.ConfigLoadFailedId {
				t.Errorf("Issue = %d, want ConfigLoadFailedId", ae.Issue)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error %q should mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoad_ExplicitFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `track: "rollout"`)

	cfg, resolved, err := load(t, LoadOptions{ConfigFilePath: path, ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if resolved != path || cfg.Track != publish.TrackRollout {
		t.Errorf("Load() = (%q, %q), want (%q, rollout)", resolved, cfg.Track, path)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.cue")

	_, _, err := load(t, LoadOptions{ConfigFilePath: missing})
	var ae *issue.ActionableError
	if !errors.As(err, &ae) {
		t.Fatalf("error should be *issue.ActionableError, got %v", err)
	}
	if ae.Resource != missing {
		t.Errorf("Resource = %q, want %q", ae.Resource, missing)
	}
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, `
track: "beta"
ui: color_scheme: "dark"
`)
	t.Setenv("PLAYPUB_TRACK", "production")
	t.Setenv("PLAYPUB_VERBOSE", "true")
	t.Setenv("PLAYPUB_CREDENTIALS_FILE", "/env/key.json")
	t.Setenv("PLAYPUB_UI_COLOR_SCHEME", "light")

	cfg, _, err := load(t, LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := Config{
		Track:           publish.TrackProduction,
		CredentialsFile: "/env/key.json",
		Verbose:         true,
		UI:              UIConfig{ColorScheme: ColorSchemeLight},
	}
	if *cfg != want {
		t.Errorf("Load() = %+v, want %+v", *cfg, want)
	}
}

func TestLoad_InvalidEnvironmentValue(t *testing.T) {
	t.Setenv("PLAYPUB_TRACK", "canary")

	_, _, err := load(t, LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, publish.ErrInvalidTrack) {
		t.Fatalf("Load() error = %v, want ErrInvalidTrack", err)
	}
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("error should wrap ErrInvalidConfig")
	}
}

func TestLoad_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewProvider().Load(ctx, LoadOptions{ConfigDirPath: t.TempDir()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Load() error = %v, want context.Canceled", err)
	}
}

func TestSave_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	want := Config{
		Track:           publish.TrackRollout,
		CredentialsFile: `C:\keys\play "prod".json`,
		Verbose:         true,
		UI:              UIConfig{ColorScheme: ColorSchemeLight},
	}

	if err := Save(&want, dir); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, _, err := load(t, LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() after Save() error = %v\n%s", err, GenerateCUE(&want))
	}
	if *got != want {
		t.Errorf("round trip = %+v, want %+v", *got, want)
	}
}

func TestCreateDefaultConfig(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", AppName)

	path, created, err := CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("CreateDefaultConfig() error = %v", err)
	}
	if !created {
		t.Error("first CreateDefaultConfig() should create the file")
	}
	if !fileExists(path) {
		t.Fatalf("config file %s does not exist", path)
	}

	if err := os.WriteFile(path, []byte(`track: "beta"`), 0o600); err != nil {
		t.Fatal(err)
	}
	_, created, err = CreateDefaultConfig(dir)
	if err != nil {
		t.Fatalf("second CreateDefaultConfig() error = %v", err)
	}
	if created {
		t.Error("second CreateDefaultConfig() must not overwrite the file")
	}
	data, _ := os.ReadFile(path)
	if string(data) != `track: "beta"` {
		t.Errorf("existing config was modified: %q", data)
	}
}

func TestConfigDir(t *testing.T) {
	t.Cleanup(Reset)

	SetConfigDirOverride("/tmp/override")
	if got, _ := ConfigDir(); got != "/tmp/override" {
		t.Errorf("ConfigDir() with override = %q", got)
	}
	Reset()

	if runtime.GOOS == "linux" {
		home := t.TempDir()
		t.Cleanup(testutil.SetHomeDir(t, home))
		t.Setenv("XDG_CONFIG_HOME", "")
		got, err := ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		if want := filepath.Join(home, ".config", AppName); got != want {
			t.Errorf("ConfigDir() without XDG_CONFIG_HOME = %q, want %q", got, want)
		}

		t.Setenv("XDG_CONFIG_HOME", "/tmp/test-xdg-config")
		got, err = ConfigDir()
		if err != nil {
			t.Fatalf("ConfigDir() error = %v", err)
		}
		if want := filepath.Join("/tmp/test-xdg-config", AppName); got != want {
			t.Errorf("ConfigDir() = %q, want %q", got, want)
		}
	}
}

func TestLoad_WorkingDirectoryFallback(t *testing.T) {
	wd := t.TempDir()
	writeConfig(t, wd, `track: "rollout"`)
	t.Cleanup(testutil.MustChdir(t, wd))

	cfg, path, err := load(t, LoadOptions{ConfigDirPath: t.TempDir()})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != ConfigFileName+"."+ConfigFileExt {
		t.Errorf("resolved path = %q, want ./config.cue", path)
	}
	if cfg.Track != publish.TrackRollout {
		t.Errorf("Track = %q, want rollout", cfg.Track)
	}
}

func TestLoad_ConfigDirWinsOverWorkingDirectory(t *testing.T) {
	wd := t.TempDir()
	writeConfig(t, wd, `track: "rollout"`)
	t.Cleanup(testutil.MustChdir(t, wd))

	dir := t.TempDir()
	want := writeConfig(t, dir, `track: "beta"`)

	cfg, path, err := load(t, LoadOptions{ConfigDirPath: dir})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if path != want || cfg.Track != publish.TrackBeta {
		t.Errorf("Load() = (%q, %q), want (%q, beta)", path, cfg.Track, want)
	}
}
