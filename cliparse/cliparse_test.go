// cliparse/cliparse_test.go
package cliparse

import (
	"os"
	"testing"
)

func TestParseFlags_EnvVars(t *testing.T) {
	// Set env vars
	os.Setenv("API_BASE_URL", "https://api.example.com")
	os.Setenv("STATE_PATH", "/tmp/state.db")
	os.Setenv("THEME_SONG_URL", "https://cdn.example.com/theme.mp3")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.APIBase != "https://api.example.com" {
		t.Errorf("expected api base from env, got %q", cfg.APIBase)
	}
	if cfg.StatePath != "/tmp/state.db" {
		t.Errorf("expected state path from env, got %q", cfg.StatePath)
	}
	if cfg.ThemeSongURL != "https://cdn.example.com/theme.mp3" {
		t.Errorf("expected theme url from env, got %q", cfg.ThemeSongURL)
	}
}

func TestParseFlags_CLIOverridesEnv(t *testing.T) {
	os.Setenv("API_BASE_URL", "https://env.example.com")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{"-a", "https://cli.example.com", "-s", "cli.db"})
	if err != nil {
		t.Fatal(err)
	}

	// CLI should override env
	if cfg.APIBase != "https://cli.example.com" {
		t.Errorf("CLI should override env: got %q", cfg.APIBase)
	}
	if cfg.StatePath != "cli.db" {
		t.Errorf("expected cli state path, got %q", cfg.StatePath)
	}
}

func TestParseFlags_MissingAPIBase(t *testing.T) {
	os.Clearenv()

	if _, err := ParseFlags([]string{}); err == nil {
		t.Fatal("expected error when API base URL is missing")
	}
}

func TestParseFlags_Defaults(t *testing.T) {
	os.Clearenv()
	os.Setenv("API_BASE_URL", "https://api.example.com")
	defer os.Clearenv()

	cfg, err := ParseFlags([]string{})
	if err != nil {
		t.Fatal(err)
	}

	if cfg.StatePath != defaultStatePath {
		t.Errorf("expected default state path, got %q", cfg.StatePath)
	}
	if cfg.ThemeSongURL != "" {
		t.Errorf("expected empty theme url, got %q", cfg.ThemeSongURL)
	}
}
