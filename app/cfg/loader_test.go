package cfg

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// clearEnv unsets variables that would leak into flag defaults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"FEEDS_FILE", "REPORT_FILE", "PROBE_FEEDS", "TEAM", "ALLOWED_NICKS", "ALLOW_FILE",
		"LAUNCHPAD_API_URL", "LAUNCHPAD_WEB_URL", "TIMEOUT", "USER_AGENT",
		"GITHUB_OUTPUT", "HISTORY_DB", "DEBUG",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestParseDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse(nil)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if cfg.FeedsFile != "feeds.json" {
		t.Errorf("Expected feeds file 'feeds.json', got '%s'", cfg.FeedsFile)
	}
	if cfg.ReportFile != "pr-body.md" {
		t.Errorf("Expected report file 'pr-body.md', got '%s'", cfg.ReportFile)
	}
	if cfg.Team != "ubuntumembers" {
		t.Errorf("Expected team 'ubuntumembers', got '%s'", cfg.Team)
	}
	if len(cfg.AllowedNicks) != 1 || cfg.AllowedNicks[0] != "uwn" {
		t.Errorf("Expected default allow-list [uwn], got %v", cfg.AllowedNicks)
	}
	if cfg.APIURL != "https://api.launchpad.net/devel" {
		t.Errorf("Unexpected API URL '%s'", cfg.APIURL)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Expected timeout 30s, got %v", cfg.Timeout)
	}
	if cfg.DryRun || cfg.Verbose || len(cfg.CheckNicks) != 0 {
		t.Error("Expected normal mode by default")
	}
}

func TestParseFlags(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]string{
		"--dry-run", "-v",
		"--feeds-file", "data/feeds.json",
		"--team", "kubuntu-members",
		"--allow", "uwn", "--allow", "planet",
		"--timeout", "5",
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !cfg.DryRun || !cfg.Verbose {
		t.Error("Expected dry-run and verbose to be set")
	}
	if cfg.FeedsFile != "data/feeds.json" {
		t.Errorf("Unexpected feeds file '%s'", cfg.FeedsFile)
	}
	if cfg.Team != "kubuntu-members" {
		t.Errorf("Unexpected team '%s'", cfg.Team)
	}
	if len(cfg.AllowedNicks) != 2 || cfg.AllowedNicks[1] != "planet" {
		t.Errorf("Expected allow-list [uwn planet], got %v", cfg.AllowedNicks)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", cfg.Timeout)
	}
}

func TestParseCheckNicks(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]string{"--check", "alice", "bob", "carol"})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"alice", "bob", "carol"}
	if len(cfg.CheckNicks) != len(want) {
		t.Fatalf("Expected %v, got %v", want, cfg.CheckNicks)
	}
	for i, w := range want {
		if cfg.CheckNicks[i] != w {
			t.Errorf("CheckNicks[%d] = %q, want %q", i, cfg.CheckNicks[i], w)
		}
	}
}

func TestParseEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("ALLOWED_NICKS", "uwn,fridge")
	t.Setenv("GITHUB_OUTPUT", "/tmp/github_output")

	cfg, err := Parse(nil)
	if err != nil {
		t.Fatal(err)
	}

	if len(cfg.AllowedNicks) != 2 || cfg.AllowedNicks[1] != "fridge" {
		t.Errorf("Expected allow-list from env, got %v", cfg.AllowedNicks)
	}
	if cfg.GitHubOutput != "/tmp/github_output" {
		t.Errorf("Expected GitHub output path from env, got '%s'", cfg.GitHubOutput)
	}
}

func TestParseAllowFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "allow.yml")
	content := `
allowed_nicks:
  - fridge
  - Planet-Ubuntu
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Parse([]string{"--allow-file", path})
	if err != nil {
		t.Fatal(err)
	}

	want := []string{"uwn", "fridge", "Planet-Ubuntu"}
	if len(cfg.AllowedNicks) != len(want) {
		t.Fatalf("Expected %v, got %v", want, cfg.AllowedNicks)
	}
	for i, w := range want {
		if cfg.AllowedNicks[i] != w {
			t.Errorf("AllowedNicks[%d] = %q, want %q", i, cfg.AllowedNicks[i], w)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	clearEnv(t)

	tests := map[string][]string{
		"unknown flag":    {"--no-such-flag"},
		"zero timeout":    {"--timeout", "0"},
		"empty team":      {"--team", ""},
		"missing allow":   {"--allow-file", filepath.Join(t.TempDir(), "missing.yml")},
		"non-int timeout": {"--timeout", "soon"},
	}

	for name, args := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse(args); err == nil {
				t.Errorf("Expected error for %v", args)
			}
		})
	}
}

func TestParseHelp(t *testing.T) {
	clearEnv(t)

	cfg, err := Parse([]string{"--help"})
	if err != nil {
		t.Fatalf("Expected no error for help, got: %v", err)
	}
	if cfg != nil {
		t.Error("Expected nil config when help is requested")
	}
}
