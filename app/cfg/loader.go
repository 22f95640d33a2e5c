package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Files
	FeedsFile  string `long:"feeds-file" env:"FEEDS_FILE" default:"feeds.json" description:"Feeds data file to validate"`
	ReportFile string `long:"report-file" env:"REPORT_FILE" default:"pr-body.md" description:"Where to write the Markdown report of removed feeds"`

	// Run mode
	DryRun     bool     `long:"dry-run" description:"Check only, don't modify files"`
	Check      []string `long:"check" value-name:"NICK" description:"Check specific nick(s) only (repeatable)"`
	Verbose    bool     `short:"v" long:"verbose" description:"Show more details"`
	ProbeFeeds bool     `long:"probe-feeds" env:"PROBE_FEEDS" description:"Fetch each removed feed and show its title and latest post"`

	// Launchpad
	Team      string   `long:"team" env:"TEAM" default:"ubuntumembers" description:"Launchpad team whose participants may keep feeds"`
	Allow     []string `long:"allow" env:"ALLOWED_NICKS" env-delim:"," default:"uwn" value-name:"NICK" description:"Nick exempt from membership checks (repeatable)"`
	AllowFile string   `long:"allow-file" env:"ALLOW_FILE" description:"YAML file with additional allowed_nicks"`
	APIURL    string   `long:"api-url" env:"LAUNCHPAD_API_URL" default:"https://api.launchpad.net/devel" description:"Launchpad API root"`
	WebURL    string   `long:"web-url" env:"LAUNCHPAD_WEB_URL" default:"https://launchpad.net" description:"Launchpad web root used for report links"`
	Timeout   int      `long:"timeout" env:"TIMEOUT" default:"30" description:"Timeout for each remote request in seconds"`
	UserAgent string   `long:"user-agent" env:"USER_AGENT" default:"terra-membership-validator" description:"User agent string for HTTP requests"`

	// Automation and history
	GitHubOutput string `long:"github-output" env:"GITHUB_OUTPUT" description:"File receiving step outputs (set by GitHub Actions)"`
	HistoryDB    string `long:"history-db" env:"HISTORY_DB" description:"SQLite file recording each run (optional)"`

	// Application metadata
	Timezone    string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/London)"`
	Debug       bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
	ShowVersion bool   `long:"version" description:"Print version and exit"`

	Args struct {
		Nicks []string `positional-arg-name:"NICK"`
	} `positional-args:"yes"`
}

type allowFile struct {
	AllowedNicks []string `yaml:"allowed_nicks"`
}

// Load parses os.Args and the environment. It returns nil, nil when help
// was requested.
func Load() (*Cfg, error) {
	cfg, err := parse(os.Args[1:], flags.Default)
	if err != nil || cfg == nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

// Parse parses args without printing help or errors.
func Parse(args []string) (*Cfg, error) {
	return parse(args, flags.HelpFlag|flags.PassDoubleDash)
}

func parse(args []string, options flags.Options) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, options)
	parser.Usage = "[OPTIONS] [NICK...]"

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		FeedsFile:    raw.FeedsFile,
		ReportFile:   raw.ReportFile,
		DryRun:       raw.DryRun,
		CheckNicks:   append(append([]string(nil), raw.Check...), raw.Args.Nicks...),
		Verbose:      raw.Verbose,
		ProbeFeeds:   raw.ProbeFeeds,
		Team:         raw.Team,
		AllowedNicks: append([]string(nil), raw.Allow...),
		APIURL:       raw.APIURL,
		WebURL:       raw.WebURL,
		Timeout:      time.Duration(raw.Timeout) * time.Second,
		UserAgent:    raw.UserAgent,
		GitHubOutput: raw.GitHubOutput,
		HistoryDB:    raw.HistoryDB,
		Timezone:     raw.Timezone,
		Debug:        raw.Debug,
		ShowVersion:  raw.ShowVersion,
		Version:      GetVersion(),
	}

	if raw.AllowFile != "" {
		extra, err := loadAllowFile(raw.AllowFile)
		if err != nil {
			return nil, err
		}
		cfg.AllowedNicks = append(cfg.AllowedNicks, extra...)
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadAllowFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read allow file: %w", err)
	}

	var file allowFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse allow file %s: %w", path, err)
	}

	return file.AllowedNicks, nil
}

func validate(cfg *Cfg) error {
	requiredFields := map[string]string{
		"team":        cfg.Team,
		"feeds file":  cfg.FeedsFile,
		"report file": cfg.ReportFile,
		"API URL":     cfg.APIURL,
	}

	for fieldName, fieldValue := range requiredFields {
		if fieldValue == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
	}

	if cfg.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}

	return nil
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			slog.Debug("Timezone configured", "timezone", timezone)
		}
	}
	return nil
}
