package cfg

import "time"

type Cfg struct {
	// Files
	FeedsFile  string
	ReportFile string

	// Run mode
	DryRun     bool
	CheckNicks []string
	Verbose    bool
	ProbeFeeds bool

	// Launchpad
	Team         string
	AllowedNicks []string
	APIURL       string
	WebURL       string
	Timeout      time.Duration
	UserAgent    string

	// Automation and history
	GitHubOutput string
	HistoryDB    string

	// Application metadata
	Timezone    string
	Debug       bool
	ShowVersion bool
	Version     string
}
