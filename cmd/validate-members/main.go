package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/lysyi3m/feeds-roster/app/cfg"
	"github.com/lysyi3m/feeds-roster/app/console"
	"github.com/lysyi3m/feeds-roster/app/database"
	"github.com/lysyi3m/feeds-roster/app/feed"
	"github.com/lysyi3m/feeds-roster/app/ghoutput"
	"github.com/lysyi3m/feeds-roster/app/launchpad"
	"github.com/lysyi3m/feeds-roster/app/tasks"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	appCfg, err := cfg.Load()
	if err != nil {
		return err
	}
	if appCfg == nil {
		// Help was shown
		return nil
	}

	if appCfg.ShowVersion {
		fmt.Println(appCfg.Version)
		return nil
	}

	level := slog.LevelInfo
	if appCfg.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printer := console.New(os.Stdout, appCfg.Verbose)

	printer.Println("Connecting to Launchpad...")
	httpClient := &http.Client{}
	client := launchpad.NewWithHTTPClient(appCfg.APIURL, appCfg.UserAgent, appCfg.Timeout, httpClient)
	slog.Debug("Launchpad client ready", "api_url", appCfg.APIURL, "team", appCfg.Team, "version", appCfg.Version)

	var task tasks.TaskInterface
	if len(appCfg.CheckNicks) > 0 {
		task = tasks.NewCheckNicksTask(appCfg.Team, appCfg.AllowedNicks, appCfg.CheckNicks, client, printer)
	} else {
		runRepo, closeRunRepo := openRunRepository(appCfg.HistoryDB)
		defer closeRunRepo()

		var prober tasks.FeedProber
		if appCfg.ProbeFeeds {
			prober = feed.NewProber(httpClient, appCfg.UserAgent, appCfg.Timeout)
		}

		task = tasks.NewValidateMembersTask(tasks.ValidateOptions{
			Team:         appCfg.Team,
			WebURL:       appCfg.WebURL,
			ReportFile:   appCfg.ReportFile,
			AllowedNicks: appCfg.AllowedNicks,
			DryRun:       appCfg.DryRun,
			ProbeFeeds:   appCfg.ProbeFeeds,
		},
			feed.NewStore(appCfg.FeedsFile),
			client,
			printer,
			ghoutput.New(appCfg.GitHubOutput, os.Stdout),
			runRepo,
			prober)
	}

	return task.Execute(ctx)
}

// openRunRepository opens the run ledger at path. The ledger is optional, so
// an empty path or an open failure yields a nil repository and the run goes on.
func openRunRepository(path string) (database.RunRepository, func()) {
	if path == "" {
		return nil, func() {}
	}

	db, err := database.NewConnection(path)
	if err != nil {
		slog.Warn("Failed to open history database, continuing without ledger", "path", path, "error", err)
		return nil, func() {}
	}

	return database.NewRunRepository(db), func() { db.Close() }
}
