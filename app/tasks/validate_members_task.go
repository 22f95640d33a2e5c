package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/lysyi3m/feeds-roster/app/console"
	"github.com/lysyi3m/feeds-roster/app/database"
	"github.com/lysyi3m/feeds-roster/app/feed"
	"github.com/lysyi3m/feeds-roster/app/report"
	"github.com/lysyi3m/feeds-roster/app/roster"
)

const (
	OutputHasChanges = "has_changes"

	memberSampleSize = 10
	probeDateLayout  = "2006-01-02"
)

type ValidateOptions struct {
	Team         string
	WebURL       string
	ReportFile   string
	AllowedNicks []string
	DryRun       bool
	ProbeFeeds   bool
}

// ValidateMembersTask drops feeds whose owners left the team, rewrites the
// feeds file and writes the report used as the pull request body.
type ValidateMembersTask struct {
	Task
	opts    ValidateOptions
	store   FeedStore
	dir     roster.Directory
	printer *console.Printer
	output  OutputSetter
	runRepo database.RunRepository
	prober  FeedProber
	now     func() time.Time
}

// NewValidateMembersTask wires the task. runRepo and prober may be nil.
func NewValidateMembersTask(opts ValidateOptions, store FeedStore, dir roster.Directory, printer *console.Printer,
	output OutputSetter, runRepo database.RunRepository, prober FeedProber) *ValidateMembersTask {
	return &ValidateMembersTask{
		Task:    NewTask(TaskTypeValidateMembers),
		opts:    opts,
		store:   store,
		dir:     dir,
		printer: printer,
		output:  output,
		runRepo: runRepo,
		prober:  prober,
		now:     time.Now,
	}
}

func (t *ValidateMembersTask) Execute(ctx context.Context) error {
	t.Start()
	startedAt := t.now()

	if t.opts.DryRun {
		t.printer.Println("DRY RUN MODE - no files will be modified\n")
	}

	records, err := t.store.Load()
	if err != nil {
		return err
	}
	t.printer.Println("Loaded %d feeds from %s", len(records), t.store.Path())

	t.printer.Println("Fetching ~%s participants...", t.opts.Team)
	members, err := roster.FetchMembers(ctx, t.dir, t.opts.Team)
	if err != nil {
		return err
	}
	t.printer.Println("Found %d members", len(members))
	t.printer.Sample(members.Sorted(), memberSampleSize)

	classifier := roster.NewClassifier(t.dir, t.opts.Team, members, roster.NewAllowList(t.opts.AllowedNicks...), t.printer)
	result, err := classifier.Reconcile(ctx, records)
	if err != nil {
		return fmt.Errorf("failed to reconcile feeds: %w", err)
	}

	if len(result.Errored) > 0 {
		names := make([]string, len(result.Errored))
		for i, nick := range result.Errored {
			names[i] = nick.Display
		}
		t.printer.Println("\nCould not verify %d nick(s), their feeds were kept: %s",
			len(names), strings.Join(names, ", "))
	}

	t.printLastRun()

	t.printer.Section("Summary")
	t.printer.Println("Total feeds: %d", result.Total)
	t.printer.Println("Valid feeds: %d", len(result.Kept))
	t.printer.Println("Removed: %d", len(result.Removed))

	switch {
	case !result.HasChanges():
		t.printer.Println("\nAll feeds belong to current ~%s members!", t.opts.Team)

	case t.opts.DryRun:
		t.printRemovals(ctx, result.Removed)
		t.printer.Println("\nDry run - no changes made")

	default:
		t.printRemovals(ctx, result.Removed)
		if err := t.write(result, startedAt); err != nil {
			return err
		}
	}

	t.recordRun(result, startedAt)

	if err := t.output.Set(OutputHasChanges, fmt.Sprintf("%t", result.HasChanges())); err != nil {
		return fmt.Errorf("failed to publish %s: %w", OutputHasChanges, err)
	}

	slog.Info("Task completed",
		"task_id", t.GetID(),
		"type", t.GetType(),
		"total", result.Total,
		"removed", len(result.Removed),
		"errored", len(result.Errored),
		"dry_run", t.opts.DryRun,
		"duration", t.GetDuration())

	return nil
}

// write renders the report before touching any file, so that once the
// feeds file is saved only the report write itself can still fail.
func (t *ValidateMembersTask) write(result *roster.Result, validatedAt time.Time) error {
	body, err := report.Render(reportEntries(result.Removed), report.Options{
		Team:        t.opts.Team,
		WebURL:      t.opts.WebURL,
		ValidatedAt: validatedAt,
	})
	if err != nil {
		return err
	}

	if err := t.store.Save(result.Kept); err != nil {
		return err
	}
	t.printer.Println("\nUpdated %s", t.store.Path())

	if err := feed.WriteFileAtomic(t.opts.ReportFile, []byte(body)); err != nil {
		return &feed.WriteError{Path: t.opts.ReportFile, Err: err}
	}
	t.printer.Println("Generated %s", t.opts.ReportFile)

	return nil
}

func (t *ValidateMembersTask) printRemovals(ctx context.Context, removals []roster.Removal) {
	t.printer.Println("\nFeeds to remove:")
	for _, r := range removals {
		t.printer.Println("  - %s (%s): %s", r.Record.Name(), r.Record.String(feed.FieldNick), r.Reason.Label())
	}

	if !t.opts.ProbeFeeds || t.prober == nil {
		return
	}

	t.printer.Section("Feed probe")
	for _, r := range removals {
		url := r.Record.URL()
		if url == "" {
			continue
		}

		status, err := t.prober.Probe(ctx, url)
		if err != nil {
			t.printer.Println("  %s: unreachable (%v)", r.Record.Name(), err)
			continue
		}

		latest := "no dated posts"
		if status.LatestAt != nil {
			latest = "latest post " + status.LatestAt.Format(probeDateLayout)
		}
		title := fmt.Sprintf("%q", status.Title)
		if status.Link != "" {
			title += " <" + status.Link + ">"
		}
		t.printer.Println("  %s: %s, %d items, %s", r.Record.Name(), title, status.Items, latest)
	}
}

func (t *ValidateMembersTask) printLastRun() {
	if t.runRepo == nil || !t.printer.Verbose() {
		return
	}

	last, err := t.runRepo.GetLastRun()
	if err != nil {
		slog.Warn("Failed to read previous run", "error", err)
		return
	}
	if last == nil {
		return
	}

	t.printer.Println("\nPrevious run: %s, %d of %d feeds removed",
		last.StartedAt.UTC().Format(report.TimestampLayout), last.Removed, last.Total)

	if len(last.Removals) > 0 {
		nicks := make([]string, len(last.Removals))
		for i, removal := range last.Removals {
			nicks[i] = removal.Nick
		}
		t.printer.Println("  Removed then: %s", strings.Join(nicks, ", "))
	}
}

// recordRun stores the run in the ledger. Failures are logged only.
func (t *ValidateMembersTask) recordRun(result *roster.Result, startedAt time.Time) {
	if t.runRepo == nil {
		return
	}

	run := database.Run{
		StartedAt: startedAt,
		Team:      t.opts.Team,
		DryRun:    t.opts.DryRun,
		Total:     result.Total,
		Valid:     len(result.Kept),
		Removed:   len(result.Removed),
		Errored:   len(result.Errored),
	}
	for _, r := range result.Removed {
		run.Removals = append(run.Removals, database.Removal{
			Nick:   r.Record.String(feed.FieldNick),
			Name:   r.Record.Name(),
			URL:    r.Record.URL(),
			Reason: string(r.Reason),
		})
	}

	id, err := t.runRepo.RecordRun(run)
	if err != nil {
		slog.Warn("Failed to record run", "error", err)
		return
	}
	slog.Debug("Run recorded", "run_id", id)
}

func reportEntries(removals []roster.Removal) []report.Entry {
	entries := make([]report.Entry, 0, len(removals))
	for _, r := range removals {
		entries = append(entries, report.Entry{
			Name:   r.Record.Name(),
			Nick:   r.Record.String(feed.FieldNick),
			Reason: string(r.Reason),
			URL:    r.Record.URL(),
		})
	}
	return entries
}
