package tasks

import (
	"context"
	"log/slog"

	"github.com/lysyi3m/feeds-roster/app/console"
	"github.com/lysyi3m/feeds-roster/app/roster"
)

// CheckNicksTask reports the membership status of a few nicks without
// touching any file.
type CheckNicksTask struct {
	Task
	team         string
	allowedNicks []string
	nicks        []string
	dir          roster.Directory
	printer      *console.Printer
}

func NewCheckNicksTask(team string, allowedNicks, nicks []string, dir roster.Directory, printer *console.Printer) *CheckNicksTask {
	return &CheckNicksTask{
		Task:         NewTask(TaskTypeCheckNicks),
		team:         team,
		allowedNicks: allowedNicks,
		nicks:        nicks,
		dir:          dir,
		printer:      printer,
	}
}

func (t *CheckNicksTask) Execute(ctx context.Context) error {
	t.Start()

	t.printer.Println("Fetching ~%s participants...", t.team)
	members, err := roster.FetchMembers(ctx, t.dir, t.team)
	if err != nil {
		return err
	}
	t.printer.Println("Found %d members", len(members))
	t.printer.Sample(members.Sorted(), memberSampleSize)

	classifier := roster.NewClassifier(t.dir, t.team, members, roster.NewAllowList(t.allowedNicks...), t.printer)
	verdicts := classifier.Check(ctx, t.nicks...)

	rows := make([][]string, 0, len(verdicts))
	for _, v := range verdicts {
		rows = append(rows, []string{v.Nick.Display, v.Outcome.Label()})
	}

	t.printer.Section("Results")
	if err := t.printer.Table([]string{"Nick", "Status"}, rows); err != nil {
		slog.Warn("Failed to render results table", "error", err)
	}

	slog.Info("Task completed",
		"task_id", t.GetID(),
		"type", t.GetType(),
		"nicks", len(t.nicks),
		"duration", t.GetDuration())

	return nil
}
