// Package report renders the Markdown summary of removed feeds that is used
// as the pull request body.
package report

import (
	"fmt"
	"strings"
	"time"

	md "github.com/nao1215/markdown"
)

const TimestampLayout = "2006-01-02 15:04 UTC"

type Entry struct {
	Name   string
	Nick   string
	Reason string
	URL    string
}

type Options struct {
	Team        string
	WebURL      string
	ValidatedAt time.Time
}

func ReasonText(reason string) string {
	if reason == "not_found" {
		return "User not found"
	}
	return "Not a member"
}

func Render(entries []Entry, opts Options) (string, error) {
	var buf strings.Builder

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{cell(e.Name), cell(e.Nick), ReasonText(e.Reason), cell(e.URL)})
	}

	teamURL := fmt.Sprintf("%s/~%s", strings.TrimRight(opts.WebURL, "/"), opts.Team)
	footer := fmt.Sprintf("Validated against %s on %s",
		md.Link("~"+opts.Team, teamURL),
		opts.ValidatedAt.UTC().Format(TimestampLayout))

	err := md.NewMarkdown(&buf).
		H2("Feeds Removed").
		PlainText("").
		PlainText("The following feeds have been removed because the associated").
		PlainTextf("Launchpad user is no longer a member of ~%s or was not found:", opts.Team).
		PlainText("").
		Table(md.TableSet{
			Header: []string{"Name", "Nick", "Reason", "Feed URL"},
			Rows:   rows,
		}).
		HorizontalRule().
		PlainText(footer).
		Build()
	if err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	return buf.String(), nil
}

// cell keeps a value from breaking the table layout.
func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
