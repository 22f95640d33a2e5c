// Package console prints the run narration that operators read in CI logs.
// Diagnostics that are not part of the narration go through slog instead.
package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
)

type Printer struct {
	w       io.Writer
	verbose bool
}

func New(w io.Writer, verbose bool) *Printer {
	return &Printer{w: w, verbose: verbose}
}

func (p *Printer) Verbose() bool {
	return p.verbose
}

func (p *Printer) Println(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

// Detail prints only in verbose mode.
func (p *Printer) Detail(format string, args ...any) {
	if p.verbose {
		p.Println(format, args...)
	}
}

// Sample prints up to limit items on one line, in verbose mode only.
func (p *Printer) Sample(items []string, limit int) {
	if !p.verbose || len(items) == 0 {
		return
	}
	if len(items) > limit {
		items = items[:limit]
	}
	p.Println("  Sample: %s", strings.Join(items, ", "))
}

func (p *Printer) Warn(format string, args ...any) {
	p.Println("  Warning: "+format, args...)
}

func (p *Printer) Section(title string) {
	p.Println("\n=== %s ===", title)
}

func (p *Printer) Table(headers []string, rows [][]string) error {
	table := tablewriter.NewTable(p.w)

	header := make([]any, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	table.Header(header...)

	for _, row := range rows {
		cells := make([]any, len(row))
		for i, cell := range row {
			cells[i] = cell
		}
		if err := table.Append(cells...); err != nil {
			return err
		}
	}

	return table.Render()
}
