package database

import (
	"time"
)

type Run struct {
	ID        int64
	StartedAt time.Time
	Team      string
	DryRun    bool
	Total     int
	Valid     int
	Removed   int
	Errored   int
	Removals  []Removal
}

type Removal struct {
	Nick   string
	Name   string
	URL    string
	Reason string
}
