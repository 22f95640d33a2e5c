package tasks

import (
	"context"

	"github.com/lysyi3m/feeds-roster/app/feed"
	"github.com/lysyi3m/feeds-roster/app/ghoutput"
)

// FeedStore reads and replaces the feeds file.
type FeedStore interface {
	Path() string
	Load() ([]*feed.Record, error)
	Save(records []*feed.Record) error
}

// OutputSetter publishes a named value to downstream automation.
type OutputSetter interface {
	Set(name, value string) error
}

// FeedProber fetches a feed to show reviewers whether it is still alive.
type FeedProber interface {
	Probe(ctx context.Context, url string) (*feed.FeedStatus, error)
}

var (
	_ FeedStore    = (*feed.Store)(nil)
	_ OutputSetter = (*ghoutput.Writer)(nil)
	_ FeedProber   = (*feed.Prober)(nil)
)
