package feed

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
)

type FeedStatus struct {
	Title    string
	Link     string
	Items    int
	LatestAt *time.Time
}

// Prober fetches a feed URL and reports whether it still parses and how
// recently it was updated.
type Prober struct {
	httpClient   *http.Client
	gofeedParser *gofeed.Parser
	userAgent    string
	timeout      time.Duration
}

func NewProber(httpClient *http.Client, userAgent string, timeout time.Duration) *Prober {
	return &Prober{
		httpClient:   httpClient,
		gofeedParser: gofeed.NewParser(),
		userAgent:    userAgent,
		timeout:      timeout,
	}
}

func (p *Prober) Probe(ctx context.Context, url string) (*FeedStatus, error) {
	data, err := p.fetchFeed(ctx, url)
	if err != nil {
		return nil, err
	}

	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed: %w", err)
	}

	status := &FeedStatus{
		Title: parsed.Title,
		Link:  parsed.Link,
		Items: len(parsed.Items),
	}

	for _, item := range parsed.Items {
		published := cmp.Or(item.UpdatedParsed, item.PublishedParsed)
		if published == nil {
			continue
		}
		if status.LatestAt == nil || published.After(*status.LatestAt) {
			latest := *published
			status.LatestAt = &latest
		}
	}

	return status, nil
}

func (p *Prober) fetchFeed(ctx context.Context, url string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}
