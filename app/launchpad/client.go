package launchpad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultAPIURL = "https://api.launchpad.net/devel"
	DefaultWebURL = "https://launchpad.net"

	maxPages = 1000
)

// Client is an anonymous, read-only client for the Launchpad REST API.
type Client struct {
	baseURL    string
	userAgent  string
	timeout    time.Duration
	httpClient *http.Client
}

func New(baseURL, userAgent string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, userAgent, timeout, &http.Client{})
}

func NewWithHTTPClient(baseURL, userAgent string, timeout time.Duration, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  userAgent,
		timeout:    timeout,
		httpClient: httpClient,
	}
}

// TransitiveMembers returns the names of every participant of team, which
// on Launchpad includes members inherited through sub-teams.
func (c *Client) TransitiveMembers(ctx context.Context, team string) ([]string, error) {
	people, err := c.collect(ctx, c.entityURL(team)+"/participants", team)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(people))
	for _, person := range people {
		names = append(names, person.Name)
	}
	return names, nil
}

// LookupPerson fetches a single person or team. A missing entity yields an
// error satisfying errors.Is(err, ErrNotFound).
func (c *Client) LookupPerson(ctx context.Context, name string) (*Person, error) {
	var person Person
	if err := c.getJSON(ctx, c.entityURL(name), &person); err != nil {
		return nil, c.notFound(err, name)
	}
	return &person, nil
}

// SuperTeams returns up to limit names of teams that name belongs to.
func (c *Client) SuperTeams(ctx context.Context, name string, limit int) ([]string, error) {
	endpoint := fmt.Sprintf("%s/super_teams?ws.size=%d", c.entityURL(name), limit)

	var page collection
	if err := c.getJSON(ctx, endpoint, &page); err != nil {
		return nil, c.notFound(err, name)
	}

	names := make([]string, 0, limit)
	for _, team := range page.Entries {
		if len(names) == limit {
			break
		}
		names = append(names, team.Name)
	}
	return names, nil
}

func (c *Client) collect(ctx context.Context, endpoint, name string) ([]Person, error) {
	var people []Person
	seen := make(map[string]bool)

	for pages := 0; endpoint != ""; pages++ {
		if pages == maxPages {
			return nil, fmt.Errorf("collection for ~%s exceeded %d pages", name, maxPages)
		}
		if seen[endpoint] {
			return nil, fmt.Errorf("collection for ~%s links back to %s", name, endpoint)
		}
		seen[endpoint] = true

		var page collection
		if err := c.getJSON(ctx, endpoint, &page); err != nil {
			return nil, c.notFound(err, name)
		}

		people = append(people, page.Entries...)
		slog.Debug("Fetched collection page", "team", name, "start", page.Start, "entries", len(page.Entries), "total", page.TotalSize)

		endpoint = page.NextCollectionLink
	}

	return people, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, target any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}

	return nil
}

func (c *Client) notFound(err error, name string) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
		return &NotFoundError{Name: name}
	}
	return err
}

func (c *Client) entityURL(name string) string {
	return c.baseURL + "/~" + url.PathEscape(name)
}
