package sonarr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"sonarrbot/internal/config"
	"sonarrbot/internal/logging"
)

// HTTPDoer describes the HTTP client used by the Sonarr client.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the Sonarr API.
type Client struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
	logger  *slog.Logger
	now     func() time.Time
}

// New builds a client from config with a timeout-bounded HTTP transport.
func New(cfg *config.Config, logger *slog.Logger) *Client {
	return NewWithDoer(
		cfg.Sonarr.URL+cfg.Sonarr.URLBase,
		cfg.Sonarr.APIKey,
		&http.Client{Timeout: cfg.SonarrTimeout()},
		logger,
	)
}

// NewWithDoer builds a client over an explicit transport. Tests use this
// with httptest servers or fakes.
func NewWithDoer(baseURL, apiKey string, doer HTTPDoer, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  doer,
		logger:  logging.NewComponentLogger(logger, "sonarr"),
		now:     time.Now,
	}
}

// Lookup searches for series matching term.
func (c *Client) Lookup(ctx context.Context, term string) ([]Series, error) {
	query := url.Values{"term": []string{term}}
	var results []Series
	if err := c.get(ctx, "/api/series/lookup", query, &results); err != nil {
		return nil, fmt.Errorf("series lookup: %w", err)
	}
	return results, nil
}

// Profiles lists the configured quality profiles.
func (c *Client) Profiles(ctx context.Context) ([]Profile, error) {
	var profiles []Profile
	if err := c.get(ctx, "/api/profile", nil, &profiles); err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

// RootFolders lists the configured destination folders.
func (c *Client) RootFolders(ctx context.Context) ([]RootFolder, error) {
	var folders []RootFolder
	if err := c.get(ctx, "/api/rootfolder", nil, &folders); err != nil {
		return nil, fmt.Errorf("list root folders: %w", err)
	}
	return folders, nil
}

// Series lists every series already in the library.
func (c *Client) Series(ctx context.Context) ([]Series, error) {
	var series []Series
	if err := c.get(ctx, "/api/series", nil, &series); err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	return series, nil
}

// Calendar returns episodes airing within the next days days.
func (c *Client) Calendar(ctx context.Context, days int) ([]CalendarEntry, error) {
	start := c.now().UTC()
	end := start.AddDate(0, 0, days)
	query := url.Values{
		"start": []string{start.Format("2006-01-02")},
		"end":   []string{end.Format("2006-01-02")},
	}
	var entries []CalendarEntry
	if err := c.get(ctx, "/api/calendar", query, &entries); err != nil {
		return nil, fmt.Errorf("calendar: %w", err)
	}
	return entries, nil
}

// AddSeries submits an add-series request.
func (c *Client) AddSeries(ctx context.Context, request AddRequest) error {
	if err := c.post(ctx, "/api/series", request, nil); err != nil {
		return fmt.Errorf("add series %q: %w", request.Title, err)
	}
	c.logger.Info("series added",
		logging.String("title", request.Title),
		logging.Int64("tvdb_id", request.TVDBID))
	return nil
}

// RunCommand triggers a named server command (RssSync, RefreshSeries,
// missingEpisodeSearch).
func (c *Client) RunCommand(ctx context.Context, name string) error {
	body := map[string]string{"name": name}
	if err := c.post(ctx, "/api/command", body, nil); err != nil {
		return fmt.Errorf("command %s: %w", name, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sonarr request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("sonarr returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
