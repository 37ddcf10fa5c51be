package snapshot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/0xmhha/telemetry-monitor/pkg/logger"
	"github.com/0xmhha/telemetry-monitor/pkg/timewindow"
)

// maxBodySize caps how much of a monitor response is read (16 MiB).
const maxBodySize = 16 << 20

// ClientConfig contains HTTP client configuration.
type ClientConfig struct {
	// BaseURL is the admin console backend root, e.g. "http://127.0.0.1:8080".
	BaseURL string

	// Timeout is the per-request timeout.
	// Default: 10s.
	Timeout time.Duration
}

// httpClient implements Client over the backend's REST monitor endpoint.
type httpClient struct {
	baseURL *url.URL
	hc      *http.Client
	logger  logger.Logger
}

// NewClient creates a snapshot client.
//
// Parameters:
//   - cfg: Client configuration
//   - log: Logger instance
//
// Returns:
//   - Configured Client
//   - Error if the base URL is invalid
func NewClient(cfg ClientConfig, log logger.Logger) (Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}

	return &httpClient{
		baseURL: base,
		hc:      &http.Client{Timeout: cfg.Timeout},
		logger:  log,
	}, nil
}

// Fetch implements Client.Fetch.
func (c *httpClient) Fetch(ctx context.Context, q Query) (*Snapshot, error) {
	endpoint := c.endpoint(q)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("monitor fetch failed: %w", err)
	}
	defer resp.Body.Close() // nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	snap, err := Parse(body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("snapshot fetched",
		"mode", q.Mode,
		"sessions", len(snap.Sessions),
		"tool_stats", len(snap.ToolStats),
		"skipped", snap.Skipped,
		"elapsed", time.Since(start))

	return snap, nil
}

// endpoint builds the monitor URL for a query.
//
// The window is sent either as tool_hours=<float> or as explicit
// start_time/end_time fractional Unix seconds, never both.
func (c *httpClient) endpoint(q Query) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/api/monitor"

	params := url.Values{}

	if q.Mode == ModeSessions {
		params.Set("mode", string(ModeSessions))
	}

	if q.Range != nil {
		params.Set("start_time", formatSeconds(timewindow.ToUnixSeconds(q.Range.Start)))
		params.Set("end_time", formatSeconds(timewindow.ToUnixSeconds(q.Range.End)))
	} else if q.Hours > 0 {
		params.Set("tool_hours", strconv.FormatFloat(q.Hours, 'f', -1, 64))
	}

	if q.UserID != "" {
		params.Set("user_id", q.UserID)
	}

	u.RawQuery = params.Encode()
	return u.String()
}

// formatSeconds renders fractional Unix seconds with millisecond
// precision, matching what the console's query layer sends.
func formatSeconds(secs float64) string {
	return strconv.FormatFloat(secs, 'f', 3, 64)
}
