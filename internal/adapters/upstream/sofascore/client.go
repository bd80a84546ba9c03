// Package sofascore fetches live football events and match statistics from
// the SofaScore public API and maps them to raw match records.
package sofascore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/okian/goalcast/internal/domain/model"
	"github.com/okian/goalcast/pkg/logger"
	"github.com/okian/goalcast/pkg/metrics"
)

// Endpoint names used in logs and metrics.
const (
	EndpointLive       = "events_live"
	EndpointUpcoming   = "events_upcoming"
	EndpointStatistics = "event_statistics"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 8 << 20
)

// Client talks to the provider. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	headers http.Header
	now     func() time.Time
	log     logger.Logger
}

// New creates a Client for baseURL, e.g. https://api.sofascore.com/api/v1.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		headers: browserHeaders(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logger.Get().Named("upstream")
	}
	return c
}

// browserHeaders mimic a desktop browser; the provider rejects bare clients.
func browserHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Accept-Encoding", "gzip, deflate, br, zstd")
	h.Set("Referer", "https://www.sofascore.com/")
	h.Set("Origin", "https://www.sofascore.com")
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-site")
	h.Set("Cache-Control", "no-cache")
	return h
}

// LiveEvents returns every football match currently in progress.
func (c *Client) LiveEvents(ctx context.Context) ([]model.RawMatch, error) {
	var resp eventsResponse
	if _, err := c.getJSON(ctx, EndpointLive, "/sport/football/events/live", &resp); err != nil {
		return nil, err
	}
	return mapEvents(resp, c.now()), nil
}

// Upcoming returns the provider's first page of scheduled football events.
// Flag and Kickoff are left for the caller to label.
func (c *Client) Upcoming(ctx context.Context) ([]model.Fixture, error) {
	var resp eventsResponse
	if _, err := c.getJSON(ctx, EndpointUpcoming, "/sport/football/events/upcoming/1", &resp); err != nil {
		return nil, err
	}
	return mapFixtures(resp), nil
}

// Statistics returns the statistics block of one event. A payload without
// any of the known items yields nil and no error.
func (c *Client) Statistics(ctx context.Context, id string) (*model.RawStats, error) {
	var resp statisticsResponse
	path := "/event/" + id + "/statistics"
	if _, err := c.getJSON(ctx, EndpointStatistics, path, &resp); err != nil {
		return nil, err
	}
	return toRawStats(resp), nil
}

// ProbeMatch is the first live event as seen by Probe.
type ProbeMatch struct {
	ID    string `json:"id"`
	Home  string `json:"home"`
	Away  string `json:"away"`
	Score string `json:"score"`
}

// ProbeResult reports what the provider answers right now.
type ProbeResult struct {
	Status     int         `json:"status"`
	Count      int         `json:"count"`
	FirstMatch *ProbeMatch `json:"firstMatch"`
	Error      string      `json:"error,omitempty"`
}

// Probe performs one live-events request and summarises it. Failures are
// reported inside the result.
func (c *Client) Probe(ctx context.Context) ProbeResult {
	var resp eventsResponse
	code, err := c.getJSON(ctx, EndpointLive, "/sport/football/events/live", &resp)
	res := ProbeResult{Status: code}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Count = len(resp.Events)
	if len(resp.Events) > 0 {
		m := toRawMatch(resp.Events[0], c.now())
		res.FirstMatch = &ProbeMatch{
			ID:    m.ID,
			Home:  m.HomeTeam,
			Away:  m.AwayTeam,
			Score: fmt.Sprintf("%d-%d", int(m.HomeScore.Or(0)), int(m.AwayScore.Or(0))),
		}
	}
	return res
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, v any) (int, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: build request: %w", ErrUpstream, err)
	}
	req.Header = c.headers.Clone()

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordUpstreamRequest(endpoint, "error", msSince(start))
		return 0, fmt.Errorf("%w: %s: %w", ErrUpstream, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordUpstreamRequest(endpoint, strconv.Itoa(resp.StatusCode), msSince(start))

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return resp.StatusCode, fmt.Errorf("%w: %s: HTTP %d", ErrUpstreamStatus, endpoint, resp.StatusCode)
	}

	body, err := readBody(resp)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %s: %w", ErrUpstream, endpoint, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return resp.StatusCode, fmt.Errorf("%w: %s: %w", ErrDecode, endpoint, err)
	}
	c.log.Debug(ctx, "upstream response",
		logger.String("endpoint", endpoint),
		logger.Int("bytes", len(body)),
		logger.Duration("took", time.Since(start)),
	)
	return resp.StatusCode, nil
}

// readBody decompresses the body according to Content-Encoding.
func readBody(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	switch enc := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))); enc {
	case "", "identity":
	case "br":
		r = brotli.NewReader(resp.Body)
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	case "deflate":
		fl := flate.NewReader(resp.Body)
		defer func() { _ = fl.Close() }()
		r = fl
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		defer zr.Close()
		r = zr
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", enc)
	}
	b, err := io.ReadAll(io.LimitReader(r, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return b, nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
