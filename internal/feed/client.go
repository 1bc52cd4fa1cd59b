// Package feed implements the HTTP client for the live sports data vendor
// and the normalization boundary that turns its loosely typed payloads into
// domain values with explicit zero defaults.
package feed

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

	"github.com/goalfeed/goalfeed/internal/domain"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultMaxRetries = 2
	retryBaseDelay    = 500 * time.Millisecond
)

// errNoPayload marks a 404: the vendor has nothing for this resource.
var errNoPayload = errors.New("feed: no payload")

// Config holds the vendor connection parameters.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
}

// Client is the vendor REST client. It implements domain.FeedSource.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// NewClient creates a feed client. Zero Timeout and MaxRetries take defaults.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger.With(slog.String("component", "feed")),
		now:        time.Now,
	}
}

// LiveEvents returns every in-play event across all competitions.
func (c *Client) LiveEvents(ctx context.Context) ([]domain.LiveEvent, error) {
	body, err := c.doGet(ctx, "/v1/events/live")
	if err != nil {
		if errors.Is(err, errNoPayload) {
			return nil, nil
		}
		return nil, fmt.Errorf("feed: fetch live events: %w", err)
	}

	var resp apiLiveResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("feed: decode live events: %w", err)
	}

	observedAt := c.now()
	var events []domain.LiveEvent
	for _, comp := range resp.Competitions {
		for _, ev := range comp.Events {
			events = append(events, normalizeEvent(comp.Name, ev, observedAt))
		}
	}
	return events, nil
}

// EventStatistics returns the normalized statistics for one event, or
// (nil, nil) when the vendor has no statistics payload for it.
func (c *Client) EventStatistics(ctx context.Context, eventID string) (*domain.MatchStats, error) {
	body, err := c.doGet(ctx, "/v1/events/"+url.PathEscape(eventID)+"/statistics")
	if err != nil {
		if errors.Is(err, errNoPayload) {
			return nil, nil
		}
		return nil, fmt.Errorf("feed: fetch statistics %s: %w", eventID, err)
	}

	var resp apiStatsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("feed: decode statistics %s: %w", eventID, err)
	}

	stats := normalizeStats(resp.Statistics)
	return &stats, nil
}

// HeadToHead returns the historical meetings for the event's participants, or
// (nil, nil) when the vendor has none.
func (c *Client) HeadToHead(ctx context.Context, eventID string) ([]domain.PriorMatch, error) {
	body, err := c.doGet(ctx, "/v1/events/"+url.PathEscape(eventID)+"/h2h")
	if err != nil {
		if errors.Is(err, errNoPayload) {
			return nil, nil
		}
		return nil, fmt.Errorf("feed: fetch h2h %s: %w", eventID, err)
	}

	var resp apiH2HResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("feed: decode h2h %s: %w", eventID, err)
	}
	return normalizePriorMatches(resp.Matches), nil
}

// FinalRecord returns the authoritative final state of the event, or
// (nil, nil) when it is not yet published.
func (c *Client) FinalRecord(ctx context.Context, eventID string) (*domain.FinalRecord, error) {
	body, err := c.doGet(ctx, "/v1/events/"+url.PathEscape(eventID)+"/result")
	if err != nil {
		if errors.Is(err, errNoPayload) {
			return nil, nil
		}
		return nil, fmt.Errorf("feed: fetch final record %s: %w", eventID, err)
	}

	var resp apiFinalResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("feed: decode final record %s: %w", eventID, err)
	}

	final, err := domain.ParseScore(resp.Score)
	if err != nil {
		return nil, fmt.Errorf("feed: final record %s: %w", eventID, err)
	}
	halfTime, err := domain.ParseScore(resp.HalfTimeScore)
	if err != nil {
		halfTime = domain.Score{}
	}

	return &domain.FinalRecord{
		EventID:       eventID,
		FinalScore:    final,
		HalfTimeScore: halfTime,
		Finished:      normalizeStage(resp.Status) == domain.StageFinished,
	}, nil
}

// doGet sends an authenticated GET and retries throttled or server-side
// failures with exponential backoff.
func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay << (attempt - 1)
			c.logger.Debug("retrying request",
				slog.String("path", path),
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, retryable, err := c.attempt(ctx, path)
		if err == nil {
			return body, nil
		}
		if !retryable {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

// attempt performs one request. retryable is true for 429 and 5xx responses
// and transport errors.
func (c *Client) attempt(ctx context.Context, path string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.cfg.BaseURL, "/")+path, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("X-Api-Key", c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, false, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, errNoPayload
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, true, fmt.Errorf("%w: %s", domain.ErrRateLimited, strings.TrimSpace(string(body)))
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	default:
		return nil, false, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
}

// Compile-time interface check.
var _ domain.FeedSource = (*Client)(nil)
