package henrikdev

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/tournify/match-resolution/internal/domain/history"
	"github.com/tournify/match-resolution/internal/domain/match"
	"github.com/tournify/match-resolution/internal/domain/participant"
	"github.com/tournify/match-resolution/internal/platform/logging"
	"github.com/tournify/match-resolution/internal/platform/resilience"
	"github.com/tournify/match-resolution/internal/usecase"
)

const (
	defaultBaseURL = "https://api.henrikdev.xyz"
	customMode     = "custom"
	// historyWindow drops stale history entries at the client boundary so
	// the resolver only ever votes over recent matches.
	historyWindow = 30 * 24 * time.Hour
)

var errHenrikDevTransient = crerr.New("henrikdev transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the HenrikDev Valorant API. It implements the match
// source port used by the resolution pipeline.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
	now        func() time.Time
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 10 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		maxRetries: maxInt(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
		now:        time.Now,
	}
}

func (c *Client) Driver() string { return "henrikdev" }

// PlayerHistory lists the participant's recent custom matches. Entries
// older than the history window are dropped here, identifiers whose
// timestamp the provider omits are kept.
func (c *Client) PlayerHistory(ctx context.Context, identity participant.Identity) ([]history.Entry, error) {
	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("player history: %w", err)
	}

	path := fmt.Sprintf("/valorant/v4/matches/%s/%s/%s/%s",
		url.PathEscape(strings.ToLower(identity.Region)),
		url.PathEscape(strings.ToLower(identity.Platform)),
		url.PathEscape(identity.Name),
		url.PathEscape(identity.Tag),
	)
	query := map[string]string{"mode": customMode}

	var envelope matchListEnvelope
	if err := c.doJSON(ctx, path, query, &envelope); err != nil {
		return nil, fmt.Errorf("fetch player history %s: %w", identity, err)
	}

	cutoff := c.now().Add(-historyWindow)
	out := make([]history.Entry, 0, len(envelope.Data))
	for _, item := range envelope.Data {
		matchID := strings.TrimSpace(item.Metadata.MatchID)
		if matchID == "" {
			continue
		}
		startedAt := parseStartedAt(item.Metadata.StartedAt)
		if !startedAt.IsZero() && startedAt.Before(cutoff) {
			continue
		}
		out = append(out, history.Entry{
			MatchID:   matchID,
			StartedAt: startedAt,
			MapName:   item.Metadata.Map.Name,
		})
	}
	return out, nil
}

// MatchDetails fetches the canonical record for one match identifier.
func (c *Client) MatchDetails(ctx context.Context, matchID string) (match.Record, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Record{}, fmt.Errorf("match id is required")
	}

	path := "/valorant/v2/match/" + url.PathEscape(matchID)

	var envelope matchDetailEnvelope
	if err := c.doJSON(ctx, path, nil, &envelope); err != nil {
		return match.Record{}, fmt.Errorf("fetch match details id=%s: %w", matchID, err)
	}

	detail := envelope.Data
	record := match.Record{
		MatchID: firstNonEmpty(detail.Metadata.MatchID, matchID),
		MapName: strings.TrimSpace(detail.Metadata.Map),
	}
	if detail.Metadata.GameStart > 0 {
		record.StartedAt = time.Unix(detail.Metadata.GameStart, 0).UTC()
	}

	record.Players = make([]match.PlayerStat, 0, len(detail.Players.AllPlayers))
	for _, player := range detail.Players.AllPlayers {
		name := strings.TrimSpace(player.Name)
		tag := strings.TrimSpace(player.Tag)
		if name == "" {
			continue
		}
		record.Players = append(record.Players, match.PlayerStat{
			PlayerID:           name + "#" + tag,
			Kills:              player.Stats.Kills,
			AverageCombatScore: combatScore(player.Stats.Score, detail.Metadata.RoundsPlayed),
		})
	}
	return record, nil
}

func (c *Client) doJSON(ctx context.Context, path string, query map[string]string, target any) error {
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "henrikdev circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: match history provider is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	values := url.Values{}
	for key, value := range query {
		values.Set(key, value)
	}

	fullURL := c.baseURL + path
	if encoded := values.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	key := path + "?" + values.Encode()
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL)
		if c.breaker != nil {
			if reqErr != nil && crerr.Is(reqErr, errHenrikDevTransient) {
				c.breaker.RecordFailure()
			} else {
				c.breaker.RecordSuccess()
			}
		}
		return raw, reqErr
	})
	if err != nil {
		return err
	}

	raw, ok := out.([]byte)
	if !ok {
		return fmt.Errorf("unexpected response payload type %T", out)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return fmt.Errorf("decode provider payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")
		if c.apiKey != "" {
			// HenrikDev expects the raw key, not a Bearer scheme.
			req.Header.Set("Authorization", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %s", errHenrikDevTransient, sanitizeSensitiveText(err.Error(), c.apiKey))
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errHenrikDevTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				if isRetryableStatus(resp.StatusCode) {
					lastErr = fmt.Errorf("%w: provider status=%d body=%s", errHenrikDevTransient, resp.StatusCode, abbreviateBody(raw))
				} else {
					return nil, fmt.Errorf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
				}
			}
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * time.Second
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("provider request failed")
	}
	c.logger.WarnContext(ctx, "henrikdev request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func parseStartedAt(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed.UTC()
		}
	}
	return time.Time{}
}

func combatScore(score, roundsPlayed int) float64 {
	if roundsPlayed > 0 {
		return float64(score) / float64(roundsPlayed)
	}
	return float64(score)
}

func sanitizeSensitiveText(value, key string) string {
	value = strings.TrimSpace(value)
	if value == "" || key == "" {
		return value
	}
	return strings.ReplaceAll(value, key, "REDACTED")
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func firstNonEmpty(values ...string) string {
	for _, item := range values {
		if strings.TrimSpace(item) != "" {
			return strings.TrimSpace(item)
		}
	}
	return ""
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
