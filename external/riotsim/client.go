package riotsim

import (
	"context"
	"fmt"
	"io"
	"net/http"
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
	"github.com/valyala/bytebufferpool"
)

const defaultBaseURL = "http://localhost:8001"

var errRiotSimTransient = crerr.New("riotsim transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client talks to the riotsim match simulator. The simulator speaks a
// small POST-only protocol, so every call goes through doJSONPost.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries int
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.SingleFlight
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
		maxRetries: maxInt(cfg.MaxRetries, 0),
		logger:     logger,
		breaker:    resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker),
	}
}

func (c *Client) Driver() string { return "riotsim" }

// PlayerHistory lists the participant's recent matches. The simulator
// keys players by id alone, so only the name component is sent. Its
// protocol carries bare match identifiers without timestamps or maps.
func (c *Client) PlayerHistory(ctx context.Context, identity participant.Identity) ([]history.Entry, error) {
	if err := identity.Validate(); err != nil {
		return nil, fmt.Errorf("player history: %w", err)
	}

	var payload playerMatchHistory
	if err := c.doJSONPost(ctx, "/matches/player-history", playerRequest{PlayerID: identity.Name}, &payload); err != nil {
		return nil, fmt.Errorf("fetch player history %s: %w", identity, err)
	}

	out := make([]history.Entry, 0, len(payload.RecentMatches))
	for _, matchID := range payload.RecentMatches {
		matchID = strings.TrimSpace(matchID)
		if matchID == "" {
			continue
		}
		out = append(out, history.Entry{MatchID: matchID})
	}
	return out, nil
}

// MatchDetails fetches the canonical record for one match identifier.
func (c *Client) MatchDetails(ctx context.Context, matchID string) (match.Record, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return match.Record{}, fmt.Errorf("match id is required")
	}

	var payload matchResponse
	if err := c.doJSONPost(ctx, "/matches/", matchRequest{MatchID: matchID}, &payload); err != nil {
		return match.Record{}, fmt.Errorf("fetch match details id=%s: %w", matchID, err)
	}

	record := match.Record{
		MatchID:   firstNonEmpty(payload.MatchID, matchID),
		MapName:   strings.TrimSpace(payload.Map),
		StartedAt: parseStartTime(payload.MatchStartTime),
	}
	record.Players = make([]match.PlayerStat, 0, len(payload.Players))
	for _, player := range payload.Players {
		playerID := strings.TrimSpace(player.PlayerID)
		if playerID == "" {
			continue
		}
		record.Players = append(record.Players, match.PlayerStat{
			PlayerID:           playerID,
			Kills:              player.Kills,
			AverageCombatScore: player.AverageCombatScore,
		})
	}
	return record, nil
}

func (c *Client) doJSONPost(ctx context.Context, path string, payload any, target any) error {
	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			c.logger.WarnContext(ctx, "riotsim circuit breaker rejected request", "state", c.breaker.State())
			return fmt.Errorf("%w: match simulator is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	}

	body, err := sonic.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request payload: %w", err)
	}

	fullURL := c.baseURL + path
	bodyText := truncateForLog(string(body), 4096)
	c.logger.DebugContext(ctx, "riotsim request", "path", path, "curl_preview", buildSimCurlPreview(fullURL, path, bodyText))

	key := path + "|" + string(body)
	out, err, _ := c.flight.Do(key, func() (any, error) {
		raw, reqErr := c.executeRequest(ctx, fullURL, string(body))
		if c.breaker != nil {
			if reqErr != nil && crerr.Is(reqErr, errRiotSimTransient) {
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
		return fmt.Errorf("decode simulator payload: %w", err)
	}
	return nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL, body string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, strings.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errRiotSimTransient, err)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 6<<20))
			_ = resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("%w: read response body: %v", errRiotSimTransient, readErr)
			} else if resp.StatusCode >= 200 && resp.StatusCode < 300 {
				return raw, nil
			} else {
				if isRetryableStatus(resp.StatusCode) {
					lastErr = fmt.Errorf("%w: simulator status=%d body=%s", errRiotSimTransient, resp.StatusCode, abbreviateBody(raw))
				} else {
					return nil, fmt.Errorf("simulator status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
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
		lastErr = fmt.Errorf("simulator request failed")
	}
	c.logger.WarnContext(ctx, "riotsim request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func buildSimCurlPreview(fullURL, path, body string) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	appendPart := func(part string) {
		if buf.Len() > 0 {
			_ = buf.WriteByte(' ')
		}
		_, _ = buf.WriteString(part)
	}
	appendFlagHeader := func(value string) {
		appendPart("-H")
		appendPart(shellQuote(value))
	}

	appendPart("curl")
	appendPart("-X")
	appendPart("POST")
	appendPart(shellQuote(fullURL))
	appendFlagHeader("Content-Type: application/json")
	appendPart("-d")
	appendPart(shellQuote(body))
	appendPart("#")
	appendPart(shellQuote("path=" + path))

	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "'\"'\"'") + "'"
}

func truncateForLog(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	return value[:max] + "...(truncated)"
}

func parseStartTime(raw string) time.Time {
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
