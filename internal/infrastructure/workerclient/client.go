package workerclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/execution-hub/supervisor/internal/domain/dispatch"
	"github.com/execution-hub/supervisor/internal/domain/message"
	"github.com/execution-hub/supervisor/internal/domain/worker"
)

const (
	maxReportBytes = 10 << 20
	maxHealthBytes = 64 << 10
	userAgent      = "Supervisor-Dispatch/1.0"
)

// RetryPolicy bounds transport-level retries. Only failures where the worker
// cannot have processed the request (dial errors, HTTP 503) are retried.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// Client is the HTTP implementation of worker.Client.
type Client struct {
	httpClient *http.Client
	registry   worker.Registry
	retry      RetryPolicy
	now        func() time.Time
	logger     zerolog.Logger
}

func NewClient(registry worker.Registry, retry RetryPolicy, logger zerolog.Logger) *Client {
	if retry.MaxAttempts <= 0 {
		retry.MaxAttempts = 1
	}
	return &Client{
		httpClient: &http.Client{},
		registry:   registry,
		retry:      retry,
		now:        time.Now,
		logger:     logger.With().Str("service", "workerclient").Logger(),
	}
}

// Send posts env to the worker's /process endpoint. All attempts share the
// timeout budget. The returned report is guaranteed to reference env.
// If the caller's ctx ends first, Send returns ctx.Err() unwrapped so the
// worker is not blamed for it.
func (c *Client) Send(ctx context.Context, w worker.Descriptor, env *message.TaskEnvelope, timeout time.Duration) (*message.CompletionReport, error) {
	body, err := json.Marshal(env)
	if err != nil {
		return nil, dispatch.ProtocolViolation(w.ID, fmt.Errorf("failed to marshal envelope: %w", err))
	}
	parent := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	url := endpoint(w.BaseURL, "/process")

	var lastErr error
	for attempt := 1; attempt <= c.retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepContext(ctx, c.backoff(attempt)); err != nil {
				break
			}
		}
		start := time.Now()
		status, respBody, err := c.post(ctx, url, env.MessageID, body)
		if err != nil {
			lastErr = err
			if isDialError(err) && ctx.Err() == nil {
				c.logger.Debug().Err(err).
					Str("worker_id", w.ID).
					Int("attempt", attempt).
					Msg("worker dial failed")
				continue
			}
			if perr := parent.Err(); perr != nil {
				return nil, perr
			}
			return nil, dispatch.Unreachable(w.ID, err)
		}
		c.logger.Debug().
			Str("worker_id", w.ID).
			Str("message_id", env.MessageID).
			Int("status_code", status).
			Int("duration_ms", int(time.Since(start).Milliseconds())).
			Msg("worker responded")

		if status == http.StatusServiceUnavailable && attempt < c.retry.MaxAttempts {
			lastErr = fmt.Errorf("worker returned HTTP %d", status)
			continue
		}
		report, derr := decodeReport(w.ID, status, respBody)
		if derr != nil {
			return nil, derr
		}
		if err := report.CheckCorrelation(env, w.AllowUncorrelated); err != nil {
			return nil, dispatch.ProtocolViolation(w.ID, err)
		}
		return report, nil
	}
	if perr := parent.Err(); perr != nil {
		return nil, perr
	}
	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return nil, dispatch.Unreachable(w.ID, lastErr)
}

// CheckHealth calls GET /health and records the result in the registry.
// A check abandoned because ctx ended records nothing and returns the
// stored health.
func (c *Client) CheckHealth(ctx context.Context, w worker.Descriptor, timeout time.Duration) worker.Health {
	health, reason := c.fetchHealth(ctx, w, timeout)
	if ctx.Err() != nil {
		c.logger.Debug().Err(ctx.Err()).Str("worker_id", w.ID).Msg("worker health check abandoned")
		if cur, err := c.registry.Lookup(w.ID); err == nil {
			return cur.Health
		}
		return worker.HealthUnknown
	}
	if err := c.registry.UpdateHealth(w.ID, health, c.now()); err != nil {
		c.logger.Warn().Err(err).Str("worker_id", w.ID).Msg("failed to record worker health")
	}
	evt := c.logger.Info()
	if health != worker.HealthHealthy {
		evt = c.logger.Warn()
	}
	evt.Str("worker_id", w.ID).
		Str("health", string(health)).
		Str("reason", reason).
		Msg("worker health checked")
	return health
}

func (c *Client) fetchHealth(ctx context.Context, w worker.Descriptor, timeout time.Duration) (worker.Health, string) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint(w.BaseURL, "/health"), nil)
	if err != nil {
		return worker.HealthOffline, err.Error()
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return worker.HealthOffline, err.Error()
	}
	defer drainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return worker.HealthDegraded, fmt.Sprintf("health endpoint returned HTTP %d", resp.StatusCode)
	}
	var payload map[string]interface{}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxHealthBytes)).Decode(&payload); err != nil {
		return worker.HealthDegraded, "health payload is not a JSON object"
	}
	status, ok := payload["status"].(string)
	if !ok {
		return worker.HealthDegraded, "health payload has no status"
	}
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "healthy", "ok", "up", "pass":
		return worker.HealthHealthy, status
	default:
		return worker.HealthDegraded, "worker reports " + status
	}
}

func (c *Client) post(ctx context.Context, url, messageID string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create worker request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Message-ID", messageID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("worker request failed: %w", err)
	}
	defer drainAndClose(resp.Body)
	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxReportBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read worker response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.retry.Backoff
	for i := 2; i < attempt; i++ {
		d *= 2
	}
	return d
}

type wireReport struct {
	MessageID        string                 `json:"message_id"`
	Sender           string                 `json:"sender"`
	Recipient        string                 `json:"recipient"`
	RelatedMessageID string                 `json:"related_message_id"`
	Status           string                 `json:"status"`
	Results          map[string]interface{} `json:"results"`
	Error            *string                `json:"error"`
	Detail           interface{}            `json:"detail"`
}

// decodeReport normalizes the worker's response into a CompletionReport.
func decodeReport(workerID string, status int, body []byte) (*message.CompletionReport, error) {
	ok := status >= 200 && status <= 299
	var wire wireReport
	if err := json.Unmarshal(body, &wire); err != nil {
		if ok {
			return nil, dispatch.ProtocolViolation(workerID, fmt.Errorf("malformed completion report: %w", err))
		}
		return nil, dispatch.ReportedFailure(workerID, fmt.Sprintf("HTTP %d: %s", status, snippet(body)))
	}
	if wire.Status == "" {
		if !ok {
			detail := snippet(body)
			if wire.Detail != nil {
				detail = fmt.Sprint(wire.Detail)
			}
			return nil, dispatch.ReportedFailure(workerID, fmt.Sprintf("HTTP %d: %s", status, detail))
		}
		return nil, dispatch.ProtocolViolation(workerID, errors.New("completion report has no status"))
	}
	st, err := message.ParseStatus(wire.Status)
	if err != nil {
		return nil, dispatch.ProtocolViolation(workerID, err)
	}
	return &message.CompletionReport{
		MessageID:        wire.MessageID,
		Sender:           wire.Sender,
		Recipient:        wire.Recipient,
		RelatedMessageID: wire.RelatedMessageID,
		Status:           st,
		Results:          wire.Results,
		Error:            wire.Error,
	}, nil
}

func endpoint(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + path
}

func isDialError(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr) && opErr.Op == "dial"
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, maxHealthBytes))
	_ = body.Close()
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200]
	}
	if s == "" {
		return "empty response"
	}
	return s
}
