// README: Resilient request layer; per-attempt timeout, exponential backoff and a pluggable retry predicate.
package retry

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.uber.org/zap"

	"packwise/internal/metrics"
)

const (
	DefaultMaxRetries   = 3
	DefaultInitialDelay = time.Second
	DefaultMaxDelay     = 16 * time.Second
	DefaultTimeout      = 10 * time.Second

	// maxBufferedBody bounds how much of a retried response is kept in memory.
	maxBufferedBody = 1 << 20
)

// ErrBodyNotReplayable is returned when a request with a body has to be
// retried but carries no GetBody func.
var ErrBodyNotReplayable = errors.New("request body cannot be replayed")

// Predicate decides whether a failed attempt is retried. Exactly one of resp
// and err is non-nil.
type Predicate func(resp *http.Response, err error) bool

// Config is the retry budget for one outbound call.
type Config struct {
	// Caller labels logs and metrics (e.g. "geocode", "extract").
	Caller       string
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	// Timeout bounds each attempt, not the whole call.
	Timeout     time.Duration
	ShouldRetry Predicate
}

// DefaultConfig returns the documented defaults for the given caller.
func DefaultConfig(caller string) Config {
	return Config{
		Caller:       caller,
		MaxRetries:   DefaultMaxRetries,
		InitialDelay: DefaultInitialDelay,
		MaxDelay:     DefaultMaxDelay,
		Timeout:      DefaultTimeout,
		ShouldRetry:  DefaultPredicate,
	}
}

func (c Config) normalized() Config {
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = DefaultInitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.ShouldRetry == nil {
		c.ShouldRetry = DefaultPredicate
	}
	if c.Caller == "" {
		c.Caller = "unknown"
	}
	return c
}

// DefaultPredicate retries transport errors, 5xx and 429.
func DefaultPredicate(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp != nil && IsTransientStatus(resp.StatusCode)
}

// IsTransientStatus reports whether an HTTP status is worth retrying.
func IsTransientStatus(code int) bool {
	return code >= http.StatusInternalServerError || code == http.StatusTooManyRequests
}

// Delay returns the wait before retry number k+1 (k is the 0-indexed failed
// attempt): min(InitialDelay*2^k, MaxDelay), doubled once more after a 429.
func Delay(cfg Config, k int, status int) time.Duration {
	cfg = cfg.normalized()
	bo := newBackOff(cfg)
	for i := 0; i < k; i++ {
		bo.NextBackOff()
	}
	return nextDelay(bo, cfg, status)
}

// newBackOff is a jitter-free exponential schedule starting at InitialDelay
// and capped at MaxDelay.
func newBackOff(cfg Config) *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = cfg.InitialDelay
	bo.MaxInterval = cfg.MaxDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.Reset()
	return bo
}

func nextDelay(bo *backoff.ExponentialBackOff, cfg Config, status int) time.Duration {
	d := min(bo.NextBackOff(), cfg.MaxDelay)
	if status == http.StatusTooManyRequests {
		d *= 2
	}
	return d
}

// Doer is satisfied by *http.Client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Executor runs requests under a retry Config.
type Executor struct {
	client Doer
	logger *zap.Logger
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewExecutor wraps client. A nil client uses a plain *http.Client; a nil
// logger discards retry logs.
func NewExecutor(client Doer, logger *zap.Logger) *Executor {
	if client == nil {
		client = &http.Client{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		client: client,
		logger: logger.Named("retry"),
		sleep:  sleepContext,
	}
}

// Execute sends req until it succeeds, the predicate declines, or the budget
// runs out. On exhaustion the most recent response is returned even when it
// is not OK; callers must check the status. Without any response the last
// transport error is returned.
func (e *Executor) Execute(ctx context.Context, req *http.Request, cfg Config) (*http.Response, error) {
	cfg = cfg.normalized()

	var (
		lastResp   *http.Response
		lastErr    error
		lastStatus int
		bo         = newBackOff(cfg)
	)
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := nextDelay(bo, cfg, lastStatus)
			e.logRetry(cfg, attempt, lastStatus, lastErr, delay)
			if err := e.sleep(ctx, delay); err != nil {
				return nil, fmt.Errorf("request cancelled: %w", err)
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		attemptReq, err := cloneRequest(attemptCtx, req, attempt)
		if err != nil {
			cancel()
			if lastResp != nil {
				return lastResp, nil
			}
			return nil, err
		}

		resp, err := e.client.Do(attemptReq)
		if err != nil {
			cancel()
			if ctx.Err() != nil {
				return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
			}
			if !cfg.ShouldRetry(nil, err) {
				return nil, err
			}
			lastErr, lastStatus = err, 0
			continue
		}

		if attempt == cfg.MaxRetries || !cfg.ShouldRetry(resp, nil) {
			resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
			return resp, nil
		}

		lastResp = bufferResponse(resp)
		cancel()
		lastErr, lastStatus = nil, resp.StatusCode
	}

	if lastResp != nil {
		return lastResp, nil
	}
	return nil, lastErr
}

// Do runs op under the same policy for SDK calls that only surface errors.
// The predicate is called with a nil response. Exhaustion yields a
// *TransientError wrapping the last error.
func (e *Executor) Do(ctx context.Context, cfg Config, op func(ctx context.Context) error) error {
	cfg = cfg.normalized()

	var lastErr error
	attempts := 0
	bo := newBackOff(cfg)
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			status := statusOf(lastErr)
			delay := nextDelay(bo, cfg, status)
			e.logRetry(cfg, attempt, status, lastErr, delay)
			if err := e.sleep(ctx, delay); err != nil {
				return fmt.Errorf("retry cancelled: %w", err)
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
		err := op(attemptCtx)
		cancel()
		attempts++
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		}
		if !cfg.ShouldRetry(nil, err) {
			return err
		}
		lastErr = err
	}

	return &TransientError{Status: statusOf(lastErr), Attempts: attempts, Err: lastErr}
}

func (e *Executor) logRetry(cfg Config, attempt, status int, err error, delay time.Duration) {
	reason := "transport"
	switch {
	case status == http.StatusTooManyRequests:
		reason = "rate_limited"
	case status >= http.StatusInternalServerError:
		reason = "server_error"
	}
	metrics.RetryAttempts.WithLabelValues(cfg.Caller, reason).Inc()

	fields := []zap.Field{
		zap.String("caller", cfg.Caller),
		zap.Int("attempt", attempt),
		zap.String("reason", reason),
		zap.Duration("delay", delay),
	}
	if status != 0 {
		fields = append(fields, zap.Int("status", status))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	e.logger.Warn("retrying request", fields...)
}

func cloneRequest(ctx context.Context, req *http.Request, attempt int) (*http.Request, error) {
	clone := req.Clone(ctx)
	if attempt == 0 || req.Body == nil || req.Body == http.NoBody {
		return clone, nil
	}
	if req.GetBody == nil {
		return nil, ErrBodyNotReplayable
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, fmt.Errorf("replay request body: %w", err)
	}
	clone.Body = body
	return clone, nil
}

// bufferResponse detaches resp from its attempt context so it can outlive it.
func bufferResponse(resp *http.Response) *http.Response {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxBufferedBody))
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(data))
	return resp
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelOnClose) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
