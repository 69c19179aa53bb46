package throttle

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

var (
	ErrMustNotBeZero = errors.New("must be greater than zero")
	ErrWaitingFailed = errors.New("limiter waiting failed")
	ErrContextEnded  = errors.New("throttle context ended")
)

// Config holds the limiter's requests per second and burst size.
type Config struct {
	RPS   int
	Burst int
}

// Validate reports whether both values are positive.
func (c Config) Validate() error {
	if c.RPS <= 0 || c.Burst <= 0 {
		return fmt.Errorf("rps[%d] and burst[%d] %w", c.RPS, c.Burst, ErrMustNotBeZero)
	}
	return nil
}

// RoundTripper delays requests that exceed the configured rate.
type RoundTripper struct {
	cfg     Config
	limiter *rate.Limiter
	next    http.RoundTripper
	logger  *slog.Logger
}

// New wraps next with a limiter built from cfg. A nil logger disables
// wait logging, a nil next uses http.DefaultTransport.
func New(cfg Config, logger *slog.Logger, next http.RoundTripper) (*RoundTripper, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if next == nil {
		next = http.DefaultTransport
	}

	return &RoundTripper{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RPS), cfg.Burst),
		next:    next,
		logger:  logger,
	}, nil
}

// RoundTrip implements http.RoundTripper.
func (t *RoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w before wait: %w", ErrContextEnded, err)
	}

	if t.logger != nil && t.limiter.Tokens() < 1 {
		start := time.Now()
		t.logger.Info("throttle tokens exhausted", "rps", t.cfg.RPS, "burst", t.cfg.Burst, "path", r.URL.Path)
		defer func() {
			t.logger.Info("throttle wait complete", "waited", time.Since(start).Round(time.Millisecond), "path", r.URL.Path)
		}()
	}

	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWaitingFailed, err)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w after wait: %w", ErrContextEnded, err)
	}

	return t.next.RoundTrip(r)
}
