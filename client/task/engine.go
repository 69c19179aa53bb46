// Package task issues wire requests and reduces every transport result
// to a payload or a single *errs.Error.
//
// The engine runs each request on its own goroutine and validates the
// result in a fixed order: transport error, missing response, status
// outside 200-299, missing payload. The first failing step wins.
package task

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/adamwoolhether/reqflow/client/download"
	"github.com/adamwoolhether/reqflow/errs"
)

const (
	minSuccessStatus = http.StatusOK
	maxSuccessStatus = 299

	// maxErrBodySize caps how much of an unsuccessful response body is
	// kept on the returned error.
	maxErrBodySize = 4 << 10 // 4KB
)

// Doer sends a request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// payloadFn extracts the payload from a response whose status has
// already been validated.
type payloadFn[T any] func(ctx context.Context, resp *http.Response) (T, error)

// Engine executes fetch, download and upload tasks.
type Engine struct {
	doer    Doer
	logger  *slog.Logger
	tracer  trace.Tracer
	debug   bool
	manual  bool
	fs      afero.Fs
	tempDir string
	last    atomic.Pointer[Handle]
	running *group
}

// New returns an Engine sending requests through doer.
func New(doer Doer, optFns ...Option) (*Engine, error) {
	if doer == nil {
		return nil, errors.New("doer must not be nil")
	}

	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying engine option: %w", err)
		}
	}

	e := Engine{
		doer:    doer,
		logger:  slog.Default(),
		tracer:  noop.NewTracerProvider().Tracer("reqflow"),
		debug:   opts.debug,
		manual:  opts.manual,
		fs:      afero.NewOsFs(),
		tempDir: os.TempDir(),
		running: newGroup(),
	}

	if opts.logger != nil {
		e.logger = opts.logger
	}
	if opts.tracer != nil {
		e.tracer = opts.tracer
	}
	if opts.fs != nil {
		e.fs = opts.fs
		e.tempDir = opts.tempDir
	}

	return &e, nil
}

// Fetch issues req and delivers the response body.
func (e *Engine) Fetch(req *http.Request, done func([]byte, error)) *Handle {
	return issue(e, req, "fetch", nil, readPayload, done)
}

// Upload issues req with body as its payload and delivers the response
// body. Any body already on req is replaced.
func (e *Engine) Upload(req *http.Request, body []byte, done func([]byte, error)) *Handle {
	return issue(e, req, "upload", body, readPayload, done)
}

// Download issues req and streams the response body to a temp file on
// the engine's filesystem, delivering the file's path.
func (e *Engine) Download(req *http.Request, done func(string, error), optFns ...download.Option) *Handle {
	write := func(ctx context.Context, resp *http.Response) (string, error) {
		path, err := download.Write(ctx, e.fs, e.tempDir, resp.Body, resp.ContentLength, e.logger, optFns...)
		if err != nil {
			return "", errs.Transport(fmt.Errorf("download: %w", err))
		}

		return path, nil
	}

	return issue(e, req, "download", nil, write, done)
}

// Last returns the most recently issued handle, or nil. Concurrent
// callers race on it; it is meant for diagnostics only.
func (e *Engine) Last() *Handle {
	return e.last.Load()
}

// Wait blocks until every started task has run its completion func.
// Handles that were never started are not waited for.
func (e *Engine) Wait() {
	e.running.wait()
}

// Fs returns the filesystem downloads are written to.
func (e *Engine) Fs() afero.Fs {
	return e.fs
}

func issue[T any](e *Engine, req *http.Request, op string, upload []byte, payload payloadFn[T], done func(T, error)) *Handle {
	h := newHandle(req.Context(), nil)
	h.group = e.running
	h.run = func(ctx context.Context) {
		v, err := execute(ctx, e, h.id, req, op, upload, payload)
		if done != nil {
			done(v, err)
		}
	}

	e.last.Store(h)

	if !e.manual {
		h.Start()
	}

	return h
}

func execute[T any](ctx context.Context, e *Engine, id string, req *http.Request, op string, upload []byte, payload payloadFn[T]) (T, error) {
	ctx, span := e.tracer.Start(ctx, "reqflow."+op, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("task.id", id),
		attribute.String("http.method", req.Method),
		attribute.String("url", req.URL.String()),
	)

	out := req.Clone(ctx)
	if upload != nil {
		out.Body = io.NopCloser(bytes.NewReader(upload))
		out.ContentLength = int64(len(upload))
		out.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(upload)), nil
		}
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(out.Header))

	if e.debug {
		e.logRequest(out)
	}

	resp, err := e.doer.Do(out)

	v, err := normalize(ctx, e.logger, resp, err, payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return v, err
	}

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	return v, nil
}

// normalize is the single point where a transport result is reduced to
// a payload or an error.
func normalize[T any](ctx context.Context, logger *slog.Logger, resp *http.Response, doErr error, payload payloadFn[T]) (T, error) {
	var zero T

	if doErr != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		return zero, errs.Transport(doErr)
	}

	if resp == nil {
		return zero, errs.InvalidResponse()
	}

	discardBody := true
	defer func() {
		if resp.Body == nil {
			return
		}
		if discardBody {
			if _, err := io.Copy(io.Discard, resp.Body); err != nil {
				logger.Error("failed to discard unused body", "error", err)
			}
		}
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	if resp.StatusCode < minSuccessStatus || resp.StatusCode > maxSuccessStatus {
		var b []byte
		if resp.Body != nil {
			var err error
			if b, err = io.ReadAll(io.LimitReader(resp.Body, maxErrBodySize)); err != nil {
				b = []byte("unable to read body")
			}
		}

		return zero, errs.InvalidStatus(resp.StatusCode, b)
	}

	if resp.Body == nil || resp.Body == http.NoBody {
		return zero, errs.MissingPayload()
	}

	v, err := payload(ctx, resp)
	if err != nil {
		discardBody = false
		return zero, err
	}

	return v, nil
}

func readPayload(_ context.Context, resp *http.Response) ([]byte, error) {
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.Transport(fmt.Errorf("reading body: %w", err))
	}

	if len(b) == 0 {
		return nil, errs.MissingPayload()
	}

	return b, nil
}

func (e *Engine) logRequest(req *http.Request) {
	attrs := []any{
		"method", req.Method,
		"url", req.URL.String(),
		"headers", req.Header,
	}

	if req.GetBody != nil {
		if rc, err := req.GetBody(); err == nil {
			b, _ := io.ReadAll(io.LimitReader(rc, maxErrBodySize))
			rc.Close()
			attrs = append(attrs, "body", string(b))
		}
	}

	e.logger.Info("issuing request", attrs...)
}
