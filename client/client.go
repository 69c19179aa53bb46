package client

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/spf13/afero"

	"github.com/adamwoolhether/reqflow/client/dispatch"
	"github.com/adamwoolhether/reqflow/client/download"
	"github.com/adamwoolhether/reqflow/client/request"
	"github.com/adamwoolhether/reqflow/client/task"
	"github.com/adamwoolhether/reqflow/client/throttle"
	"github.com/adamwoolhether/reqflow/fsys"
)

// queueSize is the initial backlog capacity of the default executor.
const queueSize = 64

// Client issues requests against a single base URL. Completions are
// delivered exactly once, on the client's executor.
type Client struct {
	baseURL  string
	headers  http.Header
	hc       *http.Client
	engine   *task.Engine
	executor dispatch.Executor
	queue    *dispatch.Queue
	files    download.Mover
	logger   *slog.Logger
}

// Build returns a Client for baseURL. The base URL is validated on every
// call, so a malformed value surfaces as an InvalidURL completion rather
// than a Build error.
func Build(baseURL string, optFns ...Option) (*Client, error) {
	var opts options
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return nil, fmt.Errorf("applying client option: %w", err)
		}
	}

	c := Client{
		baseURL: baseURL,
		headers: opts.headers,
		logger:  slog.Default(),
	}

	if opts.logger != nil {
		c.logger = opts.logger
	}

	hc, err := httpClient(opts, c.logger)
	if err != nil {
		return nil, err
	}
	c.hc = hc

	c.files = opts.files
	if c.files == nil {
		c.files = fsys.NewOS()
	}

	engineOpts := []task.Option{task.WithLogger(c.logger)}
	if opts.tracer != nil {
		engineOpts = append(engineOpts, task.WithTracer(opts.tracer))
	}
	if opts.debug {
		engineOpts = append(engineOpts, task.WithDebug())
	}
	if opts.manualStart {
		engineOpts = append(engineOpts, task.WithManualStart())
	}

	switch {
	case opts.tempFS != nil:
		engineOpts = append(engineOpts, task.WithTempFS(opts.tempFS, opts.tempDir))
	default:
		if fs, ok := c.files.(interface{ Fs() afero.Fs }); ok {
			engineOpts = append(engineOpts, task.WithTempFS(fs.Fs(), os.TempDir()))
		}
	}

	c.engine, err = task.New(c.hc, engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating engine: %w", err)
	}

	c.executor = opts.executor
	if c.executor == nil {
		c.queue = dispatch.NewQueue(queueSize, c.logger)
		c.executor = c.queue
	}

	return &c, nil
}

// httpClient assembles the *http.Client: timeout, redirect policy and
// the transport chain base -> user agent -> throttle.
func httpClient(opts options, logger *slog.Logger) (*http.Client, error) {
	hc := &http.Client{}
	if opts.client != nil {
		cpy := *opts.client
		hc = &cpy
	}

	if opts.timeout != nil {
		hc.Timeout = *opts.timeout
	}

	if opts.noFollowRedirects {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	var transport http.RoundTripper
	switch {
	case opts.rt != nil:
		transport = opts.rt
	case opts.client != nil && opts.client.Transport != nil:
		transport = opts.client.Transport
	default:
		transport = http.DefaultTransport
	}
	if opts.userAgent != "" {
		transport = userAgent{value: opts.userAgent, base: transport}
	}
	if opts.throttle != nil {
		rt, err := throttle.New(*opts.throttle, logger, transport)
		if err != nil {
			return nil, fmt.Errorf("configuring throttle: %w", err)
		}
		transport = rt
	}
	hc.Transport = transport

	return hc, nil
}

// BaseURL returns the URL every endpoint is resolved against.
func (c *Client) BaseURL() string { return c.baseURL }

// LastTask returns the most recently issued handle, or nil.
func (c *Client) LastTask() *task.Handle { return c.engine.Last() }

// Close waits for started tasks to finish, then stops the client's own
// executor after delivering pending completions. Handles that were never
// started are not waited for. With an executor set through WithExecutor,
// Close only waits for the tasks. Close must not be called from a
// completion func.
func (c *Client) Close() {
	c.engine.Wait()

	if c.queue != nil {
		c.queue.Close()
	}
}

func (c *Client) descriptor(method request.Method, endpoint string, params map[string]string, body any) request.Descriptor {
	return request.Descriptor{
		BaseURL:    c.baseURL,
		Endpoint:   endpoint,
		Method:     method,
		Headers:    c.headers.Clone(),
		Parameters: params,
		Body:       body,
	}
}

// deliverer wraps done so it runs at most once, on the executor.
func deliverer[T any](c *Client, done func(T, error)) func(T, error) {
	var once sync.Once

	return func(v T, err error) {
		once.Do(func() {
			if err != nil {
				c.logger.Debug("request failed", "error", err)
			}

			if done == nil {
				return
			}

			c.executor.Execute(func() { done(v, err) })
		})
	}
}

// fail delivers a build-time failure and returns a finished handle.
func fail[T any](deliver func(T, error), err error) *task.Handle {
	var zero T
	deliver(zero, err)

	return task.Completed()
}
