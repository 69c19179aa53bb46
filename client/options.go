package client

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"

	"github.com/adamwoolhether/reqflow/client/dispatch"
	"github.com/adamwoolhether/reqflow/client/download"
	"github.com/adamwoolhether/reqflow/client/throttle"
)

// Option is a functional option for configuring a [Client] via [Build].
type Option func(*options) error

type options struct {
	client            *http.Client
	rt                http.RoundTripper
	timeout           *time.Duration
	userAgent         string
	throttle          *throttle.Config
	noFollowRedirects bool
	logger            *slog.Logger
	headers           http.Header
	executor          dispatch.Executor
	tracer            trace.Tracer
	debug             bool
	manualStart       bool
	files             download.Mover
	tempFS            afero.Fs
	tempDir           string
}

// WithClient replaces the [http.Client] used to send requests.
func WithClient(hc *http.Client) Option {
	return func(c *options) error {
		if hc == nil {
			return errors.New("client must not be nil")
		}
		c.client = hc
		return nil
	}
}

// WithTransport sets a custom [http.RoundTripper] as the base transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *options) error {
		if rt == nil {
			return errors.New("transport must not be nil")
		}
		c.rt = rt
		return nil
	}
}

// WithTimeout sets the overall request timeout on the underlying [http.Client].
func WithTimeout(d time.Duration) Option {
	return func(c *options) error {
		if d < 0 {
			return errors.New("timeout must not be negative")
		}
		c.timeout = &d
		return nil
	}
}

// WithUserAgent adds a persistent User-Agent header to all outgoing requests.
func WithUserAgent(header string) Option {
	return func(c *options) error {
		c.userAgent = header
		return nil
	}
}

// WithThrottle enables token-bucket rate limiting with the given requests per second and burst capacity.
func WithThrottle(rps, burst int) Option {
	return func(c *options) error {
		cfg := throttle.Config{RPS: rps, Burst: burst}
		if err := cfg.Validate(); err != nil {
			return err
		}
		c.throttle = &cfg
		return nil
	}
}

// WithNoFollowRedirects prevents the [Client] from following HTTP redirects.
// A redirect response is then reported as an invalid status.
func WithNoFollowRedirects() Option {
	return func(c *options) error {
		c.noFollowRedirects = true
		return nil
	}
}

// WithLogger injects a custom [slog.Logger] into the [Client].
func WithLogger(logger *slog.Logger) Option {
	return func(c *options) error {
		c.logger = logger
		return nil
	}
}

// WithHeaders sets headers sent with every request. Values are added,
// not replaced, when a call supplies the same key.
func WithHeaders(headers http.Header) Option {
	return func(c *options) error {
		c.headers = headers.Clone()
		return nil
	}
}

// WithExecutor sets the execution context completions are delivered on.
// By default the client owns a serial [dispatch.Queue].
func WithExecutor(exec dispatch.Executor) Option {
	return func(c *options) error {
		if exec == nil {
			return errors.New("executor must not be nil")
		}
		c.executor = exec
		return nil
	}
}

// WithTracer opens a client span per request with the given tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		c.tracer = tracer
		return nil
	}
}

// WithDebug logs every request before it is sent.
func WithDebug() Option {
	return func(c *options) error {
		c.debug = true
		return nil
	}
}

// WithManualStart returns handles that do nothing until
// [task.Handle.Start] is called. Cancel a handle you never start to
// release its context.
func WithManualStart() Option {
	return func(c *options) error {
		c.manualStart = true
		return nil
	}
}

// WithFileManager sets where finished downloads are relocated to.
// Defaults to [fsys.NewOS].
func WithFileManager(m download.Mover) Option {
	return func(c *options) error {
		if m == nil {
			return errors.New("file manager must not be nil")
		}
		c.files = m
		return nil
	}
}

// WithTempFS sets the filesystem and directory downloads are streamed to
// before relocation. It should be the filesystem the file manager
// moves files on.
func WithTempFS(fs afero.Fs, dir string) Option {
	return func(c *options) error {
		if fs == nil {
			return errors.New("filesystem must not be nil")
		}
		if dir == "" {
			return errors.New("temp dir must not be empty")
		}
		c.tempFS = fs
		c.tempDir = dir
		return nil
	}
}

// userAgent is an http.RoundTripper, enabling the persistent User-Agent header.
type userAgent struct {
	value string
	base  http.RoundTripper
}

func (ua userAgent) RoundTrip(r *http.Request) (*http.Response, error) {
	cpy := r.Clone(r.Context())
	cpy.Header.Set("User-Agent", ua.value)
	return ua.base.RoundTrip(cpy)
}

// UploadOption is a functional option for [Client.UploadFile].
type UploadOption func(*uploadOpts) error

type uploadOpts struct {
	filename    string
	contentType string
	boundary    string
}

// WithFileName sets the filename sent in the part's Content-Disposition.
// Defaults to "upload".
func WithFileName(name string) UploadOption {
	return func(o *uploadOpts) error {
		if name == "" {
			return errors.New("filename must not be empty")
		}
		o.filename = name
		return nil
	}
}

// WithFileContentType sets the part's Content-Type. By default it is
// detected from the data.
func WithFileContentType(contentType string) UploadOption {
	return func(o *uploadOpts) error {
		if contentType == "" {
			return errors.New("cannot use empty content type")
		}
		o.contentType = contentType
		return nil
	}
}

// WithBoundary fixes the multipart boundary token. By default a random
// token is used per upload.
func WithBoundary(token string) UploadOption {
	return func(o *uploadOpts) error {
		if token == "" {
			return errors.New("boundary token must not be empty")
		}
		o.boundary = token
		return nil
	}
}
