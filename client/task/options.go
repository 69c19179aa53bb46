package task

import (
	"errors"
	"log/slog"

	"github.com/spf13/afero"
	"go.opentelemetry.io/otel/trace"
)

// Option is a functional option for configuring an [Engine] via [New].
type Option func(*options) error

type options struct {
	logger  *slog.Logger
	tracer  trace.Tracer
	debug   bool
	manual  bool
	fs      afero.Fs
	tempDir string
}

// WithLogger injects a custom [slog.Logger] into the [Engine].
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		o.logger = logger
		return nil
	}
}

// WithTracer sets the tracer used to open a client span per task.
func WithTracer(tracer trace.Tracer) Option {
	return func(o *options) error {
		if tracer == nil {
			return errors.New("tracer must not be nil")
		}
		o.tracer = tracer
		return nil
	}
}

// WithDebug logs every request before it is issued.
func WithDebug() Option {
	return func(o *options) error {
		o.debug = true
		return nil
	}
}

// WithManualStart leaves tasks unstarted until [Handle.Start] is called.
// An unstarted handle holds a child of its request's context until
// [Handle.Cancel] is called or that context ends.
func WithManualStart() Option {
	return func(o *options) error {
		o.manual = true
		return nil
	}
}

// WithTempFS sets the filesystem and directory downloads are written to
// before relocation.
func WithTempFS(fs afero.Fs, dir string) Option {
	return func(o *options) error {
		if fs == nil {
			return errors.New("filesystem must not be nil")
		}
		if dir == "" {
			return errors.New("temp dir must not be empty")
		}
		o.fs = fs
		o.tempDir = dir
		return nil
	}
}
