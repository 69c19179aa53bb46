package download

import (
	"errors"
	"hash"
)

// Option defines optional settings for a download.
//
// WithChecksum verifies the written bytes against a hex digest.
// WithProgress logs transfer progress at most once per second.
type Option func(*options) error

type options struct {
	checksum *checksumVerifier
	progress bool
}

// WithChecksum enables checksum validation of the downloaded file.
// h is a hash.Hash instance (e.g. sha256.New()), and expected is the
// hex-encoded expected checksum string.
func WithChecksum(h hash.Hash, expected string) Option {
	return func(opts *options) error {
		if h == nil {
			return errors.New("hash must not be nil")
		}

		if expected == "" {
			return errors.New("expected checksum must not be empty")
		}

		opts.checksum = &checksumVerifier{hash: h, expected: expected}
		return nil
	}
}

// WithProgress enables periodic progress logging.
func WithProgress() Option {
	return func(opts *options) error {
		opts.progress = true
		return nil
	}
}
