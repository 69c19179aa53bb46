package client

import (
	"hash"

	"github.com/adamwoolhether/reqflow/client/download"
	"github.com/adamwoolhether/reqflow/errs"
)

type (
	// Error is the error type every completion fails with.
	Error = errs.Error

	// DownloadOption is a functional option for [Client.DownloadFile].
	DownloadOption = download.Option
)

var (
	ErrInvalidURL      = errs.ErrInvalidURL
	ErrInvalidRequest  = errs.ErrInvalidRequest
	ErrInvalidBody     = errs.ErrInvalidBody
	ErrTransport       = errs.ErrTransport
	ErrInvalidResponse = errs.ErrInvalidResponse
	ErrInvalidStatus   = errs.ErrInvalidStatus
	ErrMissingPayload  = errs.ErrMissingPayload
	ErrObjectDecode    = errs.ErrObjectDecode
	ErrDecode          = errs.ErrDecode
	ErrRelocation      = errs.ErrRelocation

	// ErrContentLengthMismatch indicates the byte count did not match Content-Length.
	ErrContentLengthMismatch = download.ErrContentLengthMismatch

	// ErrChecksumMismatch indicates the file checksum did not match the expected value.
	ErrChecksumMismatch = download.ErrChecksumMismatch

	// ErrDownloadCancelled indicates the download was cancelled via context.
	ErrDownloadCancelled = download.ErrDownloadCancelled
)

// WithChecksum enables checksum validation of the downloaded file.
// h is a [hash.Hash] instance (e.g. sha256.New()), and expected is the
// hex-encoded expected checksum string.
func WithChecksum(h hash.Hash, expected string) DownloadOption {
	return download.WithChecksum(h, expected)
}

// WithProgress enables periodic download progress logging.
func WithProgress() DownloadOption { return download.WithProgress() }
