// Package errs defines the single error taxonomy shared by every stage of
// the request pipeline: building, transport, validation, decoding and
// file relocation.
package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	// KindUnknown is reported by KindOf for errors outside the taxonomy.
	KindUnknown Kind = iota
	// KindInvalidURL indicates the descriptor could not be resolved to a URL.
	KindInvalidURL
	// KindInvalidRequest indicates a descriptor field failed validation.
	KindInvalidRequest
	// KindInvalidBody indicates the request body failed to serialize.
	KindInvalidBody
	// KindTransport indicates the transport reported an error. Local
	// failures while streaming a download, such as creating or writing
	// its temp file, are reported with this kind as well.
	KindTransport
	// KindInvalidResponse indicates the transport returned no HTTP response.
	KindInvalidResponse
	// KindInvalidStatus indicates a status code outside 200-299.
	KindInvalidStatus
	// KindMissingPayload indicates a valid status without a body or file.
	KindMissingPayload
	// KindObjectDecode indicates the payload is not a valid JSON value.
	KindObjectDecode
	// KindDecode indicates the payload did not match the requested type.
	KindDecode
	// KindRelocation indicates a downloaded file could not be moved.
	KindRelocation
)

var (
	ErrInvalidURL      = errors.New("invalid url")
	ErrInvalidRequest  = errors.New("invalid request")
	ErrInvalidBody     = errors.New("invalid body")
	ErrTransport       = errors.New("transport error")
	ErrInvalidResponse = errors.New("invalid response")
	ErrInvalidStatus   = errors.New("invalid status")
	ErrMissingPayload  = errors.New("missing payload")
	ErrObjectDecode    = errors.New("object decode error")
	ErrDecode          = errors.New("decode error")
	ErrRelocation      = errors.New("relocation error")
)

var sentinels = map[Kind]error{
	KindInvalidURL:      ErrInvalidURL,
	KindInvalidRequest:  ErrInvalidRequest,
	KindInvalidBody:     ErrInvalidBody,
	KindTransport:       ErrTransport,
	KindInvalidResponse: ErrInvalidResponse,
	KindInvalidStatus:   ErrInvalidStatus,
	KindMissingPayload:  ErrMissingPayload,
	KindObjectDecode:    ErrObjectDecode,
	KindDecode:          ErrDecode,
	KindRelocation:      ErrRelocation,
}

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalidURL:
		return "invalid_url"
	case KindInvalidRequest:
		return "invalid_request"
	case KindInvalidBody:
		return "invalid_body"
	case KindTransport:
		return "transport"
	case KindInvalidResponse:
		return "invalid_response"
	case KindInvalidStatus:
		return "invalid_status"
	case KindMissingPayload:
		return "missing_payload"
	case KindObjectDecode:
		return "object_decode"
	case KindDecode:
		return "decode"
	case KindRelocation:
		return "relocation"
	default:
		return "unknown"
	}
}

// Error is the failure delivered for every pipeline stage.
type Error struct {
	// Kind classifies the failure.
	Kind Kind
	// StatusCode is set for KindInvalidStatus.
	StatusCode int
	// Detail carries the offending value, e.g. the unparsable base URL.
	Detail string
	// Body holds at most the first few KB of an error response body.
	Body []byte
	// Err is the underlying cause, may be nil.
	Err error
}

func (e *Error) Error() string {
	msg := sentinels[e.Kind]
	if msg == nil {
		msg = errors.New(e.Kind.String())
	}

	switch {
	case e.Kind == KindInvalidStatus:
		return fmt.Sprintf("%v: %d, body: %s", msg, e.StatusCode, e.Body)
	case e.Detail != "" && e.Err != nil:
		return fmt.Sprintf("%v: %s: %v", msg, e.Detail, e.Err)
	case e.Detail != "":
		return fmt.Sprintf("%v: %s", msg, e.Detail)
	case e.Err != nil:
		return fmt.Sprintf("%v: %v", msg, e.Err)
	default:
		return msg.Error()
	}
}

// Unwrap exposes both the kind sentinel and the underlying cause, so
// errors.Is matches either.
func (e *Error) Unwrap() []error {
	out := make([]error, 0, 2)
	if s, ok := sentinels[e.Kind]; ok {
		out = append(out, s)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}

	return out
}

// Description returns a human-readable summary suitable for logs or UI.
func (e *Error) Description() string {
	switch e.Kind {
	case KindInvalidURL:
		return fmt.Sprintf("The URL %q could not be constructed.", e.Detail)
	case KindInvalidRequest:
		return "The request description is incomplete or invalid."
	case KindInvalidBody:
		return "The request body could not be encoded as JSON."
	case KindTransport:
		return "The request could not be completed by the network layer."
	case KindInvalidResponse:
		return "The server did not return a valid HTTP response."
	case KindInvalidStatus:
		return fmt.Sprintf("The server responded with %d %s.", e.StatusCode, http.StatusText(e.StatusCode))
	case KindMissingPayload:
		return "The server responded without a payload."
	case KindObjectDecode:
		return "The response is not valid JSON."
	case KindDecode:
		return "The response does not match the expected model."
	case KindRelocation:
		return "The downloaded file could not be moved to its destination."
	default:
		return "An unknown error occurred."
	}
}

// Remediation suggests what the caller can do about the failure.
func (e *Error) Remediation() string {
	switch e.Kind {
	case KindInvalidURL:
		return "Check the base URL, endpoint and query parameters."
	case KindInvalidRequest:
		return "Check the request method and base URL."
	case KindInvalidBody:
		return "Make sure the body only contains JSON-encodable values."
	case KindTransport:
		return "Check the network connection and try again."
	case KindInvalidResponse, KindMissingPayload:
		return "Verify the endpoint returns a body, then try again."
	case KindInvalidStatus:
		if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
			return "Check the request credentials."
		}
		if e.StatusCode >= http.StatusInternalServerError {
			return "The server failed; try again later."
		}
		return "Check the request against the API documentation."
	case KindObjectDecode, KindDecode:
		return "Verify the response format matches the requested type."
	case KindRelocation:
		return "Check the destination directory exists and is writable."
	default:
		return "Try again."
	}
}

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return KindUnknown
}

// StatusCode returns the status code carried by err, or 0.
func StatusCode(err error) int {
	var e *Error
	if errors.As(err, &e) {
		return e.StatusCode
	}

	return 0
}

// InvalidURL reports a URL that could not be parsed or resolved.
func InvalidURL(raw string, err error) *Error {
	return &Error{Kind: KindInvalidURL, Detail: raw, Err: err}
}

// InvalidRequest reports a descriptor validation failure.
func InvalidRequest(err error) *Error {
	return &Error{Kind: KindInvalidRequest, Err: err}
}

// InvalidBody reports a body that failed to serialize.
func InvalidBody(body any, err error) *Error {
	return &Error{Kind: KindInvalidBody, Detail: fmt.Sprintf("%T", body), Err: err}
}

// Transport wraps a transport-level failure.
func Transport(err error) *Error {
	return &Error{Kind: KindTransport, Err: err}
}

// InvalidResponse reports a transport result without an HTTP response.
func InvalidResponse() *Error {
	return &Error{Kind: KindInvalidResponse}
}

// InvalidStatus reports a status code outside the success range.
func InvalidStatus(code int, body []byte) *Error {
	return &Error{Kind: KindInvalidStatus, StatusCode: code, Body: body}
}

// MissingPayload reports a successful status without a payload.
func MissingPayload() *Error {
	return &Error{Kind: KindMissingPayload}
}

// ObjectDecode wraps a failure to parse a dynamic JSON value.
func ObjectDecode(err error) *Error {
	return &Error{Kind: KindObjectDecode, Err: err}
}

// Decode wraps a failure to decode into a typed model.
func Decode(err error) *Error {
	return &Error{Kind: KindDecode, Err: err}
}

// Relocation wraps a failure to move a downloaded file.
func Relocation(err error) *Error {
	return &Error{Kind: KindRelocation, Err: err}
}
