package errs_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/adamwoolhether/reqflow/errs"
)

func TestError_IsMatchesKindAndCause(t *testing.T) {
	cause := errors.New("boom")

	testCases := map[string]struct {
		err      *errs.Error
		sentinel error
		kind     errs.Kind
		cause    error
	}{
		"invalidURL":      {err: errs.InvalidURL("::", cause), sentinel: errs.ErrInvalidURL, kind: errs.KindInvalidURL, cause: cause},
		"invalidRequest":  {err: errs.InvalidRequest(cause), sentinel: errs.ErrInvalidRequest, kind: errs.KindInvalidRequest, cause: cause},
		"invalidBody":     {err: errs.InvalidBody(make(chan int), cause), sentinel: errs.ErrInvalidBody, kind: errs.KindInvalidBody, cause: cause},
		"transport":       {err: errs.Transport(context.Canceled), sentinel: errs.ErrTransport, kind: errs.KindTransport, cause: context.Canceled},
		"invalidResponse": {err: errs.InvalidResponse(), sentinel: errs.ErrInvalidResponse, kind: errs.KindInvalidResponse},
		"invalidStatus":   {err: errs.InvalidStatus(http.StatusTeapot, nil), sentinel: errs.ErrInvalidStatus, kind: errs.KindInvalidStatus},
		"missingPayload":  {err: errs.MissingPayload(), sentinel: errs.ErrMissingPayload, kind: errs.KindMissingPayload},
		"objectDecode":    {err: errs.ObjectDecode(cause), sentinel: errs.ErrObjectDecode, kind: errs.KindObjectDecode, cause: cause},
		"decode":          {err: errs.Decode(cause), sentinel: errs.ErrDecode, kind: errs.KindDecode, cause: cause},
		"relocation":      {err: errs.Relocation(cause), sentinel: errs.ErrRelocation, kind: errs.KindRelocation, cause: cause},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			wrapped := fmt.Errorf("outer: %w", tc.err)

			if !errors.Is(wrapped, tc.sentinel) {
				t.Errorf("exp errors.Is(%v), got false", tc.sentinel)
			}
			if tc.cause != nil && !errors.Is(wrapped, tc.cause) {
				t.Errorf("exp errors.Is(cause), got false")
			}
			if got := errs.KindOf(wrapped); got != tc.kind {
				t.Errorf("exp kind %v, got %v", tc.kind, got)
			}
			if tc.err.Description() == "" || tc.err.Remediation() == "" {
				t.Error("exp non-empty description and remediation")
			}
		})
	}
}

func TestError_StatusMessage(t *testing.T) {
	err := errs.InvalidStatus(http.StatusNotFound, []byte("nope"))

	if got := errs.StatusCode(err); got != http.StatusNotFound {
		t.Errorf("exp status %d, got %d", http.StatusNotFound, got)
	}

	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "nope") {
		t.Errorf("exp code and body in message, got %q", err.Error())
	}

	if !strings.Contains(err.Description(), "Not Found") {
		t.Errorf("exp status text in description, got %q", err.Description())
	}
}

func TestKindOf_Unknown(t *testing.T) {
	if got := errs.KindOf(errors.New("plain")); got != errs.KindUnknown {
		t.Errorf("exp unknown kind, got %v", got)
	}
	if got := errs.StatusCode(errors.New("plain")); got != 0 {
		t.Errorf("exp zero status, got %d", got)
	}
}
