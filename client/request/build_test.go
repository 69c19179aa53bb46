package request_test

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/adamwoolhether/reqflow/client/request"
	"github.com/adamwoolhether/reqflow/errs"
)

// account carries validate tags that Build must not enforce.
type account struct {
	BaseURL string `json:"baseURL" validate:"required,url"`
	Name    string `json:"name" validate:"required"`
}

func TestBuild(t *testing.T) {
	testCases := map[string]struct {
		desc       request.Descriptor
		expURL     string
		expQuery   url.Values
		expBody    string
		expCT      string
		expHeaders http.Header
	}{
		"getWithParams": {
			desc: request.Descriptor{
				BaseURL:    "https://api.example.com",
				Endpoint:   "/users",
				Method:     request.MethodGet,
				Parameters: map[string]string{"id": "7"},
			},
			expURL: "https://api.example.com/users?id=7",
		},
		"getMultipleParams": {
			desc: request.Descriptor{
				BaseURL:    "https://api.example.com/v1/",
				Endpoint:   "users",
				Method:     request.MethodGet,
				Parameters: map[string]string{"a": "1", "b": "two words"},
			},
			expQuery: url.Values{"a": {"1"}, "b": {"two words"}},
		},
		"getIgnoresBody": {
			desc: request.Descriptor{
				BaseURL:    "https://api.example.com",
				Endpoint:   "/users",
				Method:     request.MethodGet,
				Parameters: map[string]string{"id": "7"},
				Body:       map[string]string{"ignored": "yes"},
			},
			expURL: "https://api.example.com/users?id=7",
		},
		"deleteIgnoresBody": {
			desc: request.Descriptor{
				BaseURL:  "https://api.example.com",
				Endpoint: "/users/7",
				Method:   request.MethodDelete,
				Body:     map[string]string{"ignored": "yes"},
			},
			expURL: "https://api.example.com/users/7",
		},
		"postBody": {
			desc: request.Descriptor{
				BaseURL:  "https://api.example.com",
				Endpoint: "/users",
				Method:   request.MethodPost,
				Body:     map[string]string{"name": "Ann"},
			},
			expURL:  "https://api.example.com/users",
			expBody: `{"name":"Ann"}`,
			expCT:   "application/json",
		},
		"patchKeepsContentType": {
			desc: request.Descriptor{
				BaseURL:  "https://api.example.com",
				Endpoint: "/users/7",
				Method:   request.MethodPatch,
				Headers:  http.Header{"Content-Type": {"application/merge-patch+json"}},
				Body:     map[string]int{"age": 3},
			},
			expURL:  "https://api.example.com/users/7",
			expBody: `{"age":3}`,
			expCT:   "application/merge-patch+json",
		},
		"additiveHeaders": {
			desc: request.Descriptor{
				BaseURL:  "https://api.example.com",
				Endpoint: "/",
				Method:   request.MethodGet,
				Headers: http.Header{
					"Accept":  {"application/json", "text/plain"},
					"X-Token": {"abc"},
				},
			},
			expURL: "https://api.example.com/",
			expHeaders: http.Header{
				"Accept":  {"application/json", "text/plain"},
				"X-Token": {"abc"},
			},
		},
		"postTaggedBodyUnchecked": {
			desc: request.Descriptor{
				BaseURL:  "https://api.example.com",
				Endpoint: "/accounts",
				Method:   request.MethodPost,
				Body:     account{},
			},
			expURL:  "https://api.example.com/accounts",
			expBody: `{"baseURL":"","name":""}`,
			expCT:   "application/json",
		},
		"getTaggedBodyIgnored": {
			desc: request.Descriptor{
				BaseURL:  "https://api.example.com",
				Endpoint: "/accounts",
				Method:   request.MethodGet,
				Body:     &account{},
			},
			expURL: "https://api.example.com/accounts",
		},
		"noEndpoint": {
			desc: request.Descriptor{
				BaseURL: "https://api.example.com/health",
				Method:  request.MethodGet,
			},
			expURL: "https://api.example.com/health",
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			req, err := request.Build(t.Context(), tc.desc)
			if err != nil {
				t.Fatalf("exp nil err, got: %v", err)
			}

			if req.Method != string(tc.desc.Method) {
				t.Errorf("exp method %s, got %s", tc.desc.Method, req.Method)
			}

			if tc.expURL != "" && req.URL.String() != tc.expURL {
				t.Errorf("exp url %q, got %q", tc.expURL, req.URL.String())
			}

			if tc.expQuery != nil {
				if diff := cmp.Diff(tc.expQuery, req.URL.Query()); diff != "" {
					t.Errorf("query mismatch (-exp +got):\n%s", diff)
				}
			}

			if tc.expBody == "" {
				if req.Body != nil && req.Body != http.NoBody {
					b, _ := io.ReadAll(req.Body)
					t.Errorf("exp no body, got %q", b)
				}
			} else {
				b, err := io.ReadAll(req.Body)
				if err != nil {
					t.Fatalf("reading body: %v", err)
				}
				if string(b) != tc.expBody {
					t.Errorf("exp body %s, got %s", tc.expBody, b)
				}
			}

			if got := req.Header.Get("Content-Type"); got != tc.expCT {
				t.Errorf("exp content type %q, got %q", tc.expCT, got)
			}

			for k, v := range tc.expHeaders {
				if diff := cmp.Diff(v, req.Header.Values(k)); diff != "" {
					t.Errorf("header %s mismatch (-exp +got):\n%s", k, diff)
				}
			}
		})
	}
}

func TestBuild_Errors(t *testing.T) {
	testCases := map[string]struct {
		desc    request.Descriptor
		expKind errs.Kind
		expErr  error
	}{
		"emptyBaseURL": {
			desc:    request.Descriptor{Method: request.MethodGet},
			expKind: errs.KindInvalidURL,
			expErr:  errs.ErrInvalidURL,
		},
		"relativeBaseURL": {
			desc:    request.Descriptor{BaseURL: "api.example.com", Method: request.MethodGet},
			expKind: errs.KindInvalidURL,
			expErr:  errs.ErrInvalidURL,
		},
		"unparsableBaseURL": {
			desc:    request.Descriptor{BaseURL: "http://[::1", Method: request.MethodGet},
			expKind: errs.KindInvalidURL,
			expErr:  errs.ErrInvalidURL,
		},
		"unsupportedMethod": {
			desc:    request.Descriptor{BaseURL: "https://api.example.com", Method: "TRACE"},
			expKind: errs.KindInvalidRequest,
			expErr:  errs.ErrInvalidRequest,
		},
		"unencodableBody": {
			desc: request.Descriptor{
				BaseURL: "https://api.example.com",
				Method:  request.MethodPost,
				Body:    map[string]any{"ch": make(chan int)},
			},
			expKind: errs.KindInvalidBody,
			expErr:  errs.ErrInvalidBody,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			req, err := request.Build(t.Context(), tc.desc)
			if err == nil {
				t.Fatalf("exp err, got request %v", req.URL)
			}

			if !errors.Is(err, tc.expErr) {
				t.Errorf("exp err %v, got: %v", tc.expErr, err)
			}
			if got := errs.KindOf(err); got != tc.expKind {
				t.Errorf("exp kind %v, got %v", tc.expKind, got)
			}
		})
	}
}

func TestBuild_Idempotent(t *testing.T) {
	desc := request.Descriptor{
		BaseURL:    "https://api.example.com",
		Endpoint:   "/search",
		Method:     request.MethodGet,
		Headers:    http.Header{"X-Trace": {"1", "2"}},
		Parameters: map[string]string{"q": "go", "page": "2", "sort": "asc"},
	}
	other := desc
	if !desc.Equal(other) {
		t.Fatal("exp copies to be equal")
	}

	first, err := request.Build(t.Context(), desc)
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	second, err := request.Build(t.Context(), other)
	if err != nil {
		t.Fatalf("second build: %v", err)
	}

	if first.URL.String() != second.URL.String() {
		t.Errorf("exp equal urls, got %q and %q", first.URL, second.URL)
	}
	if first.Method != second.Method {
		t.Errorf("exp equal methods, got %q and %q", first.Method, second.Method)
	}
	if diff := cmp.Diff(first.Header, second.Header); diff != "" {
		t.Errorf("header mismatch (-first +second):\n%s", diff)
	}
}

func TestDescriptor_Equal(t *testing.T) {
	base := request.Descriptor{
		BaseURL:    "https://api.example.com",
		Endpoint:   "/users",
		Method:     request.MethodPost,
		Headers:    http.Header{"A": {"1"}},
		Parameters: map[string]string{"k": "v"},
		Body:       map[string]any{"n": 1},
	}

	testCases := map[string]struct {
		mutate func(d request.Descriptor) request.Descriptor
		exp    bool
	}{
		"identical": {mutate: func(d request.Descriptor) request.Descriptor { return d }, exp: true},
		"endpoint": {mutate: func(d request.Descriptor) request.Descriptor {
			d.Endpoint = "/other"
			return d
		}},
		"method": {mutate: func(d request.Descriptor) request.Descriptor {
			d.Method = request.MethodPut
			return d
		}},
		"headers": {mutate: func(d request.Descriptor) request.Descriptor {
			d.Headers = http.Header{"A": {"2"}}
			return d
		}},
		"params": {mutate: func(d request.Descriptor) request.Descriptor {
			d.Parameters = map[string]string{"k": "w"}
			return d
		}},
		"body": {mutate: func(d request.Descriptor) request.Descriptor {
			d.Body = map[string]any{"n": 2}
			return d
		}},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			if got := base.Equal(tc.mutate(base)); got != tc.exp {
				t.Errorf("exp %v, got %v", tc.exp, got)
			}
		})
	}
}
