package request

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/adamwoolhether/reqflow/errs"
	"github.com/adamwoolhether/reqflow/internal/validate"
)

const contentTypeJSON = "application/json"

var errNotAbsolute = errors.New("url must be absolute")

// Build turns d into an *http.Request. It performs no I/O and holds no
// state: equal descriptors yield requests with equal URL, method and headers.
//
// Failures are reported as *errs.Error of kind InvalidURL, InvalidRequest
// or InvalidBody.
func Build(ctx context.Context, d Descriptor) (*http.Request, error) {
	if err := validate.Struct(d); err != nil {
		var fields validate.FieldErrors
		if errors.As(err, &fields) && fields.Has("baseURL") {
			return nil, errs.InvalidURL(d.BaseURL, err)
		}
		return nil, errs.InvalidRequest(err)
	}

	reqURL, err := resolve(d)
	if err != nil {
		return nil, err
	}

	var body []byte
	if d.Method.AcceptsBody() && d.Body != nil {
		body, err = json.Marshal(d.Body)
		if err != nil {
			return nil, errs.InvalidBody(d.Body, err)
		}
	}

	var payload *bytes.Reader
	if body != nil {
		payload = bytes.NewReader(body)
	}

	var req *http.Request
	if payload != nil {
		req, err = http.NewRequestWithContext(ctx, string(d.Method), reqURL, payload)
	} else {
		req, err = http.NewRequestWithContext(ctx, string(d.Method), reqURL, nil)
	}
	if err != nil {
		return nil, errs.InvalidURL(reqURL, fmt.Errorf("instantiating request: %w", err))
	}

	for k, v := range d.Headers {
		for _, element := range v {
			req.Header.Add(k, element)
		}
	}

	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentTypeJSON)
	}

	return req, nil
}

// resolve joins the endpoint onto the base URL, attaches the query
// parameters and re-parses the result.
func resolve(d Descriptor) (string, error) {
	base, err := url.Parse(d.BaseURL)
	if err != nil {
		return "", errs.InvalidURL(d.BaseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", errs.InvalidURL(d.BaseURL, errNotAbsolute)
	}

	endpoint := base
	if d.Endpoint != "" {
		endpoint = base.JoinPath(d.Endpoint)
	}

	if len(d.Parameters) > 0 {
		queryParams := endpoint.Query()
		for k, v := range d.Parameters {
			queryParams.Add(k, v)
		}

		endpoint.RawQuery = queryParams.Encode()
	}

	raw := endpoint.String()
	if _, err := url.Parse(raw); err != nil {
		return "", errs.InvalidURL(raw, err)
	}

	return raw, nil
}
