package client

import (
	"context"
	"net/http"

	"github.com/adamwoolhether/reqflow/client/decode"
	"github.com/adamwoolhether/reqflow/client/download"
	"github.com/adamwoolhether/reqflow/client/formdata"
	"github.com/adamwoolhether/reqflow/client/request"
	"github.com/adamwoolhether/reqflow/client/task"
	"github.com/adamwoolhether/reqflow/errs"
	"github.com/adamwoolhether/reqflow/fsys"
)

const defaultUploadName = "upload"

// Get fetches endpoint with params as the query and delivers the body
// decoded as a generic JSON value.
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]string, done func(any, error)) *task.Handle {
	return fetch(ctx, c, c.descriptor(request.MethodGet, endpoint, params, nil), decode.Dynamic, done)
}

// Delete is Get with the DELETE method.
func (c *Client) Delete(ctx context.Context, endpoint string, params map[string]string, done func(any, error)) *task.Handle {
	return fetch(ctx, c, c.descriptor(request.MethodDelete, endpoint, params, nil), decode.Dynamic, done)
}

// Post sends body as JSON and delivers the response decoded as a generic
// JSON value.
func (c *Client) Post(ctx context.Context, endpoint string, body any, done func(any, error)) *task.Handle {
	return fetch(ctx, c, c.descriptor(request.MethodPost, endpoint, nil, body), decode.Dynamic, done)
}

// Put is Post with the PUT method.
func (c *Client) Put(ctx context.Context, endpoint string, body any, done func(any, error)) *task.Handle {
	return fetch(ctx, c, c.descriptor(request.MethodPut, endpoint, nil, body), decode.Dynamic, done)
}

// Patch is Post with the PATCH method.
func (c *Client) Patch(ctx context.Context, endpoint string, body any, done func(any, error)) *task.Handle {
	return fetch(ctx, c, c.descriptor(request.MethodPatch, endpoint, nil, body), decode.Dynamic, done)
}

// GetAs fetches endpoint and decodes the body into T.
func GetAs[T any](ctx context.Context, c *Client, endpoint string, params map[string]string, done func(T, error)) *task.Handle {
	return fetch(ctx, c, c.descriptor(request.MethodGet, endpoint, params, nil), decode.Typed[T](), done)
}

// DeleteAs is GetAs with the DELETE method.
func DeleteAs[T any](ctx context.Context, c *Client, endpoint string, params map[string]string, done func(T, error)) *task.Handle {
	return fetch(ctx, c, c.descriptor(request.MethodDelete, endpoint, params, nil), decode.Typed[T](), done)
}

// PostAs sends body as JSON and decodes the response into T.
func PostAs[T any](ctx context.Context, c *Client, endpoint string, body any, done func(T, error)) *task.Handle {
	return fetch(ctx, c, c.descriptor(request.MethodPost, endpoint, nil, body), decode.Typed[T](), done)
}

// PutAs is PostAs with the PUT method.
func PutAs[T any](ctx context.Context, c *Client, endpoint string, body any, done func(T, error)) *task.Handle {
	return fetch(ctx, c, c.descriptor(request.MethodPut, endpoint, nil, body), decode.Typed[T](), done)
}

// PatchAs is PostAs with the PATCH method.
func PatchAs[T any](ctx context.Context, c *Client, endpoint string, body any, done func(T, error)) *task.Handle {
	return fetch(ctx, c, c.descriptor(request.MethodPatch, endpoint, nil, body), decode.Typed[T](), done)
}

// UploadFile posts data as a multipart/form-data file part and delivers
// the response decoded as a generic JSON value.
func (c *Client) UploadFile(ctx context.Context, endpoint string, params map[string]string, data []byte, done func(any, error), optFns ...UploadOption) *task.Handle {
	return upload(ctx, c, endpoint, params, data, decode.Dynamic, done, optFns)
}

// UploadFileAs is UploadFile decoding the response into T.
func UploadFileAs[T any](ctx context.Context, c *Client, endpoint string, params map[string]string, data []byte, done func(T, error), optFns ...UploadOption) *task.Handle {
	return upload(ctx, c, endpoint, params, data, decode.Typed[T](), done, optFns)
}

// DownloadFile streams endpoint to a temp file, then moves it into dir
// as filename, or under the temp file's name when filename is empty.
// The final path is delivered.
func (c *Client) DownloadFile(ctx context.Context, endpoint string, params map[string]string, filename string, dir fsys.Directory, done func(string, error), optFns ...DownloadOption) *task.Handle {
	deliver := deliverer(c, done)

	req, err := request.Build(ctx, c.descriptor(request.MethodGet, endpoint, params, nil))
	if err != nil {
		return fail(deliver, err)
	}

	return c.engine.Download(req, func(temp string, err error) {
		if err != nil {
			deliver("", err)
			return
		}

		deliver(download.Relocate(c.files, temp, dir, filename))
	}, optFns...)
}

// fetch is the single build -> execute -> decode pipeline every verb
// shares; only dec differs between the untyped and typed calls.
func fetch[T any](ctx context.Context, c *Client, d request.Descriptor, dec decode.Func[T], done func(T, error)) *task.Handle {
	deliver := deliverer(c, done)

	req, err := request.Build(ctx, d)
	if err != nil {
		return fail(deliver, err)
	}

	return c.engine.Fetch(req, decodeInto(dec, deliver))
}

func upload[T any](ctx context.Context, c *Client, endpoint string, params map[string]string, data []byte, dec decode.Func[T], done func(T, error), optFns []UploadOption) *task.Handle {
	deliver := deliverer(c, done)

	var opts uploadOpts
	for _, opt := range optFns {
		if err := opt(&opts); err != nil {
			return fail(deliver, errs.InvalidRequest(err))
		}
	}

	if opts.filename == "" {
		opts.filename = defaultUploadName
	}
	if opts.contentType == "" {
		opts.contentType = formdata.DetectContentType(data)
	}
	if opts.boundary == "" {
		opts.boundary = formdata.NewBoundary()
	}

	d := c.descriptor(request.MethodPost, endpoint, params, nil)
	if d.Headers == nil {
		d.Headers = make(http.Header)
	}
	d.Headers.Set("Content-Type", formdata.ContentType(opts.boundary))

	req, err := request.Build(ctx, d)
	if err != nil {
		return fail(deliver, err)
	}

	body := formdata.Encode(data, opts.filename, opts.boundary, opts.contentType)

	return c.engine.Upload(req, body, decodeInto(dec, deliver))
}

func decodeInto[T any](dec decode.Func[T], deliver func(T, error)) func([]byte, error) {
	return func(b []byte, err error) {
		if err != nil {
			var zero T
			deliver(zero, err)
			return
		}

		deliver(dec(b))
	}
}
