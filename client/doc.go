// Package client binds a base URL and default headers once and exposes
// per-verb operations that build, execute and decode requests
// asynchronously.
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build("https://api.example.com",
//		client.WithTimeout(10*time.Second),
//		client.WithUserAgent("myapp/1.0"),
//		client.WithHeaders(http.Header{"Authorization": {"Bearer token"}}),
//	)
//	defer c.Close()
//
// # Making Requests
//
// Every operation returns a [task.Handle] immediately and delivers its
// result once, on the client's executor. Methods on [Client] decode the
// body into a generic JSON value:
//
//	c.Get(ctx, "/users", map[string]string{"id": "7"}, func(v any, err error) {
//		...
//	})
//
// The generic functions decode into a declared type instead. Struct
// fields tagged `validate:"required"` must be present:
//
//	type user struct {
//		Name string `json:"name" validate:"required"`
//	}
//
//	client.GetAs(ctx, c, "/users", params, func(u user, err error) {
//		...
//	})
//
// # Errors
//
// Every failure is an [*Error] whose Kind classifies it. Use
// [errors.Is] with the exported sentinels, e.g. [ErrInvalidStatus], or
// [errs.KindOf].
//
// # Files
//
// [Client.DownloadFile] streams a response to a temp file, optionally
// verifying its checksum, then moves it into a [fsys.Directory]:
//
//	c.DownloadFile(ctx, "/files/1", nil, "pic.jpg", fsys.In(fsys.Caches, "sess"),
//		func(path string, err error) { ... },
//		client.WithChecksum(sha256.New(), expectedHex),
//	)
//
// [Client.UploadFile] posts data as a single multipart/form-data part
// named "file".
package client
