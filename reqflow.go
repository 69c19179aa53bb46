// Package reqflow exposes the client builder.
package reqflow

import (
	"github.com/adamwoolhether/reqflow/client"
)

// NewClient instantiates a new *client.Client for baseURL with the
// provided options. Call Close when done to stop its completion queue.
func NewClient(baseURL string, opts ...client.Option) (*client.Client, error) {
	return client.Build(baseURL, opts...)
}
