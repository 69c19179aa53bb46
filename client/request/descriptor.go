// Package request describes outbound requests declaratively and builds
// them into transport-ready *http.Request values.
package request

import (
	"maps"
	"net/http"
	"reflect"
)

// Method is one of the HTTP verbs supported by the pipeline.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodDelete Method = http.MethodDelete
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodPatch  Method = http.MethodPatch
)

// AcceptsBody reports whether requests with this method carry a body.
func (m Method) AcceptsBody() bool {
	switch m {
	case MethodPost, MethodPut, MethodPatch:
		return true
	default:
		return false
	}
}

// Descriptor is an immutable description of one logical request.
// Parameters are encoded into the query string; Body is serialized as
// JSON only for methods that accept one and is never validated.
type Descriptor struct {
	BaseURL    string            `json:"baseURL" validate:"required"`
	Endpoint   string            `json:"endpoint"`
	Method     Method            `json:"method" validate:"required,oneof=GET DELETE POST PUT PATCH"`
	Headers    http.Header       `json:"headers"`
	Parameters map[string]string `json:"parameters"`
	Body       any               `json:"body" validate:"-"`
}

// Equal reports whether d and o describe the same request.
func (d Descriptor) Equal(o Descriptor) bool {
	if d.BaseURL != o.BaseURL || d.Endpoint != o.Endpoint || d.Method != o.Method {
		return false
	}

	if !maps.Equal(d.Parameters, o.Parameters) {
		return false
	}

	if !maps.EqualFunc(d.Headers, o.Headers, func(a, b []string) bool { return reflect.DeepEqual(a, b) }) {
		return false
	}

	return reflect.DeepEqual(d.Body, o.Body)
}
