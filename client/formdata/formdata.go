// Package formdata encodes a single file as a multipart/form-data body.
//
// The layout is fixed: one part named "file", delimited by a boundary of
// the form "Boundary-<token>". The Content-Type header sent alongside the
// body must be built with [ContentType] using the same token.
package formdata

import (
	"bytes"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

const (
	crlf      = "\r\n"
	fieldName = "file"
)

// Encode assembles the multipart body for data. filename is written
// verbatim; callers must supply a safe value.
func Encode(data []byte, filename, boundary, contentType string) []byte {
	delim := "--" + Boundary(boundary)

	var buf bytes.Buffer
	buf.Grow(len(data) + len(filename) + len(contentType) + 2*len(delim) + 96)

	buf.WriteString(delim + crlf)
	buf.WriteString(`Content-Disposition: form-data; name="` + fieldName + `"; filename="` + filename + `"` + crlf)
	buf.WriteString("Content-Type: " + contentType + crlf + crlf)
	buf.Write(data)
	buf.WriteString(crlf)
	buf.WriteString(delim + "--" + crlf)

	return buf.Bytes()
}

// Boundary returns the boundary marker for token.
func Boundary(token string) string {
	return "Boundary-" + token
}

// ContentType returns the request Content-Type header value matching
// a body encoded with token.
func ContentType(token string) string {
	return "multipart/form-data; boundary=" + Boundary(token)
}

// NewBoundary returns a random boundary token.
func NewBoundary() string {
	return uuid.NewString()
}

// DetectContentType sniffs the MIME type of data, falling back to
// application/octet-stream.
func DetectContentType(data []byte) string {
	return mimetype.Detect(data).String()
}
