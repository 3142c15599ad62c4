package request

import (
	"io"
	"net/http"
)

// BodyKind tells the transport how to encode the body of a request.
type BodyKind string

const (
	BodyNone      BodyKind = "none"
	BodyForm      BodyKind = "form"
	BodyMultipart BodyKind = "multipart"
	BodyRaw       BodyKind = "raw"
)

// FormField is one rendered name/value pair of a form or multipart body.
type FormField struct {
	Name  string
	Value string
}

// FilePayload is the file part of a multipart request. Content stays owned by the caller.
type FilePayload struct {
	FieldName string
	FileName  string
	Content   io.Reader
}

// Description is a fully rendered request. It is handed to a transport and never sent by this package.
type Description struct {
	Method   string
	URL      string
	Headers  http.Header
	BodyKind BodyKind
	// Fields are the form or multipart fields in declaration order.
	Fields []FormField
	// RawBody is set for BodyRaw.
	RawBody string
	// File is set for BodyMultipart.
	File *FilePayload
	// KeepRedirect asks the transport to return a redirect response instead of following it.
	KeepRedirect bool
}

// NewDescription initializes an empty Description.
func NewDescription(method string) *Description {
	return &Description{
		Method:   method,
		Headers:  make(http.Header),
		BodyKind: BodyNone,
		Fields:   make([]FormField, 0),
	}
}
