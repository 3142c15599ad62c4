package template

import "io"

// RawResponseKey is the prior result entry holding the raw text of the previous response.
const RawResponseKey = "__rawResponse"

// Context carries the per upload data templates are rendered with.
// A Context belongs to exactly one upload and must not be shared between concurrent uploads.
type Context struct {
	// FileName is the name of the uploaded file, or of the text when uploading text.
	FileName string
	// File is the content of the uploaded file. It stays owned by the caller.
	// A nil File marks a text upload.
	File io.Reader
	// InputText is the text of a text upload.
	InputText string
	// PriorResults holds values extracted by previous requests of a chain.
	PriorResults map[string]string
}

// IsText reports whether the context describes a text upload rather than a file upload.
func (c *Context) IsText() bool {
	return c.File == nil
}

// Input returns the text for text uploads and the file name for file uploads.
func (c *Context) Input() string {
	if c.IsText() {
		return c.InputText
	}
	return c.FileName
}

// Prior looks up a value extracted by a previous request.
func (c *Context) Prior(name string) (string, bool) {
	if c == nil || c.PriorResults == nil {
		return "", false
	}
	v, ok := c.PriorResults[name]
	return v, ok
}
