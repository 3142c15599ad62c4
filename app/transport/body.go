package transport

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/jo-hoe/go-custom-uploader/app/request"
)

// bodyEncoder turns the body part of a description into bytes and the matching content type.
type bodyEncoder interface {
	Encode(d *request.Description) (body io.Reader, contentType string, err error)
}

// newBodyEncoder selects the encoder for a body kind.
func newBodyEncoder(kind request.BodyKind) bodyEncoder {
	switch kind {
	case request.BodyMultipart:
		return &multipartEncoder{}
	case request.BodyForm:
		return &formEncoder{}
	case request.BodyRaw:
		return &rawEncoder{}
	case request.BodyNone:
		fallthrough
	default:
		return &emptyEncoder{}
	}
}

type emptyEncoder struct{}

func (e *emptyEncoder) Encode(d *request.Description) (io.Reader, string, error) {
	return nil, "", nil
}

type rawEncoder struct{}

func (e *rawEncoder) Encode(d *request.Description) (io.Reader, string, error) {
	return strings.NewReader(d.RawBody), "", nil
}

// formEncoder writes application/x-www-form-urlencoded fields in declaration order.
type formEncoder struct{}

func (e *formEncoder) Encode(d *request.Description) (io.Reader, string, error) {
	pairs := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		pairs = append(pairs, url.QueryEscape(f.Name)+"="+url.QueryEscape(f.Value))
	}
	return strings.NewReader(strings.Join(pairs, "&")), "application/x-www-form-urlencoded", nil
}

// multipartEncoder writes the form fields followed by the file part.
type multipartEncoder struct{}

func (e *multipartEncoder) Encode(d *request.Description) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, f := range d.Fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("could not write form field '%s': %w", f.Name, err)
		}
	}
	if d.File != nil {
		part, err := w.CreateFormFile(d.File.FieldName, d.File.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("could not create file part '%s': %w", d.File.FieldName, err)
		}
		if d.File.Content != nil {
			if _, err := io.Copy(part, d.File.Content); err != nil {
				return nil, "", fmt.Errorf("could not read file '%s': %w", d.File.FileName, err)
			}
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
