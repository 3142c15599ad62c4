package extractor

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// maxDecodedSize caps the size of a decompressed response.
const maxDecodedSize = 64 << 20

// Decode undoes the content encodings named by hint (a Content-Encoding header value).
// Encodings are listed in the order they were applied and are removed in reverse order.
func Decode(data []byte, hint string) ([]byte, error) {
	encodings := strings.Split(hint, ",")
	for i := len(encodings) - 1; i >= 0; i-- {
		encoding := strings.ToLower(strings.TrimSpace(encodings[i]))
		var err error
		data, err = decodeOne(data, encoding)
		if err != nil {
			return nil, fmt.Errorf("could not decode '%s' content: %w", encoding, err)
		}
	}
	return data, nil
}

func decodeOne(data []byte, encoding string) ([]byte, error) {
	var r io.ReadCloser
	var err error
	switch encoding {
	case "", "identity":
		return data, nil
	case "gzip", "x-gzip":
		r, err = gzip.NewReader(bytes.NewReader(data))
	case "deflate":
		// servers disagree on whether deflate means zlib framing or raw deflate
		r, err = zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			r, err = flate.NewReader(bytes.NewReader(data)), nil
		}
	case "zstd":
		var d *zstd.Decoder
		d, err = zstd.NewReader(bytes.NewReader(data))
		if err == nil {
			r = d.IOReadCloser()
		}
	default:
		return nil, fmt.Errorf("unsupported content encoding")
	}
	if err != nil {
		return nil, err
	}
	defer r.Close()

	decoded, err := io.ReadAll(io.LimitReader(r, maxDecodedSize+1))
	if err != nil {
		return nil, err
	}
	if len(decoded) > maxDecodedSize {
		return nil, fmt.Errorf("decoded content exceeds %d bytes", maxDecodedSize)
	}
	return decoded, nil
}
