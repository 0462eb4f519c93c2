// Package images handles the catalog's inline images: data-URI parsing,
// thumbnail generation, BlurHash placeholders and on-disk exports.
package images

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DefaultMIME is assumed for bare base64 payloads that cannot be sniffed.
const DefaultMIME = "image/png"

// ErrNotImage is returned when a payload is not base64 image data.
var ErrNotImage = errors.New("not a base64 image")

// ParseDataURI decodes "data:<mime>;base64,<payload>" or a bare base64 payload.
// For bare payloads the MIME type is sniffed from the decoded bytes.
func ParseDataURI(s string) (mime string, data []byte, err error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil, ErrNotImage
	}

	payload := s
	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		header, body, found := strings.Cut(rest, ",")
		if !found {
			return "", nil, fmt.Errorf("%w: missing payload separator", ErrNotImage)
		}
		mt, isBase64 := strings.CutSuffix(header, ";base64")
		if !isBase64 {
			return "", nil, fmt.Errorf("%w: only base64 data URIs are supported", ErrNotImage)
		}
		mime = mt
		payload = body
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some producers strip padding.
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrNotImage, err)
		}
	}
	if len(data) == 0 {
		return "", nil, ErrNotImage
	}

	if mime == "" {
		mime = sniffMIME(data)
	}
	return mime, data, nil
}

// EncodeDataURI renders data as a base64 data URI.
func EncodeDataURI(mime string, data []byte) string {
	if mime == "" {
		mime = DefaultMIME
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// NormalizeDataURI turns bare base64 into a data URI and leaves URIs intact.
func NormalizeDataURI(s string) (string, error) {
	mime, data, err := ParseDataURI(s)
	if err != nil {
		return "", err
	}
	if strings.HasPrefix(strings.TrimSpace(s), "data:") {
		return strings.TrimSpace(s), nil
	}
	return EncodeDataURI(mime, data), nil
}

// ExtensionFor maps an image MIME type to a file extension.
func ExtensionFor(mime string) string {
	switch mime {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func sniffMIME(data []byte) string {
	mt := http.DetectContentType(data)
	if strings.HasPrefix(mt, "image/") {
		return mt
	}
	return DefaultMIME
}
