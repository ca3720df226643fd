// Package imaging turns camera captures and picked files into data-URL encoded images.
package imaging

import (
	"encoding/base64"
	"errors"
	"strings"
)

var (
	// ErrUnsupportedMIME is returned for anything outside the supported raster formats.
	ErrUnsupportedMIME = errors.New("unsupported image MIME type")
	// ErrEmptyImage is returned when an acquisition yields no bytes.
	ErrEmptyImage = errors.New("image is empty")
	// ErrInvalidDataURL is returned when a string is not a data:<mime>;base64,<payload> URL.
	ErrInvalidDataURL = errors.New("invalid image data URL")
	// ErrInvalidImage is returned when the bytes do not decode as the claimed format.
	ErrInvalidImage = errors.New("invalid image data")
)

// MIMEType is one of the supported raster formats.
type MIMEType string

const (
	MIMEJPEG MIMEType = "image/jpeg"
	MIMEPNG  MIMEType = "image/png"
	MIMEWebP MIMEType = "image/webp"
	MIMEGIF  MIMEType = "image/gif"
	MIMEBMP  MIMEType = "image/bmp"
)

var supportedMIME = map[MIMEType]struct{}{
	MIMEJPEG: {},
	MIMEPNG:  {},
	MIMEWebP: {},
	MIMEGIF:  {},
	MIMEBMP:  {},
}

// ParseMIMEType normalizes and validates a MIME string. "image/jpg" is accepted as JPEG.
func ParseMIMEType(s string) (MIMEType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if i := strings.IndexByte(normalized, ';'); i >= 0 {
		normalized = strings.TrimSpace(normalized[:i])
	}
	if normalized == "image/jpg" {
		normalized = string(MIMEJPEG)
	}
	m := MIMEType(normalized)
	if _, ok := supportedMIME[m]; !ok {
		return "", ErrUnsupportedMIME
	}
	return m, nil
}

// Image is one acquired picture: raw bytes plus their MIME type.
type Image struct {
	MIMEType MIMEType
	Data     []byte
}

// Base64 returns the standard base64 encoding of the image bytes.
func (img Image) Base64() string {
	return base64.StdEncoding.EncodeToString(img.Data)
}

// DataURL returns data:<mime>;base64,<payload>.
func (img Image) DataURL() string {
	return "data:" + string(img.MIMEType) + ";base64," + img.Base64()
}
