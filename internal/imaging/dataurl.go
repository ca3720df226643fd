package imaging

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const base64Marker = ";base64,"

// SplitDataURL strips the data:<mime>;base64, header and returns the MIME
// type and the still-encoded payload. The payload is not decoded.
func SplitDataURL(dataURL string) (MIMEType, string, error) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(dataURL), "data:")
	if !ok {
		return "", "", fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURL)
	}
	mimePart, payload, ok := strings.Cut(rest, base64Marker)
	if !ok {
		return "", "", fmt.Errorf("%w: missing base64 marker", ErrInvalidDataURL)
	}
	mimeType, err := ParseMIMEType(mimePart)
	if err != nil {
		return "", "", fmt.Errorf("%w: %q", err, mimePart)
	}
	if payload == "" {
		return "", "", fmt.Errorf("%w: empty payload", ErrInvalidDataURL)
	}
	return mimeType, payload, nil
}

// ParseDataURL decodes a data URL back into an Image.
func ParseDataURL(dataURL string) (Image, error) {
	mimeType, payload, err := SplitDataURL(dataURL)
	if err != nil {
		return Image{}, err
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrInvalidDataURL, err)
	}
	if len(data) == 0 {
		return Image{}, ErrEmptyImage
	}
	return Image{MIMEType: mimeType, Data: data}, nil
}
