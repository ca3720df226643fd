package imaging

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/face-insight/internal/constants"
)

var extensionMIME = map[string]MIMEType{
	".jpg":  MIMEJPEG,
	".jpeg": MIMEJPEG,
	".png":  MIMEPNG,
	".webp": MIMEWebP,
	".gif":  MIMEGIF,
	".bmp":  MIMEBMP,
}

// IsImageFile checks if a file name has a supported image extension.
func IsImageFile(name string) bool {
	_, ok := extensionMIME[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Acquire reads the whole stream and returns it as an Image. The MIME type is
// sniffed from the content first and the name hint's extension second. The
// bytes must decode as an image header; nothing is resized or re-encoded.
func Acquire(r io.Reader, nameHint string) (Image, error) {
	data, err := io.ReadAll(io.LimitReader(r, constants.MaxUploadSize+1))
	if err != nil {
		return Image{}, fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) == 0 {
		return Image{}, ErrEmptyImage
	}
	if len(data) > constants.MaxUploadSize {
		return Image{}, fmt.Errorf("image exceeds %d bytes", constants.MaxUploadSize)
	}

	mimeType, err := detectMIME(data, nameHint)
	if err != nil {
		return Image{}, err
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("%w: %w", ErrInvalidImage, err)
	}
	if !formatMatches(format, mimeType) {
		return Image{}, fmt.Errorf("%w: content is %s, not %s", ErrInvalidImage, format, mimeType)
	}

	return Image{MIMEType: mimeType, Data: data}, nil
}

// AcquireFile opens path and acquires its contents.
func AcquireFile(path string) (Image, error) {
	f, err := os.Open(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return Image{}, fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	img, err := Acquire(f, filepath.Base(path))
	if err != nil {
		return Image{}, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

func detectMIME(data []byte, nameHint string) (MIMEType, error) {
	if sniffed, err := ParseMIMEType(http.DetectContentType(data)); err == nil {
		return sniffed, nil
	}
	if m, ok := extensionMIME[strings.ToLower(filepath.Ext(nameHint))]; ok {
		return m, nil
	}
	return "", ErrUnsupportedMIME
}

// formatMatches compares an image.DecodeConfig format name with a MIME type.
func formatMatches(format string, mimeType MIMEType) bool {
	return "image/"+format == string(mimeType)
}
