package qrcode

import (
	"encoding/base64"
	"errors"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

var (
	// ErrEmptyContent is returned when the content string is empty or only
	// whitespace.
	ErrEmptyContent = errors.New("content cannot be empty")
	// ErrEncodingFailed is returned when the underlying library cannot
	// produce a QR code for the content.
	ErrEncodingFailed = errors.New("failed to encode QR code")
)

// defaultSize is the edge length in pixels used when no size is given.
const defaultSize = 256

// Generate renders content as a PNG QR code of the given size. Sizes <= 0
// fall back to the default.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}
	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, errors.Join(ErrEncodingFailed, err)
	}
	return png, nil
}

// GenerateDataURI renders content as a QR code and returns it as a
// data:image/png;base64 URI, ready for an <img> src attribute.
func GenerateDataURI(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
