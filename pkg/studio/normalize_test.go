package studio_test

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studiosix/photostudio/pkg/studio"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "jpeg", format, "normalized output is always JPEG")
	return cfg.Width, cfg.Height
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("downscales to 1024 on the longest edge", func(t *testing.T) {
		t.Parallel()
		out, err := studio.Normalize(bytes.NewReader(encodePNG(t, 2048, 1024)))
		require.NoError(t, err)
		w, h := decodeSize(t, out)
		assert.Equal(t, 1024, w)
		assert.Equal(t, 512, h)
	})

	t.Run("portrait images keep aspect", func(t *testing.T) {
		t.Parallel()
		out, err := studio.Normalize(bytes.NewReader(encodePNG(t, 600, 3000)))
		require.NoError(t, err)
		w, h := decodeSize(t, out)
		assert.Equal(t, 205, w) // round(600 * 1024/3000)
		assert.Equal(t, 1024, h)
	})

	t.Run("never upscales", func(t *testing.T) {
		t.Parallel()
		out, err := studio.Normalize(bytes.NewReader(encodePNG(t, 640, 480)))
		require.NoError(t, err)
		w, h := decodeSize(t, out)
		assert.Equal(t, 640, w)
		assert.Equal(t, 480, h)
	})

	t.Run("extreme aspect ratios stay positive", func(t *testing.T) {
		t.Parallel()
		out, err := studio.Normalize(bytes.NewReader(encodePNG(t, 5000, 2)))
		require.NoError(t, err)
		w, h := decodeSize(t, out)
		assert.Equal(t, 1024, w)
		assert.GreaterOrEqual(t, h, 1)
	})

	t.Run("empty input", func(t *testing.T) {
		t.Parallel()
		_, err := studio.Normalize(strings.NewReader(""))
		require.ErrorIs(t, err, studio.ErrEmptyImage)
	})

	t.Run("undecodable input", func(t *testing.T) {
		t.Parallel()
		_, err := studio.Normalize(strings.NewReader("definitely not an image"))
		require.ErrorIs(t, err, studio.ErrUnsupportedImage)
	})

	t.Run("applies EXIF rotation", func(t *testing.T) {
		t.Parallel()

		// A landscape JPEG tagged orientation 6 (camera held sideways)
		// must come out portrait.
		img := image.NewRGBA(image.Rect(0, 0, 40, 20))
		var buf bytes.Buffer
		require.NoError(t, jpeg.Encode(&buf, img, nil))
		tagged := spliceOrientation(t, buf.Bytes(), 6)

		out, err := studio.Normalize(bytes.NewReader(tagged))
		require.NoError(t, err)
		w, h := decodeSize(t, out)
		assert.Equal(t, 20, w)
		assert.Equal(t, 40, h)
	})
}

// spliceOrientation injects an APP1/Exif segment carrying the orientation tag
// right after the SOI marker of an existing JPEG.
func spliceOrientation(t *testing.T, jpegData []byte, orientation uint16) []byte {
	t.Helper()
	require.True(t, len(jpegData) > 2 && jpegData[0] == 0xFF && jpegData[1] == 0xD8)

	tiff := make([]byte, 22)
	copy(tiff, "MM")
	binary.BigEndian.PutUint16(tiff[2:4], 42)
	binary.BigEndian.PutUint32(tiff[4:8], 8)
	binary.BigEndian.PutUint16(tiff[8:10], 1)
	binary.BigEndian.PutUint16(tiff[10:12], 0x0112)
	binary.BigEndian.PutUint16(tiff[12:14], 3)
	binary.BigEndian.PutUint32(tiff[14:18], 1)
	binary.BigEndian.PutUint16(tiff[18:20], orientation)

	payload := append([]byte("Exif\x00\x00"), tiff...)
	segment := make([]byte, 4+len(payload))
	segment[0], segment[1] = 0xFF, 0xE1
	binary.BigEndian.PutUint16(segment[2:4], uint16(2+len(payload)))
	copy(segment[4:], payload)

	out := make([]byte, 0, len(jpegData)+len(segment))
	out = append(out, jpegData[:2]...)
	out = append(out, segment...)
	out = append(out, jpegData[2:]...)
	return out
}
