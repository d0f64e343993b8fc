package studio

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
)

// maxEdge is the longest-edge cap applied to inputs before the model call.
// The upstream model neither needs nor benefits from larger photos, and
// transfer cost scales with pixels.
const maxEdge = 1024

// jpegQuality for re-encoded inputs.
const jpegQuality = 90

// Normalize prepares an uploaded photo for the model call: it corrects the
// EXIF orientation, downscales so the longest edge is at most 1024 pixels
// (never upscales), preserves aspect ratio, and re-encodes as JPEG. Returns
// ErrEmptyImage for empty input and ErrUnsupportedImage for anything that
// cannot be decoded.
func Normalize(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Join(ErrUnsupportedImage, err)
	}

	img = orient(img, jpegOrientation(data))
	img = downscale(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, errors.Join(ErrUnsupportedImage, err)
	}
	return buf.Bytes(), nil
}

// downscale caps the longest edge at maxEdge, preserving aspect ratio.
// Dimensions stay positive integers; images already within the cap pass
// through untouched.
func downscale(img image.Image) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := max(w, h)
	if longest <= maxEdge {
		return img
	}

	scale := float64(maxEdge) / float64(longest)
	newW := max(1, int(math.Round(float64(w)*scale)))
	newH := max(1, int(math.Round(float64(h)*scale)))

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// orient applies the inverse of the EXIF orientation transform so the pixels
// end up upright. Orientation values follow the EXIF spec: 1 upright, 2..8
// the mirror/rotation combinations.
func orient(img image.Image, orientation int) image.Image {
	if orientation <= 1 || orientation > 8 {
		return img
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	var dst *image.RGBA
	switch orientation {
	case 5, 6, 7, 8:
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	default:
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	for y := range h {
		for x := range w {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			switch orientation {
			case 2: // mirrored horizontally
				dst.Set(w-1-x, y, c)
			case 3: // rotated 180
				dst.Set(w-1-x, h-1-y, c)
			case 4: // mirrored vertically
				dst.Set(x, h-1-y, c)
			case 5: // mirrored then rotated 270 CW
				dst.Set(y, x, c)
			case 6: // rotated 90 CW
				dst.Set(h-1-y, x, c)
			case 7: // mirrored then rotated 90 CW
				dst.Set(h-1-y, w-1-x, c)
			case 8: // rotated 270 CW
				dst.Set(y, w-1-x, c)
			}
		}
	}
	return dst
}
