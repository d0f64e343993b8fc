package studio

import "errors"

var (
	// ErrGenerationFailed is returned when the external model call errors,
	// times out, or returns no image. Nothing is debited or recorded.
	ErrGenerationFailed = errors.New("image generation failed")

	// ErrEmptyImage is returned when the uploaded input contains no data.
	ErrEmptyImage = errors.New("uploaded image is empty")

	// ErrUnsupportedImage is returned when the input cannot be decoded as a
	// supported image format.
	ErrUnsupportedImage = errors.New("unsupported image format")

	// ErrUnknownFlow is returned when no instruction exists for the requested
	// generation flow.
	ErrUnknownFlow = errors.New("unknown generation flow")
)
