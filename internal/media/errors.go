package media

import "errors"

// Sentinel errors for media classification and decoding.
var (
	// ErrUnsupportedMedia indicates the file content is not a recognized
	// audio or video container. Surfaced before any record is created.
	ErrUnsupportedMedia = errors.New("unsupported media type")
	// ErrDecodeFailed indicates the container was recognized but its
	// contents could not be decoded.
	ErrDecodeFailed = errors.New("media decode failed")
	// ErrEmptyMedia indicates the decoded stream contained no usable samples.
	ErrEmptyMedia = errors.New("media contains no usable samples")
)
