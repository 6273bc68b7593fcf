// Package media implements media classification and decoding for Echo-Check.
// The classifier determines modality from content signatures rather than the
// declared filename; decoders normalize audio to mono PCM at a fixed sample
// rate and sample a bounded set of video frames.
package media

import (
	"context"
)

// Modality is the high-level classification of an uploaded file.
type Modality string

// Supported modalities.
const (
	ModalityAudio Modality = "audio"
	ModalityVideo Modality = "video"
)

// Classification describes a recognized media file.
type Classification struct {
	Modality    Modality `json:"modality"`
	ContentType string   `json:"content_type"`
	Extension   string   `json:"extension"`
}

// Clip holds decoded audio as mono float64 samples in [-1, 1].
type Clip struct {
	Samples    []float64
	SampleRate int
}

// Duration returns the clip length in seconds.
func (c *Clip) Duration() float64 {
	if c.SampleRate == 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// Frame holds a single grayscale video frame.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8
}

// Decoder produces normalized buffers from raw media bytes.
// Implementations must not retain data after returning.
type Decoder interface {
	// DecodeAudio extracts the audio track as a mono clip at the decoder's
	// configured sample rate. Returns ErrDecodeFailed for corrupt input.
	DecodeAudio(ctx context.Context, data []byte, c Classification) (*Clip, error)
	// SampleFrames extracts up to budget evenly-spaced grayscale frames.
	SampleFrames(ctx context.Context, data []byte, budget int) ([]Frame, error)
	// HasAudioTrack reports whether a video container carries an audio stream.
	HasAudioTrack(ctx context.Context, data []byte) (bool, error)
}
