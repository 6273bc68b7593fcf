package media

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

type decoder struct {
	cfg    Config
	logger *slog.Logger
}

// NewDecoder creates the production decoder. WAV and MP3 streams are decoded
// natively; MP4/M4A containers go through ffmpeg.
func NewDecoder(cfg Config, logger *slog.Logger) Decoder {
	return &decoder{
		cfg:    cfg,
		logger: logger.With("system", "media"),
	}
}

func (d *decoder) DecodeAudio(ctx context.Context, data []byte, c Classification) (*Clip, error) {
	var (
		samples []float64
		rate    int
		err     error
	)

	switch c.Extension {
	case "wav":
		samples, rate, err = decodeWAV(data)
	case "mp3":
		samples, rate, err = decodeMP3(data)
	case "mp4", "m4a":
		samples, err = d.extractAudio(ctx, data)
		rate = d.cfg.SampleRate
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedMedia, c.Extension)
	}

	if err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, ErrEmptyMedia
	}

	if rate != d.cfg.SampleRate {
		samples = resample(samples, rate, d.cfg.SampleRate)
	}

	return &Clip{Samples: samples, SampleRate: d.cfg.SampleRate}, nil
}

func decodeWAV(data []byte) ([]float64, int, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, 0, fmt.Errorf("%w: invalid wav stream", ErrDecodeFailed)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	samples, err := mixToMono(buf, dec.BitDepth)
	if err != nil {
		return nil, 0, err
	}

	return samples, buf.Format.SampleRate, nil
}

// mixToMono averages an interleaved PCM buffer down to a single channel of
// floats normalized to [-1, 1].
func mixToMono(buf *audio.IntBuffer, bitDepth uint16) ([]float64, error) {
	channels := buf.Format.NumChannels
	if channels < 1 {
		return nil, fmt.Errorf("%w: no channels", ErrDecodeFailed)
	}
	if bitDepth < 8 || bitDepth > 32 {
		return nil, fmt.Errorf("%w: bit depth %d", ErrDecodeFailed, bitDepth)
	}

	scale := float64(int64(1) << (bitDepth - 1))
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)

	for i := range frames {
		var sum float64
		for ch := range channels {
			sum += float64(buf.Data[i*channels+ch]) / scale
		}
		samples[i] = sum / float64(channels)
	}

	return samples, nil
}

func decodeMP3(data []byte) ([]float64, int, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	pcm, err := io.ReadAll(dec)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	// go-mp3 emits 16-bit little-endian stereo.
	frames := len(pcm) / 4
	samples := make([]float64, frames)
	for i := range frames {
		left := int16(uint16(pcm[i*4]) | uint16(pcm[i*4+1])<<8)
		right := int16(uint16(pcm[i*4+2]) | uint16(pcm[i*4+3])<<8)
		samples[i] = (float64(left) + float64(right)) / 2 / 32768
	}

	return samples, dec.SampleRate(), nil
}

// resample converts samples between rates by linear interpolation.
func resample(samples []float64, from, to int) []float64 {
	if from == to || len(samples) == 0 {
		return samples
	}

	ratio := float64(from) / float64(to)
	n := int(float64(len(samples)) / ratio)
	out := make([]float64, n)

	for i := range n {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(samples)-1 {
			out[i] = samples[len(samples)-1]
			continue
		}
		frac := pos - float64(idx)
		out[i] = samples[idx]*(1-frac) + samples[idx+1]*frac
	}

	return out
}
