package spectrogram_test

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"testing"

	"github.com/Abhishek-Sahu25/Echo-check/internal/media"
	"github.com/Abhishek-Sahu25/Echo-check/internal/scoring"
	"github.com/Abhishek-Sahu25/Echo-check/internal/spectrogram"
)

func sineClip(freq float64, seconds float64) *media.Clip {
	rate := 16000
	n := int(float64(rate) * seconds)
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = 0.8 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return &media.Clip{Samples: samples, SampleRate: rate}
}

func TestRenderDimensions(t *testing.T) {
	data, err := spectrogram.Render(sineClip(440, 1), nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() != spectrogram.Width || bounds.Dy() != spectrogram.Height {
		t.Errorf("dimensions = %dx%d, want %dx%d",
			bounds.Dx(), bounds.Dy(), spectrogram.Width, spectrogram.Height)
	}
}

func TestRenderDeterministic(t *testing.T) {
	clip := sineClip(1000, 0.5)

	first, err := spectrogram.Render(clip, nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	second, err := spectrogram.Render(clip, nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Error("identical input produced different raster bytes")
	}
}

func TestRenderHighlightChangesOutput(t *testing.T) {
	clip := sineClip(440, 0.5)

	plain, err := spectrogram.Render(clip, nil)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	flagged, err := spectrogram.Render(clip, []scoring.Anomaly{{
		Type:        "audio_spectral",
		Description: "unusual frequency patterns detected",
		Severity:    scoring.SeverityMedium,
		Confidence:  45,
	}})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}

	if bytes.Equal(plain, flagged) {
		t.Error("spectral anomaly did not change the rendered raster")
	}
}

func TestRenderShortClip(t *testing.T) {
	clip := &media.Clip{Samples: make([]float64, 100), SampleRate: 16000}

	_, err := spectrogram.Render(clip, nil)
	if !errors.Is(err, media.ErrEmptyMedia) {
		t.Errorf("Render(short clip) error = %v, want ErrEmptyMedia", err)
	}
}

func TestRenderNilClip(t *testing.T) {
	_, err := spectrogram.Render(nil, nil)
	if !errors.Is(err, media.ErrEmptyMedia) {
		t.Errorf("Render(nil) error = %v, want ErrEmptyMedia", err)
	}
}
