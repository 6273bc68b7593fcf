package media_test

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"os"
	"testing"

	"github.com/Abhishek-Sahu25/Echo-check/internal/media"
)

func testDecoder(t *testing.T) media.Decoder {
	t.Helper()
	cfg := media.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	return media.NewDecoder(cfg, logger)
}

func wavClassification() media.Classification {
	return media.Classification{
		Modality:    media.ModalityAudio,
		ContentType: "audio/wav",
		Extension:   "wav",
	}
}

func TestDecodeWAV(t *testing.T) {
	dec := testDecoder(t)
	data := wavBytes(16000, []int16{0, 16384, -16384, 8192})

	clip, err := dec.DecodeAudio(context.Background(), data, wavClassification())
	if err != nil {
		t.Fatalf("DecodeAudio() error = %v", err)
	}

	if clip.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", clip.SampleRate)
	}

	want := []float64{0, 0.5, -0.5, 0.25}
	if len(clip.Samples) != len(want) {
		t.Fatalf("sample count = %d, want %d", len(clip.Samples), len(want))
	}
	for i, s := range clip.Samples {
		if math.Abs(s-want[i]) > 1e-9 {
			t.Errorf("Samples[%d] = %v, want %v", i, s, want[i])
		}
	}
}

func TestDecodeWAVResamples(t *testing.T) {
	dec := testDecoder(t)

	// 8 kHz source resampled up to the configured 16 kHz
	samples := make([]int16, 800)
	for i := range samples {
		samples[i] = int16(8000 * math.Sin(float64(i)/10))
	}
	data := wavBytes(8000, samples)

	clip, err := dec.DecodeAudio(context.Background(), data, wavClassification())
	if err != nil {
		t.Fatalf("DecodeAudio() error = %v", err)
	}

	if clip.SampleRate != 16000 {
		t.Errorf("SampleRate = %d, want 16000", clip.SampleRate)
	}
	if len(clip.Samples) != 1600 {
		t.Errorf("sample count = %d, want 1600", len(clip.Samples))
	}
}

func TestDecodeCorruptWAV(t *testing.T) {
	dec := testDecoder(t)

	_, err := dec.DecodeAudio(context.Background(), []byte("RIFFgarbage"), wavClassification())
	if !errors.Is(err, media.ErrDecodeFailed) {
		t.Errorf("DecodeAudio(corrupt) error = %v, want ErrDecodeFailed", err)
	}
}

func TestDecodeWAVZeroBitDepth(t *testing.T) {
	dec := testDecoder(t)

	// header is structurally valid but declares 0 bits per sample; without
	// the guard this would divide by a zero scale and emit NaN samples
	data := wavBytes(16000, []int16{0, 1, 2, 3})
	data[34] = 0
	data[35] = 0

	_, err := dec.DecodeAudio(context.Background(), data, wavClassification())
	if !errors.Is(err, media.ErrDecodeFailed) {
		t.Errorf("DecodeAudio(zero bit depth) error = %v, want ErrDecodeFailed", err)
	}
}

func TestDecodeCorruptMP3(t *testing.T) {
	dec := testDecoder(t)

	cls := media.Classification{
		Modality:    media.ModalityAudio,
		ContentType: "audio/mpeg",
		Extension:   "mp3",
	}

	_, err := dec.DecodeAudio(context.Background(), []byte("not an mpeg stream at all"), cls)
	if !errors.Is(err, media.ErrDecodeFailed) {
		t.Errorf("DecodeAudio(corrupt mp3) error = %v, want ErrDecodeFailed", err)
	}
}

func TestDecodeUnknownExtension(t *testing.T) {
	dec := testDecoder(t)

	cls := media.Classification{Modality: media.ModalityAudio, Extension: "ogg"}
	_, err := dec.DecodeAudio(context.Background(), []byte{1, 2, 3}, cls)
	if !errors.Is(err, media.ErrUnsupportedMedia) {
		t.Errorf("DecodeAudio(unknown) error = %v, want ErrUnsupportedMedia", err)
	}
}
