// Package spectrogram renders decoded audio into a fixed-size time-frequency
// raster. Rendering is a pure function of the samples and the anomaly list;
// it produces no score and writes nothing itself.
package spectrogram

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/Abhishek-Sahu25/Echo-check/internal/media"
	"github.com/Abhishek-Sahu25/Echo-check/internal/scoring"
)

// Output raster dimensions.
const (
	Width  = 960
	Height = 480
)

const (
	windowSize = 512
	hopSize    = 256

	// bins flagged for highlight when their mean energy sits within this
	// many dB of the clip's peak
	highlightHeadroomDB = 12.0

	floorDB = -80.0
)

// Render produces a PNG spectrogram of the clip. Frequency bins whose mean
// energy exceeds the anomaly threshold are highlighted when the scorer
// reported spectral findings.
func Render(clip *media.Clip, anomalies []scoring.Anomaly) ([]byte, error) {
	if clip == nil || len(clip.Samples) < windowSize {
		return nil, fmt.Errorf("%w: clip shorter than one analysis window", media.ErrEmptyMedia)
	}

	power := stft(clip.Samples)
	frames := len(power)
	bins := len(power[0])

	// dB scale relative to the clip peak.
	peak := floorDB
	for _, frame := range power {
		for _, p := range frame {
			if p > peak {
				peak = p
			}
		}
	}

	highlight := highlightBins(power, peak, anomalies)

	raw := image.NewRGBA(image.Rect(0, 0, frames, bins))
	for t, frame := range power {
		for f, p := range frame {
			v := (p - peak - floorDB) / -floorDB // [0,1]
			if v < 0 {
				v = 0
			}
			c := heatColor(v)
			if highlight[f] {
				c = tintRed(c)
			}
			// low frequencies at the bottom of the image
			raw.SetRGBA(t, bins-1-f, c)
		}
	}

	scaled := image.NewRGBA(image.Rect(0, 0, Width, Height))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), raw, raw.Bounds(), xdraw.Src, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		return nil, fmt.Errorf("encode spectrogram: %w", err)
	}

	return buf.Bytes(), nil
}

// highlightBins marks frequency bins for visual emphasis. Highlighting only
// applies when the audio scorer reported spectral anomalies; the flagged
// bins are those carrying energy near the clip's peak.
func highlightBins(power [][]float64, peak float64, anomalies []scoring.Anomaly) []bool {
	bins := len(power[0])
	flagged := make([]bool, bins)

	spectral := false
	for _, a := range anomalies {
		if a.Type == "audio_spectral" {
			spectral = true
			break
		}
	}
	if !spectral {
		return flagged
	}

	for f := range bins {
		sum := 0.0
		for t := range power {
			sum += power[t][f]
		}
		mean := sum / float64(len(power))
		if mean >= peak-highlightHeadroomDB {
			flagged[f] = true
		}
	}

	return flagged
}

func heatColor(v float64) color.RGBA {
	// compact viridis-like ramp: dark purple -> teal -> yellow
	switch {
	case v < 0.5:
		t := v * 2
		return color.RGBA{
			R: uint8(68 + t*(33-68)),
			G: uint8(1 + t*(144-1)),
			B: uint8(84 + t*(140-84)),
			A: 255,
		}
	default:
		t := (v - 0.5) * 2
		return color.RGBA{
			R: uint8(33 + t*(253-33)),
			G: uint8(144 + t*(231-144)),
			B: uint8(140 + t*(37-140)),
			A: 255,
		}
	}
}

func tintRed(c color.RGBA) color.RGBA {
	c.R = uint8(math.Min(float64(c.R)+90, 255))
	c.G = c.G / 2
	c.B = c.B / 2
	return c
}
