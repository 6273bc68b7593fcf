package spectrogram

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

// stft computes a short-time Fourier transform over the samples and returns
// per-frame bin power in dB, clamped at floorDB. Frames are Hann-windowed
// with 50% overlap.
func stft(samples []float64) [][]float64 {
	fft := fourier.NewFFT(windowSize)
	window := hann(windowSize)

	frames := 1 + (len(samples)-windowSize)/hopSize
	bins := windowSize/2 + 1

	power := make([][]float64, frames)
	buf := make([]float64, windowSize)

	for t := range frames {
		offset := t * hopSize
		for i := range buf {
			buf[i] = samples[offset+i] * window[i]
		}

		coeffs := fft.Coefficients(nil, buf)

		frame := make([]float64, bins)
		for f, c := range coeffs {
			mag := math.Hypot(real(c), imag(c)) / float64(windowSize)
			db := 20 * math.Log10(mag+1e-12)
			if db < floorDB {
				db = floorDB
			}
			frame[f] = db
		}
		power[t] = frame
	}

	return power
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return w
}
