package media

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
)

// probeResult mirrors the subset of ffprobe JSON output we consume.
type probeResult struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (d *decoder) HasAudioTrack(ctx context.Context, data []byte) (bool, error) {
	probe, err := d.probe(ctx, data)
	if err != nil {
		return false, err
	}

	for _, s := range probe.Streams {
		if s.CodecType == "audio" {
			return true, nil
		}
	}
	return false, nil
}

// extractAudio decodes the audio track of a container to mono float64 samples
// at the configured sample rate using ffmpeg.
func (d *decoder) extractAudio(ctx context.Context, data []byte) ([]float64, error) {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(d.cfg.SampleRate),
		"-f", "s16le",
		"pipe:1",
	}

	raw, err := d.run(ctx, d.cfg.FFmpegBin, args, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	frames := len(raw) / 2
	samples := make([]float64, frames)
	for i := range frames {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		samples[i] = float64(v) / 32768
	}

	return samples, nil
}

func (d *decoder) SampleFrames(ctx context.Context, data []byte, budget int) ([]Frame, error) {
	probe, err := d.probe(ctx, data)
	if err != nil {
		return nil, err
	}

	duration, _ := strconv.ParseFloat(probe.Format.Duration, 64)
	if duration <= 0 {
		return nil, fmt.Errorf("%w: container reports no duration", ErrDecodeFailed)
	}

	// Evenly spaced sampling: pick a frame rate that yields at most the
	// budget across the whole duration.
	fps := math.Max(float64(budget)/duration, 0.01)
	size := d.cfg.FrameSize

	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-an",
		"-vf", fmt.Sprintf("fps=%f,scale=%d:%d", fps, size, size),
		"-pix_fmt", "gray",
		"-f", "rawvideo",
		"pipe:1",
	}

	raw, err := d.run(ctx, d.cfg.FFmpegBin, args, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	frameBytes := size * size
	count := len(raw) / frameBytes
	if count == 0 {
		return nil, fmt.Errorf("%w: no frames decoded", ErrDecodeFailed)
	}
	if count > budget {
		count = budget
	}

	frames := make([]Frame, count)
	for i := range count {
		pix := make([]uint8, frameBytes)
		copy(pix, raw[i*frameBytes:(i+1)*frameBytes])
		frames[i] = Frame{Width: size, Height: size, Pix: pix}
	}

	return frames, nil
}

func (d *decoder) probe(ctx context.Context, data []byte) (*probeResult, error) {
	args := []string{
		"-v", "quiet",
		"-print_format", "json",
		"-show_streams",
		"-show_format",
		"-i", "pipe:0",
	}

	out, err := d.run(ctx, d.cfg.FFprobeBin, args, data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}

	var probe probeResult
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("%w: unreadable probe output: %v", ErrDecodeFailed, err)
	}
	if len(probe.Streams) == 0 {
		return nil, fmt.Errorf("%w: no streams", ErrDecodeFailed)
	}

	return &probe, nil
}

func (d *decoder) run(ctx context.Context, bin string, args []string, stdin []byte) ([]byte, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(stdin)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := stderr.String()
		if msg == "" {
			msg = err.Error()
		}
		d.logger.Warn("media tool failed", "bin", bin, "error", msg)
		return nil, fmt.Errorf("%s: %s", bin, msg)
	}

	return stdout.Bytes(), nil
}
