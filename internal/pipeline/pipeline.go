// Package pipeline executes the analysis flow for a single submission:
// decode, score, aggregate, and render artifacts. It owns the artifact key
// layout but not the analysis record; persistence and state transitions stay
// with the caller.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Abhishek-Sahu25/Echo-check/internal/media"
	"github.com/Abhishek-Sahu25/Echo-check/internal/scoring"
	"github.com/Abhishek-Sahu25/Echo-check/internal/spectrogram"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/storage"
)

// Runtime bundles the collaborators a pipeline run needs. All fields are
// required except Logger, which defaults to slog.Default.
type Runtime struct {
	Decoder     media.Decoder
	Audio       scoring.AudioScorer
	Video       scoring.VideoScorer
	Storage     storage.System
	Scoring     scoring.Config
	FrameBudget int
	Logger      *slog.Logger
}

// Result carries the outcome of a successful run. Modality scores are nil
// when the source carried no signal for that modality.
type Result struct {
	AudioScore     *float64
	VideoScore     *float64
	TruthScore     float64
	Anomalies      []scoring.Anomaly
	SpectrogramKey *string
	Duration       time.Duration

	spectrogramPNG []byte
}

// Artifact keys are derived from the record id, never the uploaded filename.
func UploadKey(id uuid.UUID) string      { return fmt.Sprintf("uploads/%s", id) }
func SpectrogramKey(id uuid.UUID) string { return fmt.Sprintf("spectrograms/%s.png", id) }
func ReportKey(id uuid.UUID) string      { return fmt.Sprintf("reports/%s.pdf", id) }

// Execute runs the full analysis for one submission. The raw upload is
// persisted first so a failed run still leaves the source retrievable. The
// reported duration covers the decode and scoring phases only.
func (rt Runtime) Execute(
	ctx context.Context,
	id uuid.UUID,
	data []byte,
	cls media.Classification,
) (*Result, error) {
	logger := rt.logger().With("id", id, "modality", cls.Modality)

	if err := rt.Storage.Upload(ctx, UploadKey(id), bytes.NewReader(data), cls.ContentType); err != nil {
		return nil, fmt.Errorf("persist upload: %w", err)
	}

	started := time.Now()

	var result *Result
	var err error

	switch cls.Modality {
	case media.ModalityAudio:
		result, err = rt.analyzeAudio(ctx, data, cls)
	case media.ModalityVideo:
		result, err = rt.analyzeVideo(ctx, data)
	default:
		err = fmt.Errorf("%w: %s", media.ErrUnsupportedMedia, cls.ContentType)
	}

	if err != nil {
		return nil, err
	}

	result.Duration = time.Since(started)

	if len(result.spectrogramPNG) > 0 {
		if err := rt.Storage.Upload(
			ctx, SpectrogramKey(id),
			bytes.NewReader(result.spectrogramPNG), "image/png",
		); err != nil {
			return nil, fmt.Errorf("persist spectrogram: %w", err)
		}
		key := SpectrogramKey(id)
		result.SpectrogramKey = &key
	}

	logger.Info("analysis complete",
		"truth_score", result.TruthScore,
		"anomalies", len(result.Anomalies),
		"duration", result.Duration,
	)

	return result, nil
}

func (rt Runtime) analyzeAudio(ctx context.Context, data []byte, cls media.Classification) (*Result, error) {
	clip, err := rt.Decoder.DecodeAudio(ctx, data, cls)
	if err != nil {
		return nil, err
	}

	res, err := rt.Audio.ScoreAudio(ctx, clip)
	if err != nil {
		return nil, err
	}

	truth, err := scoring.Aggregate(&res.Score, nil, rt.Scoring)
	if err != nil {
		return nil, err
	}

	raster, err := spectrogram.Render(clip, res.Anomalies)
	if err != nil {
		return nil, err
	}

	return &Result{
		AudioScore:     &res.Score,
		TruthScore:     truth,
		Anomalies:      res.Anomalies,
		spectrogramPNG: raster,
	}, nil
}

func (rt Runtime) analyzeVideo(ctx context.Context, data []byte) (*Result, error) {
	frames, err := rt.Decoder.SampleFrames(ctx, data, rt.FrameBudget)
	if err != nil {
		return nil, err
	}

	hasAudio, err := rt.Decoder.HasAudioTrack(ctx, data)
	if err != nil {
		return nil, err
	}

	var clip *media.Clip
	if hasAudio {
		cls := media.Classification{
			Modality:    media.ModalityAudio,
			ContentType: "video/mp4",
			Extension:   "mp4",
		}
		if clip, err = rt.Decoder.DecodeAudio(ctx, data, cls); err != nil {
			return nil, err
		}
	}

	// Both scorers read immutable buffers, so video-with-audio runs them
	// concurrently.
	var audioRes, videoRes scoring.Result
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var scoreErr error
		videoRes, scoreErr = rt.Video.ScoreVideo(gctx, frames)
		return scoreErr
	})

	if clip != nil {
		g.Go(func() error {
			var scoreErr error
			audioRes, scoreErr = rt.Audio.ScoreAudio(gctx, clip)
			return scoreErr
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var audioScore *float64
	anomalies := []scoring.Anomaly{}

	if clip != nil {
		audioScore = &audioRes.Score
		anomalies = append(anomalies, audioRes.Anomalies...)
	}
	anomalies = append(anomalies, videoRes.Anomalies...)

	truth, err := scoring.Aggregate(audioScore, &videoRes.Score, rt.Scoring)
	if err != nil {
		return nil, err
	}

	result := &Result{
		AudioScore: audioScore,
		VideoScore: &videoRes.Score,
		TruthScore: truth,
		Anomalies:  anomalies,
	}

	if clip != nil {
		raster, err := spectrogram.Render(clip, audioRes.Anomalies)
		if err != nil {
			return nil, err
		}
		result.spectrogramPNG = raster
	}

	return result, nil
}

func (rt Runtime) logger() *slog.Logger {
	if rt.Logger == nil {
		return slog.Default()
	}
	return rt.Logger.With("system", "pipeline")
}
