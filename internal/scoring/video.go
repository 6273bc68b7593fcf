package scoring

import (
	"context"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Abhishek-Sahu25/Echo-check/internal/media"
)

// videoModel scores a frame sample from luminance variance and inter-frame
// drift. Like the audio model, it is a deterministic stand-in for a frame
// classification network.
type videoModel struct {
	cfg Config
}

func newVideoModel(cfg Config) *videoModel {
	return &videoModel{cfg: cfg}
}

func (m *videoModel) Name() string { return "frame-statistics-v1" }

// ScoreVideo implements VideoScorer on the engine. The frame sample is read
// only; it is safe to score concurrently with the audio scorer over the same
// source.
func (e *Engine) ScoreVideo(ctx context.Context, frames []media.Frame) (Result, error) {
	model, err := e.videoModel()
	if err != nil {
		return Result{}, err
	}
	if len(frames) == 0 {
		return Result{}, ErrNoFrames
	}
	return model.score(frames), nil
}

func (m *videoModel) score(frames []media.Frame) Result {
	means := make([]float64, len(frames))
	stds := make([]float64, len(frames))

	for i, f := range frames {
		means[i], stds[i] = frameStats(f)
	}

	avgStd := stat.Mean(stds, nil)
	score := clampScore(math.Mod(avgStd*2, 100))

	// Mean drift between consecutive frames proxies temporal coherence;
	// large jumps in a short evenly-spaced sample suggest splicing.
	drift := 0.0
	for i := 1; i < len(means); i++ {
		drift += math.Abs(means[i] - means[i-1])
	}
	if len(means) > 1 {
		drift /= float64(len(means) - 1)
	}
	temporalCoherence := math.Min(score+12-drift/4, 100)

	result := Result{Score: score, Anomalies: []Anomaly{}}

	if score < m.cfg.HighSeverityBelow {
		result.Anomalies = append(result.Anomalies, Anomaly{
			Type:        "video",
			Description: "significant video manipulation detected",
			Severity:    SeverityHigh,
			Confidence:  score,
		})
	} else if score < m.cfg.MediumSeverityBelow {
		result.Anomalies = append(result.Anomalies, Anomaly{
			Type:        "video",
			Description: "possible video inconsistencies detected",
			Severity:    SeverityMedium,
			Confidence:  score,
		})
	}

	if temporalCoherence < m.cfg.TemporalCoherenceMin {
		result.Anomalies = append(result.Anomalies, Anomaly{
			Type:        "video_temporal",
			Description: "frame-to-frame inconsistencies detected",
			Severity:    SeverityMedium,
			Confidence:  temporalCoherence,
		})
	}

	return result
}

func frameStats(f media.Frame) (mean, std float64) {
	if len(f.Pix) == 0 {
		return 0, 0
	}

	lum := make([]float64, len(f.Pix))
	for i, p := range f.Pix {
		lum[i] = float64(p)
	}

	mean = stat.Mean(lum, nil)
	std = math.Sqrt(stat.Variance(lum, nil))
	return mean, std
}
