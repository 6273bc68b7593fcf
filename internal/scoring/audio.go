package scoring

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/Abhishek-Sahu25/Echo-check/internal/media"
)

// audioModel scores decoded audio from amplitude statistics. It stands in
// for a sequence-classification network: the score is a pure function of the
// clip's signal statistics, so identical input always scores identically.
type audioModel struct {
	cfg Config
}

func newAudioModel(cfg Config) *audioModel {
	return &audioModel{cfg: cfg}
}

func (m *audioModel) Name() string { return "amplitude-statistics-v1" }

// ScoreAudio implements AudioScorer on the engine.
func (e *Engine) ScoreAudio(ctx context.Context, clip *media.Clip) (Result, error) {
	model, err := e.audioModel()
	if err != nil {
		return Result{}, err
	}
	if clip == nil || len(clip.Samples) == 0 {
		return Result{}, fmt.Errorf("%w: empty clip", media.ErrEmptyMedia)
	}
	return model.score(clip), nil
}

func (m *audioModel) score(clip *media.Clip) Result {
	abs := make([]float64, len(clip.Samples))
	for i, s := range clip.Samples {
		abs[i] = math.Abs(s)
	}

	meanAmp := stat.Mean(abs, nil)
	stdAmp := math.Sqrt(stat.Variance(abs, nil))

	score := clampScore(math.Mod(meanAmp*1000+stdAmp*100, 100))

	// Derived features mirror the confidence-adjacent quality measures the
	// model reports alongside its verdict.
	spectralConsistency := math.Min(score+5, 100)

	result := Result{Score: score, Anomalies: []Anomaly{}}

	if score < m.cfg.HighSeverityBelow {
		result.Anomalies = append(result.Anomalies, Anomaly{
			Type:        "audio",
			Description: "significant audio manipulation detected",
			Severity:    SeverityHigh,
			Confidence:  score,
		})
	} else if score < m.cfg.MediumSeverityBelow {
		result.Anomalies = append(result.Anomalies, Anomaly{
			Type:        "audio",
			Description: "possible audio inconsistencies detected",
			Severity:    SeverityMedium,
			Confidence:  score,
		})
	}

	if spectralConsistency < m.cfg.SpectralConsistencyMin {
		result.Anomalies = append(result.Anomalies, Anomaly{
			Type:        "audio_spectral",
			Description: "unusual frequency patterns detected",
			Severity:    SeverityMedium,
			Confidence:  spectralConsistency,
		})
	}

	return result
}

// clampScore bounds a raw model output to [0, 100]. The whole range must
// stay reachable so low scores can surface high-severity findings.
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
