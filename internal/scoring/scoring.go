// Package scoring implements the authenticity scorers and score aggregation
// for Echo-Check. Scorers are deterministic: identical input bytes under
// identical configuration always produce the same score and findings.
package scoring

import (
	"context"

	"github.com/Abhishek-Sahu25/Echo-check/internal/media"
)

// Severity grades an anomaly finding.
type Severity string

// Anomaly severities.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Anomaly is a discrete flagged feature produced by a scorer.
// Findings are appended in detection order.
type Anomaly struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Confidence  float64  `json:"confidence"`
}

// Result carries an authenticity score in [0,100] (higher = more likely
// authentic) plus zero or more anomaly findings.
type Result struct {
	Score     float64   `json:"score"`
	Anomalies []Anomaly `json:"anomalies"`
}

// AudioScorer scores decoded audio. It must return a best-effort score for
// every successfully decoded clip; abstaining is not an allowed outcome.
type AudioScorer interface {
	ScoreAudio(ctx context.Context, clip *media.Clip) (Result, error)
}

// VideoScorer scores a bounded sample of decoded frames.
type VideoScorer interface {
	ScoreVideo(ctx context.Context, frames []media.Frame) (Result, error)
}
