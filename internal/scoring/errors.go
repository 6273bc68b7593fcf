package scoring

import "errors"

var (
	// ErrNoScores indicates aggregation was attempted with neither an audio
	// nor a video score. This is an upstream contract violation, not user error.
	ErrNoScores = errors.New("no scores to aggregate")
	// ErrNotReady indicates a scorer was invoked before the engine loaded
	// its models.
	ErrNotReady = errors.New("scoring engine not ready")
	// ErrNoFrames indicates the video scorer received an empty frame sample.
	ErrNoFrames = errors.New("no frames to score")
)
