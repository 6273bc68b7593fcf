// Package analyses implements the analysis record domain for Echo-Check.
// It provides types, data access, and the lifecycle state machine for media
// authenticity analyses, and drives the pipeline on submission.
package analyses

import (
	"time"

	"github.com/google/uuid"

	"github.com/Abhishek-Sahu25/Echo-check/internal/media"
	"github.com/Abhishek-Sahu25/Echo-check/internal/scoring"
)

// Analysis represents one media authenticity analysis owned by a caller.
// Score fields are nil until the record reaches completed; failure_reason is
// set only on failed records.
type Analysis struct {
	ID                 uuid.UUID         `json:"id"`
	OwnerID            uuid.UUID         `json:"owner_id"`
	FileName           string            `json:"file_name"`
	FileType           string            `json:"file_type"`
	FileSize           int64             `json:"file_size"`
	Status             Status            `json:"status"`
	TruthScore         *float64          `json:"truth_score"`
	AudioScore         *float64          `json:"audio_score"`
	VideoScore         *float64          `json:"video_score"`
	Anomalies          []scoring.Anomaly `json:"anomalies"`
	SpectrogramKey     *string           `json:"spectrogram_key,omitempty"`
	FailureReason      *string           `json:"failure_reason,omitempty"`
	AnalysisDurationMS *int64            `json:"analysis_duration_ms,omitempty"`
	CreatedAt          time.Time         `json:"created_at"`
	UpdatedAt          time.Time         `json:"updated_at"`
}

// SubmitCommand carries the data needed to register and analyze a new upload.
// Data holds the raw file bytes; Classification is the content-signature
// verdict produced before any record exists.
type SubmitCommand struct {
	Data           []byte
	FileName       string
	Classification media.Classification
}
