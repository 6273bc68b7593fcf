package analyses

import (
	"encoding/json"
	"net/url"

	"github.com/Abhishek-Sahu25/Echo-check/pkg/query"
	"github.com/Abhishek-Sahu25/Echo-check/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "analyses", "a").
	Project("id", "ID").
	Project("owner_id", "OwnerID").
	Project("file_name", "FileName").
	Project("file_type", "FileType").
	Project("file_size", "FileSize").
	Project("status", "Status").
	Project("truth_score", "TruthScore").
	Project("audio_score", "AudioScore").
	Project("video_score", "VideoScore").
	Project("anomalies", "Anomalies").
	Project("spectrogram_key", "SpectrogramKey").
	Project("failure_reason", "FailureReason").
	Project("analysis_duration_ms", "AnalysisDurationMS").
	Project("created_at", "CreatedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "CreatedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for analysis queries.
// Nil fields are ignored. Status and FileType use exact matching; FileName
// uses case-insensitive contains matching.
type Filters struct {
	Status   *string `json:"status,omitempty"`
	FileType *string `json:"file_type,omitempty"`
	FileName *string `json:"file_name,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereEquals("FileType", f.FileType).
		WhereContains("FileName", f.FileName)
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) Filters {
	var f Filters

	if s := values.Get("status"); s != "" {
		f.Status = &s
	}

	if ft := values.Get("file_type"); ft != "" {
		f.FileType = &ft
	}

	if fn := values.Get("file_name"); fn != "" {
		f.FileName = &fn
	}

	return f
}

func scanAnalysis(s repository.Scanner) (Analysis, error) {
	var a Analysis
	var anomalies []byte

	err := s.Scan(
		&a.ID,
		&a.OwnerID,
		&a.FileName,
		&a.FileType,
		&a.FileSize,
		&a.Status,
		&a.TruthScore,
		&a.AudioScore,
		&a.VideoScore,
		&anomalies,
		&a.SpectrogramKey,
		&a.FailureReason,
		&a.AnalysisDurationMS,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		return a, err
	}

	if len(anomalies) > 0 {
		if err := json.Unmarshal(anomalies, &a.Anomalies); err != nil {
			return a, err
		}
	}

	return a, nil
}
