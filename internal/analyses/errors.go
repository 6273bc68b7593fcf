package analyses

import (
	"errors"
	"net/http"

	"github.com/Abhishek-Sahu25/Echo-check/internal/media"
	"github.com/Abhishek-Sahu25/Echo-check/internal/reports"
	"github.com/Abhishek-Sahu25/Echo-check/internal/scoring"
)

// Domain errors for analysis operations.
var (
	ErrNotFound          = errors.New("analysis not found")
	ErrDuplicate         = errors.New("analysis already exists")
	ErrFileTooLarge      = errors.New("file exceeds maximum upload size")
	ErrInvalidFile       = errors.New("invalid file")
	ErrInvalidTransition = errors.New("invalid analysis state transition")
	ErrNoSpectrogram     = errors.New("analysis has no spectrogram")
)

// MapHTTPStatus maps analysis domain errors, and the pipeline errors that
// surface through submission, to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoSpectrogram):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrInvalidFile):
		return http.StatusBadRequest
	case errors.Is(err, ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, media.ErrUnsupportedMedia):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, media.ErrDecodeFailed), errors.Is(err, media.ErrEmptyMedia):
		return http.StatusUnprocessableEntity
	case errors.Is(err, scoring.ErrNoScores):
		return http.StatusUnprocessableEntity
	case errors.Is(err, reports.ErrNotCompleted):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
