package reports

import (
	"errors"
	"net/http"
)

var (
	ErrNotCompleted = errors.New("analysis is not completed")
	ErrRender       = errors.New("report rendering failed")
)

func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotCompleted):
		return http.StatusConflict
	case errors.Is(err, ErrRender):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
