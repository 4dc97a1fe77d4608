package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mind-engage/mocktest/internal/exam"
	"github.com/mind-engage/mocktest/internal/results"
)

type errorBody struct {
	Error     string `json:"error"`
	AttemptID string `json:"attempt_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps engine errors to HTTP status codes.
func statusOf(err error) int {
	var cfgErr *exam.ConfigurationError
	var opErr *exam.InvalidOperationError
	switch {
	case errors.As(err, &cfgErr):
		return http.StatusBadRequest
	case errors.As(err, &opErr):
		return http.StatusConflict
	case errors.Is(err, exam.ErrSessionNotFound), errors.Is(err, results.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, attemptID string, err error) {
	writeJSON(w, statusOf(err), errorBody{Error: err.Error(), AttemptID: attemptID})
}

// resultBody is a completed attempt. StorageError is set when the result
// was computed but could not be saved.
type resultBody struct {
	exam.AttemptResult
	StorageError string `json:"storage_error,omitempty"`
}

// withStorage splits a completion error into a storage warning or a
// hard failure.
func withStorage(res exam.AttemptResult, err error) (resultBody, error) {
	body := resultBody{AttemptResult: res}
	if err == nil {
		return body, nil
	}
	var se *exam.StorageError
	if errors.As(err, &se) && res.AttemptID != "" {
		body.StorageError = se.Error()
		return body, nil
	}
	return body, err
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
