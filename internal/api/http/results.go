package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mocktest/internal/results"
)

// GET /results/{attemptID}
func GetResultHandler(store results.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		res, err := store.Get(r.Context(), id)
		if err != nil {
			writeError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// GET /learners/{learnerID}/results?limit=20
// Newest first.
func LearnerResultsHandler(store results.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		learner := chi.URLParam(r, "learnerID")
		limit := parseIntDefault(r.URL.Query().Get("limit"), 20)
		if limit > 200 {
			limit = 200
		}
		list, err := store.History(r.Context(), learner, limit)
		if err != nil {
			writeError(w, "", err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}
