package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mocktest/internal/formats"
	"github.com/mind-engage/mocktest/internal/results"
)

// Mount registers the attempt, result and section routes on r.
func Mount(r chi.Router, m Sessions, store results.Store, pol formats.Policy) {
	r.Route("/attempts", func(ar chi.Router) {
		ar.Post("/", CreateAttemptHandler(m))
		ar.Route("/{attemptID}", func(sr chi.Router) {
			sr.Get("/", GetAttemptHandler(m))
			sr.Post("/answers", SubmitAnswerHandler(m))
			sr.Post("/next", NextHandler(m))
			sr.Post("/previous", PreviousHandler(m))
			sr.Post("/pause", PauseHandler(m))
			sr.Post("/finish", FinishHandler(m, store))
			sr.Post("/quit", QuitHandler(m))
		})
	})
	r.Get("/results/{attemptID}", GetResultHandler(store))
	r.Get("/learners/{learnerID}/results", LearnerResultsHandler(store))
	r.Get("/sections", SectionsHandler(pol))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
}
