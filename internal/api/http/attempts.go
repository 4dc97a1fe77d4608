package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mind-engage/mocktest/internal/exam"
	"github.com/mind-engage/mocktest/internal/results"
)

// Sessions is the part of exam.Manager the handlers use.
type Sessions interface {
	Start(ctx context.Context, learnerID string, cfg exam.AssessmentConfig) (*exam.Session, error)
	Get(attemptID string) (*exam.Session, error)
}

// POST /attempts {mode, section, learner_id}
func CreateAttemptHandler(m Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Mode      exam.Mode `json:"mode"`
			Section   string    `json:"section"`
			LearnerID string    `json:"learner_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad json"})
			return
		}
		req.LearnerID = strings.TrimSpace(req.LearnerID)
		if req.LearnerID == "" {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "learner_id required"})
			return
		}
		if req.Mode == "" {
			req.Mode = exam.ModeFull
			if req.Section != "" {
				req.Mode = exam.ModeSection
			}
		}
		s, err := m.Start(r.Context(), req.LearnerID, exam.AssessmentConfig{Mode: req.Mode, SectionCode: req.Section})
		if err != nil {
			writeError(w, "", err)
			return
		}
		writeJSON(w, http.StatusCreated, s.View())
	}
}

// GET /attempts/{attemptID}
func GetAttemptHandler(m Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		s, err := m.Get(id)
		if err != nil {
			writeError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, s.View())
	}
}

// POST /attempts/{attemptID}/answers {question_id?, option, elapsed_seconds?}
// Without question_id the displayed question is answered.
func SubmitAnswerHandler(m Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		var req struct {
			QuestionID     string `json:"question_id"`
			Option         string `json:"option"`
			ElapsedSeconds int    `json:"elapsed_seconds"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "bad json", AttemptID: id})
			return
		}
		s, err := m.Get(id)
		if err != nil {
			writeError(w, id, err)
			return
		}
		var fb exam.Feedback
		if req.QuestionID == "" {
			fb, err = s.SubmitCurrent(req.Option)
		} else {
			fb, err = s.SubmitAnswer(req.QuestionID, req.Option, req.ElapsedSeconds)
		}
		if err != nil {
			writeError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, fb)
	}
}

// POST /attempts/{attemptID}/next
// At the last question the attempt is finalized and the result returned.
func NextHandler(m Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		s, err := m.Get(id)
		if err != nil {
			writeError(w, id, err)
			return
		}
		step, err := s.Next(r.Context())
		if step.Result == nil {
			if err != nil {
				writeError(w, id, err)
				return
			}
			writeJSON(w, http.StatusOK, struct {
				View *exam.View `json:"view"`
			}{step.View})
			return
		}
		body, err := withStorage(*step.Result, err)
		if err != nil {
			writeError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, struct {
			Result resultBody `json:"result"`
		}{body})
	}
}

// POST /attempts/{attemptID}/previous
func PreviousHandler(m Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		s, err := m.Get(id)
		if err != nil {
			writeError(w, id, err)
			return
		}
		v, err := s.Previous()
		if err != nil {
			writeError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, v)
	}
}

// POST /attempts/{attemptID}/pause toggles the pause state.
func PauseHandler(m Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		s, err := m.Get(id)
		if err != nil {
			writeError(w, id, err)
			return
		}
		if _, err := s.TogglePause(); err != nil {
			writeError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, s.View())
	}
}

// POST /attempts/{attemptID}/finish
// Finishing an attempt that already completed returns its stored result.
func FinishHandler(m Sessions, store results.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		s, err := m.Get(id)
		if errors.Is(err, exam.ErrSessionNotFound) {
			res, gerr := store.Get(r.Context(), id)
			if gerr != nil {
				writeError(w, id, err)
				return
			}
			writeJSON(w, http.StatusOK, resultBody{AttemptResult: res})
			return
		}
		if err != nil {
			writeError(w, id, err)
			return
		}
		body, err := withStorage(s.Finish(r.Context()))
		if err != nil {
			writeError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

// POST /attempts/{attemptID}/quit
func QuitHandler(m Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "attemptID")
		s, err := m.Get(id)
		if err != nil {
			writeError(w, id, err)
			return
		}
		if err := s.Quit(r.Context()); err != nil {
			writeError(w, id, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"attempt_id": id, "status": exam.StatusAbandoned})
	}
}
