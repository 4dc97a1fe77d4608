package http

import (
	"net/http"

	"github.com/mind-engage/mocktest/internal/formats"
)

type sectionBody struct {
	formats.Section
	Order int `json:"order"`
}

// GET /sections lists the policy's sections in test order.
func SectionsHandler(pol formats.Policy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out := make([]sectionBody, 0, len(pol.Sections))
		for i, id := range pol.SectionOrder() {
			s, _ := pol.Section(id)
			out = append(out, sectionBody{Section: s, Order: i + 1})
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"profile":        pol.Profile,
			"title":          pol.Title,
			"full_limit_sec": pol.FullTimeLimit(),
			"sections":       out,
		})
	}
}
