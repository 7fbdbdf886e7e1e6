package http

import (
	"net/http"
)

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.uc.Category.ListCategories(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"categories": categories})
}

func (s *Server) listCaseCategories(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	categories, err := s.uc.Category.ListCaseCategories(r.Context(), caseID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"categories": categories})
}
