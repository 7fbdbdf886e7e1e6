package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

type caseRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ACS         []string `json:"acs"`
	Report      string   `json:"report"`
}

// caseIDFromRequest extracts and validates the case ID path parameter
func caseIDFromRequest(r *http.Request) (types.CaseID, error) {
	id := types.CaseID(chi.URLParam(r, "caseID"))
	if err := id.Validate(); err != nil {
		return "", goerr.Wrap(err, "invalid case ID", goerr.T(model.TagValidation))
	}
	return id, nil
}

func (s *Server) listCases(w http.ResponseWriter, r *http.Request) {
	cases, err := s.uc.Case.ListCases(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"cases": cases})
}

func (s *Server) createCase(w http.ResponseWriter, r *http.Request) {
	var req caseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid request body", goerr.T(model.TagValidation)))
		return
	}

	created, err := s.uc.Case.CreateCase(r.Context(), &model.Case{
		Name:        req.Name,
		Description: req.Description,
		ACS:         req.ACS,
		Report:      req.Report,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) getCase(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	c, err := s.uc.Case.GetCase(r.Context(), caseID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, c)
}

func (s *Server) updateCase(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req caseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid request body", goerr.T(model.TagValidation)))
		return
	}

	updated, err := s.uc.Case.UpdateCase(r.Context(), &model.Case{
		ID:          caseID,
		Name:        req.Name,
		Description: req.Description,
		ACS:         req.ACS,
		Report:      req.Report,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) deleteCase(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.uc.Case.DeleteCase(r.Context(), caseID); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
