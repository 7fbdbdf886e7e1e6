package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/domain/types"
)

type eventRequest struct {
	Timestamp   *time.Time `json:"timestamp"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Creator     string     `json:"creator"`
	Category    string     `json:"category"`
}

// eventIDFromRequest extracts and validates the event ID path parameter
func eventIDFromRequest(r *http.Request) (types.EventID, error) {
	id := types.EventID(chi.URLParam(r, "eventID"))
	if err := id.Validate(); err != nil {
		return "", goerr.Wrap(err, "invalid event ID", goerr.T(model.TagValidation))
	}
	return id, nil
}

func (s *Server) createEvent(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid request body", goerr.T(model.TagValidation)))
		return
	}

	ev := &model.TimelineEvent{
		CaseID:      caseID,
		Title:       req.Title,
		Description: req.Description,
		Creator:     req.Creator,
		Category:    req.Category,
	}
	if req.Timestamp != nil {
		ev.Timestamp = *req.Timestamp
	}

	created, err := s.uc.Timeline.CreateEvent(r.Context(), ev)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusCreated, created)
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	events, err := s.uc.Timeline.ListEvents(r.Context(), caseID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) listTrashedEvents(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	events, err := s.uc.Timeline.ListTrashedEvents(r.Context(), caseID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]any{"events": events})
}

func (s *Server) getEvent(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	eventID, err := eventIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	ev, err := s.uc.Timeline.GetEvent(r.Context(), caseID, eventID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, ev)
}

func (s *Server) updateEvent(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	eventID, err := eventIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, goerr.Wrap(err, "invalid request body", goerr.T(model.TagValidation)))
		return
	}

	ev := &model.TimelineEvent{
		ID:          eventID,
		CaseID:      caseID,
		Title:       req.Title,
		Description: req.Description,
		Creator:     req.Creator,
		Category:    req.Category,
	}
	if req.Timestamp != nil {
		ev.Timestamp = *req.Timestamp
	}

	updated, err := s.uc.Timeline.UpdateEvent(r.Context(), ev)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, updated)
}

func (s *Server) trashEvent(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	eventID, err := eventIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	trashed, err := s.uc.Timeline.TrashEvent(r.Context(), caseID, eventID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, trashed)
}

func (s *Server) restoreEvent(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	eventID, err := eventIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	restored, err := s.uc.Timeline.RestoreEvent(r.Context(), caseID, eventID)
	if err != nil {
		respondError(w, r, err)
		return
	}

	respondJSON(w, r, http.StatusOK, restored)
}

func (s *Server) deleteEvent(w http.ResponseWriter, r *http.Request) {
	caseID, err := caseIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}
	eventID, err := eventIDFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	if err := s.uc.Timeline.DeleteEvent(r.Context(), caseID, eventID); err != nil {
		respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
