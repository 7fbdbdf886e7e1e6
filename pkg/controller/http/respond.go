package http

import (
	"encoding/json"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/caseline/pkg/domain/model"
	"github.com/secmon-lab/caseline/pkg/utils/errutil"
	"github.com/secmon-lab/caseline/pkg/utils/safe"
)

// respondJSON writes the value as a JSON response
func respondJSON(w http.ResponseWriter, r *http.Request, statusCode int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	safe.Write(r.Context(), w, data)
}

// respondError maps the error class to an HTTP status. Validation
// failures are client errors, missing entities are 404, illegal
// lifecycle transitions are conflicts, everything else is a server
// error.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := http.StatusInternalServerError
	switch {
	case goerr.HasTag(err, model.TagValidation):
		statusCode = http.StatusBadRequest
	case goerr.HasTag(err, model.TagNotFound):
		statusCode = http.StatusNotFound
	case goerr.HasTag(err, model.TagInvalidState):
		statusCode = http.StatusConflict
	}

	errutil.HandleHTTP(r.Context(), w, err, statusCode)
}
