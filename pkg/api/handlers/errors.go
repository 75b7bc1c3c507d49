package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"shipdesk-hq/gateway/pkg/api/types"
	"shipdesk-hq/gateway/pkg/gateway"
)

// detailer is implemented by errors that carry a remote JSON error body.
type detailer interface {
	Details() json.RawMessage
}

// fail logs err with its pipeline stage and writes the error body.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, status int, message string, err error, details any) {
	attrs := []any{"status", status, "error", err}
	var stage *gateway.StageError
	if errors.As(err, &stage) {
		attrs = append(attrs, "pipeline", stage.Pipeline, "stage", stage.Stage)
	}
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), message, attrs...)
	} else {
		h.logger.WarnContext(r.Context(), message, attrs...)
	}

	writeJSON(w, status, types.NewErrorResponse(message, details))
}

// remoteDetails returns the remote JSON error body carried by err, or the
// error message when there is none.
func remoteDetails(err error) any {
	var d detailer
	if errors.As(err, &d) {
		if raw := d.Details(); raw != nil {
			return raw
		}
	}
	return err.Error()
}
