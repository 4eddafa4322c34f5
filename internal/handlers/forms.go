package handlers

import (
	"errors"
	"net/http"

	"github.com/puzzo-dev/sitefront/internal/forms"
)

func (h *Handlers) Contact(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, &forms.Contact{})
}

func (h *Handlers) Booking(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, &forms.Booking{})
}

func (h *Handlers) Newsletter(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, &forms.Newsletter{})
}

// submit decodes the body into p and forwards it. Validation failures are 422, ERP rejections 400
// and an unreachable ERP 503.
func (h *Handlers) submit(w http.ResponseWriter, r *http.Request, p forms.Payload) {
	if err := decodeBody(w, r, p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	receipt, err := h.forms.Submit(r.Context(), p)
	if err == nil {
		writeJSON(w, http.StatusAccepted, receipt)
		return
	}

	var fe *forms.Error
	if !errors.As(err, &fe) {
		writeError(w, http.StatusInternalServerError, "submission failed")
		return
	}
	switch fe.Kind {
	case forms.KindValidation:
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "validation failed", Fields: fe.Fields})
	case forms.KindRejected:
		writeError(w, http.StatusBadRequest, "submission rejected")
	default:
		writeError(w, http.StatusServiceUnavailable, "submission service unavailable")
	}
}
