package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"shipdesk-hq/gateway/pkg/api/types"
	"shipdesk-hq/gateway/pkg/config"
	"shipdesk-hq/gateway/pkg/gateway"
	"shipdesk-hq/gateway/pkg/shipping"
)

// Handler serves the /api routes on top of the gateway pipelines.
type Handler struct {
	pipelines    gateway.Pipelines
	maxBodyBytes func() int64
	logger       *slog.Logger
}

// Option configures a Handler.
type Option func(*Handler)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) { h.logger = logger }
}

// WithMaxBodyBytes sets a function returning the submission body limit.
// It is consulted on every request so a reloaded limit applies at once.
func WithMaxBodyBytes(fn func() int64) Option {
	return func(h *Handler) { h.maxBodyBytes = fn }
}

// New creates the API handler.
func New(pipelines gateway.Pipelines, opts ...Option) *Handler {
	h := &Handler{
		pipelines: pipelines,
		logger:    slog.Default(),
		maxBodyBytes: func() int64 {
			if cfg := config.GetConfig(); cfg != nil && cfg.Server.MaxBodyBytes > 0 {
				return cfg.Server.MaxBodyBytes
			}
			return config.DefaultMaxBodyBytes
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Routes registers the API routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/api/item/{id}", h.GetItem)
	r.Get("/api/lists", h.GetLists)
	r.Get("/api/item/{id}/clients", h.GetRelated)
	r.Post("/api/submit-shipping", h.SubmitShipping)
}

// GetItem returns a primary list item exactly as the list store sent it.
func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.pipelines.FetchItem(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, types.MsgFetchItem, err, remoteDetails(err))
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// GetLists returns every list of the site as {displayName, id}.
func (h *Handler) GetLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.pipelines.ListLists(r.Context())
	if err != nil {
		h.fail(w, r, http.StatusInternalServerError, types.MsgFetchLists, err, remoteDetails(err))
		return
	}
	writeJSON(w, http.StatusOK, lists)
}

// GetRelated returns the secondary list items related to a primary item.
func (h *Handler) GetRelated(w http.ResponseWriter, r *http.Request) {
	items, err := h.pipelines.FetchRelated(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		var missing *gateway.MissingFieldError
		if errors.As(err, &missing) {
			h.fail(w, r, http.StatusNotFound, types.MsgMissingField, err, nil)
			return
		}
		h.fail(w, r, http.StatusInternalServerError, types.MsgFetchRelated, err, remoteDetails(err))
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// SubmitShipping renders the posted form and emails it.
func (h *Handler) SubmitShipping(w http.ResponseWriter, r *http.Request) {
	body := http.MaxBytesReader(w, r.Body, h.maxBodyBytes())
	sub, err := shipping.Decode(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.fail(w, r, http.StatusRequestEntityTooLarge, types.MsgInvalidBody, err, err.Error())
			return
		}
		h.fail(w, r, http.StatusBadRequest, types.MsgInvalidBody, err, err.Error())
		return
	}

	if err := h.pipelines.Submit(r.Context(), sub); err != nil {
		h.fail(w, r, http.StatusInternalServerError, types.MsgSubmit, err, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, types.MessageResponse{Message: types.MsgSubmitted})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
