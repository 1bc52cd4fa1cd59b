package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/goalfeed/goalfeed/internal/domain"
)

// SignalsHandler serves the persisted signal listing.
type SignalsHandler struct {
	store  domain.SignalStore
	logger *slog.Logger
}

// NewSignalsHandler creates a SignalsHandler.
func NewSignalsHandler(store domain.SignalStore, logger *slog.Logger) *SignalsHandler {
	return &SignalsHandler{store: store, logger: logger}
}

// List returns signals filtered by status, newest first.
// GET /api/signals?status=PENDING&limit=50
func (h *SignalsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := domain.SignalStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
	if status == "" {
		status = domain.StatusPending
	}
	switch status {
	case domain.StatusPending, domain.StatusWon, domain.StatusLost, domain.StatusRefund:
	default:
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	limit := queryInt(r, "limit", 50)
	if limit > 500 {
		limit = 500
	}

	signals, err := h.store.ListByStatus(r.Context(), status, limit)
	if err != nil {
		h.logger.Error("list signals failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "list signals failed")
		return
	}
	if signals == nil {
		signals = []domain.Signal{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"count":   len(signals),
		"signals": signals,
	})
}

// Get returns one signal by ID.
// GET /api/signals/{id}
func (h *SignalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	sig, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusNotFound, "signal not found")
		return
	}
	writeJSON(w, http.StatusOK, sig)
}
