package handler

import (
	"log/slog"
	"net/http"

	"github.com/goalfeed/goalfeed/internal/settlement"
)

// SettlementHandler exposes the settlement control surface.
type SettlementHandler struct {
	settler *settlement.Settler
	logger  *slog.Logger
}

// NewSettlementHandler creates a SettlementHandler.
func NewSettlementHandler(s *settlement.Settler, logger *slog.Logger) *SettlementHandler {
	return &SettlementHandler{settler: s, logger: logger}
}

// Run triggers one settlement cycle immediately.
// POST /api/settlement/run
func (h *SettlementHandler) Run(w http.ResponseWriter, r *http.Request) {
	settled, err := h.settler.RunOnce(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"settled": settled})
}
