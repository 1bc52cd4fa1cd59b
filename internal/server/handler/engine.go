package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/goalfeed/goalfeed/internal/engine"
)

// EngineHandler exposes the engine's control surface.
type EngineHandler struct {
	engine *engine.Engine
	logger *slog.Logger
}

// NewEngineHandler creates an EngineHandler.
func NewEngineHandler(eng *engine.Engine, logger *slog.Logger) *EngineHandler {
	return &EngineHandler{engine: eng, logger: logger}
}

type startRequest struct {
	FilterEnabled *bool `json:"filter_enabled"`
}

// Start launches the scan loop. The optional body toggles the competition
// allow-list filter; it defaults to enabled.
// POST /api/engine/start
func (h *EngineHandler) Start(w http.ResponseWriter, r *http.Request) {
	filterEnabled := true
	if r.Body != nil && r.ContentLength != 0 {
		var req startRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "malformed request body")
			return
		}
		if req.FilterEnabled != nil {
			filterEnabled = *req.FilterEnabled
		}
	}

	if err := h.engine.Start(filterEnabled); err != nil {
		if errors.Is(err, engine.ErrAlreadyRunning) {
			writeError(w, http.StatusConflict, "engine already running")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Status())
}

// Stop halts the scan loop, letting an in-flight cycle finish.
// POST /api/engine/stop
func (h *EngineHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if err := h.engine.Stop(); err != nil {
		if errors.Is(err, engine.ErrNotRunning) {
			writeError(w, http.StatusConflict, "engine not running")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.engine.Status())
}

// Status reports the engine's operational state and counters.
// GET /api/engine/status
func (h *EngineHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.engine.Status())
}

// Scan triggers one scan cycle immediately.
// POST /api/engine/scan
func (h *EngineHandler) Scan(w http.ResponseWriter, r *http.Request) {
	emitted, err := h.engine.RunScanOnce(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"emitted": emitted})
}
