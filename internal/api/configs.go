package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
	"github.com/MikeSquared-Agency/Ranker/internal/sortconfig"
)

type ConfigsHandler struct {
	configs *sortconfig.Store
	logger  *slog.Logger
}

func NewConfigsHandler(c *sortconfig.Store, logger *slog.Logger) *ConfigsHandler {
	return &ConfigsHandler{configs: c, logger: logger}
}

// List returns the default config followed by the stored ones. When storage
// is down the default alone is returned with a degraded flag.
// GET /api/v1/sorting-configs
func (h *ConfigsHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.configs.ListAll(r.Context())
	resp := map[string]interface{}{"configs": list}
	if err != nil {
		h.logger.Warn("listing configs from storage failed", "error", err)
		resp["degraded"] = true
	}
	writeJSON(w, http.StatusOK, resp)
}

// Active returns the active config; never fails.
// GET /api/v1/sorting-configs/active
func (h *ConfigsHandler) Active(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.configs.GetActive(r.Context()))
}

// GET /api/v1/sorting-configs/{id}
func (h *ConfigsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	cfg, found, err := h.configs.Get(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !found {
		writeError(w, http.StatusNotFound, "config not found")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

type ValidateResponse struct {
	Valid      bool                  `json:"valid"`
	Reason     string                `json:"reason,omitempty"`
	Normalized *scoring.WeightVector `json:"normalized,omitempty"`
}

// Validate checks weights without storing anything.
// POST /api/v1/sorting-configs/validate
func (h *ConfigsHandler) Validate(w http.ResponseWriter, r *http.Request) {
	var weights scoring.WeightVector
	if err := decodeJSON(w, r, &weights); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	normalized, err := sortconfig.Normalized(weights)
	if err != nil {
		resp := ValidateResponse{Valid: false, Reason: err.Error()}
		var verr *sortconfig.ValidationError
		if errors.As(err, &verr) {
			resp.Reason = verr.Reason
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}
	writeJSON(w, http.StatusOK, ValidateResponse{Valid: true, Normalized: &normalized})
}

// Create stores a new inactive config.
// POST /api/v1/sorting-configs
func (h *ConfigsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req sortconfig.SaveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.configs.Save(r.Context(), req)
	var verr *sortconfig.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Reason)
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	cfg, found, err := h.configs.Get(r.Context(), id)
	if err != nil || !found {
		writeJSON(w, http.StatusCreated, map[string]interface{}{"id": id})
		return
	}
	writeJSON(w, http.StatusCreated, cfg)
}

// Apply activates a config. Unknown ids are 404 with applied=false.
// POST /api/v1/sorting-configs/{id}/apply
func (h *ConfigsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	applied, err := h.configs.Apply(r.Context(), id)
	if errors.Is(err, sortconfig.ErrCorruptConfig) {
		writeJSON(w, http.StatusConflict, map[string]interface{}{"applied": false, "error": err.Error()})
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !applied {
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"applied": false, "error": "config not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"applied": true,
		"active":  h.configs.GetActive(r.Context()),
	})
}

// Revert makes the factory default active again. If the change cannot be
// stored the previous config stays active.
// POST /api/v1/sorting-configs/revert
func (h *ConfigsHandler) Revert(w http.ResponseWriter, r *http.Request) {
	if err := h.configs.RevertToDefault(r.Context()); err != nil {
		h.logger.Error("revert to default failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"reverted": false,
			"error":    err.Error(),
			"active":   h.configs.GetActive(r.Context()),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reverted": true,
		"active":   h.configs.GetActive(r.Context()),
	})
}

// Delete removes an inactive stored config. The default and the active
// config are 409; unknown ids are 404.
// DELETE /api/v1/sorting-configs/{id}
func (h *ConfigsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	active := h.configs.GetActive(r.Context())
	if id == active.ID || id == uuid.Nil {
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"deleted": false,
			"error":   "the default and the active config cannot be deleted",
		})
		return
	}

	deleted, err := h.configs.Delete(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !deleted {
		if _, found, _ := h.configs.Get(r.Context(), id); found {
			writeJSON(w, http.StatusConflict, map[string]interface{}{"deleted": false, "error": "config is active"})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]interface{}{"deleted": false, "error": "config not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"deleted": true})
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return uuid.Nil, false
	}
	return id, true
}
