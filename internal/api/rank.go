package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Ranker/internal/metrics"
	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
	"github.com/MikeSquared-Agency/Ranker/internal/sortconfig"
)

const adHocConfigName = "ad hoc"

type RankHandler struct {
	ranker        *scoring.Ranker
	configs       *sortconfig.Store
	metrics       *metrics.Metrics
	maxCandidates int
	logger        *slog.Logger
}

func NewRankHandler(ranker *scoring.Ranker, configs *sortconfig.Store, m *metrics.Metrics, maxCandidates int, logger *slog.Logger) *RankHandler {
	return &RankHandler{ranker: ranker, configs: configs, metrics: m, maxCandidates: maxCandidates, logger: logger}
}

type RankRequest struct {
	Query      string                `json:"query"`
	Candidates []scoring.Candidate   `json:"candidates"`
	Weights    *scoring.WeightVector `json:"weights,omitempty"`
	ConfigID   *uuid.UUID            `json:"config_id,omitempty"`
	Explain    bool                  `json:"explain,omitempty"`
}

type RankedCandidate struct {
	scoring.ScoredCandidate
	Rank        int      `json:"rank"`
	Explanation []string `json:"explanation,omitempty"`
}

// WeightSource says which weights a response was scored with.
type WeightSource struct {
	ConfigID   *uuid.UUID           `json:"config_id,omitempty"`
	ConfigName string               `json:"config_name"`
	Weights    scoring.WeightVector `json:"weights"`
}

type RankResponse struct {
	WeightSource
	Results []RankedCandidate `json:"results"`
}

// Rank scores and orders a batch of already-retrieved candidates.
// POST /api/v1/rank
func (h *RankHandler) Rank(w http.ResponseWriter, r *http.Request) {
	var req RankRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if h.maxCandidates > 0 && len(req.Candidates) > h.maxCandidates {
		writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("at most %d candidates per request", h.maxCandidates))
		return
	}

	src, err := h.resolveWeights(r.Context(), req.Weights, req.ConfigID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	scored, err := h.ranker.ScoreAndSort(r.Context(), req.Candidates, req.Query, src.Weights)
	if err != nil {
		// Only cancellation; the client is gone.
		h.logger.Warn("rank request cancelled", "candidates", len(req.Candidates), "error", err)
		writeError(w, http.StatusServiceUnavailable, "request cancelled")
		return
	}
	h.metrics.AddCandidatesScored(len(scored))

	results := make([]RankedCandidate, len(scored))
	for i, sc := range scored {
		results[i] = RankedCandidate{ScoredCandidate: sc, Rank: i + 1}
		if req.Explain {
			results[i].Explanation = scoring.Explain(sc)
		}
	}

	writeJSON(w, http.StatusOK, RankResponse{WeightSource: src, Results: results})
}

type ExplainRequest struct {
	Query     string                `json:"query"`
	Candidate scoring.Candidate     `json:"candidate"`
	Weights   *scoring.WeightVector `json:"weights,omitempty"`
	ConfigID  *uuid.UUID            `json:"config_id,omitempty"`
	OmitZero  bool                  `json:"omit_zero,omitempty"`
}

type ExplainResponse struct {
	WeightSource
	TotalScore  float64                `json:"total_score"`
	Signals     scoring.SignalSet      `json:"signals"`
	Breakdown   []scoring.Contribution `json:"breakdown"`
	Explanation []string               `json:"explanation"`
}

// Explain scores a single candidate and renders its breakdown.
// POST /api/v1/explain
func (h *RankHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var req ExplainRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	src, err := h.resolveWeights(r.Context(), req.Weights, req.ConfigID)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sc := h.ranker.ScoreCandidate(req.Candidate, req.Query, src.Weights)
	h.metrics.AddCandidatesScored(1)

	lines := scoring.Explain(sc)
	if req.OmitZero {
		lines = scoring.ExplainFiltered(sc, scoring.OmitZero)
	}

	writeJSON(w, http.StatusOK, ExplainResponse{
		WeightSource: src,
		TotalScore:   sc.TotalScore,
		Signals:      sc.Signals,
		Breakdown:    sc.Breakdown,
		Explanation:  lines,
	})
}

type AdjustRequest struct {
	Base  *scoring.WeightVector `json:"base,omitempty"`
	Patch scoring.WeightPatch   `json:"patch"`
}

type AdjustResponse struct {
	Weights    scoring.WeightVector `json:"weights"`
	Normalized bool                 `json:"normalized"`
}

// AdjustWeights previews an interactive weight edit: the patch is merged into
// the base (the active weights when absent) and the result rescaled to 100.
// POST /api/v1/weights/adjust
func (h *RankHandler) AdjustWeights(w http.ResponseWriter, r *http.Request) {
	var req AdjustRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Patch.Empty() {
		writeError(w, http.StatusBadRequest, "patch must change at least one weight")
		return
	}

	base := h.configs.GetActive(r.Context()).Weights
	if req.Base != nil {
		base = *req.Base
	}

	adjusted, err := base.Adjust(req.Patch)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, AdjustResponse{
		Weights:    adjusted,
		Normalized: adjusted != base.Merge(req.Patch),
	})
}

// resolveWeights picks ad hoc weights, then a named config, then the active
// config. A config that cannot be loaded falls back to the active one so a
// search always gets results.
func (h *RankHandler) resolveWeights(ctx context.Context, adHoc *scoring.WeightVector, configID *uuid.UUID) (WeightSource, error) {
	if adHoc != nil {
		weights, err := sortconfig.Normalized(*adHoc)
		if err != nil {
			var verr *sortconfig.ValidationError
			if errors.As(err, &verr) {
				return WeightSource{}, fmt.Errorf("invalid weights: %s", verr.Reason)
			}
			return WeightSource{}, err
		}
		return WeightSource{ConfigName: adHocConfigName, Weights: weights}, nil
	}

	if configID != nil {
		cfg, ok, err := h.configs.Get(ctx, *configID)
		switch {
		case err != nil:
			h.logger.Warn("config lookup failed, using active config", "config_id", *configID, "error", err)
			h.metrics.IncFallback()
		case !ok:
			h.logger.Info("unknown config requested, using active config", "config_id", *configID)
		default:
			id := cfg.ID
			return WeightSource{ConfigID: &id, ConfigName: cfg.Name, Weights: cfg.Weights}, nil
		}
	}

	active := h.configs.GetActive(ctx)
	id := active.ID
	return WeightSource{ConfigID: &id, ConfigName: active.Name, Weights: active.Weights}, nil
}
