// Package sortconfig manages named sorting configs: which weighting is active,
// saving new ones, and reverting to the factory default.
//
// Exactly one config is active at any observable instant. The built-in default
// is never stored; it is active whenever no stored config is.
package sortconfig

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Ranker/internal/hermes"
	"github.com/MikeSquared-Agency/Ranker/internal/metrics"
	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
	"github.com/MikeSquared-Agency/Ranker/internal/store"
)

const MaxNameLength = 100

const refreshTimeout = 5 * time.Second

// ErrCorruptConfig is returned for a stored config whose weights are unusable.
var ErrCorruptConfig = errors.New("stored config has unusable weights")

// ValidationError is returned for unusable weights and name problems.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + e.Reason
}

// SaveRequest describes a config to store.
type SaveRequest struct {
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Weights     scoring.WeightVector `json:"weights"`
}

type Store struct {
	mu      sync.RWMutex
	repo    store.Store
	events  hermes.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
	origin  string

	// active is the snapshot served by GetActive. Guarded by mu.
	active store.SortingConfig
	loaded bool
}

// New builds a config store over repo. events and m may be nil.
func New(repo store.Store, events hermes.Client, m *metrics.Metrics, logger *slog.Logger) *Store {
	active := store.DefaultConfig()
	active.IsActive = true
	return &Store{
		repo:    repo,
		events:  events,
		metrics: m,
		logger:  logger,
		origin:  uuid.NewString(),
		active:  active,
	}
}

// ListAll returns the default config first, then the stored configs in
// creation order. On a storage failure it returns just the default, marked
// active, together with the error.
func (s *Store) ListAll(ctx context.Context) ([]store.SortingConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, err := s.repo.ListConfigs(ctx)
	if err != nil {
		s.metrics.IncFallback()
		def := store.DefaultConfig()
		def.IsActive = true
		return []store.SortingConfig{def}, fmt.Errorf("list configs: %w", err)
	}
	list, corrupted := withDefault(stored)
	if corrupted {
		s.metrics.IncFallback()
	}
	return list, nil
}

// GetActive returns the active config. It never fails: when storage is
// empty or unreachable on first use, or its active config is inconsistent or
// has unusable weights, the default is returned.
func (s *Store) GetActive(ctx context.Context) store.SortingConfig {
	s.ensureLoaded(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// ensureLoaded performs the first load of the active snapshot.
func (s *Store) ensureLoaded(ctx context.Context) {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded {
		if err := s.reloadLocked(ctx); err != nil {
			s.logger.Warn("active config unavailable, using default", "error", err)
		}
	}
}

// Get resolves id to a config. uuid.Nil resolves to the default. A stored
// config with unusable weights is reported as ErrCorruptConfig.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (store.SortingConfig, bool, error) {
	s.ensureLoaded(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()

	if id == store.DefaultConfigID {
		def := store.DefaultConfig()
		def.IsActive = s.active.IsDefault
		return def, true, nil
	}
	cfg, err := s.repo.GetConfig(ctx, id)
	if err != nil {
		return store.SortingConfig{}, false, fmt.Errorf("get config %s: %w", id, err)
	}
	if cfg == nil {
		return store.SortingConfig{}, false, nil
	}
	if err := cfg.Weights.Validate(); err != nil {
		return store.SortingConfig{}, false, fmt.Errorf("get config %s: %w: %s", id, ErrCorruptConfig, reason(err))
	}
	cfg.IsActive = cfg.ID == s.active.ID
	return *cfg, true, nil
}

// Validate reports whether w can be stored, after best-effort normalization.
func (s *Store) Validate(w scoring.WeightVector) error {
	_, err := Normalized(w)
	return err
}

// Normalized returns the weights Save would store for w.
func Normalized(w scoring.WeightVector) (scoring.WeightVector, error) {
	n, err := scoring.NormalizeIfNeeded(w)
	if err != nil {
		return scoring.WeightVector{}, &ValidationError{Reason: reason(err)}
	}
	// Input within InputTolerance of 100 comes back untouched; store it with
	// the exact sum.
	if n.Validate() != nil {
		if n, err = scoring.Normalize(n); err != nil {
			return scoring.WeightVector{}, &ValidationError{Reason: reason(err)}
		}
	}
	if err := n.Validate(); err != nil {
		return scoring.WeightVector{}, &ValidationError{Reason: reason(err)}
	}
	return n, nil
}

// Save stores a new inactive config and returns its id. Name collisions with
// a stored config or the default are a *ValidationError.
func (s *Store) Save(ctx context.Context, req SaveRequest) (uuid.UUID, error) {
	name := strings.TrimSpace(req.Name)
	switch {
	case name == "":
		s.metrics.IncTransition(metrics.OpSave, metrics.ResultRejected)
		return uuid.Nil, &ValidationError{Reason: "name is required"}
	case utf8.RuneCountInString(name) > MaxNameLength:
		s.metrics.IncTransition(metrics.OpSave, metrics.ResultRejected)
		return uuid.Nil, &ValidationError{Reason: fmt.Sprintf("name must be at most %d characters", MaxNameLength)}
	case strings.EqualFold(name, store.DefaultConfigName):
		s.metrics.IncTransition(metrics.OpSave, metrics.ResultRejected)
		return uuid.Nil, &ValidationError{Reason: fmt.Sprintf("name %q is reserved", name)}
	}

	weights, err := Normalized(req.Weights)
	if err != nil {
		s.metrics.IncTransition(metrics.OpSave, metrics.ResultRejected)
		return uuid.Nil, err
	}

	cfg := &store.SortingConfig{
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		Weights:     weights,
	}

	s.mu.Lock()
	err = s.repo.CreateConfig(ctx, cfg)
	s.mu.Unlock()

	if errors.Is(err, store.ErrNameTaken) {
		s.metrics.IncTransition(metrics.OpSave, metrics.ResultRejected)
		return uuid.Nil, &ValidationError{Reason: fmt.Sprintf("a config named %q already exists", name)}
	}
	if err != nil {
		s.metrics.IncTransition(metrics.OpSave, metrics.ResultError)
		return uuid.Nil, fmt.Errorf("save config: %w", err)
	}

	s.metrics.IncTransition(metrics.OpSave, metrics.ResultOK)
	s.logger.Info("sorting config saved", "config_id", cfg.ID, "name", cfg.Name)
	s.publish(hermes.SubjectConfigCreated(cfg.ID.String()), hermes.ConfigEvent{
		ConfigID: cfg.ID.String(),
		Name:     cfg.Name,
		Action:   hermes.ActionCreated,
	})
	return cfg.ID, nil
}

// Apply makes id the only active config. It returns false, nil when id does
// not resolve to a stored config; the previous active config stays active.
// A stored config with unusable weights is refused with ErrCorruptConfig.
// uuid.Nil applies the default.
func (s *Store) Apply(ctx context.Context, id uuid.UUID) (bool, error) {
	if id == store.DefaultConfigID {
		if err := s.RevertToDefault(ctx); err != nil {
			return false, err
		}
		return true, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.active.ID
	target, err := s.repo.GetConfig(ctx, id)
	if err != nil {
		s.metrics.IncTransition(metrics.OpApply, metrics.ResultError)
		return false, fmt.Errorf("apply config %s: %w", id, err)
	}
	if target == nil {
		s.metrics.IncTransition(metrics.OpApply, metrics.ResultNotFound)
		return false, nil
	}
	if err := target.Weights.Validate(); err != nil {
		s.metrics.IncTransition(metrics.OpApply, metrics.ResultRejected)
		return false, fmt.Errorf("apply config %s: %w: %s", id, ErrCorruptConfig, reason(err))
	}

	ok, err := s.repo.SetActiveConfig(ctx, &id)
	if err != nil {
		s.metrics.IncTransition(metrics.OpApply, metrics.ResultError)
		return false, fmt.Errorf("apply config %s: %w", id, err)
	}
	if !ok {
		s.metrics.IncTransition(metrics.OpApply, metrics.ResultNotFound)
		return false, nil
	}

	target.IsActive = true
	s.active = *target
	s.loaded = true

	s.metrics.IncTransition(metrics.OpApply, metrics.ResultOK)
	s.logger.Info("sorting config applied", "config_id", id, "previous_id", previous)
	s.publish(hermes.SubjectConfigApplied(id.String()), hermes.ConfigEvent{
		ConfigID:   id.String(),
		Name:       s.active.Name,
		Action:     hermes.ActionApplied,
		PreviousID: previous.String(),
	})
	return true, nil
}

// RevertToDefault makes the default config active. When storage fails the
// previous active config stays in effect and the error is returned.
func (s *Store) RevertToDefault(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous := s.active.ID
	if _, err := s.repo.SetActiveConfig(ctx, nil); err != nil {
		s.metrics.IncTransition(metrics.OpRevert, metrics.ResultError)
		return fmt.Errorf("revert to default: %w", err)
	}

	def := store.DefaultConfig()
	def.IsActive = true
	s.active = def
	s.loaded = true

	s.metrics.IncTransition(metrics.OpRevert, metrics.ResultOK)
	s.logger.Info("sorting config reverted to default", "previous_id", previous)
	s.publish(hermes.SubjectConfigReverted, hermes.ConfigEvent{
		ConfigID:   store.DefaultConfigID.String(),
		Name:       def.Name,
		Action:     hermes.ActionReverted,
		PreviousID: previous.String(),
	})
	return nil
}

// Delete removes a stored config. It returns false, nil for the default, the
// active config and unknown ids, leaving everything unchanged.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	if id == store.DefaultConfigID {
		s.metrics.IncTransition(metrics.OpDelete, metrics.ResultForbidden)
		return false, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.repo.GetConfig(ctx, id)
	if err != nil {
		s.metrics.IncTransition(metrics.OpDelete, metrics.ResultError)
		return false, fmt.Errorf("delete config %s: %w", id, err)
	}
	if cfg == nil {
		s.metrics.IncTransition(metrics.OpDelete, metrics.ResultNotFound)
		return false, nil
	}
	if cfg.IsActive || s.active.ID == id {
		s.metrics.IncTransition(metrics.OpDelete, metrics.ResultForbidden)
		return false, nil
	}

	ok, err := s.repo.DeleteConfig(ctx, id)
	if err != nil {
		s.metrics.IncTransition(metrics.OpDelete, metrics.ResultError)
		return false, fmt.Errorf("delete config %s: %w", id, err)
	}
	if !ok {
		// Activated by a peer between the lookup and the delete.
		s.metrics.IncTransition(metrics.OpDelete, metrics.ResultForbidden)
		return false, nil
	}

	s.metrics.IncTransition(metrics.OpDelete, metrics.ResultOK)
	s.logger.Info("sorting config deleted", "config_id", id, "name", cfg.Name)
	s.publish(hermes.SubjectConfigDeleted(id.String()), hermes.ConfigEvent{
		ConfigID: id.String(),
		Name:     cfg.Name,
		Action:   hermes.ActionDeleted,
	})
	return true, nil
}

// Refresh reloads the active snapshot from storage. On error the previous
// snapshot is kept.
func (s *Store) Refresh(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reloadLocked(ctx)
}

// SetupSubscriptions refreshes the active snapshot whenever another instance
// applies or reverts a config.
func (s *Store) SetupSubscriptions() error {
	if s.events == nil {
		return nil
	}
	return s.events.Subscribe(hermes.SubjectConfigAll, func(subject string, data []byte) {
		var evt hermes.ConfigEvent
		if err := json.Unmarshal(data, &evt); err != nil {
			s.logger.Warn("invalid config event", "subject", subject, "error", err)
			return
		}
		if evt.Origin == s.origin {
			return
		}
		if evt.Action != hermes.ActionApplied && evt.Action != hermes.ActionReverted {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := s.Refresh(ctx); err != nil {
			s.logger.Warn("refresh after peer event failed", "subject", subject, "error", err)
			return
		}
		s.logger.Info("active config refreshed from peer event", "config_id", evt.ConfigID, "action", evt.Action)
	})
}

func (s *Store) reloadLocked(ctx context.Context) error {
	stored, err := s.repo.ListConfigs(ctx)
	if err != nil {
		if !s.loaded {
			s.metrics.IncFallback()
		}
		return fmt.Errorf("load configs: %w", err)
	}
	list, corrupted := withDefault(stored)
	if corrupted {
		s.metrics.IncFallback()
		s.logger.Warn("stored active config is inconsistent, using default", "flagged_active", countActive(stored))
	}
	for _, cfg := range list {
		if cfg.IsActive {
			s.active = cfg
			break
		}
	}
	s.loaded = true
	return nil
}

func (s *Store) publish(subject string, evt hermes.ConfigEvent) {
	if s.events == nil {
		return
	}
	evt.Origin = s.origin
	evt.Timestamp = time.Now().UTC()
	if err := s.events.Publish(subject, evt); err != nil {
		s.logger.Warn("failed to publish config event", "subject", subject, "error", err)
	}
}

// withDefault prepends the default and settles the active flags: the default
// is active unless exactly one stored config is flagged active and its weights
// are usable. corrupted reports a flagged active config that was overridden.
func withDefault(stored []*store.SortingConfig) ([]store.SortingConfig, bool) {
	def := store.DefaultConfig()
	corrupted := false
	switch n := countActive(stored); {
	case n == 0:
		def.IsActive = true
	case n > 1:
		def.IsActive, corrupted = true, true
	default:
		for _, cfg := range stored {
			if cfg.IsActive && cfg.Weights.Validate() != nil {
				def.IsActive, corrupted = true, true
			}
		}
	}

	out := make([]store.SortingConfig, 0, len(stored)+1)
	out = append(out, def)
	for _, cfg := range stored {
		c := *cfg
		c.IsDefault = false
		if def.IsActive {
			c.IsActive = false
		}
		out = append(out, c)
	}
	return out, corrupted
}

func countActive(stored []*store.SortingConfig) int {
	n := 0
	for _, cfg := range stored {
		if cfg.IsActive {
			n++
		}
	}
	return n
}

func reason(err error) string {
	return strings.TrimPrefix(err.Error(), scoring.ErrInvalidWeights.Error()+": ")
}
