package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
)

// DefaultConfigID is the reserved id of the built-in default config. It is never persisted.
var DefaultConfigID = uuid.Nil

// DefaultConfigName is the reserved name of the built-in default config.
const DefaultConfigName = "Default"

// ErrNameTaken is returned when a config name collides with a stored one.
var ErrNameTaken = errors.New("config name already exists")

// SortingConfig is a named weight vector plus its lifecycle flags.
type SortingConfig struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Weights     scoring.WeightVector `json:"weights"`
	IsActive    bool                 `json:"isActive"`
	IsDefault   bool                 `json:"isDefault"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// DefaultConfig materializes the built-in default with the factory weights.
func DefaultConfig() SortingConfig {
	return SortingConfig{
		ID:          DefaultConfigID,
		Name:        DefaultConfigName,
		Description: "Factory weighting shipped with the service",
		Weights:     scoring.FactoryWeights(),
		IsDefault:   true,
	}
}

// Store persists operator-defined sorting configs. The default config is not
// stored; when no stored config is active the default is the active one.
type Store interface {
	// ListConfigs returns stored configs ordered by creation time.
	ListConfigs(ctx context.Context) ([]*SortingConfig, error)
	// GetConfig returns nil, nil when the id is unknown.
	GetConfig(ctx context.Context, id uuid.UUID) (*SortingConfig, error)
	// CreateConfig inserts cfg and fills in its ID and timestamps.
	CreateConfig(ctx context.Context, cfg *SortingConfig) error
	// SetActiveConfig atomically makes id the only active stored config.
	// A nil id deactivates every stored config. Returns false if id is unknown.
	SetActiveConfig(ctx context.Context, id *uuid.UUID) (bool, error)
	// DeleteConfig removes an inactive config. Returns false if the id is
	// unknown or the config is active.
	DeleteConfig(ctx context.Context, id uuid.UUID) (bool, error)

	Close() error
}
