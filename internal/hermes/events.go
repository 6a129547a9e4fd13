package hermes

import "time"

// ConfigEvent is published on every sorting-config lifecycle transition.
type ConfigEvent struct {
	ConfigID   string    `json:"config_id"`
	Name       string    `json:"name,omitempty"`
	Action     string    `json:"action"`
	PreviousID string    `json:"previous_id,omitempty"`
	Origin     string    `json:"origin"`
	Timestamp  time.Time `json:"timestamp"`
}

const (
	ActionCreated  = "created"
	ActionApplied  = "applied"
	ActionReverted = "reverted"
	ActionDeleted  = "deleted"
)
