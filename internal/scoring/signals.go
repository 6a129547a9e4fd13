package scoring

import "fmt"

// Signal identifies one scoring input. The numeric order is the canonical
// order used for tie-breaking in breakdowns.
type Signal int

const (
	SignalNameMatch Signal = iota
	SignalRating
	SignalLikes
	SignalBuzz
	SignalFranchiseImportance

	// NumSignals is the number of signals every weight vector and signal set carries.
	NumSignals = 5
)

var signalKeys = [NumSignals]string{"nameMatch", "rating", "likes", "buzz", "franchiseImportance"}

var signalLabels = [NumSignals]string{"Name match", "Rating", "Likes", "Buzz", "Franchise importance"}

// AllSignals returns the signals in canonical order.
func AllSignals() []Signal {
	return []Signal{SignalNameMatch, SignalRating, SignalLikes, SignalBuzz, SignalFranchiseImportance}
}

// Key is the stable machine name, matching the JSON field of WeightVector.
func (s Signal) Key() string {
	if s < 0 || int(s) >= NumSignals {
		return "unknown"
	}
	return signalKeys[s]
}

// Label is the human-readable name used in explanations.
func (s Signal) Label() string {
	if s < 0 || int(s) >= NumSignals {
		return "Unknown"
	}
	return signalLabels[s]
}

func (s Signal) String() string { return s.Key() }

// MarshalText lets signals appear as their key in JSON.
func (s Signal) MarshalText() ([]byte, error) {
	return []byte(s.Key()), nil
}

// UnmarshalText parses a signal key.
func (s *Signal) UnmarshalText(text []byte) error {
	for i, k := range signalKeys {
		if k == string(text) {
			*s = Signal(i)
			return nil
		}
	}
	return fmt.Errorf("unknown signal %q", string(text))
}

// SignalSet holds the raw, 0–100 bounded signal values of one candidate.
type SignalSet struct {
	NameMatch           float64 `json:"nameMatch"`
	Rating              float64 `json:"rating"`
	Likes               float64 `json:"likes"`
	Buzz                float64 `json:"buzz"`
	FranchiseImportance float64 `json:"franchiseImportance"`
}

// Values returns the raw signals in canonical order.
func (s SignalSet) Values() [NumSignals]float64 {
	return [NumSignals]float64{s.NameMatch, s.Rating, s.Likes, s.Buzz, s.FranchiseImportance}
}

// Get returns one raw signal.
func (s SignalSet) Get(sig Signal) float64 {
	return s.Values()[sig]
}

// GameCategory mirrors the IGDB game category enumeration.
type GameCategory int

const (
	CategoryMainGame            GameCategory = 0
	CategoryDLC                 GameCategory = 1
	CategoryExpansion           GameCategory = 2
	CategoryBundle              GameCategory = 3
	CategoryStandaloneExpansion GameCategory = 4
	CategoryMod                 GameCategory = 5
	CategoryEpisode             GameCategory = 6
	CategorySeason              GameCategory = 7
	CategoryRemake              GameCategory = 8
	CategoryRemaster            GameCategory = 9
	CategoryExpandedGame        GameCategory = 10
	CategoryPort                GameCategory = 11
	CategoryFork                GameCategory = 12
	CategoryPack                GameCategory = 13
	CategoryUpdate              GameCategory = 14
)

// Candidate is one already-retrieved search result. Optional metadata may be
// missing; extractors substitute 0 rather than failing.
type Candidate struct {
	ID               string        `json:"id"`
	Title            string        `json:"title"`
	AlternativeNames []string      `json:"alternative_names,omitempty"`
	Rating           *float64      `json:"rating,omitempty"`
	CriticRating     *float64      `json:"critic_rating,omitempty"`
	Popularity       int64         `json:"popularity"`
	RecentActivity   int64         `json:"recent_activity"`
	Franchise        string        `json:"franchise,omitempty"`
	Collection       string        `json:"collection,omitempty"`
	Category         *GameCategory `json:"category,omitempty"`
	ParentGame       *int64        `json:"parent_game,omitempty"`
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
