package scoring

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidWeights is returned when a weight vector cannot be rescaled:
// negative, non-finite, or all-zero input.
var ErrInvalidWeights = errors.New("invalid weights")

const (
	// WeightTotal is the sum every normalized weight vector must reach.
	WeightTotal = 100.0

	// InputTolerance is how far a raw, caller-supplied vector may drift from
	// WeightTotal before it is rescaled.
	InputTolerance = 0.1

	// NormalizedTolerance bounds the drift of a vector after normalization.
	NormalizedTolerance = 1e-6

	degenerateSum = 1e-9
)

// WeightVector holds the percentage share each signal contributes to the total score.
// All weights must be non-negative and sum to 100.
type WeightVector struct {
	NameMatch           float64 `json:"nameMatch" yaml:"name_match"`
	Rating              float64 `json:"rating" yaml:"rating"`
	Likes               float64 `json:"likes" yaml:"likes"`
	Buzz                float64 `json:"buzz" yaml:"buzz"`
	FranchiseImportance float64 `json:"franchiseImportance" yaml:"franchise_importance"`
}

// FactoryWeights returns the weights shipped with the system. The default
// sorting config always uses these, whatever is in storage.
func FactoryWeights() WeightVector {
	return WeightVector{
		NameMatch:           40,
		Rating:              30,
		Likes:               15,
		Buzz:                10,
		FranchiseImportance: 5,
	}
}

// Values returns the weights in canonical signal order.
func (w WeightVector) Values() [NumSignals]float64 {
	return [NumSignals]float64{w.NameMatch, w.Rating, w.Likes, w.Buzz, w.FranchiseImportance}
}

// FromValues builds a vector from weights in canonical signal order.
func FromValues(v [NumSignals]float64) WeightVector {
	return WeightVector{
		NameMatch:           v[SignalNameMatch],
		Rating:              v[SignalRating],
		Likes:               v[SignalLikes],
		Buzz:                v[SignalBuzz],
		FranchiseImportance: v[SignalFranchiseImportance],
	}
}

// Get returns the weight for one signal.
func (w WeightVector) Get(s Signal) float64 {
	return w.Values()[s]
}

// Sum returns the total of all weights.
func (w WeightVector) Sum() float64 {
	var sum float64
	for _, v := range w.Values() {
		sum += v
	}
	return sum
}

// Check reports negative or non-finite weights and degenerate vectors.
// It does not look at the sum; see Validate for that.
func (w WeightVector) Check() error {
	for i, v := range w.Values() {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidWeights, Signal(i).Key())
		}
		if v < 0 {
			return fmt.Errorf("%w: %s is negative (%.4f)", ErrInvalidWeights, Signal(i).Key(), v)
		}
	}
	sum := w.Sum()
	if math.IsInf(sum, 0) {
		return fmt.Errorf("%w: weights are too large to sum", ErrInvalidWeights)
	}
	if sum <= degenerateSum {
		return fmt.Errorf("%w: at least one weight must be positive", ErrInvalidWeights)
	}
	return nil
}

// Validate checks that the weights are usable as-is: non-negative and summing
// to 100 within NormalizedTolerance.
func (w WeightVector) Validate() error {
	if err := w.Check(); err != nil {
		return err
	}
	if math.Abs(w.Sum()-WeightTotal) > NormalizedTolerance {
		return fmt.Errorf("%w: weights sum to %.4f, must sum to %.0f", ErrInvalidWeights, w.Sum(), WeightTotal)
	}
	return nil
}

// Normalize rescales w so its weights sum to exactly 100 while keeping their
// proportions. Already-normalized input comes back unchanged up to rounding.
func Normalize(w WeightVector) (WeightVector, error) {
	if err := w.Check(); err != nil {
		return WeightVector{}, err
	}
	sum := w.Sum()
	in := w.Values()
	var out [NumSignals]float64
	var acc float64
	last := -1
	for i, v := range in {
		out[i] = v / sum * WeightTotal
		acc += out[i]
		if v > 0 {
			last = i
		}
	}
	// Fold the rounding residue into the last positive weight so the sum is exact.
	out[last] += WeightTotal - acc
	if out[last] < 0 {
		out[last] = 0
	}
	return FromValues(out), nil
}

// NormalizeIfNeeded rescales w only when its sum drifts from 100 by more than
// InputTolerance.
func NormalizeIfNeeded(w WeightVector) (WeightVector, error) {
	if err := w.Check(); err != nil {
		return WeightVector{}, err
	}
	if math.Abs(w.Sum()-WeightTotal) <= InputTolerance {
		return w, nil
	}
	return Normalize(w)
}

// WeightPatch is a partial edit of a WeightVector. Nil fields are left alone.
type WeightPatch struct {
	NameMatch           *float64 `json:"nameMatch,omitempty"`
	Rating              *float64 `json:"rating,omitempty"`
	Likes               *float64 `json:"likes,omitempty"`
	Buzz                *float64 `json:"buzz,omitempty"`
	FranchiseImportance *float64 `json:"franchiseImportance,omitempty"`
}

// Empty reports whether the patch edits nothing.
func (p WeightPatch) Empty() bool {
	return p.NameMatch == nil && p.Rating == nil && p.Likes == nil &&
		p.Buzz == nil && p.FranchiseImportance == nil
}

// Merge returns w with the patch's non-nil fields applied, without rescaling.
func (w WeightVector) Merge(p WeightPatch) WeightVector {
	if p.NameMatch != nil {
		w.NameMatch = *p.NameMatch
	}
	if p.Rating != nil {
		w.Rating = *p.Rating
	}
	if p.Likes != nil {
		w.Likes = *p.Likes
	}
	if p.Buzz != nil {
		w.Buzz = *p.Buzz
	}
	if p.FranchiseImportance != nil {
		w.FranchiseImportance = *p.FranchiseImportance
	}
	return w
}

// Adjust merges the patch into w. If the merged sum is off 100 by more than
// InputTolerance, all five weights are rescaled proportionally, so moving one
// slider up shrinks the others and vice versa.
func (w WeightVector) Adjust(p WeightPatch) (WeightVector, error) {
	return NormalizeIfNeeded(w.Merge(p))
}

// ApproxEqual compares two vectors field by field within tol.
func (w WeightVector) ApproxEqual(other WeightVector, tol float64) bool {
	a, b := w.Values(), other.Values()
	for i := range a {
		if math.Abs(a[i]-b[i]) > tol {
			return false
		}
	}
	return true
}
