package scoring

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func float64Ptr(v float64) *float64 { return &v }

func TestFactoryWeightsValid(t *testing.T) {
	w := FactoryWeights()
	if err := w.Validate(); err != nil {
		t.Errorf("factory weights invalid: %v", err)
	}
	if math.Abs(w.Sum()-100) > NormalizedTolerance {
		t.Errorf("factory weights sum to %f, expected 100", w.Sum())
	}
}

func TestPresetsValid(t *testing.T) {
	for _, name := range PresetNames() {
		w, err := Preset(name)
		if err != nil {
			t.Fatalf("preset %s: %v", name, err)
		}
		if err := w.Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
	if _, err := Preset("nope"); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestNormalizeSumsToHundred(t *testing.T) {
	tests := []struct {
		name string
		in   WeightVector
	}{
		{"already normalized", FactoryWeights()},
		{"fractions", WeightVector{NameMatch: 0.4, Rating: 0.3, Likes: 0.15, Buzz: 0.1, FranchiseImportance: 0.05}},
		{"single weight", WeightVector{Buzz: 3}},
		{"thirds", WeightVector{NameMatch: 1, Rating: 1, Likes: 1}},
		{"large", WeightVector{NameMatch: 1e6, Rating: 3, Likes: 7e5, Buzz: 1, FranchiseImportance: 9}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Normalize(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(out.Sum()-100) > NormalizedTolerance {
				t.Errorf("sum %f, expected 100", out.Sum())
			}
			if err := out.Validate(); err != nil {
				t.Errorf("normalized vector invalid: %v", err)
			}
		})
	}
}

func TestNormalizeRandomVectors(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 1000; i++ {
		var v [NumSignals]float64
		for j := range v {
			v[j] = rng.Float64() * 1000
		}
		v[rng.Intn(NumSignals)] += 0.5 // never degenerate

		out, err := Normalize(FromValues(v))
		if err != nil {
			t.Fatalf("vector %v: %v", v, err)
		}
		if math.Abs(out.Sum()-100) > NormalizedTolerance {
			t.Fatalf("vector %v: sum %f", v, out.Sum())
		}

		again, err := Normalize(out)
		if err != nil {
			t.Fatalf("renormalize: %v", err)
		}
		if !again.ApproxEqual(out, NormalizedTolerance) {
			t.Fatalf("not idempotent: %+v vs %+v", out, again)
		}
	}
}

func TestNormalizePreservesProportions(t *testing.T) {
	out, err := Normalize(WeightVector{NameMatch: 2, Rating: 1, Likes: 1})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out.NameMatch-50) > 1e-9 || math.Abs(out.Rating-25) > 1e-9 || math.Abs(out.Likes-25) > 1e-9 {
		t.Errorf("unexpected proportions: %+v", out)
	}
	if out.Buzz != 0 || out.FranchiseImportance != 0 {
		t.Errorf("zero weights should stay zero: %+v", out)
	}
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   WeightVector
	}{
		{"all zero", WeightVector{}},
		{"negative", WeightVector{NameMatch: 110, Rating: -10}},
		{"nan", WeightVector{NameMatch: math.NaN(), Rating: 100}},
		{"inf", WeightVector{NameMatch: math.Inf(1)}},
		{"near zero", WeightVector{Rating: 1e-12}},
		{"sum overflows", WeightVector{NameMatch: 1e308, Rating: 1e308, Likes: 1, Buzz: 1, FranchiseImportance: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.in)
			if !errors.Is(err, ErrInvalidWeights) {
				t.Errorf("expected ErrInvalidWeights, got %v", err)
			}
		})
	}
}

func TestNormalizeHugeFiniteWeights(t *testing.T) {
	out, err := Normalize(WeightVector{NameMatch: 1e307, Rating: 1e307})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(out.NameMatch-50) > 1e-9 || math.Abs(out.Rating-50) > 1e-9 {
		t.Errorf("unexpected result: %+v", out)
	}
}

func TestAdjustRejectsOverflowingPatch(t *testing.T) {
	_, err := FactoryWeights().Adjust(WeightPatch{NameMatch: float64Ptr(math.MaxFloat64), Rating: float64Ptr(math.MaxFloat64)})
	if !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights, got %v", err)
	}
}

func TestValidateRequiresExactSum(t *testing.T) {
	w := WeightVector{NameMatch: 40, Rating: 30, Likes: 15, Buzz: 10, FranchiseImportance: 6}
	if err := w.Validate(); !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("expected sum error, got %v", err)
	}
}

func TestNormalizeIfNeededTolerance(t *testing.T) {
	within := WeightVector{NameMatch: 40.05, Rating: 30, Likes: 15, Buzz: 10, FranchiseImportance: 5}
	out, err := NormalizeIfNeeded(within)
	if err != nil {
		t.Fatal(err)
	}
	if out != within {
		t.Errorf("vector within tolerance should be untouched, got %+v", out)
	}

	off := WeightVector{NameMatch: 80, Rating: 60, Likes: 30, Buzz: 20, FranchiseImportance: 10}
	out, err = NormalizeIfNeeded(off)
	if err != nil {
		t.Fatal(err)
	}
	if !out.ApproxEqual(FactoryWeights(), 1e-9) {
		t.Errorf("expected factory proportions, got %+v", out)
	}
}

func TestAdjustRescalesAllFields(t *testing.T) {
	w := FactoryWeights()
	out, err := w.Adjust(WeightPatch{NameMatch: float64Ptr(100)})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(out.Sum()-100) > NormalizedTolerance {
		t.Fatalf("sum %f, expected 100", out.Sum())
	}
	// merged: 100,30,15,10,5 = 160
	want := WeightVector{NameMatch: 62.5, Rating: 18.75, Likes: 9.375, Buzz: 6.25, FranchiseImportance: 3.125}
	if !out.ApproxEqual(want, 1e-9) {
		t.Errorf("got %+v, want %+v", out, want)
	}
}

func TestAdjustWithinToleranceKeepsValues(t *testing.T) {
	w := FactoryWeights()
	out, err := w.Adjust(WeightPatch{NameMatch: float64Ptr(40.08)})
	if err != nil {
		t.Fatal(err)
	}
	if out.NameMatch != 40.08 || out.Rating != 30 {
		t.Errorf("small edit should not rescale, got %+v", out)
	}
}

func TestAdjustEmptyPatchIsNoop(t *testing.T) {
	w := FactoryWeights()
	out, err := w.Adjust(WeightPatch{})
	if err != nil {
		t.Fatal(err)
	}
	if out != w {
		t.Errorf("expected unchanged vector, got %+v", out)
	}
	if !(WeightPatch{}).Empty() {
		t.Error("expected empty patch")
	}
}

func TestAdjustRejectsDegenerate(t *testing.T) {
	w := WeightVector{NameMatch: 100}
	_, err := w.Adjust(WeightPatch{NameMatch: float64Ptr(0)})
	if !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights, got %v", err)
	}
	_, err = FactoryWeights().Adjust(WeightPatch{Buzz: float64Ptr(-5)})
	if !errors.Is(err, ErrInvalidWeights) {
		t.Errorf("expected ErrInvalidWeights for negative patch, got %v", err)
	}
}

func TestAdjustIncreasesContributionShare(t *testing.T) {
	signals := SignalSet{NameMatch: 60, Rating: 70, Likes: 40, Buzz: 30, FranchiseImportance: 20}
	base := FactoryWeights()

	for _, sig := range AllSignals() {
		t.Run(sig.Key(), func(t *testing.T) {
			var patch WeightPatch
			raised := base.Get(sig) + 20
			switch sig {
			case SignalNameMatch:
				patch.NameMatch = &raised
			case SignalRating:
				patch.Rating = &raised
			case SignalLikes:
				patch.Likes = &raised
			case SignalBuzz:
				patch.Buzz = &raised
			case SignalFranchiseImportance:
				patch.FranchiseImportance = &raised
			}
			adjusted, err := base.Adjust(patch)
			if err != nil {
				t.Fatal(err)
			}

			before := share(Score(base, signals), sig)
			after := share(Score(adjusted, signals), sig)
			if after <= before {
				t.Errorf("share of %s did not increase: %f -> %f", sig, before, after)
			}
		})
	}
}

func share(r Result, sig Signal) float64 {
	for _, c := range r.Breakdown {
		if c.Signal == sig {
			return c.Contribution / r.TotalScore
		}
	}
	return 0
}
