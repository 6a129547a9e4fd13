package scoring

import (
	"strings"
	"testing"
)

func TestExplainFollowsBreakdownOrder(t *testing.T) {
	w := WeightVector{NameMatch: 40, Rating: 30, Likes: 15, Buzz: 10, FranchiseImportance: 5}
	r := Score(w, SignalSet{NameMatch: 100, Rating: 80, Likes: 50, Buzz: 20})
	sc := ScoredCandidate{Candidate: Candidate{ID: "1"}, TotalScore: r.TotalScore, Breakdown: r.Breakdown}

	lines := Explain(sc)
	want := []string{
		"Name match: 100.0 × 40.0% = 40.00",
		"Rating: 80.0 × 30.0% = 24.00",
		"Likes: 50.0 × 15.0% = 7.50",
		"Buzz: 20.0 × 10.0% = 2.00",
		"Franchise importance: 0.0 × 5.0% = 0.00",
	}
	if len(lines) != len(want) {
		t.Fatalf("expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("line %d: got %q, want %q", i, lines[i], want[i])
		}
	}
}

func TestExplainFilteredOmitZero(t *testing.T) {
	r := Score(FactoryWeights(), SignalSet{Rating: 60})
	sc := ScoredCandidate{TotalScore: r.TotalScore, Breakdown: r.Breakdown}

	lines := ExplainFiltered(sc, OmitZero)
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %v", lines)
	}
	if !strings.HasPrefix(lines[0], "Rating:") {
		t.Errorf("unexpected line %q", lines[0])
	}

	if len(Explain(sc)) != NumSignals {
		t.Error("unfiltered explanation should render every signal")
	}
}

func TestExplainEmptyBreakdown(t *testing.T) {
	if lines := Explain(ScoredCandidate{}); len(lines) != 0 {
		t.Errorf("expected no lines, got %v", lines)
	}
}

func TestFormatContributionFallsBackToSignalLabel(t *testing.T) {
	got := FormatContribution(Contribution{Signal: SignalBuzz, Raw: 10, Weight: 50, Contribution: 5})
	if got != "Buzz: 10.0 × 50.0% = 5.00" {
		t.Errorf("unexpected %q", got)
	}
}

func TestSignalText(t *testing.T) {
	for _, s := range AllSignals() {
		text, err := s.MarshalText()
		if err != nil {
			t.Fatal(err)
		}
		var back Signal
		if err := back.UnmarshalText(text); err != nil {
			t.Fatal(err)
		}
		if back != s {
			t.Errorf("round trip of %s gave %s", s, back)
		}
	}
	var s Signal
	if err := s.UnmarshalText([]byte("nope")); err == nil {
		t.Error("expected error for unknown signal")
	}
}
