package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
)

// resolveWeights picks explicit weights over a preset; neither means factory weights.
func resolveWeights(preset, weights string) (scoring.WeightVector, error) {
	switch {
	case weights != "":
		return parseWeights(weights)
	case preset != "":
		return scoring.Preset(preset)
	default:
		return scoring.FactoryWeights(), nil
	}
}

// parseWeights accepts five comma-separated numbers in canonical order
// ("40,30,15,10,5") or key=value pairs ("nameMatch=40,rating=30").
// Keys missing from the pair form are zero.
func parseWeights(s string) (scoring.WeightVector, error) {
	parts := strings.Split(s, ",")
	if !strings.Contains(s, "=") {
		if len(parts) != scoring.NumSignals {
			return scoring.WeightVector{}, fmt.Errorf("expected %d weights, got %d", scoring.NumSignals, len(parts))
		}
		var v [scoring.NumSignals]float64
		for i, p := range parts {
			f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
			if err != nil {
				return scoring.WeightVector{}, fmt.Errorf("weight %d: %w", i+1, err)
			}
			v[i] = f
		}
		return scoring.FromValues(v), nil
	}

	var v [scoring.NumSignals]float64
	for _, p := range parts {
		sig, f, err := parseAssignment(p)
		if err != nil {
			return scoring.WeightVector{}, err
		}
		v[sig] = f
	}
	return scoring.FromValues(v), nil
}

// parsePatch turns "rating=50" style assignments into a partial edit.
func parsePatch(assignments []string) (scoring.WeightPatch, error) {
	var p scoring.WeightPatch
	for _, a := range assignments {
		sig, f, err := parseAssignment(a)
		if err != nil {
			return p, err
		}
		val := f
		switch sig {
		case scoring.SignalNameMatch:
			p.NameMatch = &val
		case scoring.SignalRating:
			p.Rating = &val
		case scoring.SignalLikes:
			p.Likes = &val
		case scoring.SignalBuzz:
			p.Buzz = &val
		case scoring.SignalFranchiseImportance:
			p.FranchiseImportance = &val
		}
	}
	return p, nil
}

func parseAssignment(s string) (scoring.Signal, float64, error) {
	key, value, ok := strings.Cut(strings.TrimSpace(s), "=")
	if !ok {
		return 0, 0, fmt.Errorf("expected key=value, got %q", s)
	}
	var sig scoring.Signal
	if err := sig.UnmarshalText([]byte(strings.TrimSpace(key))); err != nil {
		return 0, 0, err
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%s: %w", key, err)
	}
	return sig, f, nil
}

func formatWeights(w scoring.WeightVector) string {
	var b strings.Builder
	for i, sig := range scoring.AllSignals() {
		if i > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "%s=%.2f", sig.Key(), w.Get(sig))
	}
	return b.String()
}
