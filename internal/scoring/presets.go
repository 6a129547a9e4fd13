package scoring

import (
	"fmt"
	"sort"
)

// Named weight presets operators can start from. PresetBalanced is the factory default.
const (
	PresetBalanced  = "balanced"
	PresetRelevance = "relevance"
	PresetPopular   = "popular"
	PresetTrending  = "trending"
	PresetCritics   = "critics"
	PresetFranchise = "franchise"
)

var presets = map[string]WeightVector{
	PresetBalanced:  FactoryWeights(),
	PresetRelevance: {NameMatch: 70, Rating: 15, Likes: 5, Buzz: 5, FranchiseImportance: 5},
	PresetPopular:   {NameMatch: 30, Rating: 15, Likes: 40, Buzz: 10, FranchiseImportance: 5},
	PresetTrending:  {NameMatch: 30, Rating: 10, Likes: 15, Buzz: 40, FranchiseImportance: 5},
	PresetCritics:   {NameMatch: 30, Rating: 55, Likes: 5, Buzz: 5, FranchiseImportance: 5},
	PresetFranchise: {NameMatch: 35, Rating: 20, Likes: 10, Buzz: 5, FranchiseImportance: 30},
}

// Preset returns the weights of a named preset.
func Preset(name string) (WeightVector, error) {
	w, ok := presets[name]
	if !ok {
		return WeightVector{}, fmt.Errorf("unknown preset %q", name)
	}
	return w, nil
}

// PresetNames lists the available presets alphabetically.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
