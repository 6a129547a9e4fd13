package scoring

import (
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

const (
	DefaultLikesSaturation = 10000
	DefaultBuzzSaturation  = 500

	alternativeNameFactor = 0.9
	childEntryFactor      = 0.7
)

// Extractor computes raw signals for candidates. Its settings are immutable
// once built, so one Extractor can be shared by any number of goroutines.
type Extractor struct {
	likesSaturation float64
	buzzSaturation  float64
}

// NewExtractor creates an Extractor. Non-positive saturation points fall back
// to the defaults.
func NewExtractor(likesSaturation, buzzSaturation float64) *Extractor {
	if likesSaturation <= 0 {
		likesSaturation = DefaultLikesSaturation
	}
	if buzzSaturation <= 0 {
		buzzSaturation = DefaultBuzzSaturation
	}
	return &Extractor{likesSaturation: likesSaturation, buzzSaturation: buzzSaturation}
}

// DefaultExtractor uses the default saturation points.
func DefaultExtractor() *Extractor {
	return NewExtractor(DefaultLikesSaturation, DefaultBuzzSaturation)
}

// Extract computes all five raw signals of c for the given query.
func (e *Extractor) Extract(c *Candidate, query string) SignalSet {
	q := normalizeText(query)
	return SignalSet{
		NameMatch:           NameMatchSignal(c, q),
		Rating:              RatingSignal(c),
		Likes:               saturate(c.Popularity, e.likesSaturation),
		Buzz:                saturate(c.RecentActivity, e.buzzSaturation),
		FranchiseImportance: FranchiseSignal(c, q),
	}
}

// NameMatchSignal scores the lexical match between the candidate's names and
// an already-normalized query: exact 100, prefix [70,90), substring [45,65),
// fuzzy [0,40].
func NameMatchSignal(c *Candidate, normalizedQuery string) float64 {
	best := titleMatch(normalizedQuery, normalizeText(c.Title))
	for _, alt := range c.AlternativeNames {
		if s := alternativeNameFactor * titleMatch(normalizedQuery, normalizeText(alt)); s > best {
			best = s
		}
	}
	return best
}

func titleMatch(q, title string) float64 {
	if q == "" || title == "" {
		return 0
	}
	if q == title {
		return 100
	}
	ql := float64(utf8.RuneCountInString(q))
	tl := float64(utf8.RuneCountInString(title))
	switch {
	case strings.HasPrefix(title, q):
		return 70 + 20*ql/tl
	case strings.Contains(title, q):
		return 45 + 20*ql/tl
	}

	dist := float64(levenshtein.ComputeDistance(q, title))
	similarity := 1 - dist/math.Max(ql, tl)
	return 40 * clamp(math.Max(similarity, wordCoverage(q, title)), 0, 1)
}

// wordCoverage is the share of query words that appear as whole words in the title.
func wordCoverage(q, title string) float64 {
	qWords := strings.Fields(q)
	if len(qWords) == 0 {
		return 0
	}
	titleWords := make(map[string]bool)
	for _, w := range strings.Fields(title) {
		titleWords[w] = true
	}
	var hits int
	for _, w := range qWords {
		if titleWords[w] {
			hits++
		}
	}
	return float64(hits) / float64(len(qWords))
}

// RatingSignal is the candidate's total rating on a 0–100 scale, falling back
// to the critic rating, then to 0.
func RatingSignal(c *Candidate) float64 {
	if c.Rating != nil && isFinite(*c.Rating) {
		return clamp(*c.Rating, 0, 100)
	}
	if c.CriticRating != nil && isFinite(*c.CriticRating) {
		return clamp(*c.CriticRating, 0, 100)
	}
	return 0
}

// saturate maps a count onto 0–100 logarithmically, reaching 100 at the saturation point.
func saturate(n int64, saturation float64) float64 {
	if n <= 0 || saturation <= 0 {
		return 0
	}
	return math.Min(100, 100*math.Log1p(float64(n))/math.Log1p(saturation))
}

var categoryBase = map[GameCategory]float64{
	CategoryMainGame:            100,
	CategoryRemake:              75,
	CategoryExpandedGame:        65,
	CategoryRemaster:            60,
	CategoryStandaloneExpansion: 55,
	CategoryPort:                45,
	CategoryExpansion:           40,
	CategoryEpisode:             30,
	CategorySeason:              30,
	CategoryDLC:                 25,
	CategoryBundle:              20,
	CategoryPack:                20,
	CategoryUpdate:              15,
	CategoryMod:                 10,
	CategoryFork:                10,
}

const unknownCategoryBase = 50

var spinOffMarkers = map[string]bool{
	"remastered": true, "remaster": true, "collection": true, "edition": true,
	"bundle": true, "dlc": true, "pack": true, "demo": true, "soundtrack": true,
}

// FranchiseSignal estimates how central the candidate is to its series.
// Titles without series metadata score 0.
func FranchiseSignal(c *Candidate, normalizedQuery string) float64 {
	series := normalizeText(c.Franchise)
	if series == "" {
		series = normalizeText(c.Collection)
	}
	if series == "" {
		return 0
	}

	score := float64(unknownCategoryBase)
	if c.Category != nil {
		if base, ok := categoryBase[*c.Category]; ok {
			score = base
		}
	} else if hasSpinOffMarker(normalizeText(c.Title)) {
		score /= 2
	}

	if c.ParentGame != nil {
		score *= childEntryFactor
	}

	// The title may only share a name fragment with the query while the series is unrelated.
	if normalizedQuery != "" && !related(series, normalizedQuery) {
		score /= 2
	}
	return clamp(score, 0, 100)
}

func hasSpinOffMarker(title string) bool {
	for _, w := range strings.Fields(title) {
		if spinOffMarkers[w] {
			return true
		}
	}
	return false
}

func related(series, query string) bool {
	if strings.Contains(series, query) || strings.Contains(query, series) {
		return true
	}
	return wordCoverage(query, series) > 0
}

// normalizeText lower-cases s, turns punctuation into spaces and collapses whitespace.
func normalizeText(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
