package scoring

import (
	"math"
	"testing"
)

func categoryPtr(c GameCategory) *GameCategory { return &c }

func int64Ptr(v int64) *int64 { return &v }

func TestNameMatchSignal(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		alts    []string
		query   string
		wantMin float64
		wantMax float64
	}{
		{"exact", "The Legend of Zelda", nil, "the legend of zelda", 100, 100},
		{"exact ignoring punctuation", "Half-Life 2", nil, "half life 2", 100, 100},
		{"prefix", "The Legend of Zelda", nil, "the legend", 80.5, 80.6},
		{"substring", "The Legend of Zelda", nil, "zelda", 50.2, 50.3},
		{"fuzzy typo", "Zelda", nil, "zelad", 23.9, 24.1},
		{"no overlap", "Tetris", nil, "doom", 0, 40},
		{"alternative name exact", "Grand Theft Auto V", []string{"GTA 5"}, "gta 5", 90, 90},
		{"empty query", "Tetris", nil, "", 0, 0},
		{"empty title", "", nil, "doom", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Candidate{Title: tt.title, AlternativeNames: tt.alts}
			got := NameMatchSignal(c, normalizeText(tt.query))
			if got < tt.wantMin || got > tt.wantMax {
				t.Errorf("got %f, want [%f, %f]", got, tt.wantMin, tt.wantMax)
			}
		})
	}
}

func TestNameMatchTiers(t *testing.T) {
	title := normalizeText("Dark Souls Remastered")
	exact := titleMatch(title, title)
	prefix := titleMatch("dark souls", title)
	substring := titleMatch("souls remastered", title)
	fuzzy := titleMatch("drak sousl", title)

	if !(exact > prefix && prefix > substring && substring > fuzzy) {
		t.Errorf("tiers out of order: exact=%f prefix=%f substring=%f fuzzy=%f", exact, prefix, substring, fuzzy)
	}

	// Longer shared prefix scores higher.
	if titleMatch("dark", title) >= titleMatch("dark souls", title) {
		t.Error("expected longer prefix to score higher")
	}
}

func TestRatingSignal(t *testing.T) {
	tests := []struct {
		name string
		c    Candidate
		want float64
	}{
		{"rating", Candidate{Rating: float64Ptr(87)}, 87},
		{"missing", Candidate{}, 0},
		{"critic fallback", Candidate{CriticRating: float64Ptr(91)}, 91},
		{"rating wins over critic", Candidate{Rating: float64Ptr(70), CriticRating: float64Ptr(91)}, 70},
		{"clamped high", Candidate{Rating: float64Ptr(130)}, 100},
		{"clamped low", Candidate{Rating: float64Ptr(-4)}, 0},
		{"nan", Candidate{Rating: float64Ptr(math.NaN())}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RatingSignal(&tt.c); got != tt.want {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestSaturate(t *testing.T) {
	if saturate(0, 100) != 0 {
		t.Error("zero count should score 0")
	}
	if saturate(-5, 100) != 0 {
		t.Error("negative count should score 0")
	}
	if got := saturate(100, 100); math.Abs(got-100) > 1e-9 {
		t.Errorf("saturation point should score 100, got %f", got)
	}
	if saturate(1_000_000, 100) != 100 {
		t.Error("counts past saturation should cap at 100")
	}

	prev := 0.0
	for _, n := range []int64{1, 10, 50, 99} {
		got := saturate(n, 100)
		if got <= prev {
			t.Errorf("saturate(%d)=%f not increasing", n, got)
		}
		prev = got
	}

	// Logarithmic: 10x the count is far from 10x the signal.
	if saturate(1000, 10000) > 2*saturate(100, 10000) {
		t.Error("expected sub-linear growth")
	}
}

func TestExtractorDefaults(t *testing.T) {
	e := NewExtractor(0, -1)
	if e.likesSaturation != DefaultLikesSaturation || e.buzzSaturation != DefaultBuzzSaturation {
		t.Errorf("expected default saturation points, got %f/%f", e.likesSaturation, e.buzzSaturation)
	}
}

func TestFranchiseSignal(t *testing.T) {
	tests := []struct {
		name  string
		c     Candidate
		query string
		want  float64
	}{
		{"no series", Candidate{Title: "Tetris", Category: categoryPtr(CategoryMainGame)}, "tetris", 0},
		{"mainline", Candidate{Title: "Breath of the Wild", Franchise: "The Legend of Zelda", Category: categoryPtr(CategoryMainGame)}, "zelda", 100},
		{"remaster", Candidate{Title: "Skyward Sword HD", Franchise: "The Legend of Zelda", Category: categoryPtr(CategoryRemaster)}, "zelda", 60},
		{"dlc child", Candidate{Title: "Champions Ballad", Franchise: "The Legend of Zelda", Category: categoryPtr(CategoryDLC), ParentGame: int64Ptr(7346)}, "zelda", 17.5},
		{"collection fallback", Candidate{Title: "Halo 3", Collection: "Halo", Category: categoryPtr(CategoryMainGame)}, "halo", 100},
		{"unrelated series", Candidate{Title: "Zelda Tribute", Franchise: "Mario", Category: categoryPtr(CategoryMainGame)}, "zelda", 50},
		{"unknown category", Candidate{Title: "Metroid Prime", Franchise: "Metroid"}, "", 50},
		{"unknown category spin-off title", Candidate{Title: "Metroid Prime Remastered", Franchise: "Metroid"}, "", 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FranchiseSignal(&tt.c, normalizeText(tt.query))
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %f, want %f", got, tt.want)
			}
		})
	}
}

func TestExtractMissingFields(t *testing.T) {
	e := DefaultExtractor()
	s := e.Extract(&Candidate{ID: "1"}, "anything")
	if s != (SignalSet{}) {
		t.Errorf("expected all-zero signals for empty candidate, got %+v", s)
	}
}

func TestExtractBounded(t *testing.T) {
	e := NewExtractor(100, 10)
	c := &Candidate{
		ID:             "x",
		Title:          "Doom",
		Rating:         float64Ptr(250),
		Popularity:     1 << 40,
		RecentActivity: 1 << 40,
		Franchise:      "Doom",
		Category:       categoryPtr(CategoryMainGame),
	}
	for i, v := range e.Extract(c, "doom").Values() {
		if v < 0 || v > 100 {
			t.Errorf("%s out of range: %f", Signal(i), v)
		}
	}
}

func TestNormalizeText(t *testing.T) {
	tests := map[string]string{
		"  The   Witcher 3: Wild Hunt ": "the witcher 3 wild hunt",
		"Pokémon™ Red":                  "pokémon red",
		"":                              "",
		"---":                           "",
	}
	for in, want := range tests {
		if got := normalizeText(in); got != want {
			t.Errorf("normalizeText(%q) = %q, want %q", in, got, want)
		}
	}
}
