package scoring

import (
	"context"
	"log/slog"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Contribution captures one signal's share of the total score.
type Contribution struct {
	Signal       Signal  `json:"signal"`
	Label        string  `json:"label"`
	Raw          float64 `json:"raw"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Result is the output of scoring one signal set.
type Result struct {
	TotalScore float64        `json:"total_score"`
	Breakdown  []Contribution `json:"breakdown"`
}

// Score combines weights and raw signals. Each contribution is raw*weight/100
// and the total is their sum. The breakdown is ordered by contribution
// descending, ties kept in canonical signal order.
func Score(w WeightVector, signals SignalSet) Result {
	weights := w.Values()
	raw := signals.Values()

	breakdown := make([]Contribution, NumSignals)
	var total float64
	for i := range breakdown {
		c := raw[i] * weights[i] / WeightTotal
		breakdown[i] = Contribution{
			Signal:       Signal(i),
			Label:        Signal(i).Label(),
			Raw:          raw[i],
			Weight:       weights[i],
			Contribution: c,
		}
		total += c
	}

	sort.SliceStable(breakdown, func(i, j int) bool {
		return breakdown[i].Contribution > breakdown[j].Contribution
	})

	return Result{TotalScore: total, Breakdown: breakdown}
}

// ScoredCandidate is a candidate with its total score and per-signal breakdown.
type ScoredCandidate struct {
	Candidate  Candidate      `json:"candidate"`
	TotalScore float64        `json:"total_score"`
	Signals    SignalSet      `json:"signals"`
	Breakdown  []Contribution `json:"breakdown"`
}

// Ranker scores and orders candidate batches.
type Ranker struct {
	extractor         *Extractor
	parallelThreshold int
	maxWorkers        int
	logger            *slog.Logger
}

// RankerOptions tunes batch scoring. Zero values pick defaults.
type RankerOptions struct {
	// ParallelThreshold is the batch size from which candidates are scored concurrently.
	ParallelThreshold int
	// MaxWorkers bounds concurrent scoring goroutines.
	MaxWorkers int
}

// NewRanker creates a Ranker around the given extractor.
func NewRanker(extractor *Extractor, opts RankerOptions, logger *slog.Logger) *Ranker {
	if extractor == nil {
		extractor = DefaultExtractor()
	}
	if opts.ParallelThreshold <= 0 {
		opts.ParallelThreshold = 256
	}
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = runtime.GOMAXPROCS(0)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ranker{
		extractor:         extractor,
		parallelThreshold: opts.ParallelThreshold,
		maxWorkers:        opts.MaxWorkers,
		logger:            logger,
	}
}

// ScoreCandidate extracts signals for c and scores them with w.
func (r *Ranker) ScoreCandidate(c Candidate, query string, w WeightVector) ScoredCandidate {
	signals := r.extractor.Extract(&c, query)
	res := Score(w, signals)
	return ScoredCandidate{
		Candidate:  c,
		TotalScore: res.TotalScore,
		Signals:    signals,
		Breakdown:  res.Breakdown,
	}
}

// ScoreAndSort scores every candidate and returns them best first. The order
// is fully deterministic: total score desc, rating signal desc, then ID asc.
// The only error is ctx cancellation.
func (r *Ranker) ScoreAndSort(ctx context.Context, candidates []Candidate, query string, w WeightVector) ([]ScoredCandidate, error) {
	scored := make([]ScoredCandidate, len(candidates))

	if len(candidates) < r.parallelThreshold {
		for i := range candidates {
			scored[i] = r.ScoreCandidate(candidates[i], query, w)
		}
	} else {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.maxWorkers)
		chunk := (len(candidates) + r.maxWorkers - 1) / r.maxWorkers
		for start := 0; start < len(candidates); start += chunk {
			end := min(start+chunk, len(candidates))
			g.Go(func() error {
				for i := start; i < end; i++ {
					if err := gctx.Err(); err != nil {
						return err
					}
					scored[i] = r.ScoreCandidate(candidates[i], query, w)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		r.logger.Debug("scored batch in parallel", "candidates", len(candidates), "chunk", chunk)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	SortScored(scored)
	return scored, nil
}

// SortScored orders scored candidates best first using the deterministic tie-break.
func SortScored(scored []ScoredCandidate) {
	sort.SliceStable(scored, func(i, j int) bool {
		return Less(scored[i], scored[j])
	})
}

// Less reports whether a ranks before b.
func Less(a, b ScoredCandidate) bool {
	if a.TotalScore != b.TotalScore {
		return a.TotalScore > b.TotalScore
	}
	if a.Signals.Rating != b.Signals.Rating {
		return a.Signals.Rating > b.Signals.Rating
	}
	return a.Candidate.ID < b.Candidate.ID
}
