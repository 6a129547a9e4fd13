package scoring

import "fmt"

// Explain renders each breakdown entry of sc as a line, in breakdown order.
// Zero contributions are included.
func Explain(sc ScoredCandidate) []string {
	return ExplainFiltered(sc, nil)
}

// ExplainFiltered is Explain with a caller-supplied filter. A nil keep renders every entry.
func ExplainFiltered(sc ScoredCandidate, keep func(Contribution) bool) []string {
	lines := make([]string, 0, len(sc.Breakdown))
	for _, c := range sc.Breakdown {
		if keep != nil && !keep(c) {
			continue
		}
		lines = append(lines, FormatContribution(c))
	}
	return lines
}

// OmitZero is an ExplainFiltered filter that drops entries contributing nothing.
func OmitZero(c Contribution) bool {
	return c.Contribution != 0
}

// FormatContribution renders one entry, e.g. "Rating: 80.0 × 30.0% = 24.00".
func FormatContribution(c Contribution) string {
	label := c.Label
	if label == "" {
		label = c.Signal.Label()
	}
	return fmt.Sprintf("%s: %.1f × %.1f%% = %.2f", label, c.Raw, c.Weight, c.Contribution)
}
