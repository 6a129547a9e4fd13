package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Ranker/internal/scoring"
)

func newScoreCmd() *cobra.Command {
	var (
		query           string
		input           string
		preset          string
		weights         string
		explain         bool
		omitZero        bool
		asJSON          bool
		likesSaturation float64
		buzzSaturation  float64
		limit           int
	)

	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score and sort candidates from a JSON file without a server",
		Long: `Reads a JSON array of candidates and prints them best first.

Weights come from --weights ("40,30,15,10,5" or "rating=60,nameMatch=40"),
else from --preset, else the factory default. Weights that do not sum to 100
are rescaled.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveWeights(preset, weights)
			if err != nil {
				return err
			}
			w, err = scoring.NormalizeIfNeeded(w)
			if err != nil {
				return err
			}

			candidates, err := readCandidates(cmd.InOrStdin(), input)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: slog.LevelWarn}))
			ranker := scoring.NewRanker(scoring.NewExtractor(likesSaturation, buzzSaturation), scoring.RankerOptions{}, logger)
			scored, err := ranker.ScoreAndSort(context.Background(), candidates, query, w)
			if err != nil {
				return err
			}
			if limit > 0 && len(scored) > limit {
				scored = scored[:limit]
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(scored)
			}
			return printScored(cmd.OutOrStdout(), scored, w, explain, omitZero)
		},
	}

	cmd.Flags().StringVarP(&query, "query", "q", "", "search query")
	cmd.Flags().StringVarP(&input, "input", "i", "-", "candidates JSON file, - for stdin")
	cmd.Flags().StringVar(&preset, "preset", "", "named weight preset")
	cmd.Flags().StringVar(&weights, "weights", "", "explicit weights")
	cmd.Flags().BoolVar(&explain, "explain", false, "print the per-signal breakdown")
	cmd.Flags().BoolVar(&omitZero, "omit-zero", false, "hide zero contributions in explanations")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	cmd.Flags().Float64Var(&likesSaturation, "likes-saturation", 0, "likes count treated as full score (default 10000)")
	cmd.Flags().Float64Var(&buzzSaturation, "buzz-saturation", 0, "recent activity treated as full score (default 500)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "print only the top n results")

	return cmd
}

func readCandidates(stdin io.Reader, path string) ([]scoring.Candidate, error) {
	r := stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open candidates: %w", err)
		}
		defer f.Close()
		r = f
	}
	var candidates []scoring.Candidate
	if err := json.NewDecoder(r).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("decode candidates: %w", err)
	}
	return candidates, nil
}

func printScored(out io.Writer, scored []scoring.ScoredCandidate, w scoring.WeightVector, explain, omitZero bool) error {
	fmt.Fprintf(out, "weights: %s\n\n", formatWeights(w))

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tID\tTITLE")
	for i, sc := range scored {
		fmt.Fprintf(tw, "%d\t%.2f\t%s\t%s\n", i+1, sc.TotalScore, sc.Candidate.ID, sc.Candidate.Title)
		if !explain {
			continue
		}
		lines := scoring.Explain(sc)
		if omitZero {
			lines = scoring.ExplainFiltered(sc, scoring.OmitZero)
		}
		for _, line := range lines {
			fmt.Fprintf(tw, "\t\t\t  %s\n", line)
		}
	}
	return tw.Flush()
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List the named weight presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, name := range scoring.PresetNames() {
				w, _ := scoring.Preset(name)
				fmt.Fprintf(tw, "%s\t%s\n", name, formatWeights(w))
			}
			return tw.Flush()
		},
	}
}

func newAdjustCmd() *cobra.Command {
	var (
		preset  string
		weights string
		set     []string
	)

	cmd := &cobra.Command{
		Use:   "adjust",
		Short: "Preview a partial weight edit with proportional rescaling",
		Example: `  rankctl adjust --preset balanced --set nameMatch=60
  rankctl adjust --weights 40,30,15,10,5 --set likes=0 --set buzz=25`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := resolveWeights(preset, weights)
			if err != nil {
				return err
			}
			patch, err := parsePatch(set)
			if err != nil {
				return err
			}
			if patch.Empty() {
				return fmt.Errorf("nothing to adjust: pass at least one --set key=value")
			}
			adjusted, err := base.Adjust(patch)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "before: %s\nafter:  %s\n", formatWeights(base), formatWeights(adjusted))
			return nil
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "named weight preset to start from")
	cmd.Flags().StringVar(&weights, "weights", "", "explicit weights to start from")
	cmd.Flags().StringArrayVar(&set, "set", nil, "weight to change, as key=value (repeatable)")

	return cmd
}
