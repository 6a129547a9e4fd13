package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/Ranker/internal/sortconfig"
)

func newConfigsCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "configs",
		Short: "Manage sorting configs on a ranker server",
	}

	cmd.AddCommand(
		newConfigsListCmd(opts),
		newConfigsActiveCmd(opts),
		newConfigsSaveCmd(opts),
		newConfigsApplyCmd(opts),
		newConfigsRevertCmd(opts),
		newConfigsDeleteCmd(opts),
	)
	return cmd
}

func newConfigsListCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sorting configs, default first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			configs, err := opts.client().ListConfigs(ctx)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ACTIVE\tID\tNAME\tWEIGHTS")
			for _, c := range configs {
				mark := ""
				if c.IsActive {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", mark, c.ID, c.Name, formatWeights(c.Weights))
			}
			return tw.Flush()
		},
	}
}

func newConfigsActiveCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "active",
		Short: "Show the active sorting config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			c, err := opts.client().ActiveConfig(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n%s\n", c.Name, c.ID, formatWeights(c.Weights))
			return nil
		},
	}
}

func newConfigsSaveCmd(opts *globalOptions) *cobra.Command {
	var (
		name        string
		description string
		preset      string
		weights     string
		apply       bool
	)

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Store a new sorting config",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := resolveWeights(preset, weights)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			client := opts.client()
			saved, err := client.SaveConfig(ctx, sortconfig.SaveRequest{Name: name, Description: description, Weights: w})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%s)\n", saved.Name, saved.ID)

			if apply {
				ok, err := client.ApplyConfig(ctx, saved.ID)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("config %s vanished before it could be applied", saved.ID)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "applied")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "config name (required)")
	cmd.Flags().StringVar(&description, "description", "", "free text description")
	cmd.Flags().StringVar(&preset, "preset", "", "named weight preset")
	cmd.Flags().StringVar(&weights, "weights", "", "explicit weights")
	cmd.Flags().BoolVar(&apply, "apply", false, "activate the config after saving")
	_ = cmd.MarkFlagRequired("name")
	cmd.MarkFlagsMutuallyExclusive("preset", "weights")

	return cmd
}

func newConfigsApplyCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "apply <id>",
		Short: "Make a config the active one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			ok, err := opts.client().ApplyConfig(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("no config with id %s", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %s\n", id)
			return nil
		},
	}
}

func newConfigsRevertCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "revert",
		Short: "Make the factory default config active again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			if err := opts.client().RevertToDefault(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "reverted to default")
			return nil
		},
	}
}

func newConfigsDeleteCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an inactive config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid id: %w", err)
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), opts.timeout)
			defer cancel()

			ok, err := opts.client().DeleteConfig(ctx, id)
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("config %s was not deleted: it is unknown, active or the default", id)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
}
