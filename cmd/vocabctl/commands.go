package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/phrazzld/vocab-api/internal/platform/migrations"
	"github.com/spf13/cobra"
)

// defaultAuditSample matches the HTTP audit default.
const defaultAuditSample = 100

type envRunner func(run func(cmd *cobra.Command, args []string, env *environment) error) func(*cobra.Command, []string) error

func newPurgeCmd(withEnv envRunner) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete durable cache entries",
		Long: `Delete durable validation cache entries. Without --older-than every entry
is removed. The memory tier and request counters of the running server are not affected.`,
		Args: cobra.NoArgs,
	}
	cmd.Flags().DurationVar(&olderThan, "older-than", 0, "Only delete entries created more than this long ago (e.g. 24h)")

	cmd.RunE = withEnv(func(cmd *cobra.Command, _ []string, env *environment) error {
		var cutoff *time.Duration
		if cmd.Flags().Changed("older-than") {
			cutoff = &olderThan
		}
		removed, err := env.cache.Purge(cmd.Context(), cutoff)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "removed %d cache entries\n", removed)
		return nil
	})
	return cmd
}

func newAuditCmd(withEnv envRunner) *cobra.Command {
	var sample int

	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Score a sample of cached verdicts",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().IntVar(&sample, "sample", defaultAuditSample, "Number of entries to sample")

	cmd.RunE = withEnv(func(cmd *cobra.Command, _ []string, env *environment) error {
		report, err := env.cache.Audit(cmd.Context(), sample)
		if err != nil {
			return err
		}
		return printJSON(cmd, report)
	})
	return cmd
}

func newMigrateCmd(withEnv envRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:       "migrate [up|down|status|reset|version]",
		Short:     "Manage database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{migrations.CommandUp, migrations.CommandDown, migrations.CommandStatus, migrations.CommandReset, migrations.CommandVersion},
	}

	cmd.RunE = withEnv(func(cmd *cobra.Command, args []string, env *environment) error {
		if err := migrations.Run(cmd.Context(), env.db, env.dialect, args[0], env.logger); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "migrate %s completed\n", args[0])
		return nil
	})
	return cmd
}

func newStatsCmd(withEnv envRunner) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show the durable cache size",
		Args:  cobra.NoArgs,
	}

	cmd.RunE = withEnv(func(cmd *cobra.Command, _ []string, env *environment) error {
		stats, err := env.cache.Stats(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd, map[string]int64{"durable_cache_size": stats.DurableCacheSize})
	})
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
