package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"finch/internal/storage"
)

var seedCmd = &cobra.Command{
	Use:   "seed <fixture.yaml>",
	Short: "Load teams and users from a YAML fixture",
	Long: `Load teams and users from a YAML fixture in a single transaction. Existing rows with the
same team number or user id are updated.

Fixture format:
  teams:
    - {number: 1, name: Falcons}
  users:
    - {id: 1, name: Ada, team: 1}`,
	Args: cobra.ExactArgs(1),
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()

	fixture, err := storage.DecodeFixture(f)
	if err != nil {
		return err
	}

	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	logger, cleanup, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	db, err := storage.Open(ctx, cfg.DBURL, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		return err
	}
	if err := db.Seed(ctx, fixture); err != nil {
		return err
	}

	counts, err := db.CountMembers(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Seeded %d teams and %d users\n", len(fixture.Teams), len(fixture.Users))

	numbers := make([]int64, 0, len(counts))
	for n := range counts {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	for _, n := range numbers {
		fmt.Fprintf(out, "  team %d: %d members\n", n, counts[n])
	}
	return nil
}
