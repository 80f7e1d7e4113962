// Package history implements the history subcommands over the check
// database: past runs and their verdicts.
package history

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	dbpkg "github.com/dtnitsch/linkcheck/pkg/db"
)

func RunsAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("history-db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runs, err := database.ListRuns(c.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		fmt.Println("No runs found")
		return nil
	}

	fmt.Printf("%-6s %-20s %-8s %-8s %-8s %-10s %-8s\n",
		"ID", "Started", "Total", "OK", "Failed", "Excluded", "Cached")
	fmt.Println(strings.Repeat("-", 76))

	for _, r := range runs {
		fmt.Printf("%-6d %-20s %-8d %-8d %-8d %-10d %-8d\n",
			r.RunID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.Total,
			r.Successful,
			r.Failed,
			r.Excluded,
			r.Cached,
		)
	}

	fmt.Printf("\nTotal: %d runs\n", len(runs))
	fmt.Printf("\nTip: Use 'linkcheck history run <id>' to see verdicts\n")

	return nil
}

// RunAction shows the verdicts recorded under one run.
func RunAction(c *cli.Context) error {
	database, err := dbpkg.Open(c.String("history-db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	runID, err := getRunIDOrLatest(c, database)
	if err != nil {
		return err
	}

	checks, err := database.RunChecks(runID)
	if err != nil {
		return fmt.Errorf("failed to get run checks: %w", err)
	}

	if len(checks) == 0 {
		fmt.Printf("Run %d recorded no checks\n", runID)
		return nil
	}

	failedOnly := c.Bool("failed-only")
	shown := 0
	for _, check := range checks {
		if failedOnly && check.Status != "error" && check.Status != "timeout" {
			continue
		}
		shown++
		if check.Code > 0 {
			fmt.Printf("[%s %d] %s (%s)\n", check.Status, check.Code, check.URL, check.Source)
		} else if check.Error != "" {
			fmt.Printf("[%s: %s] %s (%s)\n", check.Status, check.Error, check.URL, check.Source)
		} else {
			fmt.Printf("[%s] %s (%s)\n", check.Status, check.URL, check.Source)
		}
	}
	fmt.Printf("\nRun %d: %d verdicts shown of %d recorded\n", runID, shown, len(checks))
	return nil
}

// getRunIDOrLatest returns the run ID from args, or the latest run
// when none is given.
func getRunIDOrLatest(c *cli.Context, database *dbpkg.DB) (int64, error) {
	if c.NArg() == 0 {
		runs, err := database.ListRuns(1)
		if err != nil {
			return 0, fmt.Errorf("failed to get latest run: %w", err)
		}
		if len(runs) == 0 {
			return 0, fmt.Errorf("no runs found. Run 'linkcheck check --history ...' first")
		}
		return runs[0].RunID, nil
	}

	var runID int64
	if _, err := fmt.Sscanf(c.Args().First(), "%d", &runID); err != nil {
		return 0, fmt.Errorf("invalid run ID: %s", c.Args().First())
	}
	return runID, nil
}
