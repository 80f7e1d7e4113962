// Package cachecmd implements the cache subcommands over the
// persisted response-cache snapshot.
package cachecmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/urfave/cli/v2"

	cachepkg "github.com/dtnitsch/linkcheck/pkg/cache"
)

// ShowAction lists the entries in a cache snapshot.
func ShowAction(c *cli.Context) error {
	path := c.String("cache-file")
	if path == "" {
		return fmt.Errorf("no cache file given, use --cache-file")
	}

	responseCache := cachepkg.New()
	if err := responseCache.Load(path); err != nil {
		return fmt.Errorf("failed to load cache: %w", err)
	}

	entries := responseCache.Snapshot()
	if len(entries) == 0 {
		fmt.Println("Cache is empty")
		return nil
	}

	keys := make([]string, 0, len(entries))
	for key := range entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		entry := entries[key]
		verdict := "error"
		if entry.Status.OK {
			verdict = "ok"
		}
		fmt.Printf("%-8s %-6s %-20s %s\n",
			verdict,
			entry.Status.CSVField(),
			entry.CheckedAt.Format(time.RFC3339),
			key,
		)
	}
	fmt.Printf("\nTotal: %d entries\n", len(entries))
	return nil
}

// ClearAction removes the cache snapshot file.
func ClearAction(c *cli.Context) error {
	path := c.String("cache-file")
	if path == "" {
		return fmt.Errorf("no cache file given, use --cache-file")
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			fmt.Println("Cache already empty")
			return nil
		}
		return fmt.Errorf("failed to remove cache: %w", err)
	}
	fmt.Printf("Removed %s\n", path)
	return nil
}
