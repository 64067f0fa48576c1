package cmd

import (
	"fmt"
	"sort"

	"github.com/agenda23/insightdash/internal/cache"
	"github.com/agenda23/insightdash/internal/config"
	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the local data cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache and store statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		sizes, total, err := a.store.Usage()
		if err != nil {
			return fmt.Errorf("reading store usage: %w", err)
		}

		fmt.Printf("Store: %s\n", config.StorePath())
		fmt.Printf("Total: %s in %d key(s)\n\n", formatBytes(total), len(sizes))

		keys := make([]string, 0, len(sizes))
		for k := range sizes {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		cacheKeys := make(map[string]bool, len(cache.Keys))
		for _, k := range cache.Keys {
			cacheKeys[k] = true
		}
		for _, k := range keys {
			line := fmt.Sprintf("%-16s %10s", k, formatBytes(sizes[k]))
			if cacheKeys[k] {
				if age, ok := a.cache.Age(k); ok {
					if left := cache.Window - age; left > 0 {
						line += fmt.Sprintf("  (age %s, valid for %s)", formatAge(age), formatAge(left))
					} else {
						line += fmt.Sprintf("  (age %s, expired)", formatAge(age))
					}
				}
			}
			fmt.Println(line)
		}
		return nil
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [key]",
	Short: "Clear one cached domain, or all of them",
	Long: `With no argument every cache entry is removed. With a key argument
(market, weather or news) only that domain's entry is removed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if len(args) == 0 {
			a.cache.ClearAll()
			fmt.Println("Cache cleared.")
			return nil
		}

		key, ok := map[string]string{
			"market":  cache.KeyMarket,
			"weather": cache.KeyWeather,
			"news":    cache.KeyNews,
		}[args[0]]
		if !ok {
			return fmt.Errorf("unknown cache key %q (valid: market, weather, news)", args[0])
		}
		a.cache.Clear(key)
		fmt.Printf("Cleared %s cache.\n", args[0])
		return nil
	},
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func formatBytes(b int64) string {
	switch {
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}
