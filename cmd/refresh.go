package cmd

import (
	"context"
	"fmt"

	"github.com/agenda23/insightdash/internal/cache"
	"github.com/spf13/cobra"
)

// runDashboard renders the dashboard from whatever is freshest: cached
// data inside the validity window, live fetches otherwise.
func runDashboard(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()

	view := a.orch.RefreshAll(context.Background())
	fmt.Print(renderView(a, view))
	return nil
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Force a refresh of every domain, bypassing the cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		for _, key := range []string{cache.KeyMarket, cache.KeyWeather, cache.KeyNews} {
			a.cache.Clear(key)
		}

		view := a.orch.RefreshAll(context.Background())
		fmt.Print(renderView(a, view))
		return nil
	},
}
