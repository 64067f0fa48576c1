package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/agenda23/insightdash/internal/refresh"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the dashboard updating on the configured timers",
	Long: `Render the dashboard and keep it alive: each domain refreshes on its own
interval from settings (auto-update must be on). Ctrl-C exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		s := a.settings.Settings()
		if !s.AutoUpdate {
			return fmt.Errorf("auto-update is off; enable it with: insightdash set auto-update on")
		}

		view := a.orch.RefreshAll(context.Background())
		fmt.Print(renderView(a, view))

		sched := refresh.NewScheduler(a.orch, a.log)
		sched.OnTick(func(domain string) {
			a.log.Debug("timer refresh", "domain", domain)
			fmt.Print("\033[H\033[2J")
			fmt.Print(renderView(a, a.orch.View()))
		})
		sched.Reconfigure(s.UpdateInterval, s.AutoUpdate)
		defer sched.Stop()

		fmt.Printf("\nauto-update: market %dm / weather %dm / news %dm (Ctrl-C to quit)\n",
			s.UpdateInterval.Market, s.UpdateInterval.Weather, s.UpdateInterval.News)

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		return nil
	},
}
