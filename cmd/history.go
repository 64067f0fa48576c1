package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenda23/insightdash/internal/config"
	"github.com/agenda23/insightdash/internal/market"
	"github.com/spf13/cobra"
)

var flagHistoryDays int

var historyCmd = &cobra.Command{
	Use:   "history <instrument>",
	Short: "Show a daily price series for an instrument",
	Long: `Print the recent daily closes for one instrument as a bar chart. The
argument is an instrument key from config (usdJpy, btcUsd, ...) or a raw
provider symbol. Without a credential a placeholder series is shown.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		symbol := resolveSymbol(a.cfg.Market.Instruments, args[0])
		points := a.market.History(context.Background(), symbol, "1day", flagHistoryDays)
		fmt.Print(renderHistory(symbol, points))
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&flagHistoryDays, "days", 30, "number of daily points")
}

// resolveSymbol maps an instrument key or label from config to its
// provider symbol; anything unrecognized passes through as-is.
func resolveSymbol(instruments []config.Instrument, arg string) string {
	for _, inst := range instruments {
		if inst.Key == arg || inst.Label == arg || inst.Symbol == arg {
			return inst.Symbol
		}
	}
	return arg
}

const historyBarWidth = 40

// renderHistory draws one bar per point, scaled between the series min
// and max.
func renderHistory(symbol string, points []market.Point) string {
	if len(points) == 0 {
		return "No data.\n"
	}

	lo, hi := points[0].Value, points[0].Value
	for _, p := range points {
		if p.Value < lo {
			lo = p.Value
		}
		if p.Value > hi {
			hi = p.Value
		}
	}
	span := hi - lo

	var b strings.Builder
	b.WriteString(titleStyle.Render(symbol) +
		dimStyle.Render(fmt.Sprintf(" %d日分", len(points))) + "\n")
	for _, p := range points {
		width := historyBarWidth
		if span > 0 {
			width = int((p.Value - lo) / span * historyBarWidth)
		}
		b.WriteString(fmt.Sprintf("  %s %12.2f %s\n",
			labelStyle.Render(p.Date), p.Value, upStyle.Render(strings.Repeat("▇", width))))
	}
	return b.String()
}
