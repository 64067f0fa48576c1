package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agenda23/insightdash/internal/cities"
	"github.com/agenda23/insightdash/internal/settings"
	"github.com/spf13/cobra"
)

var setCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings",
}

var setShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print current settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		s := a.settings.Settings()
		fmt.Printf("auto-update:  %v\n", s.AutoUpdate)
		fmt.Printf("intervals:    market %dm / weather %dm / news %dm\n",
			s.UpdateInterval.Market, s.UpdateInterval.Weather, s.UpdateInterval.News)
		fmt.Printf("location:     %s %s (%.4f, %.4f)\n",
			s.Location.Prefecture, s.Location.CityName, s.Location.Latitude, s.Location.Longitude)
		fmt.Printf("language:     %s\n", s.Language)
		fmt.Printf("currency:     %s\n", s.Currency)
		fmt.Printf("widget order: %s\n", strings.Join(s.WidgetOrder, ", "))
		fmt.Printf("theme:        %s\n", a.settings.Theme())

		fmt.Println("\napi keys:")
		for service, key := range a.settings.APIKeys() {
			state := "unset"
			if key != "" {
				state = "set"
			}
			fmt.Printf("  %-12s %s\n", service, state)
		}
		return nil
	},
}

var setIntervalCmd = &cobra.Command{
	Use:   "interval <market|weather|news> <minutes>",
	Short: "Set one domain's auto-update interval",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		minutes, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid minutes value %q", args[1])
		}
		if !settings.ValidateUpdateInterval(minutes) {
			return fmt.Errorf("interval must be between %d and %d minutes",
				settings.MinInterval, settings.MaxInterval)
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !a.settings.SetUpdateInterval(args[0], minutes) {
			return fmt.Errorf("unknown domain %q (valid: market, weather, news)", args[0])
		}
		fmt.Printf("%s interval set to %d minute(s).\n", args[0], minutes)
		return nil
	},
}

var setAutoUpdateCmd = &cobra.Command{
	Use:   "auto-update <on|off>",
	Short: "Enable or disable timer-driven refreshes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var enabled bool
		switch args[0] {
		case "on":
			enabled = true
		case "off":
			enabled = false
		default:
			return fmt.Errorf("expected on or off, got %q", args[0])
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		a.settings.SetAutoUpdate(enabled)
		fmt.Printf("auto-update %s.\n", args[0])
		return nil
	},
}

var flagLocationList string

var setLocationCmd = &cobra.Command{
	Use:   "location <city>",
	Short: "Set the weather location to a known city",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagLocationList != "" {
			for _, c := range cities.ByRegion(flagLocationList) {
				fmt.Printf("%s (%s)\n", c.Name, c.Prefecture)
			}
			return nil
		}
		if len(args) == 0 {
			return fmt.Errorf("city name required (list candidates with --list <region>)")
		}

		city, ok := cities.Find(args[0])
		if !ok {
			return fmt.Errorf("unknown city %q", args[0])
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !a.settings.SetLocation(city.Name, city.Prefecture, city.Latitude, city.Longitude) {
			return fmt.Errorf("saving location failed")
		}
		fmt.Printf("location set to %s %s.\n", city.Prefecture, city.Name)
		return nil
	},
}

var setKeyCmd = &cobra.Command{
	Use:   "key <service> <value>",
	Short: "Store an API credential",
	Long: `Store the API key for a provider slot. Known slots: newsApi, gnews,
twelveData, openMeteo. Pass an empty value to clear a key.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if _, known := a.settings.APIKeys()[args[0]]; !known {
			return fmt.Errorf("unknown service %q", args[0])
		}
		a.settings.SetAPIKey(args[0], args[1])
		fmt.Printf("%s key saved.\n", args[0])
		return nil
	},
}

var setOrderCmd = &cobra.Command{
	Use:   "order <widget>...",
	Short: "Set the widget display order",
	Long: `Set the order the dashboard widgets render in. Known widgets: market,
weather, news, todo. Widgets left out are not rendered.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		order, err := parseWidgetOrder(args)
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if !a.settings.SetWidgetOrder(order) {
			return fmt.Errorf("saving widget order failed")
		}
		fmt.Printf("widget order: %s\n", strings.Join(order, ", "))
		return nil
	},
}

// parseWidgetOrder validates a widget list: known names only, no repeats.
func parseWidgetOrder(args []string) ([]string, error) {
	known := map[string]bool{"market": true, "weather": true, "news": true, "todo": true}
	seen := map[string]bool{}
	for _, w := range args {
		if !known[w] {
			return nil, fmt.Errorf("unknown widget %q (valid: market, weather, news, todo)", w)
		}
		if seen[w] {
			return nil, fmt.Errorf("widget %q listed twice", w)
		}
		seen[w] = true
	}
	return args, nil
}

var setThemeCmd = &cobra.Command{
	Use:   "theme [light|dark]",
	Short: "Set the theme, or toggle it with no argument",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.close()

		if len(args) == 0 {
			fmt.Printf("theme: %s\n", a.settings.ToggleTheme())
			return nil
		}
		if args[0] != "light" && args[0] != "dark" {
			return fmt.Errorf("expected light or dark, got %q", args[0])
		}
		a.settings.SaveTheme(args[0])
		fmt.Printf("theme: %s\n", args[0])
		return nil
	},
}

func init() {
	setLocationCmd.Flags().StringVar(&flagLocationList, "list", "", "list known cities in a region (e.g. 関東)")

	setCmd.AddCommand(setShowCmd)
	setCmd.AddCommand(setIntervalCmd)
	setCmd.AddCommand(setAutoUpdateCmd)
	setCmd.AddCommand(setLocationCmd)
	setCmd.AddCommand(setKeyCmd)
	setCmd.AddCommand(setOrderCmd)
	setCmd.AddCommand(setThemeCmd)
}
