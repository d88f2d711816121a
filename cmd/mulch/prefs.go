package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch/pkg/core"
)

var prefsCmd = &cobra.Command{
	Use:   "prefs",
	Short: "Show or change preferences",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openVault(false)
		defer closeVault(app)

		prefs := app.Store.State().Preferences
		fmt.Printf("theme:           %s\n", prefs.Theme)
		fmt.Printf("density:         %s\n", prefs.Density)
		fmt.Printf("tag-filter-mode: %s\n", prefs.TagFilterMode)
	},
}

var prefsSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a preference",
	Long: `Set a preference value. Supported keys:

  theme            light | dark | system
  density          comfortable | compact
  tag-filter-mode  ANY | ALL`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		key, value := args[0], args[1]

		var changes core.PreferencesChanges
		switch key {
		case "theme":
			theme := core.Theme(value)
			changes.Theme = &theme
		case "density":
			density := core.Density(value)
			changes.Density = &density
		case "tag-filter-mode":
			mode := core.TagFilterMode(value)
			changes.TagFilterMode = &mode
		default:
			fatal("Error setting preference", fmt.Errorf("unknown key %q", key))
		}

		candidate := core.DefaultPreferences()
		if changes.Theme != nil {
			candidate.Theme = *changes.Theme
		}
		if changes.Density != nil {
			candidate.Density = *changes.Density
		}
		if changes.TagFilterMode != nil {
			candidate.TagFilterMode = *changes.TagFilterMode
		}
		if !core.ValidPreferences(candidate) {
			fatal("Error setting preference", fmt.Errorf("invalid value %q for %s", value, key))
		}

		app := openVault(false)
		defer closeVault(app)

		app.Store.Dispatch(core.UpdatePreferences{Changes: changes})
	},
}

func init() {
	rootCmd.AddCommand(prefsCmd)
	prefsCmd.AddCommand(prefsSetCmd)
}
