package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch/pkg/core"
)

var (
	tagsJSON     bool
	tagAddColor  string
	tagEditName  string
	tagEditColor string
)

var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage tags",
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openVault(false)
		defer closeVault(app)

		state := app.Store.State()

		if tagsJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(state.Tags); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, t := range state.Tags {
			count := 0
			for _, n := range state.Notes {
				if !n.Deleted() && n.HasTag(t.ID) {
					count++
				}
			}
			color := ""
			if t.Color != "" {
				color = "  " + t.Color
			}
			fmt.Printf("%.8s  %s (%d)%s\n", t.ID, t.Name, count, color)
		}
	},
}

var tagsAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a tag",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openVault(false)
		defer closeVault(app)

		state := app.Store.Dispatch(core.AddTag{Name: args[0], Color: tagAddColor})
		fmt.Println(state.Tags[len(state.Tags)-1].ID)
	},
}

var tagsEditCmd = &cobra.Command{
	Use:   "edit <tag>",
	Short: "Rename or recolor a tag",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openVault(false)
		defer closeVault(app)

		tag, err := findTag(app.Store.State(), args[0])
		if err != nil {
			fatal("Error finding tag", err)
		}

		var changes core.TagChanges
		if cmd.Flags().Changed("name") {
			changes.Name = &tagEditName
		}
		if cmd.Flags().Changed("color") {
			changes.Color = &tagEditColor
		}
		app.Store.Dispatch(core.UpdateTag{ID: tag.ID, Changes: changes})
	},
}

var tagsRmCmd = &cobra.Command{
	Use:   "rm <tag>",
	Short: "Delete a tag and detach it from every note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openVault(false)
		defer closeVault(app)

		tag, err := findTag(app.Store.State(), args[0])
		if err != nil {
			fatal("Error finding tag", err)
		}
		app.Store.Dispatch(core.DeleteTag{ID: tag.ID})
	},
}

func init() {
	rootCmd.AddCommand(tagsCmd)
	tagsCmd.AddCommand(tagsListCmd)
	tagsCmd.AddCommand(tagsAddCmd)
	tagsCmd.AddCommand(tagsEditCmd)
	tagsCmd.AddCommand(tagsRmCmd)

	tagsListCmd.Flags().BoolVar(&tagsJSON, "json", false, "Output in JSON format")
	tagsAddCmd.Flags().StringVar(&tagAddColor, "color", "", "Tag color")
	tagsEditCmd.Flags().StringVar(&tagEditName, "name", "", "New name")
	tagsEditCmd.Flags().StringVar(&tagEditColor, "color", "", "New color")
}
