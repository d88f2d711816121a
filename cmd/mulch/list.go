package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch/pkg/core"
)

var (
	listJSON     bool
	listSearch   string
	listTags     []string
	listAllTags  bool
	listArchived bool
	listUntagged bool
	listPinned   bool
	listSort     string
	listDesc     bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notes in the vault",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openVault(false)
		defer closeVault(app)

		state := app.Store.State()

		var tagIDs []string
		for _, name := range listTags {
			tag, err := findTag(state, name)
			if err != nil {
				fatal("Error resolving tag", err)
			}
			tagIDs = append(tagIDs, tag.ID)
		}

		sortBy := core.SortByUpdatedAt
		switch listSort {
		case "", "updated":
			sortBy = core.SortByUpdatedAt
		case "created":
			sortBy = core.SortByCreatedAt
		case "title":
			sortBy = core.SortByTitle
		default:
			fatal("Error parsing flags", fmt.Errorf("unknown sort field %q", listSort))
		}
		dir := core.SortAsc
		if listDesc {
			dir = core.SortDesc
		}

		if listAllTags {
			mode := core.TagFilterAll
			app.Store.Dispatch(core.UpdatePreferences{Changes: core.PreferencesChanges{TagFilterMode: &mode}})
		}
		state = app.Store.Dispatch(core.UpdateFilters{Changes: core.FilterChanges{
			Search:       &listSearch,
			Tags:         tagIDs,
			ShowArchived: &listArchived,
			ShowUntagged: &listUntagged,
			ShowPinned:   &listPinned,
			SortBy:       &sortBy,
			SortDir:      &dir,
		}})

		notes := core.FilteredNotes(state)

		if listJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(notes); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		for _, n := range notes {
			var marks []string
			if n.Pinned {
				marks = append(marks, "pinned")
			}
			if n.Archived {
				marks = append(marks, "archived")
			}
			suffix := ""
			if len(marks) > 0 {
				suffix = " [" + strings.Join(marks, ",") + "]"
			}

			var names []string
			for _, t := range core.TagsForNote(state, n.ID) {
				names = append(names, t.Name)
			}
			tagInfo := ""
			if len(names) > 0 {
				tagInfo = "  #" + strings.Join(names, " #")
			}

			fmt.Printf("%.8s  %s%s%s\n", n.ID, n.Title, suffix, tagInfo)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().StringVarP(&listSearch, "search", "s", "", "Case-insensitive substring search over title and body")
	listCmd.Flags().StringSliceVar(&listTags, "tag", nil, "Filter by tag (repeatable)")
	listCmd.Flags().BoolVar(&listAllTags, "all-tags", false, "Require every filter tag instead of any")
	listCmd.Flags().BoolVar(&listArchived, "archived", false, "Include archived notes")
	listCmd.Flags().BoolVar(&listUntagged, "untagged", false, "Only notes without tags")
	listCmd.Flags().BoolVar(&listPinned, "pinned-first", false, "Float pinned notes to the top")
	listCmd.Flags().StringVar(&listSort, "sort", "updated", "Sort field: updated, created, title")
	listCmd.Flags().BoolVar(&listDesc, "desc", false, "Sort descending")
}
