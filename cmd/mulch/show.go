package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch/pkg/core"
)

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openVault(false)
		defer closeVault(app)

		state := app.Store.State()
		note, err := findNote(state, args[0])
		if err != nil {
			fatal("Error finding note", err)
		}

		if showJSON {
			encoder := json.NewEncoder(os.Stdout)
			encoder.SetIndent("", "  ")
			if err := encoder.Encode(note); err != nil {
				fatal("Error encoding JSON", err)
			}
			return
		}

		fmt.Printf("%s\n", note.Title)
		fmt.Printf("id:      %s\n", note.ID)
		fmt.Printf("created: %s\n", note.CreatedAt.Format(time.RFC3339))
		fmt.Printf("updated: %s\n", note.UpdatedAt.Format(time.RFC3339))
		if note.Deleted() {
			fmt.Printf("deleted: %s\n", note.DeletedAt.Format(time.RFC3339))
		}
		if note.Pinned {
			fmt.Println("pinned:  yes")
		}
		if note.Archived {
			fmt.Println("archived: yes")
		}

		var names []string
		for _, t := range core.TagsForNote(state, note.ID) {
			names = append(names, t.Name)
		}
		if len(names) > 0 {
			fmt.Printf("tags:    %s\n", strings.Join(names, ", "))
		}

		if note.Body != "" {
			fmt.Printf("\n%s\n", note.Body)
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output in JSON format")
}
