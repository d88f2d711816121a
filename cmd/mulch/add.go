package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch/pkg/core"
)

var (
	addBody  string
	addTags  []string
	addStdin bool
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openVault(true)
		defer closeVault(app)

		body := addBody
		if addStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fatal("Error reading stdin", err)
			}
			body = string(data)
		}

		// Resolve tag names, creating missing ones on the fly.
		var tagIDs []string
		for _, name := range addTags {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			tag, err := findTag(app.Store.State(), name)
			if err != nil {
				state := app.Store.Dispatch(core.AddTag{Name: name})
				tag = state.Tags[len(state.Tags)-1]
			}
			tagIDs = append(tagIDs, tag.ID)
		}

		state := app.Store.Dispatch(core.AddNote{
			Title:  args[0],
			Body:   body,
			TagIDs: tagIDs,
		})

		fmt.Println(state.Notes[0].ID)
	},
}

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVarP(&addBody, "body", "b", "", "Note body")
	addCmd.Flags().StringSliceVar(&addTags, "tag", nil, "Tag name (repeatable; created if missing)")
	addCmd.Flags().BoolVar(&addStdin, "stdin", false, "Read body from stdin")
}
