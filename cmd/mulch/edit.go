package main

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch/pkg/core"
)

var (
	editTitle string
	editBody  string
	editTags  []string
	editStdin bool
)

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a note's title, body or tags",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openVault(false)
		defer closeVault(app)

		state := app.Store.State()
		note, err := findNote(state, args[0])
		if err != nil {
			fatal("Error finding note", err)
		}

		var changes core.NoteChanges
		if cmd.Flags().Changed("title") {
			changes.Title = &editTitle
		}
		if cmd.Flags().Changed("body") {
			changes.Body = &editBody
		}
		if editStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				fatal("Error reading stdin", err)
			}
			body := string(data)
			changes.Body = &body
		}
		if cmd.Flags().Changed("tag") {
			tagIDs := []string{}
			for _, name := range editTags {
				name = strings.TrimSpace(name)
				if name == "" {
					continue
				}
				tag, err := findTag(app.Store.State(), name)
				if err != nil {
					next := app.Store.Dispatch(core.AddTag{Name: name})
					tag = next.Tags[len(next.Tags)-1]
				}
				tagIDs = append(tagIDs, tag.ID)
			}
			changes.TagIDs = tagIDs
		}

		app.Store.Dispatch(core.UpdateNote{ID: note.ID, Changes: changes})
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	editCmd.Flags().StringVarP(&editBody, "body", "b", "", "New body")
	editCmd.Flags().StringSliceVar(&editTags, "tag", nil, "Replace tags (repeatable; created if missing)")
	editCmd.Flags().BoolVar(&editStdin, "stdin", false, "Read new body from stdin")
}
