package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/mulch/pkg/core"
)

// setNoteFlag dispatches a single-field note update for the pin/archive
// toggle commands.
func setNoteFlag(arg string, apply func(*core.NoteChanges)) {
	app := openVault(false)
	defer closeVault(app)

	note, err := findNote(app.Store.State(), arg)
	if err != nil {
		fatal("Error finding note", err)
	}

	var changes core.NoteChanges
	apply(&changes)
	app.Store.Dispatch(core.UpdateNote{ID: note.ID, Changes: changes})
}

func boolPtr(v bool) *bool { return &v }

var pinCmd = &cobra.Command{
	Use:   "pin <id>",
	Short: "Pin a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setNoteFlag(args[0], func(c *core.NoteChanges) { c.Pinned = boolPtr(true) })
	},
}

var unpinCmd = &cobra.Command{
	Use:   "unpin <id>",
	Short: "Unpin a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setNoteFlag(args[0], func(c *core.NoteChanges) { c.Pinned = boolPtr(false) })
	},
}

var archiveCmd = &cobra.Command{
	Use:   "archive <id>",
	Short: "Archive a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setNoteFlag(args[0], func(c *core.NoteChanges) { c.Archived = boolPtr(true) })
	},
}

var unarchiveCmd = &cobra.Command{
	Use:   "unarchive <id>",
	Short: "Unarchive a note",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		setNoteFlag(args[0], func(c *core.NoteChanges) { c.Archived = boolPtr(false) })
	},
}

func init() {
	rootCmd.AddCommand(pinCmd)
	rootCmd.AddCommand(unpinCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(unarchiveCmd)
}
