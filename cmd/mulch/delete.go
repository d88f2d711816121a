package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/mulch/pkg/core"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Move a note to the trash",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openVault(false)
		defer closeVault(app)

		note, err := findNote(app.Store.State(), args[0])
		if err != nil {
			fatal("Error finding note", err)
		}
		app.Store.Dispatch(core.DeleteNote{ID: note.ID})
	},
}

var restoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Restore a note from the trash",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		app := openVault(false)
		defer closeVault(app)

		note, err := findNote(app.Store.State(), args[0])
		if err != nil {
			fatal("Error finding note", err)
		}
		app.Store.Dispatch(core.RestoreNote{ID: note.ID})
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(restoreCmd)
}
