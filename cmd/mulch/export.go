package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	exportOut  string
	importFrom string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the whole vault as a single JSON envelope",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		app := openVault(false)
		defer closeVault(app)

		data, err := app.Export()
		if err != nil {
			fatal("Error exporting vault", err)
		}

		if exportOut == "" || exportOut == "-" {
			fmt.Println(string(data))
			return
		}
		if err := os.WriteFile(exportOut, data, 0644); err != nil {
			fatal("Error writing export file", err)
		}
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a JSON envelope, replacing the vault contents",
	Long: `Import reads a previously exported envelope and replaces every note,
tag and preference in the vault. The envelope is validated as a whole
before anything is written; a bad file leaves the vault untouched.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		var raw []byte
		var err error
		if importFrom == "" || importFrom == "-" {
			raw, err = io.ReadAll(os.Stdin)
		} else {
			raw, err = os.ReadFile(importFrom)
		}
		if err != nil {
			fatal("Error reading import data", err)
		}

		app := openVault(true)
		defer closeVault(app)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := app.Import(ctx, raw); err != nil {
			fatal("Error importing data", err)
		}

		state := app.Store.State()
		fmt.Printf("imported %d notes and %d tags\n", len(state.Notes), len(state.Tags))
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Write to file instead of stdout")
	importCmd.Flags().StringVarP(&importFrom, "file", "f", "", "Read from file instead of stdin")
}
