package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch"
	"github.com/aretw0/mulch/internal/platform"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Initialize a new vault",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := vaultPath
		if len(args) > 0 {
			path = args[0]
		}
		if path == "" {
			wd, err := os.Getwd()
			if err != nil {
				fatal("Error getting working directory", err)
			}
			path = wd
		}

		app, err := mulch.Open(path, mulch.WithAutoInit(true))
		if err != nil {
			fatal("Error initializing vault", err)
		}
		closeVault(app)

		fmt.Printf("Initialized vault at %s (config in %s/)\n", path, platform.DefaultSystemDir)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
