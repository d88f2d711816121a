package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/mulch"
	"github.com/aretw0/mulch/pkg/core"
)

var (
	verbose   bool
	vaultPath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mulch",
	Short: "An offline-first notes keeper backed by a local JSON vault",
	Long: `Mulch keeps your notes in a local vault directory as plain JSON.
Notes, tags and preferences are persisted with debounced writes, versioned
backups and quota recovery; the whole data set exports to a single envelope.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&vaultPath, "vault", "", "Vault directory (default: nearest vault root, else cwd)")
}

// openVault assembles the app for the selected vault. Terminal storage
// failures are reported on stderr with export-and-clear guidance.
func openVault(autoInit bool) *mulch.App {
	path := vaultPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			fatal("Error getting working directory", err)
		}
		if root, err := mulch.FindVaultRoot(wd); err == nil {
			path = root
		} else {
			path = wd
		}
	}

	app, err := mulch.Open(path,
		mulch.WithAutoInit(autoInit),
		mulch.WithLogger(slog.Default()),
	)
	if err != nil {
		fatal("Error opening vault", err)
	}

	app.Signals.Subscribe(func(sig core.Signal) {
		if sig.Kind != core.SignalStorageError {
			return
		}
		fmt.Fprintf(os.Stderr, "storage error on %s: %v\n%s\n", sig.Key, sig.Err, sig.Message)
	})

	return app
}

// closeVault flushes pending writes before the process exits.
func closeVault(app *mulch.App) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.Close(ctx); err != nil {
		fatal("Error saving vault", err)
	}
}

// findNote resolves a note by full ID or unique ID prefix.
func findNote(state core.State, arg string) (core.Note, error) {
	var matches []core.Note
	for _, n := range state.Notes {
		if n.ID == arg {
			return n, nil
		}
		if strings.HasPrefix(n.ID, arg) {
			matches = append(matches, n)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return core.Note{}, fmt.Errorf("no note matches %q", arg)
	default:
		return core.Note{}, fmt.Errorf("%q is ambiguous (%d matches)", arg, len(matches))
	}
}

// findTag resolves a tag by ID, ID prefix, or exact name (case-insensitive).
func findTag(state core.State, arg string) (core.Tag, error) {
	var matches []core.Tag
	for _, t := range state.Tags {
		if t.ID == arg {
			return t, nil
		}
		if strings.EqualFold(t.Name, arg) || strings.HasPrefix(t.ID, arg) {
			matches = append(matches, t)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return core.Tag{}, fmt.Errorf("no tag matches %q", arg)
	default:
		return core.Tag{}, fmt.Errorf("%q is ambiguous (%d matches)", arg, len(matches))
	}
}
