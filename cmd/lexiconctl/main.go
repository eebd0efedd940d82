// lexiconctl manages the filler-word lexicon shared with the live gate.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"voice-filler-gate/internal/admin"
	"voice-filler-gate/internal/lexicon"
	"voice-filler-gate/internal/observability/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	dbPath := lexicon.DefaultPath

	cmd := &cobra.Command{
		Use:           "lexiconctl",
		Short:         "Manage the filler-word lexicon used by the filler gate",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Keep the interactive menu free of log noise.
			logging.Init(logging.Config{Level: "warn", Format: "console"})

			store, err := lexicon.Open(dbPath)
			if err != nil {
				return fmt.Errorf("open lexicon at %s: %w", dbPath, err)
			}
			defer store.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := store.Initialize(ctx); err != nil {
				return fmt.Errorf("initialize lexicon: %w", err)
			}

			fmt.Printf("Filler words lexicon: %s\n", dbPath)

			menu := admin.NewMenu(store, cmd.InOrStdin(), cmd.OutOrStdout())
			done := make(chan error, 1)
			go func() { done <- menu.Run(ctx) }()

			select {
			case <-ctx.Done():
				// Each store operation is atomic, so an interrupt cannot
				// leave a partial write behind.
				fmt.Println("\nInterrupted. Exiting...")
				return nil
			case err := <-done:
				return err
			}
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", dbPath, "Path to the lexicon database file")
	return cmd
}
