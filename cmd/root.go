package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/billexact/billexact/internal/config"
	"github.com/billexact/billexact/internal/storage"
)

var cfg config.Config

var rootCmd = &cobra.Command{
	Use:   "billexact",
	Short: "BillExact – legal time tracking and billing compliance",
	Long: `billexact captures billable time from desktop activity and calendars,
categorizes it with UTBMS codes, lints narratives against billing guidelines,
and exports LEDES 1998B invoices. Data lives in a local SQLite database under
~/.billexact/.`,
}

// Execute is the entry point called from main.
func Execute() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore opens the configured database, exiting on failure the way every
// storage-touching command does.
func openStore() *storage.Store {
	path := cfg.DBPath
	if path == "" {
		p, err := storage.DefaultPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		path = p
	}
	db, err := storage.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	return storage.NewStore(db)
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(categorizeCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(outlookCmd)
	rootCmd.AddCommand(seedCmd)
}
