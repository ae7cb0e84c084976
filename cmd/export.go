package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/billexact/billexact/internal/ledes"
	"github.com/billexact/billexact/internal/storage"
	"github.com/billexact/billexact/internal/timecalc"
)

var (
	exportFrom        string
	exportTo          string
	exportMatter      string
	exportNumber      string
	exportDescription string
	exportOutput      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a LEDES 1998B invoice for a matter",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Billing start date (YYYY-MM-DD); defaults to Monday of this week")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Billing end date (YYYY-MM-DD); defaults to Sunday of this week")
	exportCmd.Flags().StringVar(&exportMatter, "matter", "", "Client matter ID to invoice (required)")
	exportCmd.Flags().StringVar(&exportNumber, "number", "", "Invoice number; generated when empty")
	exportCmd.Flags().StringVar(&exportDescription, "description", "", "Invoice description; defaults to the matter description")
	exportCmd.Flags().StringVar(&exportOutput, "output", "", "Write to this file instead of stdout")
	_ = exportCmd.MarkFlagRequired("matter")
}

func runExport(cmd *cobra.Command, args []string) error {
	from, to, err := rangeFlags(exportFrom, exportTo)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	store := openStore()

	matter, err := store.Matter(exportMatter)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	entries, err := store.EntriesBetween(from, to, storage.EntryFilter{ClientMatterID: exportMatter})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stderr, "no entries for matter %s in %s → %s\n",
			exportMatter, from.Format("2006-01-02"), to.Format("2006-01-02"))
		os.Exit(1)
	}
	timekeepers, err := store.Timekeepers()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	number := exportNumber
	if number == "" {
		number = timecalc.InvoiceNumber(time.Now())
	}
	inv := ledes.Invoice{
		Number:      number,
		Description: exportDescription,
		Start:       from,
		End:         to,
		Matter:      matter,
	}

	lines, err := ledes.BuildLines(inv, entries, timekeepers)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	out := os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		defer f.Close()
		out = f
	}

	if err := ledes.Write(out, lines); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if exportOutput != "" {
		fmt.Printf("Wrote %d lines to %s (invoice %s)\n", len(lines), exportOutput, number)
	}
	return nil
}
