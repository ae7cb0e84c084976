package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/billexact/billexact/internal/storage"
	"github.com/billexact/billexact/internal/timecalc"
)

var (
	reportFrom   string
	reportTo     string
	reportFormat string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show billed hours aggregated by matter",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportFrom, "from", "", "Start date (YYYY-MM-DD); defaults to Monday of this week")
	reportCmd.Flags().StringVar(&reportTo, "to", "", "End date (YYYY-MM-DD); defaults to Sunday of this week")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "Output format: md, csv, json")
}

func runReport(cmd *cobra.Command, args []string) error {
	from, to, err := rangeFlags(reportFrom, reportTo)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	store := openStore()
	entries, err := store.EntriesBetween(from, to, storage.EntryFilter{})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Aggregate by matter.
	totals := map[string]float64{}
	var order []string
	for _, e := range entries {
		matter := e.MatterID
		if matter == "" {
			matter = "(unbound)"
		}
		if _, seen := totals[matter]; !seen {
			order = append(order, matter)
		}
		totals[matter] += e.DurationHours
	}
	sort.Strings(order)

	var grandTotal float64
	for _, h := range totals {
		grandTotal += h
	}

	label := fmt.Sprintf("%s → %s", from.Format("2006-01-02"), to.Format("2006-01-02"))

	switch reportFormat {
	case "csv":
		fmt.Println("matter,hours")
		for _, m := range order {
			fmt.Printf("%s,%.2f\n", m, totals[m])
		}
	case "json":
		fmt.Println("{")
		fmt.Printf("  \"range\": %q,\n", label)
		fmt.Println("  \"matters\": [")
		for i, m := range order {
			comma := ","
			if i == len(order)-1 {
				comma = ""
			}
			fmt.Printf("    {\"matter\": %q, \"hours\": %.2f}%s\n", m, totals[m], comma)
		}
		fmt.Println("  ],")
		fmt.Printf("  \"total_hours\": %.2f\n", grandTotal)
		fmt.Println("}")
	default: // md
		fmt.Println(label)
		fmt.Println("--------------------------------")
		for _, m := range order {
			fmt.Printf("%-20s%s\n", m, timecalc.FormatHours(totals[m]))
		}
		fmt.Println("--------------------------------")
		fmt.Printf("%-20s%s\n", "Total", timecalc.FormatHours(grandTotal))
	}

	return nil
}
