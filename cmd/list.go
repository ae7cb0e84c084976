package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/billexact/billexact/internal/model"
	"github.com/billexact/billexact/internal/storage"
	"github.com/billexact/billexact/internal/timecalc"
)

var (
	listToday  bool
	listWeek   bool
	listFrom   string
	listTo     string
	listClient string
	listMatter string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List time entries",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listToday, "today", false, "Show today's entries (default)")
	listCmd.Flags().BoolVar(&listWeek, "week", false, "Show this week's entries")
	listCmd.Flags().StringVar(&listFrom, "from", "", "Start date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listTo, "to", "", "End date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listClient, "client", "", "Limit to one client ID")
	listCmd.Flags().StringVar(&listMatter, "matter", "", "Limit to one client matter ID")
}

func runList(cmd *cobra.Command, args []string) error {
	now := time.Now()

	var from, to time.Time
	switch {
	case listFrom != "" || listTo != "":
		var err error
		if from, to, err = rangeFlags(listFrom, listTo); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case listWeek:
		from, to = timecalc.WeekRange(now)
	default:
		// Default to today (covers --today and the bare command).
		from = timecalc.StartOfDay(now)
		to = timecalc.EndOfDay(now)
	}

	store := openStore()
	entries, err := store.EntriesBetween(from, to, storage.EntryFilter{
		ClientID:       listClient,
		ClientMatterID: listMatter,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	printEntries(entries)
	return nil
}

// printEntries groups entries by work date and prints them.
func printEntries(entries []model.TimeEntry) {
	if len(entries) == 0 {
		fmt.Println("No entries found.")
		return
	}

	var currentDay string
	for _, e := range entries {
		day := "undated"
		if e.WorkDate != nil {
			day = e.WorkDate.Format("2006-01-02")
		}
		if day != currentDay {
			fmt.Println(day)
			currentDay = day
		}

		matter := e.MatterID
		if matter == "" {
			matter = "(unbound)"
		}
		code := e.UTBMSCode
		if code == "" {
			code = "----"
		}

		fmt.Printf("  %-7s %-12s %-5s %s\n",
			timecalc.FormatHours(e.DurationHours), matter, code, e.Description)
	}
}
