package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/billexact/billexact/internal/compliance"
	"github.com/billexact/billexact/internal/model"
	"github.com/billexact/billexact/internal/policy"
	"github.com/billexact/billexact/internal/storage"
	"github.com/billexact/billexact/internal/timecalc"
)

var (
	checkFrom    string
	checkTo      string
	checkClient  string
	checkMatter  string
	checkRules   string
	checkFormat  string
	checkStrict  bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run compliance rules over time entries",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkFrom, "from", "", "Start date (YYYY-MM-DD); defaults to Monday of this week")
	checkCmd.Flags().StringVar(&checkTo, "to", "", "End date (YYYY-MM-DD); defaults to Sunday of this week")
	checkCmd.Flags().StringVar(&checkClient, "client", "", "Limit to one client ID")
	checkCmd.Flags().StringVar(&checkMatter, "matter", "", "Limit to one client matter ID")
	checkCmd.Flags().StringVar(&checkRules, "rules", "", "Rule configuration file (YAML or JSON); defaults to the configured rules_path")
	checkCmd.Flags().StringVar(&checkFormat, "format", "table", "Output format: table, json")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Exit non-zero when any issue is found")
}

// rangeFlags resolves from/to flag strings to an inclusive range, defaulting
// to the current ISO week.
func rangeFlags(fromStr, toStr string) (time.Time, time.Time, error) {
	from, to := timecalc.WeekRange(time.Now())
	var err error
	if fromStr != "" {
		if from, err = timecalc.ParseDate(fromStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toStr != "" {
		t, err := timecalc.ParseDate(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = timecalc.EndOfDay(t)
	}
	return from, to, nil
}

func runCheck(cmd *cobra.Command, args []string) error {
	from, to, err := rangeFlags(checkFrom, checkTo)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	store := openStore()
	entries, err := store.EntriesBetween(from, to, storage.EntryFilter{
		ClientID:       checkClient,
		ClientMatterID: checkMatter,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	rulesPath := checkRules
	if rulesPath == "" {
		rulesPath = cfg.RulesPath
	}
	issues := compliance.RunFile(entries, rulesPath)

	switch checkFormat {
	case "json":
		data, err := json.MarshalIndent(issues, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
	default:
		fmt.Printf("Checked %d entries (%s → %s)\n",
			len(entries), from.Format("2006-01-02"), to.Format("2006-01-02"))
		printIssueTable(issues)
		printGuidelineWarnings(entries)
	}

	if checkStrict && len(issues) > 0 {
		os.Exit(1)
	}
	return nil
}

// printGuidelineWarnings runs the advisory narrative lint over the batch.
// These are drafting hints, not rule violations, so they never affect
// --strict.
func printGuidelineWarnings(entries []model.TimeEntry) {
	printed := false
	for _, e := range entries {
		for _, w := range policy.CheckNarrative(e.Description) {
			if !printed {
				fmt.Println("Guideline warnings:")
				printed = true
			}
			fmt.Printf("  %-12s %s\n", e.ID, w)
		}
	}
}

func printIssueTable(issues []compliance.Issue) {
	if len(issues) == 0 {
		fmt.Println("No issues found.")
		return
	}
	fmt.Println()
	for _, is := range issues {
		entry := is.EntryID
		if entry == "" {
			entry = "-"
		}
		fmt.Printf("  [%s] %-22s %-12s %s\n", is.Severity, is.RuleID, entry, is.Message)
		if is.Suggestion != "" {
			fmt.Printf("  %31s suggestion: %s\n", "", is.Suggestion)
		}
	}
	fmt.Println()
	fmt.Printf("%d issue(s) found.\n", len(issues))
}
