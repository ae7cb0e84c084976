package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billexact/billexact/internal/model"
	"github.com/billexact/billexact/internal/utbms"
)

var (
	categorizeJSON     bool
	categorizeTask     string
	categorizeActivity string
)

var categorizeCmd = &cobra.Command{
	Use:   "categorize <narrative>",
	Short: "Suggest UTBMS codes for a narrative",
	Long: `categorize scores a billing narrative against the UTBMS seed tables and
prints the suggested task and activity codes with a confidence and the
matched evidence.

Pin an exact narrative to fixed codes with --set-task/--set-activity; pinned
phrases win over the seed tables on every future run.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCategorize,
}

func init() {
	categorizeCmd.Flags().BoolVar(&categorizeJSON, "json", false, "Print the result as JSON")
	categorizeCmd.Flags().StringVar(&categorizeTask, "set-task", "", "Pin this exact narrative to a task code")
	categorizeCmd.Flags().StringVar(&categorizeActivity, "set-activity", "", "Pin this exact narrative to an activity code")
}

func runCategorize(cmd *cobra.Command, args []string) error {
	narrative := strings.Join(args, " ")
	store := openStore()

	if categorizeTask != "" || categorizeActivity != "" {
		o := model.UTBMSOverride{
			Phrase:       narrative,
			TaskCode:     categorizeTask,
			ActivityCode: categorizeActivity,
		}
		if err := store.SaveOverride(&o); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		fmt.Printf("Pinned %q → task %s, activity %s\n",
			narrative, orDash(categorizeTask), orDash(categorizeActivity))
	}

	cat := utbms.NewCategorizer()
	cat.Override = store.Override
	res := cat.Categorize(narrative)

	if categorizeJSON {
		data, err := json.MarshalIndent(res, "", "  ")
		if err != nil {
			fmt.Fprintln(os.Stderr, "error encoding JSON:", err)
			os.Exit(2)
		}
		fmt.Println(string(data))
		return nil
	}

	fmt.Printf("Task:       %s\n", orDash(res.TaskCode))
	fmt.Printf("Activity:   %s\n", orDash(res.ActivityCode))
	fmt.Printf("Confidence: %.2f\n", res.Confidence)
	for _, why := range res.Why {
		fmt.Printf("  matched %s\n", why)
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
