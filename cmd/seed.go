package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/billexact/billexact/internal/model"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert demo data so check, report and export work out of the box",
	Args:  cobra.NoArgs,
	RunE:  runSeed,
}

func runSeed(cmd *cobra.Command, args []string) error {
	store := openStore()

	matter := model.Matter{
		ClientMatterID:  "ACME-001",
		ClientID:        "ACME",
		LawFirmMatterID: "F-2026-001",
		LawFirmID:       "FIRM01",
		Description:     "Acme Corp. v. Initech LLC",
	}
	if err := store.SaveMatter(&matter); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	tk := model.Timekeeper{
		ID:             "TK1",
		Name:           "Alice Johnson",
		Classification: "PT",
		Rate:           decimal.NewFromInt(300),
	}
	if err := store.SaveTimekeeper(&tk); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)

	demo := []struct {
		day   time.Time
		hours float64
		desc  string
		task  string
		act   string
	}{
		// Clean narratives.
		{monday, 1.5, "Draft motion to compel responses to first set of interrogatories", "L230", "A103"},
		{monday, 0.8, "Research caselaw on spoliation sanctions in the Second Circuit", "L120", "A102"},
		{tuesday, 1.2, "Review and summarize deposition transcript of J. Smith, vol. 2", "L330", "A104"},
		// Narratives the compliance rules flag.
		{monday, 0.3, "work on file", "", ""},
		{tuesday, 2.0, "Draft motion; call client and email opposing counsel re discovery", "L230", "A103"},
		{tuesday, 1.0, "Travel to courthouse for status conference", "", "A109"},
	}

	inserted := 0
	for i, d := range demo {
		day := d.day
		start := day.Add(time.Duration(9+i) * time.Hour)
		entry := model.TimeEntry{
			ID:            uuid.NewString(),
			WorkDate:      &day,
			StartedAt:     &start,
			ClientID:      matter.ClientID,
			MatterID:      matter.ClientMatterID,
			TimekeeperID:  tk.ID,
			DurationHours: d.hours,
			Description:   d.desc,
			UTBMSCode:     d.task,
			ActivityCode:  d.act,
			Source:        "manual",
		}
		exists, err := store.EntryExists(start, d.desc)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		if exists {
			continue
		}
		if err := store.CreateEntry(&entry); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		inserted++
	}

	fmt.Printf("Seeded matter %s, timekeeper %s, %d entries.\n",
		matter.ClientMatterID, tk.ID, inserted)
	fmt.Println()
	fmt.Println("Try:")
	fmt.Println("  billexact check --from 2026-03-02 --to 2026-03-08")
	fmt.Println("  billexact report --from 2026-03-02 --to 2026-03-08")
	fmt.Println("  billexact export --matter ACME-001 --from 2026-03-02 --to 2026-03-08")
	return nil
}
