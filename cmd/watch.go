package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/billexact/billexact/internal/ingest"
	"github.com/billexact/billexact/internal/storage"
)

var (
	watchClient     string
	watchMatter     string
	watchTimekeeper string
)

var watchCmd = &cobra.Command{
	Use:   "watch <spool-dir>",
	Short: "Watch a spool directory and ingest ActivityWatch exports as they arrive",
	Long: `watch monitors a directory for ActivityWatch JSON export files and ingests
each one as it is created or updated. Useful for machines that export activity
periodically instead of exposing the live API.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchClient, "client", "", "Client ID for imported entries")
	watchCmd.Flags().StringVar(&watchMatter, "matter", "", "Default matter for entries no binding claims")
	watchCmd.Flags().StringVar(&watchTimekeeper, "timekeeper", "", "Timekeeper ID for imported entries")
}

func runWatch(cmd *cobra.Command, args []string) error {
	return watchSpool(args[0], openStore(), nil)
}

// watchSpool ingests every export file written to dir until stop closes.
// Events are debounced so a file still being written is only processed once.
func watchSpool(dir string, store *storage.Store, stop <-chan struct{}) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch init failed: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}

	svc := ingest.NewService(store)
	svc.Filters = cfg.ActivityWatch.Filters()
	opts := ingest.Options{
		ClientID:     watchClient,
		MatterID:     watchMatter,
		TimekeeperID: watchTimekeeper,
	}

	ingestFile := func(path string) {
		src := ingest.NewFileSource(path)
		// Export files carry their own time bounds; accept everything.
		res, err := svc.Ingest(context.Background(), src,
			time.Time{}, time.Now().Add(24*time.Hour), opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  ! %s: %v\n", filepath.Base(path), err)
			return
		}
		fmt.Printf("  ✓ %s: %d inserted, %d skipped\n",
			filepath.Base(path), res.Inserted, res.Skipped)
	}

	fmt.Printf("Watching %s for ActivityWatch exports...\n", dir)

	const debounce = 300 * time.Millisecond
	timers := map[string]*time.Timer{}

	for {
		select {
		case <-stop:
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !strings.HasSuffix(ev.Name, ".json") {
				continue
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if t, exists := timers[ev.Name]; exists {
				t.Stop()
			}
			name := ev.Name
			timers[name] = time.AfterFunc(debounce, func() { ingestFile(name) })
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}
