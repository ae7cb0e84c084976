package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// FileSource serves events from an ActivityWatch JSON export file, for
// machines where the ingest run happens after the fact (spool directories,
// offline exports).
type FileSource struct {
	Path string
}

// NewFileSource wraps an export file.
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// WindowBuckets reports a single synthetic bucket named after the file.
func (f *FileSource) WindowBuckets(ctx context.Context) ([]string, error) {
	return []string{"aw-export:" + f.Path}, nil
}

// Events loads the file and returns the events whose timestamps fall in
// [start, end]. The file holds either a bare event array or an object with
// an "events" key (the shape `aw-qt` exports).
func (f *FileSource) Events(ctx context.Context, bucketID string, start, end time.Time) ([]Event, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("reading event export %s: %w", f.Path, err)
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		var wrapped struct {
			Events []Event `json:"events"`
		}
		if err2 := json.Unmarshal(data, &wrapped); err2 != nil {
			return nil, fmt.Errorf("decoding event export %s: %w", f.Path, err)
		}
		events = wrapped.Events
	}

	var out []Event
	for _, ev := range events {
		if ev.Timestamp.Before(start) || ev.Timestamp.After(end) {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}
