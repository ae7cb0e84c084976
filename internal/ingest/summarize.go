package ingest

import (
	"math"
	"net/url"
	"sort"
	"strings"
	"time"
)

// Filters decide which activity counts as billable focus time.
type Filters struct {
	NonbillableApps          []string
	NonbillableHosts         []string
	NonbillableTitleKeywords []string
	MinSeconds               int
	GapMergeSeconds          int
}

// DefaultFilters returns the stock focus thresholds: two minutes minimum
// focus, five minute merge gap.
func DefaultFilters() Filters {
	return Filters{MinSeconds: 120, GapMergeSeconds: 300}
}

func (f Filters) minSeconds() float64 {
	if f.MinSeconds <= 0 {
		return 120
	}
	return float64(f.MinSeconds)
}

func (f Filters) gapMergeSeconds() float64 {
	if f.GapMergeSeconds <= 0 {
		return 300
	}
	return float64(f.GapMergeSeconds)
}

// Item is one merged, billable slice of activity.
type Item struct {
	Date        time.Time
	Start       time.Time
	End         time.Time
	Seconds     float64
	Description string
	App         string
	Host        string
}

// Hours returns the item's duration in hours rounded to 4 decimals.
func (i Item) Hours() float64 {
	return math.Round(i.Seconds/3600.0*10000) / 10000
}

// span is the normalized form of one raw event.
type span struct {
	start, end time.Time
	seconds    float64
	title      string
	app        string
	host       string
}

// normalize converts raw events to spans, folding web page titles into their
// host and truncating runaway titles.
func normalize(events []Event) []span {
	spans := make([]span, 0, len(events))
	for _, ev := range events {
		if ev.Duration <= 0 || ev.Timestamp.IsZero() {
			continue
		}
		title := ev.Data.Title
		if title == "" {
			title = ev.Data.App
		}
		if title == "" {
			title = ev.Data.URL
		}
		if title == "" {
			title = "activity"
		}

		host := ""
		if strings.HasPrefix(title, "http") {
			if u, err := url.Parse(title); err == nil {
				host = strings.ToLower(u.Host)
				if host == "" {
					host = "web"
				}
				title = host + u.Path
			}
		}
		if len(title) > 255 {
			title = title[:255]
		}

		spans = append(spans, span{
			start:   ev.Timestamp,
			end:     ev.Timestamp.Add(time.Duration(ev.Duration * float64(time.Second))),
			seconds: ev.Duration,
			title:   title,
			app:     strings.TrimSpace(ev.Data.App),
			host:    host,
		})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start.Before(spans[j].start) })
	return spans
}

// mergeKey groups spans that belong to the same unit of work: same web host,
// same Word document, same PDF, otherwise same app+title.
func mergeKey(s span) string {
	t := strings.ToLower(s.title)
	a := strings.ToLower(s.app)
	h := strings.ToLower(s.host)
	switch {
	case h != "":
		return "web:" + h
	case strings.Contains(a, "word"):
		return "word:" + t
	case strings.Contains(a, "preview") || strings.HasSuffix(t, ".pdf"):
		return "pdf:" + t
	case a != "":
		return a + ":" + t
	default:
		return t
	}
}

func (f Filters) nonbillable(s span) bool {
	a := strings.ToLower(s.app)
	h := strings.ToLower(s.host)
	t := strings.ToLower(s.title)
	for _, app := range f.NonbillableApps {
		if a == strings.ToLower(app) {
			return true
		}
	}
	for _, host := range f.NonbillableHosts {
		if h == strings.ToLower(host) {
			return true
		}
	}
	for _, kw := range f.NonbillableTitleKeywords {
		if strings.Contains(t, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// Summarize filters raw events down to billable focus time and merges
// contiguous same-key spans whose gap does not exceed the merge threshold.
func Summarize(events []Event, f Filters) []Item {
	spans := normalize(events)

	type agg struct {
		key string
		Item
	}
	var out []agg
	for _, s := range spans {
		if f.nonbillable(s) {
			continue
		}
		if s.seconds < f.minSeconds() {
			continue
		}

		key := mergeKey(s)
		if len(out) > 0 && out[len(out)-1].key == key {
			last := &out[len(out)-1]
			gap := s.start.Sub(last.End).Seconds()
			if gap <= f.gapMergeSeconds() {
				last.End = s.end
				last.Seconds += s.seconds
				continue
			}
		}
		out = append(out, agg{
			key: key,
			Item: Item{
				Date:        time.Date(s.start.Year(), s.start.Month(), s.start.Day(), 0, 0, 0, 0, time.UTC),
				Start:       s.start,
				End:         s.end,
				Seconds:     s.seconds,
				Description: s.title,
				App:         s.app,
				Host:        s.host,
			},
		})
	}

	items := make([]Item, len(out))
	for i, a := range out {
		items[i] = a.Item
	}
	return items
}
