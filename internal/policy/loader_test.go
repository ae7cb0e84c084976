package policy_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/billexact/billexact/internal/policy"
)

func writePolicy(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestDeepMerge(t *testing.T) {
	base := policy.Document{
		"narrative": map[string]any{"min_words": 6, "forbid_etc": true},
		"rates":     map[string]any{"travel_discount": 0.5},
	}
	overlay := policy.Document{
		"narrative": map[string]any{"min_words": 10},
		"caps":      map[string]any{"daily_hours": 10.0},
	}

	got := policy.DeepMerge(base, overlay)

	narrative := got["narrative"].(map[string]any)
	if narrative["min_words"] != 10 {
		t.Errorf("min_words = %v, want overlay value 10", narrative["min_words"])
	}
	if narrative["forbid_etc"] != true {
		t.Errorf("forbid_etc = %v, want base value preserved", narrative["forbid_etc"])
	}
	if _, ok := got["caps"]; !ok {
		t.Error("overlay-only key missing after merge")
	}
	if _, ok := got["rates"]; !ok {
		t.Error("base-only key missing after merge")
	}

	// Merge must not mutate its inputs.
	if base["narrative"].(map[string]any)["min_words"] != 6 {
		t.Error("DeepMerge mutated base")
	}
}

func TestLoadForClientOverlayApplies(t *testing.T) {
	dir := t.TempDir()
	writePolicy(t, dir, "_base.yml", `
narrative:
  min_words: 6
billing:
  block_billing_allowed: false
`)
	writePolicy(t, dir, "endurance.yml", `
applies_if:
  client_id_in: ["ENDURANCE", "END-US"]
narrative:
  min_words: 12
`)

	doc := policy.LoadForClient(dir, "endurance") // case-insensitive
	narrative := doc["narrative"].(map[string]any)
	if narrative["min_words"] != 12 {
		t.Errorf("min_words = %v, want overlay value 12", narrative["min_words"])
	}
	billing := doc["billing"].(map[string]any)
	if billing["block_billing_allowed"] != false {
		t.Error("base-only billing section lost")
	}
}

func TestLoadForClientOverlayDoesNotApply(t *testing.T) {
	dir := t.TempDir()
	writePolicy(t, dir, "_base.yml", "narrative:\n  min_words: 6\n")
	writePolicy(t, dir, "endurance.yml", `
applies_if:
  client_id_in: ["ENDURANCE"]
narrative:
  min_words: 12
`)

	doc := policy.LoadForClient(dir, "ACME")
	narrative := doc["narrative"].(map[string]any)
	if narrative["min_words"] != 6 {
		t.Errorf("min_words = %v, want base value for non-matching client", narrative["min_words"])
	}
}

func TestLoadForClientEmptyClientGetsBase(t *testing.T) {
	dir := t.TempDir()
	writePolicy(t, dir, "_base.yml", "narrative:\n  min_words: 6\n")
	doc := policy.LoadForClient(dir, "")
	if doc["narrative"].(map[string]any)["min_words"] != 6 {
		t.Fatalf("doc = %+v", doc)
	}
}

func TestLoadForClientMissingOrBrokenFiles(t *testing.T) {
	dir := t.TempDir()
	// No base at all.
	if doc := policy.LoadForClient(dir, "ACME"); len(doc) != 0 {
		t.Fatalf("doc = %+v, want empty for missing base", doc)
	}

	// Malformed base degrades to empty, not error.
	writePolicy(t, dir, "_base.yml", "narrative: [broken")
	if doc := policy.LoadForClient(dir, "ACME"); len(doc) != 0 {
		t.Fatalf("doc = %+v, want empty for malformed base", doc)
	}
}

func TestCheckNarrative(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"Draft motion for summary judgment re Smith deposition", 0},
		{"Various tasks, etc.", 2},
		{"Reviewed docs", 1},
		{"Reviewed the second amended complaint and exhibits thereto", 0},
		{"Travel back from hearing", 1},
		{"Travel to court for hearing", 0},
		{"admin", 1},
	}
	for _, tt := range tests {
		got := policy.CheckNarrative(tt.text)
		if len(got) != tt.want {
			t.Errorf("CheckNarrative(%q) = %v (%d warnings), want %d", tt.text, got, len(got), tt.want)
		}
	}
}
