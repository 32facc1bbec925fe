package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleJSON = `[
  {"name": "Dumbbell Bench Press", "primaryMuscles": ["chest"], "equipment": "dumbbell", "mechanic": "compound", "fatigue_score": 3},
  {"name": "Incline Dumbbell Press", "primaryMuscles": ["chest"], "equipment": "dumbbell", "mechanic": "compound", "fatigue_score": 2},
  {"name": "Cable Crossover", "primaryMuscles": ["Chest"], "equipment": "cable", "mechanic": "isolation", "fatigue_score": 1},
  {"name": "Triceps Pushdown", "primaryMuscles": ["triceps"], "equipment": "cable", "mechanic": "isolation", "fatigue_score": 1},
  {"name": "Barbell Deadlift", "primaryMuscles": ["lower back", "hamstrings"], "equipment": "barbell", "mechanic": "compound", "fatigue_score": 5},
  {"name": "Plank", "primaryMuscles": ["abdominals"], "equipment": null, "mechanic": null},
  {"name": "", "primaryMuscles": ["chest"], "equipment": "dumbbell"},
  {"name": "Cable Crossover", "primaryMuscles": ["chest"], "equipment": "cable", "fatigue_score": 4}
]`

func mustParse(t *testing.T) *Catalog {
	t.Helper()
	c, err := Parse(strings.NewReader(sampleJSON))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return c
}

// TestParseNormalizes verifies blank names are skipped, duplicates keep the
// first entry and missing scores get the default.
func TestParseNormalizes(t *testing.T) {
	c := mustParse(t)
	if c.Len() != 6 {
		t.Fatalf("len = %d, want 6", c.Len())
	}

	plank := c.Search("plank", 1)
	if len(plank) != 1 {
		t.Fatalf("plank not found")
	}
	if plank[0].FatigueScore != DefaultFatigueScore {
		t.Errorf("plank fatigue = %v, want %v", plank[0].FatigueScore, DefaultFatigueScore)
	}
	if plank[0].Equipment != "" || plank[0].Mechanic != "" {
		t.Errorf("null fields should decode empty, got %+v", plank[0])
	}

	crossover := c.Search("cable crossover", 0)
	if len(crossover) != 1 || crossover[0].FatigueScore != 1 {
		t.Errorf("duplicate should keep first entry, got %+v", crossover)
	}
}

// TestParseInvalidJSON verifies malformed input is rejected.
func TestParseInvalidJSON(t *testing.T) {
	if _, err := Parse(strings.NewReader(`{"name": "x"}`)); err == nil {
		t.Fatal("expected error for non-array JSON")
	}
}

// TestLookup covers the muscle substring and equipment exact-match rules.
func TestLookup(t *testing.T) {
	c := mustParse(t)

	tests := []struct {
		name      string
		muscle    string
		equipment []string
		want      []string
	}{
		{"chest dumbbell", "chest", []string{"dumbbell"}, []string{"Dumbbell Bench Press", "Incline Dumbbell Press"}},
		{"case insensitive", "CHEST", []string{"Cable"}, []string{"Cable Crossover"}},
		{"substring muscle", "back", []string{"barbell"}, []string{"Barbell Deadlift"}},
		{"multiple equipment", "chest", []string{"cable", "dumbbell"}, []string{"Dumbbell Bench Press", "Incline Dumbbell Press", "Cable Crossover"}},
		{"equipment must be exact", "chest", []string{"dumb"}, nil},
		{"unknown muscle", "wings", []string{"dumbbell"}, nil},
		{"no equipment", "chest", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Lookup(tt.muscle, tt.equipment)
			if got == nil {
				t.Fatal("Lookup must return an empty slice, not nil")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d results, want %d: %+v", len(got), len(tt.want), got)
			}
			for i, name := range tt.want {
				if got[i].Name != name {
					t.Errorf("result[%d] = %q, want %q", i, got[i].Name, name)
				}
			}
		})
	}
}

// TestSearchLimit verifies the limit caps results and an empty query lists everything.
func TestSearchLimit(t *testing.T) {
	c := mustParse(t)
	if got := c.Search("", 2); len(got) != 2 {
		t.Errorf("Search(\"\", 2) = %d results, want 2", len(got))
	}
	if got := c.Search("press", 0); len(got) != 2 {
		t.Errorf("Search(press) = %d results, want 2", len(got))
	}
}

// TestLoadLocalFile verifies Load reads a catalog from disk.
func TestLoadLocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exercises.json")
	if err := os.WriteFile(path, []byte(sampleJSON), 0644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 6 {
		t.Errorf("len = %d, want 6", c.Len())
	}
}

// TestLoadMissingFile verifies a missing catalog produces an error.
func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(context.Background(), "/nonexistent/exercises.json"); err == nil {
		t.Fatal("expected error")
	}
}

// TestSplitGCSURL verifies gs:// URL parsing.
func TestSplitGCSURL(t *testing.T) {
	bucket, object, err := splitGCSURL("gs://repcoach-data/catalog/exercises.json")
	if err != nil {
		t.Fatal(err)
	}
	if bucket != "repcoach-data" || object != "catalog/exercises.json" {
		t.Errorf("got %q %q", bucket, object)
	}
	if _, _, err := splitGCSURL("gs://bucket-only"); err == nil {
		t.Error("expected error for missing object")
	}
}

// TestIsMuscleGroup verifies vocabulary membership is case-insensitive.
func TestIsMuscleGroup(t *testing.T) {
	if !IsMuscleGroup("Lower Back") {
		t.Error("lower back should be in vocabulary")
	}
	if IsMuscleGroup("pecs") {
		t.Error("pecs should not be in vocabulary")
	}
}
