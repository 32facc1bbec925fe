package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultFatigueScore is assigned to catalog entries without a positive score.
const DefaultFatigueScore = 2

// Exercise is a single pre-scored catalog entry.
type Exercise struct {
	Name           string   `json:"name"`
	PrimaryMuscles []string `json:"primaryMuscles"`
	Equipment      string   `json:"equipment"`
	Mechanic       string   `json:"mechanic"`
	FatigueScore   float64  `json:"fatigue_score"`
}

// Catalog is the static exercise dataset. It is immutable after Parse and safe
// for concurrent use.
type Catalog struct {
	exercises []Exercise
}

// Load reads the catalog from a local file or a gs://bucket/object URL.
func Load(ctx context.Context, source string) (*Catalog, error) {
	var r io.ReadCloser
	var err error
	if strings.HasPrefix(source, "gs://") {
		r, err = openGCS(ctx, source)
	} else {
		r, err = os.Open(source)
	}
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", source, err)
	}
	defer r.Close()

	c, err := Parse(r)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", source, err)
	}
	return c, nil
}

// Parse decodes a JSON array of exercises. Entries without a name are skipped
// and duplicate names keep the first entry.
func Parse(r io.Reader) (*Catalog, error) {
	var raw []Exercise
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}

	return New(raw), nil
}

// New builds a catalog from already-decoded exercises, applying the same
// normalization as Parse.
func New(exercises []Exercise) *Catalog {
	seen := make(map[string]bool, len(exercises))
	out := make([]Exercise, 0, len(exercises))
	for _, ex := range exercises {
		ex.Name = strings.TrimSpace(ex.Name)
		if ex.Name == "" || seen[ex.Name] {
			continue
		}
		seen[ex.Name] = true
		if ex.FatigueScore <= 0 {
			ex.FatigueScore = DefaultFatigueScore
		}
		out = append(out, ex)
	}
	return &Catalog{exercises: out}
}

// Len returns the number of exercises in the catalog.
func (c *Catalog) Len() int {
	return len(c.exercises)
}

// Names returns every exercise name in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.exercises))
	for i, ex := range c.exercises {
		names[i] = ex.Name
	}
	return names
}

// Lookup returns exercises whose primary muscles contain muscleGroup
// (case-insensitive substring) and whose equipment equals one of the
// available entries (case-insensitive). It never fails; no match is an empty slice.
func (c *Catalog) Lookup(muscleGroup string, equipment []string) []Exercise {
	muscle := strings.ToLower(strings.TrimSpace(muscleGroup))
	result := []Exercise{}
	for _, ex := range c.exercises {
		if matchesMuscle(ex, muscle) && matchesEquipment(ex, equipment) {
			result = append(result, ex)
		}
	}
	return result
}

// Search returns up to limit exercises whose name contains query
// (case-insensitive). An empty query matches everything.
func (c *Catalog) Search(query string, limit int) []Exercise {
	q := strings.ToLower(strings.TrimSpace(query))
	result := []Exercise{}
	for _, ex := range c.exercises {
		if limit > 0 && len(result) >= limit {
			break
		}
		if q == "" || strings.Contains(strings.ToLower(ex.Name), q) {
			result = append(result, ex)
		}
	}
	return result
}

func matchesMuscle(ex Exercise, muscle string) bool {
	for _, m := range ex.PrimaryMuscles {
		if strings.Contains(strings.ToLower(m), muscle) {
			return true
		}
	}
	return false
}

func matchesEquipment(ex Exercise, available []string) bool {
	for _, e := range available {
		if strings.EqualFold(strings.TrimSpace(e), ex.Equipment) {
			return true
		}
	}
	return false
}
