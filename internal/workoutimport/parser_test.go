package workoutimport

import (
	"bufio"
	"errors"
	"strings"
	"testing"
	"time"
)

const export = `
"Legs · Day 2 · Week 4 · Push-Pull-Legs";"2026-02-19 4:54 h";"1:02 hr"
"1. Hack Squats · Machine · 8 reps";"WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps"
#;KG;REPS;RIR
1;115;8;1
2;115;10;1
3;115;10;0,5
"2. Hyperextensions on Roman Chair · Bodyweight · 10 reps";"WU1 · +0 kg · 8 reps"
#;KG;REPS;RIR
1;+35;10;0
2;+35;9;1
"3. Hanging Leg Raises · Bodyweight · 12 reps · 2 dropsets"
#;KG;REPS;RIR
1;+0;12;1
2;+0;12;0

"Push · Day 1 · Week 4 · Push-Pull-Legs";"2026-02-17 17:04 h";"1:12 hr"
"1. Bench Press · Barbell · 6 reps"
#;KG;REPS;RIR
1;102,5;6;0
2;100;6;0
`

// TestParseSessions walks a two-session export end to end.
func TestParseSessions(t *testing.T) {
	sessions, err := Parse(strings.NewReader(export))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d, want 2", len(sessions))
	}

	legs := sessions[0]
	if legs.Name != "Legs · Day 2 · Week 4 · Push-Pull-Legs" || legs.Duration != "1:02 hr" {
		t.Errorf("legs = %q %q", legs.Name, legs.Duration)
	}
	if want := time.Date(2026, 2, 19, 4, 54, 0, 0, time.UTC); !legs.Started.Equal(want) {
		t.Errorf("started = %v", legs.Started)
	}
	if len(legs.Exercises) != 3 {
		t.Fatalf("exercises = %d, want 3", len(legs.Exercises))
	}

	hack := legs.Exercises[0]
	if hack.Name != "Hack Squats" || hack.Equipment != "Machine" || hack.TargetReps != 8 {
		t.Errorf("hack = %+v", hack)
	}
	if len(hack.Sets) != 5 || !hack.Sets[0].Warmup || hack.Sets[2].Warmup {
		t.Errorf("hack sets = %+v", hack.Sets)
	}
	if hack.Sets[0].Kilograms != 37.5 || hack.Sets[4].RIR != 0.5 {
		t.Errorf("decimals: %+v", hack.Sets)
	}

	hyper := legs.Exercises[1]
	if set := hyper.Sets[1]; !set.Bodyweight || set.Kilograms != 35 || set.Warmup {
		t.Errorf("bodyweight-plus set = %+v", set)
	}

	raises := legs.Exercises[2]
	if raises.Name != "Hanging Leg Raises" || raises.Equipment != "Bodyweight" || raises.TargetReps != 12 {
		t.Errorf("modifier suffix not handled: %+v", raises)
	}

	if got := sessions[1].Started.Hour(); got != 17 {
		t.Errorf("24h start hour = %d", got)
	}
}

// TestParseLoad covers comma decimals and bodyweight-plus notation.
func TestParseLoad(t *testing.T) {
	tests := []struct {
		in   string
		kg   float64
		plus bool
	}{
		{"102,5", 102.5, false},
		{"100", 100, false},
		{"+35", 35, true},
		{"+0", 0, true},
		{"junk", 0, false},
	}
	for _, tt := range tests {
		kg, plus := parseLoad(tt.in)
		if kg != tt.kg || plus != tt.plus {
			t.Errorf("parseLoad(%q) = %v, %v; want %v, %v", tt.in, kg, plus, tt.kg, tt.plus)
		}
	}
}

// TestParseStrayLines verifies sets and exercises outside their parent are
// reported as malformed with the line number.
func TestParseStrayLines(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"set without exercise", "1;100;5;1\n", "line 1: set outside an exercise"},
		{"exercise without session", "\n" + `"1. Squat · Barbell · 5 reps"` + "\n", "line 2: exercise outside a session"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.in))
			if !errors.Is(err, ErrMalformed) {
				t.Fatalf("err = %v, want ErrMalformed", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

// TestParseLongLine verifies an oversized line is malformed rather than an
// I/O failure.
func TestParseLongLine(t *testing.T) {
	line := strings.Repeat("x", bufio.MaxScanTokenSize+1)
	if _, err := Parse(strings.NewReader(line)); !errors.Is(err, ErrMalformed) {
		t.Errorf("err = %v, want ErrMalformed", err)
	}
}

// TestParseEmpty verifies empty input yields no sessions.
func TestParseEmpty(t *testing.T) {
	sessions, err := Parse(strings.NewReader("\n\nnotes nobody asked for\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 0 {
		t.Errorf("sessions = %d", len(sessions))
	}
}
