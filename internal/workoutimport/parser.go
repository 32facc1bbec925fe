// Package workoutimport reads workout history exported by the Alpha
// Progression app and turns it into logged sets.
package workoutimport

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	// "Legs · Day 2";"2026-02-19 4:54 h";"1:02 hr"
	sessionLine = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)

	// "1. Hack Squats · Machine · 8 reps[ · 2 dropsets]"[;"WU1 · 37,5 kg · 9 reps<br>..."]
	exerciseLine = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)

	// 1;115;8;1
	setLine = regexp.MustCompile(`^(\d+);(.+);(\d+);(.+)$`)

	warmupField = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)
)

const columnHeader = "#;KG;REPS;RIR"

// ErrMalformed is wrapped by every error caused by the content of an export.
var ErrMalformed = errors.New("malformed export")

// Session is one workout from the export.
type Session struct {
	Name      string
	Started   time.Time
	Duration  string
	Exercises []Exercise
}

// Exercise is one numbered exercise within a session.
type Exercise struct {
	Position   int
	Name       string
	Equipment  string
	TargetReps int
	Sets       []Set
}

// Set is a single warmup or working set. Kilograms is the added load for
// bodyweight exercises.
type Set struct {
	Position   int
	Kilograms  float64
	Bodyweight bool
	Reps       int
	RIR        float64
	Warmup     bool
}

// Date is the calendar day the session was logged on.
func (s Session) Date() time.Time {
	y, m, d := s.Started.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type parser struct {
	sessions []Session
	session  *Session
	exercise *Exercise
}

func (p *parser) closeExercise() {
	if p.exercise != nil && p.session != nil {
		p.session.Exercises = append(p.session.Exercises, *p.exercise)
	}
	p.exercise = nil
}

func (p *parser) closeSession() {
	p.closeExercise()
	if p.session != nil {
		p.sessions = append(p.sessions, *p.session)
	}
	p.session = nil
}

// Parse reads an export. Sessions are separated by blank lines; lines that
// match no known shape are ignored.
func Parse(r io.Reader) ([]Session, error) {
	var p parser
	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())

		switch {
		case line == "":
			p.closeSession()

		case line == columnHeader:

		case sessionLine.MatchString(line):
			m := sessionLine.FindStringSubmatch(line)
			p.closeSession()
			started, err := parseStarted(m[2])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, lineNo, err)
			}
			p.session = &Session{Name: m[1], Started: started, Duration: m[3]}

		case exerciseLine.MatchString(line):
			if p.session == nil {
				return nil, fmt.Errorf("%w: line %d: exercise outside a session", ErrMalformed, lineNo)
			}
			m := exerciseLine.FindStringSubmatch(line)
			p.closeExercise()
			pos, _ := strconv.Atoi(m[1])
			target, _ := strconv.Atoi(m[4])
			p.exercise = &Exercise{
				Position:   pos,
				Name:       strings.TrimSpace(m[2]),
				Equipment:  strings.TrimSpace(m[3]),
				TargetReps: target,
				Sets:       parseWarmups(m[6]),
			}

		case setLine.MatchString(line):
			if p.exercise == nil {
				return nil, fmt.Errorf("%w: line %d: set outside an exercise", ErrMalformed, lineNo)
			}
			m := setLine.FindStringSubmatch(line)
			pos, _ := strconv.Atoi(m[1])
			kg, bw := parseLoad(m[2])
			reps, _ := strconv.Atoi(m[3])
			p.exercise.Sets = append(p.exercise.Sets, Set{
				Position:   pos,
				Kilograms:  kg,
				Bodyweight: bw,
				Reps:       reps,
				RIR:        parseDecimal(m[4]),
			})
		}
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, fmt.Errorf("%w: line %d: %w", ErrMalformed, lineNo+1, err)
		}
		return nil, fmt.Errorf("reading export: %w", err)
	}
	p.closeSession()
	return p.sessions, nil
}

// parseStarted accepts both "2026-02-19 4:54" and "2026-02-19 16:54".
func parseStarted(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid session start %q", s)
}

func parseWarmups(field string) []Set {
	if field == "" {
		return nil
	}
	var sets []Set
	for _, part := range strings.Split(field, "<br>") {
		m := warmupField.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		pos, _ := strconv.Atoi(m[1])
		kg, bw := parseLoad(m[2])
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, Set{Position: pos, Kilograms: kg, Bodyweight: bw, Reps: reps, Warmup: true})
	}
	return sets
}

// parseLoad reads "102,5" or the bodyweight-plus form "+35".
func parseLoad(s string) (kg float64, bodyweight bool) {
	s = strings.TrimSpace(s)
	if rest, ok := strings.CutPrefix(s, "+"); ok {
		return parseDecimal(rest), true
	}
	return parseDecimal(s), false
}

// parseDecimal accepts a comma decimal separator. Unparseable input is 0.
func parseDecimal(s string) float64 {
	f, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
	return f
}
