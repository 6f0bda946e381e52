// Package alpha reads Alpha Progression CSV exports.
package alpha

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftcoach/internal/coach"
	"github.com/claude/liftcoach/internal/models"
)

var (
	// sessionHeaderRe matches: "Session Name";"2026-02-19 4:54 h";"1:02 hr"
	sessionHeaderRe = regexp.MustCompile(`^"(.+)";"(\d{4}-\d{2}-\d{2}\s+\d+:\d+)\s+h";"(.+)"$`)

	// exerciseHeaderRe matches: "1. Exercise Name · Equipment · 8 reps[· modifiers]"[;"warmup info"]
	exerciseHeaderRe = regexp.MustCompile(`^"(\d+)\.\s+(.+?)(?:\s+·\s+(\S.*?))?\s+·\s+(\d+)\s+reps(.*?)"(?:;"(.+)")?$`)

	// setDataRe matches: 1;115;8;1 (RIR may be blank or "-")
	setDataRe = regexp.MustCompile(`^(\d+);([^;]+);(\d+);([^;]*)$`)

	// warmupRe matches: WU1 · 37,5 kg · 9 reps
	warmupRe = regexp.MustCompile(`WU(\d+)\s+·\s+(.+?)\s+kg\s+·\s+(\d+)\s+reps`)

	// columnHeaderRe matches: #;KG;REPS;RIR
	columnHeaderRe = regexp.MustCompile(`^#;KG;REPS;RIR$`)
)

// untrackedRIR marks a set logged without reps in reserve.
const untrackedRIR = -1

// parser accumulates sessions line by line. A blank line or a new session
// header closes the open session.
type parser struct {
	sessions []models.AlphaSession
	session  *models.AlphaSession
	exercise *models.AlphaExercise
	line     int
}

// Parse reads an Alpha Progression CSV export and returns parsed sessions.
// Unrecognized lines (notes and other metadata) are skipped.
func Parse(r io.Reader) ([]models.AlphaSession, error) {
	p := &parser{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		p.line++
		if err := p.feed(strings.TrimSpace(scanner.Text())); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading export: %w", err)
	}
	p.closeSession()
	return p.sessions, nil
}

func (p *parser) feed(line string) error {
	switch {
	case line == "":
		p.closeSession()
		return nil
	case columnHeaderRe.MatchString(line):
		return nil
	}

	if m := sessionHeaderRe.FindStringSubmatch(line); m != nil {
		return p.startSession(m)
	}
	if m := exerciseHeaderRe.FindStringSubmatch(line); m != nil {
		return p.startExercise(m)
	}
	if m := setDataRe.FindStringSubmatch(line); m != nil {
		return p.addSet(m)
	}
	return nil
}

func (p *parser) startSession(m []string) error {
	p.closeSession()
	date, err := parseSessionDate(m[2])
	if err != nil {
		return err
	}
	p.session = &models.AlphaSession{Name: m[1], Date: date, Duration: m[3]}
	return nil
}

func (p *parser) startExercise(m []string) error {
	if p.session == nil {
		return fmt.Errorf("exercise without session: %q", m[0])
	}
	p.closeExercise()

	num, _ := strconv.Atoi(m[1])
	targetReps, _ := strconv.Atoi(m[4])
	p.exercise = &models.AlphaExercise{
		Number:     num,
		Name:       strings.TrimSpace(m[2]),
		Equipment:  strings.TrimSpace(m[3]),
		TargetReps: targetReps,
		Sets:       parseWarmups(m[6]),
	}
	return nil
}

func (p *parser) addSet(m []string) error {
	if p.exercise == nil {
		return fmt.Errorf("set data without exercise: %q", m[0])
	}
	num, _ := strconv.Atoi(m[1])
	weight, bodyweight, err := parseWeight(m[2])
	if err != nil {
		return err
	}
	reps, _ := strconv.Atoi(m[3])
	rir, err := parseRIR(m[4])
	if err != nil {
		return err
	}
	p.exercise.Sets = append(p.exercise.Sets, models.AlphaSet{
		Number:           num,
		WeightKg:         weight,
		IsBodyweightPlus: bodyweight,
		Reps:             reps,
		RIR:              rir,
	})
	return nil
}

func (p *parser) closeExercise() {
	if p.exercise == nil {
		return
	}
	p.session.Exercises = append(p.session.Exercises, *p.exercise)
	p.exercise = nil
}

func (p *parser) closeSession() {
	if p.session == nil {
		return
	}
	p.closeExercise()
	p.sessions = append(p.sessions, *p.session)
	p.session = nil
}

// parseSessionDate parses "2026-02-19 4:54" or "2026-02-19 16:54".
func parseSessionDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02 3:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse session date %q", s)
}

// parseWarmups extracts warm-up sets from an exercise header's second field,
// e.g. "WU1 · 37,5 kg · 9 reps<br>WU2 · 72,5 kg · 7 reps".
func parseWarmups(s string) []models.AlphaSet {
	if s == "" {
		return nil
	}
	var sets []models.AlphaSet
	for _, part := range strings.Split(s, "<br>") {
		m := warmupRe.FindStringSubmatch(part)
		if m == nil {
			continue
		}
		weight, bodyweight, err := parseWeight(m[2])
		if err != nil {
			continue
		}
		num, _ := strconv.Atoi(m[1])
		reps, _ := strconv.Atoi(m[3])
		sets = append(sets, models.AlphaSet{
			Number:           num,
			WeightKg:         weight,
			IsBodyweightPlus: bodyweight,
			Reps:             reps,
			RIR:              untrackedRIR,
			IsWarmup:         true,
		})
	}
	return sets
}

// parseWeight handles comma decimals and bodyweight-plus notation:
// "+35" is (35, true), "102,5" is (102.5, false).
func parseWeight(s string) (float64, bool, error) {
	s = strings.TrimSpace(s)
	bodyweight := strings.HasPrefix(s, "+")
	w, err := parseDecimal(strings.TrimPrefix(s, "+"))
	if err != nil {
		return 0, false, fmt.Errorf("parsing weight %q: %w", s, err)
	}
	if err := coach.CheckWeight("weight", w); err != nil {
		return 0, false, err
	}
	return w, bodyweight, nil
}

// parseRIR returns untrackedRIR for a blank or "-" cell. Any other value
// must be a finite number >= 0.
func parseRIR(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return untrackedRIR, nil
	}
	rir, err := parseDecimal(s)
	if err != nil {
		return 0, fmt.Errorf("parsing RIR %q: %w", s, err)
	}
	if err := coach.CheckWeight("RIR", rir); err != nil {
		return 0, err
	}
	return rir, nil
}

// parseDecimal accepts both "0,5" and "0.5".
func parseDecimal(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}
