// Package schedule parses course schedule text such as "3周 星期二[1-2节]教学楼A101"
// and resolves it against a teaching calendar into concrete dated sessions.
package schedule

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

var (
	ErrUnrecognized = errors.New("unrecognized schedule text")
	ErrLessonRange  = errors.New("lesson index out of range")
	ErrWeekRange    = errors.New("invalid week range")
)

// MaxWeek is the last teaching week a schedule may name.
const MaxWeek = 60

// Entry is one parsed schedule line.
type Entry struct {
	Weeks       []int
	Weekday     time.Weekday
	FirstLesson int
	LastLesson  int
	Location    string
}

var (
	entryRe = regexp.MustCompile(`^\s*([0-9,，\-\s]+?)\s*(单|双)?\s*周\s*星期([一二三四五六日天])\s*\[\s*(\d+)\s*(?:-\s*(\d+)\s*)?节\s*\]\s*(.*?)\s*$`)

	entrySplitter = regexp.MustCompile(`[;；\n]+`)

	weekdays = map[string]time.Weekday{
		"一": time.Monday,
		"二": time.Tuesday,
		"三": time.Wednesday,
		"四": time.Thursday,
		"五": time.Friday,
		"六": time.Saturday,
		"日": time.Sunday,
		"天": time.Sunday,
	}
)

// Parse reads every entry in text. Entries may be separated by ';', '；' or newlines.
func Parse(text string) ([]Entry, error) {
	var entries []Entry
	for _, piece := range entrySplitter.Split(text, -1) {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		e, err := parseEntry(piece)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if len(entries) == 0 {
		return nil, ErrUnrecognized
	}
	return entries, nil
}

func parseEntry(piece string) (Entry, error) {
	m := entryRe.FindStringSubmatch(piece)
	if m == nil {
		return Entry{}, fmt.Errorf("%w: %q", ErrUnrecognized, strings.TrimSpace(piece))
	}

	weeks, err := parseWeeks(m[1], m[2])
	if err != nil {
		return Entry{}, err
	}

	first, _ := strconv.Atoi(m[4])
	last := first
	if m[5] != "" {
		last, _ = strconv.Atoi(m[5])
	}
	if first < 1 || last < first {
		return Entry{}, fmt.Errorf("%w: [%d-%d]", ErrLessonRange, first, last)
	}

	return Entry{
		Weeks:       weeks,
		Weekday:     weekdays[m[3]],
		FirstLesson: first,
		LastLesson:  last,
		Location:    m[6],
	}, nil
}

// parseWeeks expands "3", "1-16", "1,3,5-7" and applies an odd/even filter.
func parseWeeks(spec, parity string) ([]int, error) {
	seen := make(map[int]struct{})
	for _, tok := range strings.FieldsFunc(spec, func(r rune) bool { return r == ',' || r == '，' }) {
		tok = strings.ReplaceAll(tok, " ", "")
		if tok == "" {
			continue
		}
		from, to, err := parseWeekToken(tok)
		if err != nil {
			return nil, err
		}
		for w := from; w <= to; w++ {
			switch parity {
			case "单":
				if w%2 == 0 {
					continue
				}
			case "双":
				if w%2 == 1 {
					continue
				}
			}
			seen[w] = struct{}{}
		}
	}
	if len(seen) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrWeekRange, spec)
	}
	weeks := make([]int, 0, len(seen))
	for w := range seen {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks, nil
}

func parseWeekToken(tok string) (int, int, error) {
	lo, hi, isRange := strings.Cut(tok, "-")
	from, err := strconv.Atoi(lo)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrWeekRange, tok)
	}
	to := from
	if isRange {
		to, err = strconv.Atoi(hi)
		if err != nil {
			return 0, 0, fmt.Errorf("%w: %q", ErrWeekRange, tok)
		}
	}
	if from < 1 || to < from || to > MaxWeek {
		return 0, 0, fmt.Errorf("%w: %q", ErrWeekRange, tok)
	}
	return from, to, nil
}
