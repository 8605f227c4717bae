package schedule

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"attendapi/internal/model"
)

// DateLayout is the calendar date format used across the API.
const DateLayout = "2006-01-02"

// LessonTime is a lesson's start and end as offsets from local midnight.
type LessonTime struct {
	Start time.Duration
	End   time.Duration
}

// DefaultLessons is the twelve-lesson day used when no override is configured.
var DefaultLessons = mustLessonTimes("08:00-08:45,08:55-09:40,10:00-10:45,10:55-11:40," +
	"14:00-14:45,14:55-15:40,16:00-16:45,16:55-17:40," +
	"19:00-19:45,19:55-20:40,20:50-21:35,21:45-22:30")

// Calendar maps teaching weeks onto real dates.
type Calendar struct {
	start    time.Time
	lessons  []LessonTime
	location *time.Location
}

// NewCalendar builds a calendar whose week 1 is the Monday-started week containing semesterStart.
// A nil lesson table means DefaultLessons.
func NewCalendar(semesterStart time.Time, lessons []LessonTime, loc *time.Location) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	if len(lessons) == 0 {
		lessons = DefaultLessons
	}
	d := midnight(semesterStart.In(loc))
	d = d.AddDate(0, 0, -mondayOffset(d.Weekday()))
	return &Calendar{start: d, lessons: lessons, location: loc}
}

// Start returns the Monday of week 1.
func (c *Calendar) Start() time.Time { return c.start }

// Location returns the calendar's timezone.
func (c *Calendar) Location() *time.Location { return c.location }

// WeekOf returns the 1-based teaching week containing t, or 0 before the semester.
func (c *Calendar) WeekOf(t time.Time) int {
	d := midnight(t.In(c.location))
	if d.Before(c.start) {
		return 0
	}
	days := int(math.Round(d.Sub(c.start).Hours() / 24))
	return days/7 + 1
}

// Sessions expands entries into dated sessions sorted by start time.
func (c *Calendar) Sessions(entries []Entry) ([]model.Session, error) {
	var out []model.Session
	for _, e := range entries {
		if e.LastLesson > len(c.lessons) {
			return nil, fmt.Errorf("%w: lesson %d of %d", ErrLessonRange, e.LastLesson, len(c.lessons))
		}
		first := c.lessons[e.FirstLesson-1]
		last := c.lessons[e.LastLesson-1]
		for _, w := range e.Weeks {
			day := c.start.AddDate(0, 0, (w-1)*7+mondayOffset(e.Weekday))
			out = append(out, model.Session{
				Week:     w,
				Date:     day.Format(DateLayout),
				Start:    day.Add(first.Start),
				End:      day.Add(last.End),
				Location: e.Location,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

// SessionAt finds the session running at t. A session counts as running from
// early before its start until its end.
func (c *Calendar) SessionAt(entries []Entry, t time.Time, early time.Duration) (model.Session, bool) {
	sessions, err := c.Sessions(entries)
	if err != nil {
		return model.Session{}, false
	}
	date := t.In(c.location).Format(DateLayout)
	for _, s := range sessions {
		if s.Date != date {
			continue
		}
		if !t.Before(s.Start.Add(-early)) && !t.After(s.End) {
			return s, true
		}
	}
	return model.Session{}, false
}

// ParseLessonTimes reads a comma-separated "HH:MM-HH:MM" list.
func ParseLessonTimes(s string) ([]LessonTime, error) {
	var out []LessonTime
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		from, to, ok := strings.Cut(tok, "-")
		if !ok {
			return nil, fmt.Errorf("lesson time %q: expected HH:MM-HH:MM", tok)
		}
		start, err := clockOffset(from)
		if err != nil {
			return nil, err
		}
		end, err := clockOffset(to)
		if err != nil {
			return nil, err
		}
		if end <= start {
			return nil, fmt.Errorf("lesson time %q: end before start", tok)
		}
		out = append(out, LessonTime{Start: start, End: end})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("lesson times: empty")
	}
	return out, nil
}

// ParseDate reads a YYYY-MM-DD date at midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), loc)
}

func clockOffset(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("clock %q: %w", s, err)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

func mustLessonTimes(s string) []LessonTime {
	lt, err := ParseLessonTimes(s)
	if err != nil {
		panic(err)
	}
	return lt
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// mondayOffset is the number of days from Monday to wd.
func mondayOffset(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
