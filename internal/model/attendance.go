package model

import "time"

// AttendanceStatus is the outcome recorded for one scan.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "present"
	StatusLate    AttendanceStatus = "late"
)

// Attendance is one student's check-in to a course on a given day.
type Attendance struct {
	ID          string           `json:"id"`
	CourseID    string           `json:"course_id"`
	StudentCode string           `json:"student_code"`
	ClassCode   string           `json:"class_code"`
	Status      AttendanceStatus `json:"status"`
	// LessonDate is the local calendar date (YYYY-MM-DD) of the check-in.
	LessonDate string    `json:"lesson_date"`
	PhotoKey   string    `json:"photo_key,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}

// DailyStats aggregates a course's attendance for one date.
type DailyStats struct {
	Date     string  `json:"date"`
	Expected int     `json:"expected"`
	Present  int     `json:"present"`
	Late     int     `json:"late"`
	Absent   int     `json:"absent"`
	Rate     float64 `json:"rate"`
}

// CourseStats aggregates a course's attendance over a date range.
type CourseStats struct {
	CourseID string       `json:"course_id"`
	Days     []DailyStats `json:"days"`
	Expected int          `json:"expected"`
	Present  int          `json:"present"`
	Late     int          `json:"late"`
	Absent   int          `json:"absent"`
	Rate     float64      `json:"rate"`
}

// StudentCourseStats is one course's line in a student's summary.
type StudentCourseStats struct {
	CourseID      string  `json:"course_id"`
	CourseName    string  `json:"course_name"`
	Attended      int     `json:"attended"`
	Late          int     `json:"late"`
	SessionsSoFar int     `json:"sessions_so_far"`
	Rate          float64 `json:"rate"`
}

// StatusCount is a (date, status) aggregate row.
type StatusCount struct {
	Date   string
	Status AttendanceStatus
	Count  int
}
