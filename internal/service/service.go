// Package service holds the attendance use cases. Services depend on repository
// interfaces and translate sql.ErrNoRows into the sentinels below.
package service

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"attendapi/internal/model"
	"attendapi/internal/schedule"
)

var (
	ErrIDRequired           = errors.New("id is required")
	ErrReaderNil            = errors.New("reader is nil")
	ErrForbidden            = errors.New("forbidden")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrPasswordTooShort     = errors.New("password must be at least 6 characters")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserExists           = errors.New("username already taken")
	ErrInvalidRole          = errors.New("invalid role")
	ErrClassNotFound        = errors.New("class not found")
	ErrClassExists          = errors.New("class already exists")
	ErrVerificationMismatch = errors.New("verification code does not match")
	ErrAlreadyBound         = errors.New("student is already bound to another class")
	ErrNotBound             = errors.New("student is not bound to a class")
	ErrCourseNotFound       = errors.New("course not found")
	ErrNotATeacher          = errors.New("teacher code does not belong to a teacher")
	ErrCodeUnknown          = errors.New("attendance code was not issued")
	ErrWrongClass           = errors.New("attendance code belongs to another class")
	ErrAlreadyCheckedIn     = errors.New("already checked in for this course today")
	ErrAttendanceNotFound   = errors.New("attendance not found")
	ErrNoPhoto              = errors.New("attendance has no photo")
	ErrInvalidDate          = errors.New("invalid date, expected YYYY-MM-DD")
	ErrImportIncomplete     = errors.New("roster import stopped before the end")
)

const minPasswordLen = 6

// Actor is the authenticated caller of a use case.
type Actor struct {
	UserID   string
	Username string
	Role     model.Role
}

// canManage reports whether the actor may see teacher-only data of a course.
func (a Actor) canManage(c *model.Course) bool {
	switch a.Role {
	case model.RoleAdmin:
		return true
	case model.RoleTeacher:
		return c.TeacherCode == a.Username
	}
	return false
}

// scheduleResolver turns stored schedule text into concrete sessions.
// Unparsable text never fails a request; it yields no sessions.
type scheduleResolver struct {
	cal *schedule.Calendar
	log *zap.Logger
}

func (r scheduleResolver) entries(c *model.Course) []schedule.Entry {
	if c.ScheduleText == "" {
		return nil
	}
	entries, err := schedule.Parse(c.ScheduleText)
	if err != nil {
		r.log.Warn("unparsable schedule",
			zap.String("event", "schedule_parse"),
			zap.String("course_id", c.ID),
			zap.String("schedule_text", c.ScheduleText),
			zap.Error(err),
		)
		return nil
	}
	return entries
}

func (r scheduleResolver) sessions(c *model.Course) []model.Session {
	entries := r.entries(c)
	if len(entries) == 0 {
		return []model.Session{}
	}
	sessions, err := r.cal.Sessions(entries)
	if err != nil {
		r.log.Warn("schedule outside lesson table",
			zap.String("event", "schedule_expand"),
			zap.String("course_id", c.ID),
			zap.Error(err),
		)
		return []model.Session{}
	}
	return sessions
}

// validID reports whether id can address a row keyed by a UUID column.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func ratio(n, d int) float64 {
	if d <= 0 {
		return 0
	}
	return math.Round(float64(n)/float64(d)*10000) / 10000
}

func today(now time.Time, loc *time.Location) string {
	return now.In(loc).Format(schedule.DateLayout)
}
