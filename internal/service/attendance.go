package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"attendapi/internal/cache"
	"attendapi/internal/database"
	"attendapi/internal/imageutil"
	"attendapi/internal/logger"
	"attendapi/internal/model"
	"attendapi/internal/qrcode"
	"attendapi/internal/repository"
	"attendapi/internal/roster"
	"attendapi/internal/schedule"
	"attendapi/internal/storage"
)

// PhotoURLExpiry is the lifetime of a presigned photo link.
const PhotoURLExpiry = 15 * time.Minute

// AttendanceOptions tune check-in rules.
type AttendanceOptions struct {
	Window        time.Duration
	LateAfter     time.Duration
	EarlyCheckIn  time.Duration
	PhotoMaxWidth int
}

// CheckInRequest is a student's scan. Photo is optional.
type CheckInRequest struct {
	StudentID string
	Code      string
	Photo     io.Reader
}

// AttendanceListResult is the service-level DTO for paginated attendance records.
type AttendanceListResult struct {
	Items []model.Attendance `json:"data"`
	Total int                `json:"total"`
}

// AttendanceService records check-ins and reports on them.
type AttendanceService interface {
	// CheckIn validates a scanned code and records the student as present or late.
	// A photo is stored before the record and removed again if the insert fails.
	CheckIn(ctx context.Context, req CheckInRequest) (*model.Attendance, error)
	// ListByCourse lists a course's records, optionally limited to one date.
	ListByCourse(ctx context.Context, actor Actor, courseID, date string, limit, offset int) (*AttendanceListResult, error)
	History(ctx context.Context, studentCode string, limit, offset int) (*AttendanceListResult, error)
	// CourseStats reports per-date presence between from and to (inclusive, either may be empty).
	CourseStats(ctx context.Context, actor Actor, courseID, from, to string) (*model.CourseStats, error)
	StudentStats(ctx context.Context, studentCode string) ([]model.StudentCourseStats, error)
	// Export writes the course report as an .xlsx workbook or a .docx sign-in sheet.
	Export(ctx context.Context, actor Actor, courseID, from, to string, format roster.Format, w io.Writer) error
	PhotoURL(ctx context.Context, actor Actor, attendanceID string) (string, error)
}

type attendanceService struct {
	attendances repository.AttendanceRepository
	courses     repository.CourseRepository
	users       repository.UserRepository
	store       storage.Storage
	registry    cache.CodeRegistry
	resolver    scheduleResolver
	opts        AttendanceOptions
	log         *zap.Logger
	now         func() time.Time
}

// NewAttendanceService constructs a new AttendanceService. registry may be nil.
func NewAttendanceService(
	attendances repository.AttendanceRepository,
	courses repository.CourseRepository,
	users repository.UserRepository,
	store storage.Storage,
	registry cache.CodeRegistry,
	cal *schedule.Calendar,
	opts AttendanceOptions,
	log *zap.Logger,
) AttendanceService {
	if opts.Window <= 0 {
		opts.Window = qrcode.DefaultWindow
	}
	if opts.PhotoMaxWidth <= 0 {
		opts.PhotoMaxWidth = 640
	}
	l := logger.Component(log, "attendance")
	return &attendanceService{
		attendances: attendances,
		courses:     courses,
		users:       users,
		store:       store,
		registry:    registry,
		resolver:    scheduleResolver{cal: cal, log: l},
		opts:        opts,
		log:         l,
		now:         time.Now,
	}
}

func (s *attendanceService) location() *time.Location {
	return s.resolver.cal.Location()
}

func (s *attendanceService) CheckIn(ctx context.Context, req CheckInRequest) (*model.Attendance, error) {
	now := s.now()
	p, err := qrcode.DecodeAndValidate(req.Code, now, s.opts.Window)
	if err != nil {
		return nil, err
	}
	if !validID(p.CourseID) {
		return nil, fmt.Errorf("%w: course id", qrcode.ErrMalformed)
	}

	if s.registry != nil {
		ok, err := s.registry.Issued(ctx, p.CourseID, p.RandomCode)
		if err != nil {
			return nil, fmt.Errorf("lookup code: %w", err)
		}
		if !ok {
			return nil, ErrCodeUnknown
		}
	}

	course, err := s.findCourse(ctx, p.CourseID)
	if err != nil {
		return nil, err
	}
	if p.TeacherCode != course.TeacherCode {
		return nil, ErrCodeUnknown
	}
	if p.ClassCode != course.ClassCode {
		return nil, ErrWrongClass
	}

	student, err := s.users.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	switch student.ClassCode {
	case "":
		return nil, ErrNotBound
	case course.ClassCode:
	default:
		return nil, ErrWrongClass
	}

	lessonDate := today(now, s.location())
	exists, err := s.attendances.Exists(ctx, course.ID, student.Username, lessonDate)
	if err != nil {
		return nil, fmt.Errorf("check duplicate: %w", err)
	}
	if exists {
		return nil, ErrAlreadyCheckedIn
	}

	status := model.StatusPresent
	if session, ok := s.resolver.cal.SessionAt(s.resolver.entries(course), now, s.opts.EarlyCheckIn); ok {
		if now.Sub(session.Start) > s.opts.LateAfter {
			status = model.StatusLate
		}
	}

	rec := &model.Attendance{
		ID:          uuid.New().String(),
		CourseID:    course.ID,
		StudentCode: student.Username,
		ClassCode:   course.ClassCode,
		Status:      status,
		LessonDate:  lessonDate,
		CheckedAt:   now.UTC(),
	}

	if req.Photo != nil {
		key, err := s.putPhoto(ctx, rec, req.Photo)
		if err != nil {
			return nil, err
		}
		rec.PhotoKey = key
	}

	stored, err := s.attendances.Create(ctx, rec)
	if err != nil {
		if rec.PhotoKey != "" {
			if delErr := s.store.Delete(ctx, rec.PhotoKey); delErr != nil {
				return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
			}
		}
		if database.IsUniqueViolation(err) {
			return nil, ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.log.Info("checked in",
		zap.String("event", "check_in"),
		zap.String("course_id", stored.CourseID),
		zap.String("student_code", stored.StudentCode),
		zap.String("status", string(stored.Status)),
	)
	return stored, nil
}

func (s *attendanceService) putPhoto(ctx context.Context, rec *model.Attendance, photo io.Reader) (string, error) {
	if s.store == nil {
		return "", errors.New("photo storage is not configured")
	}
	data, err := imageutil.ShrinkToJPEG(photo, s.opts.PhotoMaxWidth)
	if err != nil {
		return "", fmt.Errorf("process photo: %w", err)
	}
	key := path.Join("photos", rec.CourseID, rec.LessonDate, rec.StudentCode+"-"+uuid.New().String()+".jpg")
	info, err := s.store.Put(ctx, key, bytes.NewReader(data), storage.PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: "image/jpeg",
		Metadata:    map[string]string{"attendance-id": rec.ID},
	})
	if err != nil {
		return "", fmt.Errorf("upload to storage: %w", err)
	}
	return info.Key, nil
}

func (s *attendanceService) findCourse(ctx context.Context, id string) (*model.Course, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	if !validID(id) {
		return nil, ErrCourseNotFound
	}
	c, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *attendanceService) managedCourse(ctx context.Context, actor Actor, id string) (*model.Course, error) {
	c, err := s.findCourse(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.canManage(c) {
		return nil, ErrForbidden
	}
	return c, nil
}

func (s *attendanceService) checkDate(d string) error {
	if d == "" {
		return nil
	}
	if _, err := schedule.ParseDate(d, s.location()); err != nil {
		return ErrInvalidDate
	}
	return nil
}

func (s *attendanceService) ListByCourse(ctx context.Context, actor Actor, courseID, date string, limit, offset int) (*AttendanceListResult, error) {
	if err := s.checkDate(date); err != nil {
		return nil, err
	}
	if _, err := s.managedCourse(ctx, actor, courseID); err != nil {
		return nil, err
	}
	return s.list(ctx, repository.AttendanceFilter{CourseID: courseID, From: date, To: date}, limit, offset)
}

func (s *attendanceService) History(ctx context.Context, studentCode string, limit, offset int) (*AttendanceListResult, error) {
	if studentCode == "" {
		return nil, ErrIDRequired
	}
	return s.list(ctx, repository.AttendanceFilter{StudentCode: studentCode}, limit, offset)
}

func (s *attendanceService) list(ctx context.Context, f repository.AttendanceFilter, limit, offset int) (*AttendanceListResult, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	f.PageQuery = repository.PageQuery{Limit: limit, Offset: offset}
	res, err := s.attendances.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &AttendanceListResult{Items: res.Items, Total: res.Total}, nil
}

func (s *attendanceService) CourseStats(ctx context.Context, actor Actor, courseID, from, to string) (*model.CourseStats, error) {
	if err := s.checkDate(from); err != nil {
		return nil, err
	}
	if err := s.checkDate(to); err != nil {
		return nil, err
	}
	course, err := s.managedCourse(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	return s.courseStats(ctx, course, from, to)
}

func (s *attendanceService) courseStats(ctx context.Context, course *model.Course, from, to string) (*model.CourseStats, error) {
	todayStr := today(s.now(), s.location())
	if to == "" || to > todayStr {
		to = todayStr
	}

	expected, err := s.users.CountByClass(ctx, course.ClassCode)
	if err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	counts, err := s.attendances.CountByDateStatus(ctx, course.ID, from, to)
	if err != nil {
		return nil, fmt.Errorf("count attendance: %w", err)
	}

	days := map[string]*model.DailyStats{}
	day := func(d string) *model.DailyStats {
		ds, ok := days[d]
		if !ok {
			ds = &model.DailyStats{Date: d, Expected: expected}
			days[d] = ds
		}
		return ds
	}
	for _, sess := range s.resolver.sessions(course) {
		if (from == "" || sess.Date >= from) && sess.Date <= to {
			day(sess.Date)
		}
	}
	for _, c := range counts {
		ds := day(c.Date)
		switch c.Status {
		case model.StatusLate:
			ds.Late += c.Count
		default:
			ds.Present += c.Count
		}
	}

	stats := &model.CourseStats{CourseID: course.ID, Days: make([]model.DailyStats, 0, len(days))}
	for _, ds := range days {
		ds.Absent = max(ds.Expected-ds.Present-ds.Late, 0)
		ds.Rate = ratio(ds.Present+ds.Late, ds.Expected)
		stats.Days = append(stats.Days, *ds)
		stats.Expected += ds.Expected
		stats.Present += ds.Present
		stats.Late += ds.Late
		stats.Absent += ds.Absent
	}
	sort.Slice(stats.Days, func(i, j int) bool { return stats.Days[i].Date < stats.Days[j].Date })
	stats.Rate = ratio(stats.Present+stats.Late, stats.Expected)
	return stats, nil
}

func (s *attendanceService) StudentStats(ctx context.Context, studentCode string) ([]model.StudentCourseStats, error) {
	u, err := s.users.FindByUsername(ctx, studentCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	out := make([]model.StudentCourseStats, 0)
	if u.ClassCode == "" {
		return out, nil
	}

	courses, err := s.courses.List(ctx, repository.CourseFilter{ClassCode: u.ClassCode})
	if err != nil {
		return nil, err
	}
	records, err := s.attendances.List(ctx, repository.AttendanceFilter{StudentCode: studentCode})
	if err != nil {
		return nil, err
	}
	type tally struct{ attended, late int }
	byCourse := map[string]*tally{}
	for _, r := range records.Items {
		t, ok := byCourse[r.CourseID]
		if !ok {
			t = &tally{}
			byCourse[r.CourseID] = t
		}
		t.attended++
		if r.Status == model.StatusLate {
			t.late++
		}
	}

	now := s.now()
	for i := range courses {
		c := &courses[i]
		held := 0
		for _, sess := range s.resolver.sessions(c) {
			if !sess.Start.After(now) {
				held++
			}
		}
		st := model.StudentCourseStats{CourseID: c.ID, CourseName: c.Name, SessionsSoFar: held}
		if t, ok := byCourse[c.ID]; ok {
			st.Attended = t.attended
			st.Late = t.late
		}
		st.Rate = min(ratio(st.Attended, held), 1)
		out = append(out, st)
	}
	return out, nil
}

func (s *attendanceService) Export(ctx context.Context, actor Actor, courseID, from, to string, format roster.Format, w io.Writer) error {
	if w == nil {
		return errors.New("writer is nil")
	}
	if format != roster.FormatXLSX && format != roster.FormatDOCX {
		return roster.ErrUnknownFormat
	}
	stats, err := s.CourseStats(ctx, actor, courseID, from, to)
	if err != nil {
		return err
	}
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return err
	}
	students, err := s.users.ListByClass(ctx, course.ClassCode)
	if err != nil {
		return fmt.Errorf("list students: %w", err)
	}
	res, err := s.attendances.List(ctx, repository.AttendanceFilter{CourseID: courseID, From: from, To: to})
	if err != nil {
		return fmt.Errorf("list attendance: %w", err)
	}

	names := make(map[string]string, len(students))
	for _, u := range students {
		names[u.Username] = u.Name
	}
	seen := map[string]bool{}
	records := make([]roster.ReportRecord, 0, len(res.Items))
	for _, a := range res.Items {
		seen[a.LessonDate+"|"+a.StudentCode] = true
		records = append(records, roster.ReportRecord{
			StudentCode: a.StudentCode,
			StudentName: names[a.StudentCode],
			Date:        a.LessonDate,
			Status:      string(a.Status),
			CheckedAt:   a.CheckedAt,
		})
	}
	for _, d := range stats.Days {
		for _, u := range students {
			if !seen[d.Date+"|"+u.Username] {
				records = append(records, roster.ReportRecord{
					StudentCode: u.Username,
					StudentName: u.Name,
					Date:        d.Date,
					Status:      "absent",
				})
			}
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].StudentCode < records[j].StudentCode
	})

	return roster.Write(w, format, course, stats, records, s.location())
}

func (s *attendanceService) PhotoURL(ctx context.Context, actor Actor, attendanceID string) (string, error) {
	if attendanceID == "" {
		return "", ErrIDRequired
	}
	if !validID(attendanceID) {
		return "", ErrAttendanceNotFound
	}
	a, err := s.attendances.FindByID(ctx, attendanceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrAttendanceNotFound
		}
		return "", err
	}
	if _, err := s.managedCourse(ctx, actor, a.CourseID); err != nil {
		return "", err
	}
	if a.PhotoKey == "" {
		return "", ErrNoPhoto
	}
	return s.store.PresignGet(ctx, a.PhotoKey, PhotoURLExpiry)
}
