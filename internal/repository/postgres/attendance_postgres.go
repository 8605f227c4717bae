package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"attendapi/internal/model"
	"attendapi/internal/repository"
)

// AttendancePostgres is a PostgreSQL implementation of repository.AttendanceRepository.
type AttendancePostgres struct {
	db *sql.DB
}

// NewAttendancePostgres creates a new AttendancePostgres repository.
func NewAttendancePostgres(db *sql.DB) *AttendancePostgres {
	return &AttendancePostgres{db: db}
}

var _ repository.AttendanceRepository = (*AttendancePostgres)(nil)

const attendanceColumns = `id, course_id, student_code, class_code, status, to_char(lesson_date, 'YYYY-MM-DD'), photo_key, checked_at`

func scanAttendance(row interface{ Scan(...any) error }) (*model.Attendance, error) {
	var (
		a        model.Attendance
		photoKey sql.NullString
	)
	if err := row.Scan(
		&a.ID,
		&a.CourseID,
		&a.StudentCode,
		&a.ClassCode,
		&a.Status,
		&a.LessonDate,
		&photoKey,
		&a.CheckedAt,
	); err != nil {
		return nil, err
	}
	a.PhotoKey = photoKey.String
	return &a, nil
}

// Create inserts a check-in and returns the stored row.
func (r *AttendancePostgres) Create(ctx context.Context, a *model.Attendance) (*model.Attendance, error) {
	const q = `
		INSERT INTO attendances (id, course_id, student_code, class_code, status, lesson_date, photo_key, checked_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + attendanceColumns
	return scanAttendance(r.db.QueryRowContext(ctx, q,
		a.ID,
		a.CourseID,
		a.StudentCode,
		a.ClassCode,
		a.Status,
		a.LessonDate,
		nullString(a.PhotoKey),
		a.CheckedAt,
	))
}

// FindByID fetches a check-in by primary key.
func (r *AttendancePostgres) FindByID(ctx context.Context, id string) (*model.Attendance, error) {
	const q = `SELECT ` + attendanceColumns + ` FROM attendances WHERE id = $1`
	return scanAttendance(r.db.QueryRowContext(ctx, q, id))
}

// Exists reports whether the student already checked in to the course on lessonDate.
func (r *AttendancePostgres) Exists(ctx context.Context, courseID, studentCode, lessonDate string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM attendances WHERE course_id = $1 AND student_code = $2 AND lesson_date = $3)`
	var ok bool
	if err := r.db.QueryRowContext(ctx, q, courseID, studentCode, lessonDate).Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func attendanceWhere(f repository.AttendanceFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(expr, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(expr, len(args)))
	}
	add("course_id = $%d", f.CourseID)
	add("student_code = $%d", f.StudentCode)
	add("lesson_date >= $%d", f.From)
	add("lesson_date <= $%d", f.To)
	if len(conds) == 0 {
		return "", nil
	}
	return ` WHERE ` + strings.Join(conds, " AND "), args
}

// List returns check-ins newest first with a total count. A zero Limit returns every match.
func (r *AttendancePostgres) List(ctx context.Context, f repository.AttendanceFilter) (*repository.PageResult[model.Attendance], error) {
	where, args := attendanceWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendances`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	q := `SELECT ` + attendanceColumns + ` FROM attendances` + where + ` ORDER BY checked_at DESC, id DESC`
	if f.Limit > 0 {
		args = append(args, f.Limit, f.Offset)
		q += fmt.Sprintf(` LIMIT $%d OFFSET $%d`, len(args)-1, len(args))
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Attendance, 0)
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Attendance]{Items: items, Total: total}, nil
}

// CountByDateStatus aggregates one course per lesson date and status.
func (r *AttendancePostgres) CountByDateStatus(ctx context.Context, courseID, from, to string) ([]model.StatusCount, error) {
	where, args := attendanceWhere(repository.AttendanceFilter{CourseID: courseID, From: from, To: to})
	q := `SELECT to_char(lesson_date, 'YYYY-MM-DD') AS d, status, COUNT(*) FROM attendances` + where +
		` GROUP BY d, status ORDER BY d, status`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.StatusCount, 0)
	for rows.Next() {
		var sc model.StatusCount
		if err := rows.Scan(&sc.Date, &sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListWithPhotoBefore returns the oldest records still holding a photo.
func (r *AttendancePostgres) ListWithPhotoBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.Attendance, error) {
	const q = `SELECT ` + attendanceColumns + ` FROM attendances
		WHERE photo_key IS NOT NULL AND checked_at < $1
		ORDER BY checked_at
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, q, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Attendance, 0)
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ClearPhoto drops the photo reference of a record.
func (r *AttendancePostgres) ClearPhoto(ctx context.Context, id string) error {
	const q = `UPDATE attendances SET photo_key = NULL WHERE id = $1`
	return execOne(ctx, r.db, q, id)
}
