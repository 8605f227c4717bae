package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"attendapi/internal/model"
	"attendapi/internal/repository"
)

// CoursePostgres is a PostgreSQL implementation of repository.CourseRepository.
type CoursePostgres struct {
	db *sql.DB
}

// NewCoursePostgres creates a new CoursePostgres repository.
func NewCoursePostgres(db *sql.DB) *CoursePostgres {
	return &CoursePostgres{db: db}
}

var _ repository.CourseRepository = (*CoursePostgres)(nil)

const courseColumns = `id, name, teacher_code, class_code, schedule_text, created_at`

func scanCourse(row interface{ Scan(...any) error }) (*model.Course, error) {
	var c model.Course
	if err := row.Scan(&c.ID, &c.Name, &c.TeacherCode, &c.ClassCode, &c.ScheduleText, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a course and returns the stored row.
func (r *CoursePostgres) Create(ctx context.Context, c *model.Course) (*model.Course, error) {
	const q = `
		INSERT INTO courses (id, name, teacher_code, class_code, schedule_text, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + courseColumns
	return scanCourse(r.db.QueryRowContext(ctx, q, c.ID, c.Name, c.TeacherCode, c.ClassCode, c.ScheduleText, c.CreatedAt))
}

// FindByID fetches a course by primary key.
func (r *CoursePostgres) FindByID(ctx context.Context, id string) (*model.Course, error) {
	const q = `SELECT ` + courseColumns + ` FROM courses WHERE id = $1`
	return scanCourse(r.db.QueryRowContext(ctx, q, id))
}

// List returns courses matching every non-empty filter field, ordered by name.
func (r *CoursePostgres) List(ctx context.Context, f repository.CourseFilter) ([]model.Course, error) {
	var (
		conds []string
		args  []any
	)
	add := func(col, val string) {
		if val == "" {
			return
		}
		args = append(args, val)
		conds = append(conds, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	add("teacher_code", f.TeacherCode)
	add("class_code", f.ClassCode)
	add("name", f.Name)

	q := `SELECT ` + courseColumns + ` FROM courses`
	if len(conds) > 0 {
		q += ` WHERE ` + strings.Join(conds, " AND ")
	}
	q += ` ORDER BY name, id`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Course, 0)
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
