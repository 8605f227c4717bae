package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"attendapi/internal/auth"
	"attendapi/internal/logger"
	"attendapi/internal/model"
	"attendapi/internal/randcode"
	"attendapi/internal/repository"
	"attendapi/internal/roster"
)

// ImportReport summarizes a roster import.
type ImportReport struct {
	CreatedClasses  int               `json:"created_classes"`
	CreatedStudents int               `json:"created_students"`
	CreatedTeachers int               `json:"created_teachers"`
	CreatedCourses  int               `json:"created_courses"`
	Skipped         int               `json:"skipped"`
	Errors          []roster.RowError `json:"errors"`
}

// RosterService bulk-loads classes, people and courses from a workbook.
type RosterService interface {
	// Import is additive: existing classes, users and courses are skipped.
	// When a repository call fails part way, the rows written so far stay
	// committed and the returned report counts them alongside an error
	// wrapping ErrImportIncomplete. Rerunning the same workbook resumes.
	Import(ctx context.Context, r io.Reader) (*ImportReport, error)
}

type rosterService struct {
	users           repository.UserRepository
	classes         repository.ClassRepository
	courses         repository.CourseRepository
	defaultPassword string
	log             *zap.Logger
	now             func() time.Time
}

// NewRosterService constructs a new RosterService. An empty defaultPassword
// makes every imported user's initial password equal to the username.
func NewRosterService(
	users repository.UserRepository,
	classes repository.ClassRepository,
	courses repository.CourseRepository,
	defaultPassword string,
	log *zap.Logger,
) RosterService {
	return &rosterService{
		users:           users,
		classes:         classes,
		courses:         courses,
		defaultPassword: defaultPassword,
		log:             logger.Component(log, "roster"),
		now:             time.Now,
	}
}

// importRun carries per-import state.
type importRun struct {
	*rosterService
	report     *ImportReport
	sharedHash string
}

func (s *rosterService) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	wb, err := roster.Read(r)
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}

	run := &importRun{rosterService: s, report: &ImportReport{Errors: append([]roster.RowError{}, wb.Errors...)}}
	if s.defaultPassword != "" {
		if run.sharedHash, err = auth.HashPassword(s.defaultPassword); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}

	if err := run.apply(ctx, wb); err != nil {
		s.log.Error("roster import stopped",
			zap.String("event", "roster_import"),
			zap.Error(err),
			zap.Int("created_classes", run.report.CreatedClasses),
			zap.Int("created_students", run.report.CreatedStudents),
			zap.Int("created_teachers", run.report.CreatedTeachers),
			zap.Int("created_courses", run.report.CreatedCourses),
		)
		return run.report, fmt.Errorf("%w: %w", ErrImportIncomplete, err)
	}

	s.log.Info("roster imported",
		zap.String("event", "roster_import"),
		zap.Int("created_classes", run.report.CreatedClasses),
		zap.Int("created_students", run.report.CreatedStudents),
		zap.Int("created_teachers", run.report.CreatedTeachers),
		zap.Int("created_courses", run.report.CreatedCourses),
		zap.Int("skipped", run.report.Skipped),
		zap.Int("errors", len(run.report.Errors)),
	)
	return run.report, nil
}

// apply writes the workbook sheet by sheet, stopping at the first repository error.
func (r *importRun) apply(ctx context.Context, wb *roster.Workbook) error {
	for _, row := range wb.Classes {
		created, err := r.ensureClass(ctx, row.Code, row.Name)
		if err != nil {
			return err
		}
		if !created {
			r.report.Skipped++
		}
	}
	for _, row := range wb.Teachers {
		if err := r.addUser(ctx, roster.SheetTeachers, row.Row, row.Username, row.Name, model.RoleTeacher, ""); err != nil {
			return err
		}
	}
	for _, row := range wb.Students {
		if row.ClassCode != "" {
			if _, err := r.ensureClass(ctx, row.ClassCode, row.ClassCode); err != nil {
				return err
			}
		}
		if err := r.addUser(ctx, roster.SheetStudents, row.Row, row.Username, row.Name, model.RoleStudent, row.ClassCode); err != nil {
			return err
		}
	}
	for _, row := range wb.Courses {
		if err := r.addCourse(ctx, row); err != nil {
			return err
		}
	}
	return nil
}

func (r *importRun) ensureClass(ctx context.Context, code, name string) (bool, error) {
	_, err := r.classes.FindByCode(ctx, code)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, err
	}
	vc, err := randcode.Digits(VerificationCodeLength)
	if err != nil {
		return false, fmt.Errorf("verification code: %w", err)
	}
	if _, err := r.classes.Create(ctx, &model.Class{
		Code:             code,
		Name:             name,
		VerificationCode: vc,
		CreatedAt:        r.now().UTC(),
	}); err != nil {
		return false, fmt.Errorf("create class %s: %w", code, err)
	}
	r.report.CreatedClasses++
	return true, nil
}

func (r *importRun) addUser(ctx context.Context, sheet string, row int, username, name string, role model.Role, classCode string) error {
	existing, err := r.users.FindByUsername(ctx, username)
	if err == nil {
		if existing.Role != role {
			r.report.Errors = append(r.report.Errors, roster.RowError{
				Sheet:   sheet,
				Row:     row,
				Message: fmt.Sprintf("username %s already belongs to a %s", username, existing.Role),
			})
			return nil
		}
		r.report.Skipped++
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	hash := r.sharedHash
	if hash == "" {
		if hash, err = auth.HashPassword(username); err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
	}
	now := r.now().UTC()
	if _, err := r.users.Create(ctx, &model.User{
		ID:           uuid.New().String(),
		Username:     username,
		Name:         name,
		Role:         role,
		PasswordHash: hash,
		ClassCode:    classCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return fmt.Errorf("create user %s: %w", username, err)
	}
	if role == model.RoleTeacher {
		r.report.CreatedTeachers++
	} else {
		r.report.CreatedStudents++
	}
	return nil
}

func (r *importRun) addCourse(ctx context.Context, row roster.CourseRow) error {
	fail := func(msg string) error {
		r.report.Errors = append(r.report.Errors, roster.RowError{Sheet: roster.SheetCourses, Row: row.Row, Message: msg})
		return nil
	}

	teacher, err := r.users.FindByUsername(ctx, row.TeacherCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail("unknown teacher " + row.TeacherCode)
		}
		return err
	}
	if teacher.Role != model.RoleTeacher {
		return fail(row.TeacherCode + " is not a teacher")
	}
	if _, err := r.classes.FindByCode(ctx, row.ClassCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fail("unknown class " + row.ClassCode)
		}
		return err
	}

	existing, err := r.courses.List(ctx, repository.CourseFilter{
		TeacherCode: row.TeacherCode,
		ClassCode:   row.ClassCode,
		Name:        row.Name,
	})
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		r.report.Skipped++
		return nil
	}

	if _, err := r.courses.Create(ctx, &model.Course{
		ID:           uuid.New().String(),
		Name:         row.Name,
		TeacherCode:  row.TeacherCode,
		ClassCode:    row.ClassCode,
		ScheduleText: row.ScheduleText,
		CreatedAt:    r.now().UTC(),
	}); err != nil {
		return fmt.Errorf("create course %s: %w", row.Name, err)
	}
	r.report.CreatedCourses++
	return nil
}
