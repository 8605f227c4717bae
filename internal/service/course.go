package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"attendapi/internal/logger"
	"attendapi/internal/model"
	"attendapi/internal/repository"
	"attendapi/internal/schedule"
)

// NewCourse is the input of CourseService.Create.
type NewCourse struct {
	Name         string
	TeacherCode  string
	ClassCode    string
	ScheduleText string
}

// CourseService manages courses and resolves their schedules.
type CourseService interface {
	Create(ctx context.Context, in NewCourse) (*model.Course, error)
	Get(ctx context.Context, id string) (*model.Course, error)
	ListForTeacher(ctx context.Context, teacherCode string) ([]model.Course, error)
	ListForClass(ctx context.Context, classCode string) ([]model.Course, error)
	// Sessions expands the schedule text. Unparsable text yields an empty list.
	Sessions(ctx context.Context, id string) ([]model.Session, error)
}

type courseService struct {
	courses  repository.CourseRepository
	classes  repository.ClassRepository
	users    repository.UserRepository
	resolver scheduleResolver
	log      *zap.Logger
	now      func() time.Time
}

// NewCourseService constructs a new CourseService.
func NewCourseService(
	courses repository.CourseRepository,
	classes repository.ClassRepository,
	users repository.UserRepository,
	cal *schedule.Calendar,
	log *zap.Logger,
) CourseService {
	l := logger.Component(log, "course")
	return &courseService{
		courses:  courses,
		classes:  classes,
		users:    users,
		resolver: scheduleResolver{cal: cal, log: l},
		log:      l,
		now:      time.Now,
	}
}

func (s *courseService) Create(ctx context.Context, in NewCourse) (*model.Course, error) {
	teacher, err := s.users.FindByUsername(ctx, in.TeacherCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if teacher.Role != model.RoleTeacher {
		return nil, ErrNotATeacher
	}
	if _, err := s.classes.FindByCode(ctx, in.ClassCode); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}

	c := &model.Course{
		ID:           uuid.New().String(),
		Name:         in.Name,
		TeacherCode:  in.TeacherCode,
		ClassCode:    in.ClassCode,
		ScheduleText: in.ScheduleText,
		CreatedAt:    s.now().UTC(),
	}
	// Logged only; a course with an unreadable schedule is still stored.
	s.resolver.entries(c)

	stored, err := s.courses.Create(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("create course: %w", err)
	}
	return stored, nil
}

func (s *courseService) Get(ctx context.Context, id string) (*model.Course, error) {
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

func (s *courseService) ListForTeacher(ctx context.Context, teacherCode string) ([]model.Course, error) {
	return s.courses.List(ctx, repository.CourseFilter{TeacherCode: teacherCode})
}

func (s *courseService) ListForClass(ctx context.Context, classCode string) ([]model.Course, error) {
	if classCode == "" {
		return []model.Course{}, nil
	}
	return s.courses.List(ctx, repository.CourseFilter{ClassCode: classCode})
}

func (s *courseService) Sessions(ctx context.Context, id string) ([]model.Session, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.resolver.sessions(c), nil
}
