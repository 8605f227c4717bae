// Package repository contains data access layer abstractions.
// Implementations live in subpackages (postgres). Lookups of a missing row return sql.ErrNoRows.
package repository

import (
	"context"
	"time"

	"attendapi/internal/model"
)

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}

// UserRepository persists accounts.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	// ListByClass returns students bound to classCode ordered by username.
	ListByClass(ctx context.Context, classCode string) ([]model.User, error)
	CountByClass(ctx context.Context, classCode string) (int, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	BindClass(ctx context.Context, id, classCode string) error
}

// ClassRepository persists roster classes.
type ClassRepository interface {
	Create(ctx context.Context, c *model.Class) (*model.Class, error)
	FindByCode(ctx context.Context, code string) (*model.Class, error)
	List(ctx context.Context) ([]model.Class, error)
	UpdateVerificationCode(ctx context.Context, code, verificationCode string) error
}

// CourseFilter narrows CourseRepository.List. Empty fields are ignored.
type CourseFilter struct {
	TeacherCode string
	ClassCode   string
	Name        string
}

// CourseRepository persists courses.
type CourseRepository interface {
	Create(ctx context.Context, c *model.Course) (*model.Course, error)
	FindByID(ctx context.Context, id string) (*model.Course, error)
	List(ctx context.Context, f CourseFilter) ([]model.Course, error)
}

// AttendanceFilter narrows AttendanceRepository.List. Empty fields are ignored;
// From and To are inclusive YYYY-MM-DD dates.
type AttendanceFilter struct {
	CourseID    string
	StudentCode string
	From        string
	To          string
	PageQuery
}

// AttendanceRepository persists check-ins.
type AttendanceRepository interface {
	Create(ctx context.Context, a *model.Attendance) (*model.Attendance, error)
	FindByID(ctx context.Context, id string) (*model.Attendance, error)
	Exists(ctx context.Context, courseID, studentCode, lessonDate string) (bool, error)
	List(ctx context.Context, f AttendanceFilter) (*PageResult[model.Attendance], error)
	// CountByDateStatus aggregates a course's records per lesson date and status.
	CountByDateStatus(ctx context.Context, courseID, from, to string) ([]model.StatusCount, error)
	// ListWithPhotoBefore returns up to limit records holding a photo checked in before cutoff.
	ListWithPhotoBefore(ctx context.Context, cutoff time.Time, limit int) ([]model.Attendance, error)
	ClearPhoto(ctx context.Context, id string) error
}
