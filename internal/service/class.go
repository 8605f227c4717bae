package service

import (
	"context"
	"crypto/subtle"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"attendapi/internal/database"
	"attendapi/internal/logger"
	"attendapi/internal/model"
	"attendapi/internal/randcode"
	"attendapi/internal/repository"
)

// VerificationCodeLength is the number of digits of a class verification code.
const VerificationCodeLength = 6

// ClassService manages roster classes and student self-binding.
type ClassService interface {
	// Create registers a class with a fresh verification code.
	Create(ctx context.Context, code, name string) (*model.Class, error)
	List(ctx context.Context) ([]model.Class, error)
	Get(ctx context.Context, code string) (*model.Class, error)
	RegenerateVerificationCode(ctx context.Context, code string) (*model.Class, error)
	// Bind attaches a student to a class after checking its verification code.
	// Binding again to the same class is a no-op.
	Bind(ctx context.Context, studentID, classCode, verificationCode string) (*model.User, error)
	ListStudents(ctx context.Context, classCode string) ([]model.User, error)
}

type classService struct {
	classes repository.ClassRepository
	users   repository.UserRepository
	log     *zap.Logger
	now     func() time.Time
}

// NewClassService constructs a new ClassService.
func NewClassService(classes repository.ClassRepository, users repository.UserRepository, log *zap.Logger) ClassService {
	return &classService{classes: classes, users: users, log: logger.Component(log, "class"), now: time.Now}
}

func (s *classService) Create(ctx context.Context, code, name string) (*model.Class, error) {
	vc, err := randcode.Digits(VerificationCodeLength)
	if err != nil {
		return nil, fmt.Errorf("verification code: %w", err)
	}
	c, err := s.classes.Create(ctx, &model.Class{
		Code:             code,
		Name:             name,
		VerificationCode: vc,
		CreatedAt:        s.now().UTC(),
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrClassExists
		}
		return nil, fmt.Errorf("create class: %w", err)
	}
	s.log.Info("class created", zap.String("event", "class_created"), zap.String("class_code", code))
	return c, nil
}

func (s *classService) List(ctx context.Context) ([]model.Class, error) {
	return s.classes.List(ctx)
}

func (s *classService) Get(ctx context.Context, code string) (*model.Class, error) {
	if code == "" {
		return nil, ErrIDRequired
	}
	c, err := s.classes.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *classService) RegenerateVerificationCode(ctx context.Context, code string) (*model.Class, error) {
	c, err := s.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	vc, err := randcode.Digits(VerificationCodeLength)
	if err != nil {
		return nil, fmt.Errorf("verification code: %w", err)
	}
	if err := s.classes.UpdateVerificationCode(ctx, code, vc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("update verification code: %w", err)
	}
	c.VerificationCode = vc
	return c, nil
}

func (s *classService) Bind(ctx context.Context, studentID, classCode, verificationCode string) (*model.User, error) {
	u, err := s.users.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if u.Role != model.RoleStudent {
		return nil, ErrForbidden
	}
	c, err := s.Get(ctx, classCode)
	if err != nil {
		return nil, err
	}
	if subtle.ConstantTimeCompare([]byte(c.VerificationCode), []byte(verificationCode)) != 1 {
		return nil, ErrVerificationMismatch
	}
	switch u.ClassCode {
	case c.Code:
		return u, nil
	case "":
	default:
		return nil, ErrAlreadyBound
	}
	if err := s.users.BindClass(ctx, u.ID, c.Code); err != nil {
		return nil, fmt.Errorf("bind class: %w", err)
	}
	u.ClassCode = c.Code
	s.log.Info("student bound",
		zap.String("event", "class_bound"),
		zap.String("username", u.Username),
		zap.String("class_code", c.Code),
	)
	return u, nil
}

func (s *classService) ListStudents(ctx context.Context, classCode string) ([]model.User, error) {
	if _, err := s.Get(ctx, classCode); err != nil {
		return nil, err
	}
	return s.users.ListByClass(ctx, classCode)
}
