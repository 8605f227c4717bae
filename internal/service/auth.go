package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"attendapi/internal/auth"
	"attendapi/internal/database"
	"attendapi/internal/logger"
	"attendapi/internal/model"
	"attendapi/internal/repository"
)

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Generate(u *model.User) (string, time.Time, error)
}

// LoginResult is returned on successful login.
type LoginResult struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *model.User `json:"user"`
}

// NewUser is the input of AuthService.CreateUser.
type NewUser struct {
	Username  string
	Name      string
	Role      model.Role
	Password  string
	ClassCode string
}

// AuthService covers login and account maintenance.
type AuthService interface {
	// Login verifies credentials. Unknown users and wrong passwords both yield ErrInvalidCredentials.
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error
	Me(ctx context.Context, userID string) (*model.User, error)
	// CreateUser registers an account with a hashed password.
	CreateUser(ctx context.Context, in NewUser) (*model.User, error)
}

type authService struct {
	users   repository.UserRepository
	tokens  TokenIssuer
	log     *zap.Logger
	now     func() time.Time
	compare func(hash, password string) bool
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UserRepository, tokens TokenIssuer, log *zap.Logger) AuthService {
	return &authService{
		users:   users,
		tokens:  tokens,
		log:     logger.Component(log, "auth"),
		now:     time.Now,
		compare: auth.VerifyPassword,
	}
}

func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Same bcrypt work as a wrong password so timing does not reveal unknown usernames.
			s.compare(auth.DummyHash(), password)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !s.compare(u.PasswordHash, password) {
		s.log.Info("login rejected", zap.String("event", "login_failed"), zap.String("username", username))
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.tokens.Generate(u)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &LoginResult{Token: token, ExpiresAt: exp, User: u}, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return ErrPasswordTooShort
	}
	u, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !s.compare(u.PasswordHash, oldPassword) {
		return ErrInvalidCredentials
	}
	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*model.User, error) {
	if userID == "" {
		return nil, ErrIDRequired
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

func (s *authService) CreateUser(ctx context.Context, in NewUser) (*model.User, error) {
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}
	if len(in.Password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	u, err := s.users.Create(ctx, &model.User{
		ID:           uuid.New().String(),
		Username:     in.Username,
		Name:         in.Name,
		Role:         in.Role,
		PasswordHash: hash,
		ClassCode:    in.ClassCode,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrUserExists
		}
		if database.IsForeignKeyViolation(err) {
			return nil, ErrClassNotFound
		}
		return nil, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}
