package postgres

import (
	"context"
	"database/sql"

	"attendapi/internal/model"
	"attendapi/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, username, name, role, password_hash, class_code, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var (
		u         model.User
		classCode sql.NullString
	)
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Name,
		&u.Role,
		&u.PasswordHash,
		&classCode,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	u.ClassCode = classCode.String
	return &u, nil
}

// Create inserts a user and returns the stored row.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, username, name, role, password_hash, class_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + userColumns
	return scanUser(r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Username,
		u.Name,
		u.Role,
		u.PasswordHash,
		nullString(u.ClassCode),
		u.CreatedAt,
		u.UpdatedAt,
	))
}

// FindByID fetches a user by primary key.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByUsername fetches a user by login name.
func (r *UserPostgres) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, username))
}

// ListByClass returns the students of a class.
func (r *UserPostgres) ListByClass(ctx context.Context, classCode string) ([]model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE class_code = $1 AND role = 'student' ORDER BY username`
	rows, err := r.db.QueryContext(ctx, q, classCode)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

// CountByClass counts the students of a class.
func (r *UserPostgres) CountByClass(ctx context.Context, classCode string) (int, error) {
	const q = `SELECT COUNT(*) FROM users WHERE class_code = $1 AND role = 'student'`
	var n int
	if err := r.db.QueryRowContext(ctx, q, classCode).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// UpdatePassword replaces a user's password hash.
func (r *UserPostgres) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`
	return execOne(ctx, r.db, q, id, passwordHash)
}

// BindClass sets a student's class.
func (r *UserPostgres) BindClass(ctx context.Context, id, classCode string) error {
	const q = `UPDATE users SET class_code = $2, updated_at = now() WHERE id = $1`
	return execOne(ctx, r.db, q, id, classCode)
}
