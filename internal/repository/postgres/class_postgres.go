package postgres

import (
	"context"
	"database/sql"

	"attendapi/internal/model"
	"attendapi/internal/repository"
)

// ClassPostgres is a PostgreSQL implementation of repository.ClassRepository.
type ClassPostgres struct {
	db *sql.DB
}

// NewClassPostgres creates a new ClassPostgres repository.
func NewClassPostgres(db *sql.DB) *ClassPostgres {
	return &ClassPostgres{db: db}
}

var _ repository.ClassRepository = (*ClassPostgres)(nil)

// Create inserts a class and returns the stored row.
func (r *ClassPostgres) Create(ctx context.Context, c *model.Class) (*model.Class, error) {
	const q = `
		INSERT INTO classes (code, name, verification_code, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING code, name, verification_code, created_at
	`
	var out model.Class
	if err := r.db.QueryRowContext(ctx, q, c.Code, c.Name, c.VerificationCode, c.CreatedAt).Scan(
		&out.Code,
		&out.Name,
		&out.VerificationCode,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByCode fetches a class by its code.
func (r *ClassPostgres) FindByCode(ctx context.Context, code string) (*model.Class, error) {
	const q = `SELECT code, name, verification_code, created_at FROM classes WHERE code = $1`
	var c model.Class
	if err := r.db.QueryRowContext(ctx, q, code).Scan(&c.Code, &c.Name, &c.VerificationCode, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns every class ordered by code.
func (r *ClassPostgres) List(ctx context.Context) ([]model.Class, error) {
	const q = `SELECT code, name, verification_code, created_at FROM classes ORDER BY code`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Class, 0)
	for rows.Next() {
		var c model.Class
		if err := rows.Scan(&c.Code, &c.Name, &c.VerificationCode, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateVerificationCode replaces the class verification code.
func (r *ClassPostgres) UpdateVerificationCode(ctx context.Context, code, verificationCode string) error {
	const q = `UPDATE classes SET verification_code = $2 WHERE code = $1`
	return execOne(ctx, r.db, q, code, verificationCode)
}
