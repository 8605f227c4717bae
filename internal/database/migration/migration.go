package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"

	"attendapi/internal/logger"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_classes",
		SQL: `CREATE TABLE IF NOT EXISTS classes (
  code              TEXT        PRIMARY KEY,
  name              TEXT        NOT NULL,
  verification_code CHAR(6)     NOT NULL,
  created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  username      TEXT        NOT NULL UNIQUE,
  name          TEXT        NOT NULL,
  role          TEXT        NOT NULL CHECK (role IN ('student', 'teacher', 'admin')),
  password_hash TEXT        NOT NULL,
  class_code    TEXT        NULL REFERENCES classes (code) ON UPDATE CASCADE,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_users_class_code",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_users_class_code ON users (class_code);`,
	},
	{
		Name: "create_table_courses",
		SQL: `CREATE TABLE IF NOT EXISTS courses (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  name          TEXT        NOT NULL,
  teacher_code  TEXT        NOT NULL REFERENCES users (username) ON UPDATE CASCADE,
  class_code    TEXT        NOT NULL REFERENCES classes (code) ON UPDATE CASCADE,
  schedule_text TEXT        NOT NULL DEFAULT '',
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_index_courses_teacher_code",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_courses_teacher_code ON courses (teacher_code);`,
	},
	{
		Name: "create_index_courses_class_code",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_courses_class_code ON courses (class_code);`,
	},
	{
		Name: "create_table_attendances",
		SQL: `CREATE TABLE IF NOT EXISTS attendances (
  id           UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  course_id    UUID        NOT NULL REFERENCES courses (id) ON DELETE CASCADE,
  student_code TEXT        NOT NULL REFERENCES users (username) ON UPDATE CASCADE,
  class_code   TEXT        NOT NULL,
  status       TEXT        NOT NULL CHECK (status IN ('present', 'late')),
  lesson_date  DATE        NOT NULL,
  photo_key    TEXT        NULL,
  checked_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
  UNIQUE (course_id, student_code, lesson_date)
);`,
	},
	{
		Name: "create_index_attendances_student_code",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_attendances_student_code ON attendances (student_code);`,
	},
	{
		Name: "create_index_attendances_photo_checked_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_attendances_photo_checked_at ON attendances (checked_at) WHERE photo_key IS NOT NULL;`,
	},
}

// EnsureMigrated checks if the 'attendances' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = logger.Component(log, "database").With(zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.attendances') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.String("error_message", fmt.Sprintf("failed to check sentinel table: %v", err)),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("detail", "schema already exists, skipping migration"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.String("error_message", err.Error()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
