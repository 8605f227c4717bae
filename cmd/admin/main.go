// Command admin runs maintenance tasks against the attendance database:
// schema migration, account creation, roster import and photo purging.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"attendapi/internal/config"
	"attendapi/internal/database"
	"attendapi/internal/database/migration"
	"attendapi/internal/logger"
	"attendapi/internal/model"
	"attendapi/internal/repository/postgres"
	"attendapi/internal/service"
	"attendapi/internal/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// env is shared by all subcommands and filled in PersistentPreRunE.
type env struct {
	cfg *config.AppConfig
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Attendance maintenance tasks",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			e.cfg = config.Load()
			l, err := logger.New(e.cfg.LogLevel, e.cfg.Location())
			if err != nil {
				return err
			}
			e.log = l
			return nil
		},
	}
	root.AddCommand(
		newMigrateCmd(e),
		newCreateUserCmd(e),
		newImportCmd(e),
		newPurgePhotosCmd(e),
	)
	return root
}

func (e *env) openDB() (*sql.DB, error) {
	db, err := database.NewPostgres(e.cfg.Database, e.cfg.Timezone, e.log)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the schema when it does not exist yet",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := e.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			return migration.EnsureMigrated(cmd.Context(), db, e.log, e.cfg.Database.Host)
		},
	}
}

func newCreateUserCmd(e *env) *cobra.Command {
	var in service.NewUser
	var role string
	cmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create an admin, teacher or student account",
		Long: `Create a single account. Students may be bound to a class with --class.

Example:
  admin create-user --username admin --name Administrator --role admin --password changeme`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in.Role = model.Role(role)
			if !in.Role.Valid() {
				return fmt.Errorf("invalid role %q: want student, teacher or admin", role)
			}
			db, err := e.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			// Tokens are never issued here.
			svc := service.NewAuthService(postgres.NewUserPostgres(db), nil, e.log)
			u, err := svc.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			return printJSON(cmd, u)
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "login name (student number or teacher code)")
	cmd.Flags().StringVar(&in.Name, "name", "", "display name")
	cmd.Flags().StringVar(&role, "role", string(model.RoleStudent), "student, teacher or admin")
	cmd.Flags().StringVar(&in.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&in.ClassCode, "class", "", "class code for students")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func newImportCmd(e *env) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import classes, teachers, students and courses from an .xlsx roster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := os.Open(path)
			if err != nil {
				return err
			}
			defer f.Close()

			db, err := e.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			svc := service.NewRosterService(
				postgres.NewUserPostgres(db),
				postgres.NewClassPostgres(db),
				postgres.NewCoursePostgres(db),
				e.cfg.Import.DefaultPassword,
				e.log,
			)
			report, err := svc.Import(cmd.Context(), f)
			if err != nil {
				if report != nil {
					_ = printJSON(cmd, report)
				}
				return err
			}
			return printJSON(cmd, report)
		},
	}
	cmd.Flags().StringVarP(&path, "file", "f", "", "roster workbook")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newPurgePhotosCmd(e *env) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "purge-photos",
		Short: "Delete check-in photos older than the retention period",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("older-than-days") {
				days = e.cfg.Photo.RetentionDays
			}
			if days < 0 {
				return fmt.Errorf("older-than-days must not be negative")
			}
			db, err := e.openDB()
			if err != nil {
				return err
			}
			defer db.Close()
			store, err := storage.NewMinIO(e.cfg.MinIO)
			if err != nil {
				return fmt.Errorf("object storage: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Minute)
			defer cancel()
			svc := service.NewCleanupService(postgres.NewAttendancePostgres(db), store, e.log)
			n, err := svc.PurgePhotos(ctx, time.Now().AddDate(0, 0, -days))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed %d photos\n", n)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "older-than-days", 0, "age threshold in days (default PHOTO_RETENTION_DAYS)")
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
