package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"attendapi/docs"
	"attendapi/internal/auth"
	"attendapi/internal/cache"
	"attendapi/internal/config"
	"attendapi/internal/database"
	"attendapi/internal/database/migration"
	handlers "attendapi/internal/http/handler"
	"attendapi/internal/http/middleware"
	"attendapi/internal/job"
	"attendapi/internal/logger"
	"attendapi/internal/otel"
	"attendapi/internal/repository/postgres"
	"attendapi/internal/schedule"
	"attendapi/internal/service"
	"attendapi/internal/storage"
)

// @title Attendance API
// @version 1.0
// @description QR code classroom attendance.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := cfg.Location()

	log, err := logger.New(cfg.LogLevel, loc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		log.Fatal("failed to initialize tracing", zap.Error(err))
	}

	db, err := database.NewPostgres(cfg.Database, cfg.Timezone, log)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}

	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatal("failed to initialize object storage", zap.Error(err))
	}

	// Issued-code registry is optional; without it any well-formed fresh code is accepted.
	var registry cache.CodeRegistry
	rdb, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		log.Fatal("failed to connect to redis", zap.Error(err))
	}
	if rdb != nil {
		defer rdb.Close()
		registry = cache.NewRedisCodeRegistry(rdb)
	} else {
		log.Warn("redis not configured, issued QR codes are not tracked")
	}

	cal, err := newCalendar(cfg.Schedule, loc)
	if err != nil {
		log.Fatal("invalid schedule configuration", zap.Error(err))
	}

	tokens, err := auth.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.TTL)
	if err != nil {
		log.Fatal("invalid JWT configuration", zap.Error(err))
	}

	// Repositories and services
	userRepo := postgres.NewUserPostgres(db)
	classRepo := postgres.NewClassPostgres(db)
	courseRepo := postgres.NewCoursePostgres(db)
	attendanceRepo := postgres.NewAttendancePostgres(db)

	courseSvc := service.NewCourseService(courseRepo, classRepo, userRepo, cal, log)
	cleanupSvc := service.NewCleanupService(attendanceRepo, objStore, log)
	deps := handlers.Deps{
		DB:      db,
		Store:   objStore,
		Tokens:  tokens,
		Auth:    service.NewAuthService(userRepo, tokens, log),
		Classes: service.NewClassService(classRepo, userRepo, log),
		Courses: courseSvc,
		QR: service.NewQRService(courseSvc, registry, service.QROptions{
			Window:  cfg.QR.Window,
			PNGSize: cfg.QR.PNGSize,
		}, log),
		Attendance: service.NewAttendanceService(attendanceRepo, courseRepo, userRepo, objStore, registry, cal, service.AttendanceOptions{
			Window:        cfg.QR.Window,
			LateAfter:     cfg.Schedule.LateAfter,
			EarlyCheckIn:  cfg.Schedule.EarlyCheckIn,
			PhotoMaxWidth: cfg.Photo.MaxWidth,
		}, log),
		Roster:             service.NewRosterService(userRepo, classRepo, courseRepo, cfg.Import.DefaultPassword, log),
		Cleanup:            cleanupSvc,
		PhotoRetentionDays: cfg.Photo.RetentionDays,
	}

	cleanupJob, err := job.NewPhotoCleanup(cleanupSvc, cfg.Photo.CleanupCron, cfg.Photo.RetentionDays, loc, log)
	if err != nil {
		log.Fatal("invalid photo cleanup configuration", zap.Error(err))
	}
	cleanupJob.Start()

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    cfg.Photo.MaxUploadMB * 1024 * 1024,
	})

	// Register global middleware
	app.Use(recover.New())
	app.Use(otelfiber.Middleware())
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))

	httpMetrics, err := middleware.NewHTTPMetrics(prometheus.DefaultRegisterer, "/metrics", "/healthz")
	if err != nil {
		log.Fatal("failed to register metrics", zap.Error(err))
	}
	app.Use(httpMetrics.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, deps)

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("server_start", zap.String("addr", addr), zap.String("host", cfg.AppHost))
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			log.Error("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		log.Info("server_shutdown", zap.String("status", "in_progress"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("http shutdown failed", zap.Error(err))
	}
	if err := cleanupJob.Stop(shutdownCtx); err != nil {
		log.Warn("photo cleanup did not stop in time", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", zap.Error(err))
	}
	log.Info("server_shutdown", zap.String("status", "success"))
}

// newCalendar builds the teaching calendar from SEMESTER_START and the optional lesson table.
func newCalendar(c config.ScheduleConfig, loc *time.Location) (*schedule.Calendar, error) {
	if c.SemesterStart == "" {
		return nil, fmt.Errorf("SEMESTER_START is required")
	}
	start, err := schedule.ParseDate(c.SemesterStart, loc)
	if err != nil {
		return nil, fmt.Errorf("SEMESTER_START: %w", err)
	}
	var lessons []schedule.LessonTime
	if c.LessonTimes != "" {
		if lessons, err = schedule.ParseLessonTimes(c.LessonTimes); err != nil {
			return nil, fmt.Errorf("LESSON_TIMES: %w", err)
		}
	}
	return schedule.NewCalendar(start, lessons, loc), nil
}
