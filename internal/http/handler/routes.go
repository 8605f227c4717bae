package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"attendapi/internal/http/middleware"
	"attendapi/internal/model"
	"attendapi/internal/service"
	"attendapi/internal/storage"
)

// Deps bundles what the HTTP layer needs.
type Deps struct {
	DB                 *sql.DB
	Store              storage.Storage
	Tokens             middleware.TokenValidator
	Auth               service.AuthService
	Classes            service.ClassService
	Courses            service.CourseService
	QR                 service.QRService
	Attendance         service.AttendanceService
	Roster             service.RosterService
	Cleanup            service.CleanupService
	PhotoRetentionDays int
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	var (
		authn   = middleware.Auth(d.Tokens)
		admin   = middleware.RequireRole(model.RoleAdmin)
		teacher = middleware.RequireRole(model.RoleTeacher)
		student = middleware.RequireRole(model.RoleStudent)
		staff   = middleware.RequireRole(model.RoleAdmin, model.RoleTeacher)
	)

	var readiness []Pinger
	if d.Store != nil {
		readiness = append(readiness, d.Store)
	}
	app.Get("/health", HealthCheck(d.DB, readiness...))
	app.Get("/healthz", Liveness())

	app.Post("/auth/login", Login(d.Auth))

	me := app.Group("/me", authn)
	me.Get("", Me(d.Auth))
	me.Put("/password", ChangePassword(d.Auth))

	classes := app.Group("/classes", authn)
	classes.Post("", admin, CreateClass(d.Classes))
	classes.Get("", staff, ListClasses(d.Classes))
	classes.Post("/bind", student, BindClass(d.Classes))
	classes.Get("/:code/students", staff, ListClassStudents(d.Classes))
	classes.Post("/:code/verification-code", staff, RegenerateVerificationCode(d.Classes))

	courses := app.Group("/courses", authn)
	courses.Post("", admin, CreateCourse(d.Courses))
	courses.Get("", ListCourses(d.Courses, d.Auth))
	courses.Get("/:id/sessions", CourseSessions(d.Courses))
	courses.Post("/:id/qrcode", teacher, GenerateQRCode(d.QR))
	courses.Get("/:id/qrcode.png", teacher, QRCodePNG(d.QR))
	courses.Get("/:id/attendance", staff, CourseAttendance(d.Attendance))
	courses.Get("/:id/stats", staff, CourseStats(d.Attendance))
	courses.Get("/:id/export", staff, ExportCourse(d.Attendance))

	att := app.Group("/attendance", authn)
	att.Post("/check-in", student, CheckIn(d.Attendance))
	att.Get("/me", student, MyAttendance(d.Attendance))
	att.Get("/me/stats", student, MyStats(d.Attendance))
	att.Get("/:id/photo", staff, AttendancePhoto(d.Attendance))

	adm := app.Group("/admin", authn, admin)
	adm.Post("/import", ImportRoster(d.Roster))
	adm.Post("/photos/purge", PurgePhotos(d.Cleanup, d.PhotoRetentionDays))
}
