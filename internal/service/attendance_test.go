package service

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"image"
	"image/png"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	cacheMocks "attendapi/internal/cache/mocks"
	"attendapi/internal/model"
	"attendapi/internal/qrcode"
	"attendapi/internal/repository"
	repoMocks "attendapi/internal/repository/mocks"
	"attendapi/internal/roster"
	"attendapi/internal/storage"
	storeMocks "attendapi/internal/storage/mocks"
)

// Tuesdays, lessons 1-2: 08:00-09:40 CST.
var attendanceCourse = &model.Course{
	ID:           testCourseID,
	Name:         "Algebra",
	TeacherCode:  "T001",
	ClassCode:    "CS2401",
	ScheduleText: "1-16周 星期二[1-2节]A101",
}

type attendanceMocks struct {
	attendances *repoMocks.MockAttendanceRepository
	courses     *repoMocks.MockCourseRepository
	users       *repoMocks.MockUserRepository
	store       *storeMocks.MockStorage
	registry    *cacheMocks.MockCodeRegistry
}

func newAttendanceService(now time.Time, withRegistry bool) (*attendanceService, *attendanceMocks) {
	m := &attendanceMocks{
		attendances: new(repoMocks.MockAttendanceRepository),
		courses:     new(repoMocks.MockCourseRepository),
		users:       new(repoMocks.MockUserRepository),
		store:       new(storeMocks.MockStorage),
		registry:    new(cacheMocks.MockCodeRegistry),
	}
	var svc AttendanceService
	opts := AttendanceOptions{
		Window:        10 * time.Second,
		LateAfter:     10 * time.Minute,
		EarlyCheckIn:  15 * time.Minute,
		PhotoMaxWidth: 64,
	}
	if withRegistry {
		svc = NewAttendanceService(m.attendances, m.courses, m.users, m.store, m.registry, testCalendar(), opts, zap.NewNop())
	} else {
		svc = NewAttendanceService(m.attendances, m.courses, m.users, m.store, nil, testCalendar(), opts, zap.NewNop())
	}
	s := svc.(*attendanceService)
	s.now = func() time.Time { return now }
	return s, m
}

func issueCode(t *testing.T, issuedAt time.Time, classCode string) string {
	t.Helper()
	code, err := qrcode.Encode(qrcode.Payload{
		CourseID:    testCourseID,
		TeacherCode: "T001",
		ClassCode:   classCode,
		IssuedAt:    issuedAt,
		RandomCode:  "AB12CD",
	})
	require.NoError(t, err)
	return code
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func TestAttendanceService_CheckIn(t *testing.T) {
	ctx := context.Background()
	onTime := time.Date(2024, 9, 3, 8, 5, 0, 0, cst)
	student := &model.User{ID: "u-1", Username: "S001", Role: model.RoleStudent, ClassCode: "CS2401"}

	tests := []struct {
		name       string
		now        time.Time
		code       func(t *testing.T, now time.Time) string
		photo      func(t *testing.T) io.Reader
		setupMocks func(m *attendanceMocks)
		wantErr    error
		wantErrMsg string
		wantStatus model.AttendanceStatus
	}{
		{
			name: "present",
			now:  onTime,
			setupMocks: func(m *attendanceMocks) {
				m.registry.On("Issued", ctx, testCourseID, "AB12CD").Return(true, nil)
				m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
				m.users.On("FindByID", ctx, "u-1").Return(student, nil)
				m.attendances.On("Exists", ctx, testCourseID, "S001", "2024-09-03").Return(false, nil)
				m.attendances.On("Create", ctx, mock.MatchedBy(func(a *model.Attendance) bool {
					return a.Status == model.StatusPresent && a.LessonDate == "2024-09-03" && a.PhotoKey == ""
				})).Return(&model.Attendance{ID: testAttendanceID, Status: model.StatusPresent}, nil)
			},
			wantStatus: model.StatusPresent,
		},
		{
			name: "late after ten minutes",
			now:  time.Date(2024, 9, 3, 8, 10, 1, 0, cst),
			setupMocks: func(m *attendanceMocks) {
				m.registry.On("Issued", ctx, testCourseID, "AB12CD").Return(true, nil)
				m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
				m.users.On("FindByID", ctx, "u-1").Return(student, nil)
				m.attendances.On("Exists", ctx, testCourseID, "S001", "2024-09-03").Return(false, nil)
				m.attendances.On("Create", ctx, mock.MatchedBy(func(a *model.Attendance) bool {
					return a.Status == model.StatusLate
				})).Return(&model.Attendance{ID: testAttendanceID, Status: model.StatusLate}, nil)
			},
			wantStatus: model.StatusLate,
		},
		{
			name: "outside any session counts as present",
			now:  time.Date(2024, 9, 4, 15, 0, 0, 0, cst),
			setupMocks: func(m *attendanceMocks) {
				m.registry.On("Issued", ctx, testCourseID, "AB12CD").Return(true, nil)
				m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
				m.users.On("FindByID", ctx, "u-1").Return(student, nil)
				m.attendances.On("Exists", ctx, testCourseID, "S001", "2024-09-04").Return(false, nil)
				m.attendances.On("Create", ctx, mock.Anything).Return(&model.Attendance{ID: testAttendanceID, Status: model.StatusPresent}, nil)
			},
			wantStatus: model.StatusPresent,
		},
		{
			name: "expired code",
			now:  onTime,
			code: func(t *testing.T, now time.Time) string {
				return issueCode(t, now.Add(-11*time.Second), "CS2401")
			},
			setupMocks: func(m *attendanceMocks) {},
			wantErr:    qrcode.ErrExpired,
		},
		{
			name: "malformed code",
			now:  onTime,
			code: func(t *testing.T, now time.Time) string {
				return "not base64!"
			},
			setupMocks: func(m *attendanceMocks) {},
			wantErr:    qrcode.ErrMalformed,
		},
		{
			name: "course id is not a uuid",
			now:  onTime,
			code: func(t *testing.T, now time.Time) string {
				code, err := qrcode.Encode(qrcode.Payload{
					CourseID:    "not-a-uuid",
					TeacherCode: "T001",
					ClassCode:   "CS2401",
					IssuedAt:    now,
					RandomCode:  "AB12CD",
				})
				require.NoError(t, err)
				return code
			},
			setupMocks: func(m *attendanceMocks) {},
			wantErr:    qrcode.ErrMalformed,
		},
		{
			name: "code never issued",
			now:  onTime,
			setupMocks: func(m *attendanceMocks) {
				m.registry.On("Issued", ctx, testCourseID, "AB12CD").Return(false, nil)
			},
			wantErr: ErrCodeUnknown,
		},
		{
			name: "code for another class",
			now:  onTime,
			code: func(t *testing.T, now time.Time) string {
				return issueCode(t, now, "EE2401")
			},
			setupMocks: func(m *attendanceMocks) {
				m.registry.On("Issued", ctx, testCourseID, "AB12CD").Return(true, nil)
				m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
			},
			wantErr: ErrWrongClass,
		},
		{
			name: "student of another class",
			now:  onTime,
			setupMocks: func(m *attendanceMocks) {
				m.registry.On("Issued", ctx, testCourseID, "AB12CD").Return(true, nil)
				m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
				m.users.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1", Username: "S009", ClassCode: "EE2401"}, nil)
			},
			wantErr: ErrWrongClass,
		},
		{
			name: "unbound student",
			now:  onTime,
			setupMocks: func(m *attendanceMocks) {
				m.registry.On("Issued", ctx, testCourseID, "AB12CD").Return(true, nil)
				m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
				m.users.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1", Username: "S009"}, nil)
			},
			wantErr: ErrNotBound,
		},
		{
			name: "unknown course",
			now:  onTime,
			setupMocks: func(m *attendanceMocks) {
				m.registry.On("Issued", ctx, testCourseID, "AB12CD").Return(true, nil)
				m.courses.On("FindByID", ctx, testCourseID).Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrCourseNotFound,
		},
		{
			name: "second scan the same day",
			now:  onTime,
			setupMocks: func(m *attendanceMocks) {
				m.registry.On("Issued", ctx, testCourseID, "AB12CD").Return(true, nil)
				m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
				m.users.On("FindByID", ctx, "u-1").Return(student, nil)
				m.attendances.On("Exists", ctx, testCourseID, "S001", "2024-09-03").Return(true, nil)
			},
			wantErr: ErrAlreadyCheckedIn,
		},
		{
			name: "concurrent duplicate hits unique index",
			now:  onTime,
			setupMocks: func(m *attendanceMocks) {
				m.registry.On("Issued", ctx, testCourseID, "AB12CD").Return(true, nil)
				m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
				m.users.On("FindByID", ctx, "u-1").Return(student, nil)
				m.attendances.On("Exists", ctx, testCourseID, "S001", "2024-09-03").Return(false, nil)
				m.attendances.On("Create", ctx, mock.Anything).Return(nil, &pgconn.PgError{Code: "23505"})
			},
			wantErr: ErrAlreadyCheckedIn,
		},
		{
			name: "photo stored",
			now:  onTime,
			photo: func(t *testing.T) io.Reader {
				return bytes.NewReader(testPNG(t, 200, 100))
			},
			setupMocks: func(m *attendanceMocks) {
				m.registry.On("Issued", ctx, testCourseID, "AB12CD").Return(true, nil)
				m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
				m.users.On("FindByID", ctx, "u-1").Return(student, nil)
				m.attendances.On("Exists", ctx, testCourseID, "S001", "2024-09-03").Return(false, nil)
				m.store.On("Put", ctx, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "photos/"+testCourseID+"/2024-09-03/S001-") && strings.HasSuffix(key, ".jpg")
				}), mock.Anything, mock.MatchedBy(func(opt storage.PutObjectOptions) bool {
					return opt.ContentType == "image/jpeg" && opt.Size > 0
				})).Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
					return storage.ObjectInfo{Key: key}
				}, nil)
				m.attendances.On("Create", ctx, mock.MatchedBy(func(a *model.Attendance) bool {
					return strings.HasPrefix(a.PhotoKey, "photos/"+testCourseID+"/")
				})).Return(&model.Attendance{ID: testAttendanceID, Status: model.StatusPresent}, nil)
			},
			wantStatus: model.StatusPresent,
		},
		{
			name: "photo rolled back when insert fails",
			now:  onTime,
			photo: func(t *testing.T) io.Reader {
				return bytes.NewReader(testPNG(t, 10, 10))
			},
			setupMocks: func(m *attendanceMocks) {
				m.registry.On("Issued", ctx, testCourseID, "AB12CD").Return(true, nil)
				m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
				m.users.On("FindByID", ctx, "u-1").Return(student, nil)
				m.attendances.On("Exists", ctx, testCourseID, "S001", "2024-09-03").Return(false, nil)
				m.store.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "photos/c-1/2024-09-03/S001-x.jpg"}, nil)
				m.attendances.On("Create", ctx, mock.Anything).Return(nil, errors.New("db fail"))
				m.store.On("Delete", ctx, "photos/c-1/2024-09-03/S001-x.jpg").Return(nil)
			},
			wantErrMsg: "db save failed: db fail",
		},
		{
			name: "photo that is not an image",
			now:  onTime,
			photo: func(t *testing.T) io.Reader {
				return strings.NewReader("definitely not a picture")
			},
			setupMocks: func(m *attendanceMocks) {
				m.registry.On("Issued", ctx, testCourseID, "AB12CD").Return(true, nil)
				m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
				m.users.On("FindByID", ctx, "u-1").Return(student, nil)
				m.attendances.On("Exists", ctx, testCourseID, "S001", "2024-09-03").Return(false, nil)
			},
			wantErrMsg: "process photo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newAttendanceService(tt.now, true)
			tt.setupMocks(m)

			code := issueCode(t, tt.now.Add(-2*time.Second), "CS2401")
			if tt.code != nil {
				code = tt.code(t, tt.now)
			}
			req := CheckInRequest{StudentID: "u-1", Code: code}
			if tt.photo != nil {
				req.Photo = tt.photo(t)
			}

			a, err := svc.CheckIn(ctx, req)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else if tt.wantErrMsg != "" {
				assert.ErrorContains(t, err, tt.wantErrMsg)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantStatus, a.Status)
			}
			m.attendances.AssertExpectations(t)
			m.courses.AssertExpectations(t)
			m.users.AssertExpectations(t)
			m.store.AssertExpectations(t)
			m.registry.AssertExpectations(t)
		})
	}
}

func TestAttendanceService_CheckInWithoutRegistry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 9, 3, 8, 0, 0, 0, cst)
	svc, m := newAttendanceService(now, false)

	m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
	m.users.On("FindByID", ctx, "u-1").Return(&model.User{ID: "u-1", Username: "S001", ClassCode: "CS2401"}, nil)
	m.attendances.On("Exists", ctx, testCourseID, "S001", "2024-09-03").Return(false, nil)
	m.attendances.On("Create", ctx, mock.Anything).Return(&model.Attendance{ID: testAttendanceID, Status: model.StatusPresent}, nil)

	_, err := svc.CheckIn(ctx, CheckInRequest{StudentID: "u-1", Code: issueCode(t, now, "CS2401")})

	require.NoError(t, err)
	m.registry.AssertNotCalled(t, "Issued", mock.Anything, mock.Anything, mock.Anything)
}

func TestAttendanceService_CourseStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 9, 12, 12, 0, 0, 0, cst)
	owner := Actor{Username: "T001", Role: model.RoleTeacher}

	t.Run("fills absent days from the schedule", func(t *testing.T) {
		svc, m := newAttendanceService(now, false)
		m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
		m.users.On("CountByClass", ctx, "CS2401").Return(10, nil)
		m.attendances.On("CountByDateStatus", ctx, testCourseID, "", "2024-09-12").Return([]model.StatusCount{
			{Date: "2024-09-03", Status: model.StatusPresent, Count: 8},
			{Date: "2024-09-03", Status: model.StatusLate, Count: 1},
		}, nil)

		stats, err := svc.CourseStats(ctx, owner, testCourseID, "", "")

		require.NoError(t, err)
		require.Len(t, stats.Days, 2)
		assert.Equal(t, model.DailyStats{Date: "2024-09-03", Expected: 10, Present: 8, Late: 1, Absent: 1, Rate: 0.9}, stats.Days[0])
		assert.Equal(t, model.DailyStats{Date: "2024-09-10", Expected: 10, Absent: 10}, stats.Days[1])
		assert.Equal(t, 20, stats.Expected)
		assert.Equal(t, 11, stats.Absent)
		assert.Equal(t, 0.45, stats.Rate)
	})

	t.Run("date range", func(t *testing.T) {
		svc, m := newAttendanceService(now, false)
		m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
		m.users.On("CountByClass", ctx, "CS2401").Return(4, nil)
		m.attendances.On("CountByDateStatus", ctx, testCourseID, "2024-09-05", "2024-09-10").
			Return([]model.StatusCount{{Date: "2024-09-10", Status: model.StatusPresent, Count: 4}}, nil)

		stats, err := svc.CourseStats(ctx, Actor{Role: model.RoleAdmin}, testCourseID, "2024-09-05", "2024-09-10")

		require.NoError(t, err)
		require.Len(t, stats.Days, 1)
		assert.Equal(t, 1.0, stats.Rate)
	})

	t.Run("other teacher", func(t *testing.T) {
		svc, m := newAttendanceService(now, false)
		m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)

		_, err := svc.CourseStats(ctx, Actor{Username: "T002", Role: model.RoleTeacher}, testCourseID, "", "")

		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("bad date", func(t *testing.T) {
		svc, _ := newAttendanceService(now, false)

		_, err := svc.CourseStats(ctx, owner, testCourseID, "09/01/2024", "")

		assert.ErrorIs(t, err, ErrInvalidDate)
	})
}

func TestAttendanceService_StudentStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 9, 12, 12, 0, 0, 0, cst)
	svc, m := newAttendanceService(now, false)

	m.users.On("FindByUsername", ctx, "S001").Return(&model.User{Username: "S001", ClassCode: "CS2401"}, nil)
	m.courses.On("List", ctx, repository.CourseFilter{ClassCode: "CS2401"}).Return([]model.Course{
		*attendanceCourse,
		{ID: otherCourseID, Name: "Unscheduled", ScheduleText: "tbd"},
	}, nil)
	m.attendances.On("List", ctx, repository.AttendanceFilter{StudentCode: "S001"}).
		Return(&repository.PageResult[model.Attendance]{Items: []model.Attendance{
			{CourseID: testCourseID, Status: model.StatusPresent},
			{CourseID: testCourseID, Status: model.StatusLate},
		}, Total: 2}, nil)

	stats, err := svc.StudentStats(ctx, "S001")

	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, model.StudentCourseStats{CourseID: testCourseID, CourseName: "Algebra", Attended: 2, Late: 1, SessionsSoFar: 2, Rate: 1}, stats[0])
	assert.Equal(t, model.StudentCourseStats{CourseID: otherCourseID, CourseName: "Unscheduled"}, stats[1])
}

func TestAttendanceService_History(t *testing.T) {
	ctx := context.Background()
	svc, m := newAttendanceService(time.Now(), false)

	m.attendances.On("List", ctx, repository.AttendanceFilter{
		StudentCode: "S001",
		PageQuery:   repository.PageQuery{Limit: 50, Offset: 0},
	}).Return(&repository.PageResult[model.Attendance]{Items: []model.Attendance{{ID: testAttendanceID}}, Total: 1}, nil)

	res, err := svc.History(ctx, "S001", 0, -3)

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	m.attendances.AssertExpectations(t)
}

func exportMocks(ctx context.Context, m *attendanceMocks) {
	m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
	m.users.On("CountByClass", ctx, "CS2401").Return(2, nil)
	m.attendances.On("CountByDateStatus", ctx, testCourseID, "", "2024-09-04").
		Return([]model.StatusCount{{Date: "2024-09-03", Status: model.StatusPresent, Count: 1}}, nil)
	m.users.On("ListByClass", ctx, "CS2401").Return([]model.User{
		{Username: "S001", Name: "Li Lei"},
		{Username: "S002", Name: "Han Meimei"},
	}, nil)
	m.attendances.On("List", ctx, repository.AttendanceFilter{CourseID: testCourseID}).
		Return(&repository.PageResult[model.Attendance]{Items: []model.Attendance{
			{StudentCode: "S001", LessonDate: "2024-09-03", Status: model.StatusPresent, CheckedAt: time.Date(2024, 9, 3, 0, 3, 0, 0, time.UTC)},
		}, Total: 1}, nil)
}

func TestAttendanceService_Export(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 9, 4, 12, 0, 0, 0, cst)
	admin := Actor{Role: model.RoleAdmin}

	t.Run("xlsx", func(t *testing.T) {
		svc, m := newAttendanceService(now, false)
		exportMocks(ctx, m)

		var buf bytes.Buffer
		require.NoError(t, svc.Export(ctx, admin, testCourseID, "", "", roster.FormatXLSX, &buf))

		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("records")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, []string{"2024-09-03", "S001", "Li Lei", "present", "2024-09-03 08:03:00"}, rows[1])
		require.GreaterOrEqual(t, len(rows[2]), 4)
		assert.Equal(t, []string{"2024-09-03", "S002", "Han Meimei", "absent"}, rows[2][:4])
	})

	t.Run("docx", func(t *testing.T) {
		svc, m := newAttendanceService(now, false)
		exportMocks(ctx, m)

		var buf bytes.Buffer
		require.NoError(t, svc.Export(ctx, admin, testCourseID, "", "", roster.FormatDOCX, &buf))

		body := docxBody(t, buf.Bytes())
		assert.Contains(t, body, "Li Lei")
		assert.Contains(t, body, "Han Meimei")
		assert.Contains(t, body, "08:03:00")
	})

	t.Run("unknown format", func(t *testing.T) {
		svc, m := newAttendanceService(now, false)

		err := svc.Export(ctx, admin, testCourseID, "", "", roster.Format("pdf"), io.Discard)
		assert.ErrorIs(t, err, roster.ErrUnknownFormat)
		m.courses.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}

func docxBody(t *testing.T, b []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		raw, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(raw)
	}
	t.Fatal("word/document.xml not found")
	return ""
}

func TestAttendanceService_PhotoURL(t *testing.T) {
	ctx := context.Background()
	admin := Actor{Role: model.RoleAdmin}

	t.Run("presigned", func(t *testing.T) {
		svc, m := newAttendanceService(time.Now(), false)
		m.attendances.On("FindByID", ctx, testAttendanceID).Return(&model.Attendance{ID: testAttendanceID, CourseID: testCourseID, PhotoKey: "photos/k.jpg"}, nil)
		m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)
		m.store.On("PresignGet", ctx, "photos/k.jpg", PhotoURLExpiry).Return("https://minio/photos/k.jpg?sig", nil)

		url, err := svc.PhotoURL(ctx, admin, testAttendanceID)

		require.NoError(t, err)
		assert.Equal(t, "https://minio/photos/k.jpg?sig", url)
	})

	t.Run("no photo", func(t *testing.T) {
		svc, m := newAttendanceService(time.Now(), false)
		m.attendances.On("FindByID", ctx, testAttendanceID).Return(&model.Attendance{ID: testAttendanceID, CourseID: testCourseID}, nil)
		m.courses.On("FindByID", ctx, testCourseID).Return(attendanceCourse, nil)

		_, err := svc.PhotoURL(ctx, admin, testAttendanceID)

		assert.ErrorIs(t, err, ErrNoPhoto)
	})

	t.Run("missing record", func(t *testing.T) {
		svc, m := newAttendanceService(time.Now(), false)
		m.attendances.On("FindByID", ctx, missingID).Return(nil, sql.ErrNoRows)

		_, err := svc.PhotoURL(ctx, admin, missingID)

		assert.ErrorIs(t, err, ErrAttendanceNotFound)
	})

	t.Run("id is not a uuid", func(t *testing.T) {
		svc, m := newAttendanceService(time.Now(), false)

		_, err := svc.PhotoURL(ctx, admin, "xyz")

		assert.ErrorIs(t, err, ErrAttendanceNotFound)
		m.attendances.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})
}
