package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"go.uber.org/zap"

	"attendapi/internal/cache"
	"attendapi/internal/logger"
	"attendapi/internal/qrcode"
	"attendapi/internal/randcode"
)

const randomCodeLength = 6

// QRCode is a freshly issued attendance code.
type QRCode struct {
	Code      string    `json:"code"`
	PNGBase64 string    `json:"png_base64"`
	IssuedAt  time.Time `json:"issued_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// QROptions tune code issuing.
type QROptions struct {
	Window  time.Duration
	PNGSize int
}

// QRService issues attendance codes for a teacher's course.
type QRService interface {
	Generate(ctx context.Context, actor Actor, courseID string) (*QRCode, error)
	// PNG issues a code and returns only its image.
	PNG(ctx context.Context, actor Actor, courseID string) ([]byte, error)
}

type qrService struct {
	courses  CourseService
	registry cache.CodeRegistry
	opts     QROptions
	log      *zap.Logger
	now      func() time.Time
}

// NewQRService constructs a new QRService. registry may be nil.
func NewQRService(courses CourseService, registry cache.CodeRegistry, opts QROptions, log *zap.Logger) QRService {
	if opts.Window <= 0 {
		opts.Window = qrcode.DefaultWindow
	}
	if opts.PNGSize <= 0 {
		opts.PNGSize = 256
	}
	return &qrService{courses: courses, registry: registry, opts: opts, log: logger.Component(log, "qr"), now: time.Now}
}

func (s *qrService) Generate(ctx context.Context, actor Actor, courseID string) (*QRCode, error) {
	code, issued, err := s.issue(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Render(code, s.opts.PNGSize)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return &QRCode{
		Code:      code,
		PNGBase64: base64.StdEncoding.EncodeToString(png),
		IssuedAt:  issued,
		ExpiresAt: issued.Add(s.opts.Window),
	}, nil
}

func (s *qrService) PNG(ctx context.Context, actor Actor, courseID string) ([]byte, error) {
	code, _, err := s.issue(ctx, actor, courseID)
	if err != nil {
		return nil, err
	}
	png, err := qrcode.Render(code, s.opts.PNGSize)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return png, nil
}

func (s *qrService) issue(ctx context.Context, actor Actor, courseID string) (string, time.Time, error) {
	course, err := s.courses.Get(ctx, courseID)
	if err != nil {
		return "", time.Time{}, err
	}
	if course.TeacherCode != actor.Username {
		return "", time.Time{}, ErrForbidden
	}

	random, err := randcode.Alphanumeric(randomCodeLength)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("random code: %w", err)
	}
	now := s.now()
	code, err := qrcode.Encode(qrcode.Payload{
		CourseID:    course.ID,
		TeacherCode: course.TeacherCode,
		ClassCode:   course.ClassCode,
		IssuedAt:    now,
		RandomCode:  random,
	})
	if err != nil {
		return "", time.Time{}, err
	}

	if s.registry != nil {
		// The entry outlives the window by a second so a code scanned on the boundary is still known.
		if err := s.registry.Remember(ctx, course.ID, random, s.opts.Window+time.Second); err != nil {
			return "", time.Time{}, fmt.Errorf("remember code: %w", err)
		}
	}
	s.log.Debug("code issued",
		zap.String("event", "qr_issued"),
		zap.String("course_id", course.ID),
		zap.String("random_code", random),
	)
	return code, now, nil
}
