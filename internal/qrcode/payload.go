// Package qrcode implements the attendance QR payload: a base64 string of
// courseId|teacherCode|classCode|timestamp|randomCode that expires after a short window.
package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	separator = "|"
	fieldN    = 5

	// DefaultWindow is how long a generated code is accepted.
	DefaultWindow = 10 * time.Second
)

var (
	ErrMalformed   = errors.New("malformed attendance code")
	ErrExpired     = errors.New("attendance code expired")
	ErrNotYetValid = errors.New("attendance code issued in the future")
)

// Payload is the decoded content of an attendance QR code.
type Payload struct {
	CourseID    string
	TeacherCode string
	ClassCode   string
	IssuedAt    time.Time
	RandomCode  string
}

// Encode serializes p. Timestamps are carried as epoch milliseconds.
func Encode(p Payload) (string, error) {
	fields := []string{p.CourseID, p.TeacherCode, p.ClassCode, p.RandomCode}
	for _, f := range fields {
		if f == "" || strings.Contains(f, separator) {
			return "", fmt.Errorf("%w: empty field or field containing %q", ErrMalformed, separator)
		}
	}
	raw := strings.Join([]string{
		p.CourseID,
		p.TeacherCode,
		p.ClassCode,
		strconv.FormatInt(p.IssuedAt.UnixMilli(), 10),
		p.RandomCode,
	}, separator)
	return base64.StdEncoding.EncodeToString([]byte(raw)), nil
}

// Decode parses a code produced by Encode.
func Decode(code string) (Payload, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(code))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	parts := strings.Split(string(raw), separator)
	if len(parts) != fieldN {
		return Payload{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformed, fieldN, len(parts))
	}
	for _, p := range parts {
		if p == "" {
			return Payload{}, fmt.Errorf("%w: empty field", ErrMalformed)
		}
	}
	ms, err := strconv.ParseInt(parts[3], 10, 64)
	if err != nil {
		return Payload{}, fmt.Errorf("%w: bad timestamp", ErrMalformed)
	}
	return Payload{
		CourseID:    parts[0],
		TeacherCode: parts[1],
		ClassCode:   parts[2],
		IssuedAt:    time.UnixMilli(ms),
		RandomCode:  parts[4],
	}, nil
}

// Validate checks freshness. A code exactly window old is still accepted.
func Validate(p Payload, now time.Time, window time.Duration) error {
	if window <= 0 {
		window = DefaultWindow
	}
	age := now.Sub(p.IssuedAt)
	if age > window {
		return ErrExpired
	}
	if age < -window {
		return ErrNotYetValid
	}
	return nil
}

// DecodeAndValidate is Decode followed by Validate.
func DecodeAndValidate(code string, now time.Time, window time.Duration) (Payload, error) {
	p, err := Decode(code)
	if err != nil {
		return Payload{}, err
	}
	if err := Validate(p, now, window); err != nil {
		return Payload{}, err
	}
	return p, nil
}
