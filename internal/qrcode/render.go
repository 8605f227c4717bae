package qrcode

import (
	"fmt"

	goqrcode "github.com/skip2/go-qrcode"
)

// Render draws content as a square PNG of size pixels.
func Render(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = 256
	}
	png, err := goqrcode.Encode(content, goqrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("render qr: %w", err)
	}
	return png, nil
}
