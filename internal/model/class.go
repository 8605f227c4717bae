package model

import "time"

// Class is a roster group students bind themselves to.
type Class struct {
	Code             string    `json:"code"`
	Name             string    `json:"name"`
	VerificationCode string    `json:"verification_code,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
