// Package contact validates and submits contact messages, and receives them
// on the server side.
package contact

import (
	"context"
	"errors"
	"regexp"
	"strings"
)

var (
	ErrRequiredFields = errors.New("name, email and message are required")
	ErrInvalidEmail   = errors.New("invalid email address")
	ErrRejected       = errors.New("submission rejected")
	ErrNetwork        = errors.New("submission failed to reach the server")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Fields are the values of the contact form.
type Fields struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Trimmed returns f with surrounding whitespace removed from every field.
func (f Fields) Trimmed() Fields {
	return Fields{
		Name:    strings.TrimSpace(f.Name),
		Email:   strings.TrimSpace(f.Email),
		Message: strings.TrimSpace(f.Message),
	}
}

// IsValidEmail reports whether s has a local@domain.tld shape.
func IsValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate checks the form before submission.
func Validate(f Fields) error {
	f = f.Trimmed()
	if f.Name == "" || f.Email == "" || f.Message == "" {
		return ErrRequiredFields
	}
	if !IsValidEmail(f.Email) {
		return ErrInvalidEmail
	}
	return nil
}

// Outcome is the result of handing a message to a Channel.
type Outcome int

const (
	OK Outcome = iota
	Rejected
	NetworkError
)

func (o Outcome) String() string {
	switch o {
	case OK:
		return "ok"
	case Rejected:
		return "rejected"
	default:
		return "network_error"
	}
}

// Err maps an outcome to nil, ErrRejected or ErrNetwork.
func (o Outcome) Err() error {
	switch o {
	case OK:
		return nil
	case Rejected:
		return ErrRejected
	default:
		return ErrNetwork
	}
}

// Channel delivers a validated message.
type Channel interface {
	Submit(ctx context.Context, f Fields) Outcome
}
