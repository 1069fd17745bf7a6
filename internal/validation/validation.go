// Package validation holds the pure input checks used by the wizard and the
// secure booking call. Validators report invalid input through their return
// value and never panic.
package validation

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern = regexp.MustCompile(`^[0-9]{10}$`)
	// HTML-significant characters stripped by Sanitize.
	unsafePattern = regexp.MustCompile(`[<>"'` + "`" + `;\\]`)
)

// Email reports whether the input conforms to a standard address pattern.
func Email(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 100 {
		return false
	}
	return emailPattern.MatchString(email)
}

// Phone accepts exactly 10 numeric digits.
func Phone(phone string) bool {
	return phonePattern.MatchString(phone)
}

// BookingName accepts a trimmed length between 2 and 50 characters.
// Counted in runes, so non-ASCII names are not penalized for byte width.
func BookingName(name string) bool {
	n := utf8.RuneCountInString(strings.TrimSpace(name))
	return n >= 2 && n <= 50
}

// Persons accepts an integer between 1 and the venue's capacity, inclusive.
func Persons(persons, capacity int) bool {
	return persons >= 1 && persons <= capacity
}

// Date accepts a YYYY-MM-DD calendar date that is today or later.
func Date(date string) bool {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	// Compare calendar days, not instants.
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !parsed.Before(today)
}

// SlotID accepts a non-empty, backend-issued slot identifier (UUID shape).
func SlotID(slotID string) bool {
	if slotID == "" {
		return false
	}
	_, err := uuid.Parse(slotID)
	return err == nil
}

// Sanitize strips characters unsafe for downstream display or storage while
// preserving the human-readable content.
func Sanitize(input string) string {
	cleaned := unsafePattern.ReplaceAllString(input, "")
	return strings.TrimSpace(cleaned)
}
