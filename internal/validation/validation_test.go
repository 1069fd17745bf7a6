package validation_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"bingen-booking/internal/validation"
)

func TestEmail(t *testing.T) {
	assert.True(t, validation.Email("guest@example.com"))
	assert.True(t, validation.Email("first.last+tag@mail.example.in"))

	assert.False(t, validation.Email(""))
	assert.False(t, validation.Email("not-an-email"))
	assert.False(t, validation.Email("missing@tld"))
	assert.False(t, validation.Email("@example.com"))

	// Length cap at 100 characters
	long := strings.Repeat("a", 95) + "@ex.com"
	assert.False(t, validation.Email(long))
}

func TestPhone(t *testing.T) {
	assert.True(t, validation.Phone("9876543210"))

	assert.False(t, validation.Phone(""))
	assert.False(t, validation.Phone("12345"))
	assert.False(t, validation.Phone("98765432101"))
	assert.False(t, validation.Phone("98765 4321"))
	assert.False(t, validation.Phone("+919876543210"))
	assert.False(t, validation.Phone("abcdefghij"))
}

func TestBookingName(t *testing.T) {
	assert.True(t, validation.BookingName("Om"))
	assert.True(t, validation.BookingName("Birthday Bash"))
	assert.True(t, validation.BookingName(strings.Repeat("x", 50)))

	assert.False(t, validation.BookingName(""))
	assert.False(t, validation.BookingName("A"))
	assert.False(t, validation.BookingName("   "))
	assert.False(t, validation.BookingName(strings.Repeat("x", 51)))

	// Surrounding whitespace is trimmed before the length check
	assert.True(t, validation.BookingName("  Jo  "))

	// Length is measured in characters, not bytes. A 20-character
	// Devanagari name is 60 bytes and must still pass.
	assert.True(t, validation.BookingName(strings.Repeat("प्रि", 5)))
	assert.False(t, validation.BookingName(strings.Repeat("प्रि", 13)))
}

func TestPersons(t *testing.T) {
	assert.True(t, validation.Persons(1, 4))
	assert.True(t, validation.Persons(4, 4))

	assert.False(t, validation.Persons(0, 4))
	assert.False(t, validation.Persons(-1, 4))
	assert.False(t, validation.Persons(5, 4))
}

func TestDate(t *testing.T) {
	today := time.Now().UTC().Format("2006-01-02")
	tomorrow := time.Now().UTC().AddDate(0, 0, 1).Format("2006-01-02")
	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")

	assert.True(t, validation.Date(today))
	assert.True(t, validation.Date(tomorrow))

	assert.False(t, validation.Date(yesterday))
	assert.False(t, validation.Date(""))
	assert.False(t, validation.Date("not-a-date"))
	assert.False(t, validation.Date("2026/01/01"))
	assert.False(t, validation.Date("01-02-2026"))
}

func TestSlotID(t *testing.T) {
	assert.True(t, validation.SlotID(uuid.NewString()))

	assert.False(t, validation.SlotID(""))
	assert.False(t, validation.SlotID("slot-1"))
	assert.False(t, validation.SlotID("12345"))
}

func TestSanitize(t *testing.T) {
	assert.Equal(t, "hello", validation.Sanitize("  hello  "))
	assert.Equal(t, "scriptalert(1)/script", validation.Sanitize("<script>alert(1)</script>"))
	assert.Equal(t, "Rama & Sons", validation.Sanitize(`Rama "&" Sons`))
	assert.Equal(t, "DROP TABLE bookings", validation.Sanitize(`DROP TABLE bookings;`))
	assert.Equal(t, "", validation.Sanitize("   "))
}
