package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"

	"github.com/skip2/go-qrcode"

	"bingen-booking/internal/models"
)

type Generator struct {
	secret []byte
}

func NewGenerator(secret string) *Generator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Generator{secret: hashed[:]}
}

// GenerateBookingQR encodes the booking reference payload into an encrypted
// QR image shown on the success page and scanned at the venue.
func (g *Generator) GenerateBookingQR(booking models.Booking) ([]byte, error) {
	payload := struct {
		Reference   string `json:"reference"`
		VenueID     string `json:"venue_id"`
		SlotID      string `json:"slot_id"`
		BookingDate string `json:"booking_date"`
		BookingName string `json:"booking_name"`
		Persons     int    `json:"persons"`
	}{
		Reference:   booking.Reference,
		VenueID:     booking.VenueID,
		SlotID:      booking.SlotID,
		BookingDate: booking.BookingDate,
		BookingName: booking.BookingName,
		Persons:     booking.Persons,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptAES(data, g.secret)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
