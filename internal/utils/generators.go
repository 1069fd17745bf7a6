package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

func GeneratePaymentID() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("pay_%d_%06d", timestamp, randomNum.Int64())
}

// GenerateBookingReference produces the short human-facing reference printed
// on the success page and embedded in the confirmation QR.
func GenerateBookingReference() string {
	timestamp := time.Now().Unix()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999))
	return fmt.Sprintf("bng_%d_%06d", timestamp, randomNum.Int64())
}

func GenerateIdempotencyKey() string {
	timestamp := time.Now().UnixNano()
	randomNum, _ := rand.Int(rand.Reader, big.NewInt(999999999))
	return fmt.Sprintf("idem_%d_%09d", timestamp, randomNum.Int64())
}
