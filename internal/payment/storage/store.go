package storage

import "bingen-booking/internal/models"

// Store persists advance payment records.
type Store interface {
	SavePayment(payment *models.Payment) error
	GetPayment(id string) (*models.Payment, error)
	GetPaymentByIdempotencyKey(key string) (*models.Payment, error)
	UpdatePayment(payment *models.Payment) error
	ListPaymentsBySession(sessionID string, limit, offset int) ([]*models.Payment, error)
	HealthCheck() error
	Close() error
}
