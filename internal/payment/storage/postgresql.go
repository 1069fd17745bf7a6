package storage

import (
	"database/sql"
	"fmt"

	"bingen-booking/internal/config"
	"bingen-booking/internal/logger"
	"bingen-booking/internal/models"

	_ "github.com/lib/pq"
)

type PostgreSQLStore struct {
	db  *sql.DB
	log *logger.Logger
}

// NewPostgreSQLStoreWithDB wraps an existing connection; the caller owns
// the pool configuration.
func NewPostgreSQLStoreWithDB(db *sql.DB, log *logger.Logger) (*PostgreSQLStore, error) {
	store := &PostgreSQLStore{db: db, log: log}

	if err := store.initTables(); err != nil {
		log.Error("DATABASE", "Failed to initialize payment tables: "+err.Error())
		return nil, fmt.Errorf("failed to initialize payment tables: %w", err)
	}

	log.Info("DATABASE", "Payment storage initialized with existing connection")
	return store, nil
}

func NewPostgreSQLStore(cfg config.DatabaseConfig, log *logger.Logger) (*PostgreSQLStore, error) {
	log.LogDatabase("CONNECT", "postgresql", fmt.Sprintf("Connecting to PostgreSQL at %s:%s", cfg.Host, cfg.Port))

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.Username, cfg.Password, cfg.Database)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Error("DATABASE", "Failed to open PostgreSQL connection: "+err.Error())
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.MaxLifetime)

	if err := db.Ping(); err != nil {
		log.Error("DATABASE", "Failed to ping PostgreSQL: "+err.Error())
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgreSQLStore{db: db, log: log}

	if err := store.initTables(); err != nil {
		log.Error("DATABASE", "Failed to initialize tables: "+err.Error())
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}

	log.LogDatabase("SUCCESS", "postgresql", "PostgreSQL connection established and tables initialized")
	return store, nil
}

func (s *PostgreSQLStore) initTables() error {
	s.log.LogDatabase("MIGRATE", "postgresql", "Creating payments table if not exists")

	paymentsQuery := `
    CREATE TABLE IF NOT EXISTS payments (
        payment_id VARCHAR(40) PRIMARY KEY,
        session_id VARCHAR(40) NOT NULL,
        venue_id VARCHAR(40) NOT NULL,
        idempotency_key VARCHAR(40) NOT NULL,
        status VARCHAR(20) NOT NULL,
        amount INTEGER NOT NULL,
        currency VARCHAR(8) NOT NULL,
        intent_id VARCHAR(255),
        created_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
        updated_date TIMESTAMP DEFAULT CURRENT_TIMESTAMP
    );
    `

	if _, err := s.db.Exec(paymentsQuery); err != nil {
		return fmt.Errorf("failed to create payments table: %w", err)
	}

	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_payments_session_id ON payments(session_id);",
		"CREATE INDEX IF NOT EXISTS idx_payments_status ON payments(status);",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_payments_idempotency_key ON payments(idempotency_key);",
	}

	for _, indexQuery := range indexes {
		if _, err := s.db.Exec(indexQuery); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	s.log.LogDatabase("SUCCESS", "postgresql", "Payment tables and indexes ready")
	return nil
}

func (s *PostgreSQLStore) SavePayment(payment *models.Payment) error {
	s.log.LogDatabase("INSERT", "postgresql", fmt.Sprintf("Saving payment %s", payment.PaymentID))

	query := `
    INSERT INTO payments (
        payment_id, session_id, venue_id, idempotency_key, status, amount, currency, intent_id, created_date, updated_date
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `

	_, err := s.db.Exec(query,
		payment.PaymentID, payment.SessionID, payment.VenueID, payment.IdempotencyKey,
		payment.Status, payment.Amount, payment.Currency, payment.IntentID,
		payment.CreatedDate, payment.UpdatedDate,
	)

	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to save payment %s: %s", payment.PaymentID, err.Error()))
		return fmt.Errorf("failed to save payment: %w", err)
	}

	s.log.LogDatabase("SUCCESS", "postgresql", fmt.Sprintf("Payment %s saved", payment.PaymentID))
	return nil
}

func (s *PostgreSQLStore) GetPayment(id string) (*models.Payment, error) {
	s.log.LogDatabase("SELECT", "postgresql", fmt.Sprintf("Fetching payment %s", id))

	query := `
    SELECT payment_id, session_id, venue_id, idempotency_key, status, amount, currency, intent_id, created_date, updated_date
    FROM payments WHERE payment_id = $1
    `

	payment := &models.Payment{}
	err := s.db.QueryRow(query, id).Scan(
		&payment.PaymentID, &payment.SessionID, &payment.VenueID, &payment.IdempotencyKey,
		&payment.Status, &payment.Amount, &payment.Currency, &payment.IntentID,
		&payment.CreatedDate, &payment.UpdatedDate,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			s.log.LogDatabase("NOT_FOUND", "postgresql", fmt.Sprintf("Payment %s not found", id))
			return nil, fmt.Errorf("payment not found")
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get payment %s: %s", id, err.Error()))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

// GetPaymentByIdempotencyKey lets a retried confirmation find the charge it
// already created.
func (s *PostgreSQLStore) GetPaymentByIdempotencyKey(key string) (*models.Payment, error) {
	s.log.LogDatabase("SELECT", "postgresql", fmt.Sprintf("Fetching payment for idempotency key %s", key))

	query := `
    SELECT payment_id, session_id, venue_id, idempotency_key, status, amount, currency, intent_id, created_date, updated_date
    FROM payments WHERE idempotency_key = $1
    `

	payment := &models.Payment{}
	err := s.db.QueryRow(query, key).Scan(
		&payment.PaymentID, &payment.SessionID, &payment.VenueID, &payment.IdempotencyKey,
		&payment.Status, &payment.Amount, &payment.Currency, &payment.IntentID,
		&payment.CreatedDate, &payment.UpdatedDate,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("payment not found")
		}
		s.log.Error("DATABASE", fmt.Sprintf("Failed to get payment by idempotency key: %s", err.Error()))
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}

	return payment, nil
}

func (s *PostgreSQLStore) UpdatePayment(payment *models.Payment) error {
	s.log.LogDatabase("UPDATE", "postgresql", fmt.Sprintf("Updating payment %s", payment.PaymentID))

	query := `
    UPDATE payments SET
        status = $1, intent_id = $2, updated_date = $3
    WHERE payment_id = $4
    `

	_, err := s.db.Exec(query, payment.Status, payment.IntentID, payment.UpdatedDate, payment.PaymentID)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to update payment %s: %s", payment.PaymentID, err.Error()))
		return fmt.Errorf("failed to update payment: %w", err)
	}

	s.log.LogDatabase("SUCCESS", "postgresql", fmt.Sprintf("Payment %s updated", payment.PaymentID))
	return nil
}

func (s *PostgreSQLStore) ListPaymentsBySession(sessionID string, limit, offset int) ([]*models.Payment, error) {
	s.log.LogDatabase("SELECT", "postgresql", fmt.Sprintf("Listing payments for session %s (limit: %d, offset: %d)", sessionID, limit, offset))

	query := `
    SELECT payment_id, session_id, venue_id, idempotency_key, status, amount, currency, intent_id, created_date, updated_date
    FROM payments
    WHERE session_id = $1
    ORDER BY created_date DESC
    LIMIT $2 OFFSET $3
    `

	rows, err := s.db.Query(query, sessionID, limit, offset)
	if err != nil {
		s.log.Error("DATABASE", fmt.Sprintf("Failed to list payments: %s", err.Error()))
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	var payments []*models.Payment
	for rows.Next() {
		payment := &models.Payment{}
		err := rows.Scan(
			&payment.PaymentID, &payment.SessionID, &payment.VenueID, &payment.IdempotencyKey,
			&payment.Status, &payment.Amount, &payment.Currency, &payment.IntentID,
			&payment.CreatedDate, &payment.UpdatedDate,
		)
		if err != nil {
			s.log.Error("DATABASE", fmt.Sprintf("Failed to scan payment row: %s", err.Error()))
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return payments, nil
}

func (s *PostgreSQLStore) HealthCheck() error {
	return s.db.Ping()
}

func (s *PostgreSQLStore) Close() error {
	s.log.LogDatabase("CLOSE", "postgresql", "Closing PostgreSQL connection")
	return s.db.Close()
}
