package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Payment statuses. A payment starts pending and moves to success or
// failed exactly once; the judgment pipeline never touches this table.
const (
	PaymentPending = "pending"
	PaymentSuccess = "success"
	PaymentFailed  = "failed"
)

type Payment struct {
	ID                uuid.UUID
	OwnerID           uuid.UUID
	CaseID            uuid.UUID
	Amount            int
	Currency          string
	Status            string
	ProviderPaymentID *string
	CreatedAt         time.Time
}

// CreatePayment records a pending payment attempt for a case.
func (s *Store) CreatePayment(ctx context.Context, ownerID, caseID uuid.UUID, amount int, currency string) (*Payment, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO payments (id, owner_id, case_id, amount, currency, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		id, ownerID, caseID, amount, currency, PaymentPending,
	)
	if err != nil {
		return nil, fmt.Errorf("insert payment: %w", err)
	}
	return s.GetPayment(ctx, id)
}

// GetPayment fetches a payment by id.
func (s *Store) GetPayment(ctx context.Context, id uuid.UUID) (*Payment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, owner_id, case_id, amount, currency, status, provider_payment_id, created_at
		FROM payments WHERE id = $1`, id)

	var p Payment
	err := row.Scan(&p.ID, &p.OwnerID, &p.CaseID, &p.Amount, &p.Currency, &p.Status, &p.ProviderPaymentID, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

// CompletePayment marks a payment successful and records the provider's
// payment reference when one was supplied.
func (s *Store) CompletePayment(ctx context.Context, id uuid.UUID, providerPaymentID string) error {
	var ref *string
	if providerPaymentID != "" {
		ref = &providerPaymentID
	}
	tag, err := s.pool.Exec(ctx, `
		UPDATE payments SET status = $2, provider_payment_id = COALESCE($3, provider_payment_id)
		WHERE id = $1`,
		id, PaymentSuccess, ref,
	)
	if err != nil {
		return fmt.Errorf("complete payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPaymentNotFound
	}
	return nil
}
