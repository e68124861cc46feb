package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/verdicthq/verdict/internal/judge"
)

// Case is one founder submission and its lifecycle state:
// unpaid -> paid,pending -> paid,judged. "Judged" is terminal.
type Case struct {
	ID                uuid.UUID
	OwnerID           uuid.UUID
	CreatedAt         time.Time
	IdeaDescription   string
	TargetUser        string
	PainPoint         string
	Frequency         *string
	CurrentWorkaround *string
	WillingnessToPay  *string
	IsPaid            bool
	PaymentID         *uuid.UUID
	Score             *int
	Verdict           *string
	Reasoning         *judge.Reasoning
	RedFlags          []string
	Recommendations   []string
	External          *judge.ExternalValidation
	JudgmentIssuedAt  *time.Time
}

// Input returns the case's raw fields in prompt-builder form, with absent
// optional fields as empty strings.
func (c *Case) Input() judge.CaseInput {
	return judge.CaseInput{
		IdeaDescription:   c.IdeaDescription,
		TargetUser:        c.TargetUser,
		PainPoint:         c.PainPoint,
		Frequency:         deref(c.Frequency),
		CurrentWorkaround: deref(c.CurrentWorkaround),
		WillingnessToPay:  deref(c.WillingnessToPay),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// NewCase carries the intake-form fields for creation. Optional fields are
// nil when the founder left them blank.
type NewCase struct {
	OwnerID           uuid.UUID
	IdeaDescription   string
	TargetUser        string
	PainPoint         string
	Frequency         *string
	CurrentWorkaround *string
	WillingnessToPay  *string
}

const caseColumns = `
	id, owner_id, created_at,
	idea_description, target_user, pain_point,
	frequency, current_workaround, willingness_to_pay,
	is_paid, payment_id,
	score, verdict, ai_reasoning, red_flags, recommendations, external_validation,
	judgment_issued_at`

func scanCase(row pgx.Row) (*Case, error) {
	var c Case
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.CreatedAt,
		&c.IdeaDescription, &c.TargetUser, &c.PainPoint,
		&c.Frequency, &c.CurrentWorkaround, &c.WillingnessToPay,
		&c.IsPaid, &c.PaymentID,
		&c.Score, &c.Verdict, &c.Reasoning, &c.RedFlags, &c.Recommendations, &c.External,
		&c.JudgmentIssuedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCase inserts an unpaid case with no judgment fields set.
func (s *Store) CreateCase(ctx context.Context, n NewCase) (*Case, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO cases (id, owner_id, idea_description, target_user, pain_point,
			frequency, current_workaround, willingness_to_pay, is_paid, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, now())`,
		id, n.OwnerID, n.IdeaDescription, n.TargetUser, n.PainPoint,
		n.Frequency, n.CurrentWorkaround, n.WillingnessToPay,
	)
	if err != nil {
		return nil, fmt.Errorf("insert case: %w", err)
	}
	return s.GetCase(ctx, id)
}

// GetCase fetches a case by id.
func (s *Store) GetCase(ctx context.Context, id uuid.UUID) (*Case, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = $1`, id)
	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCaseNotFound
		}
		return nil, fmt.Errorf("get case: %w", err)
	}
	return c, nil
}

// ListCasesByOwner returns an owner's cases, newest first.
func (s *Store) ListCasesByOwner(ctx context.Context, ownerID uuid.UUID) ([]Case, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+caseColumns+` FROM cases
		WHERE owner_id = $1
		ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	defer rows.Close()

	var cases []Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case: %w", err)
		}
		cases = append(cases, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cases: %w", err)
	}
	return cases, nil
}

// MarkCasePaid flips is_paid and links the payment. The flag is monotonic;
// repeating the update is harmless.
func (s *Store) MarkCasePaid(ctx context.Context, caseID, paymentID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE cases SET is_paid = true, payment_id = $2 WHERE id = $1`,
		caseID, paymentID,
	)
	if err != nil {
		return fmt.Errorf("mark case paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCaseNotFound
	}
	return nil
}

// WriteJudgment persists the full judgment in one update, stamped with the
// issuance timestamp. The update is conditional on no judgment existing
// yet, so a second writer racing for the same case becomes a detected
// no-op instead of an overwrite.
func (s *Store) WriteJudgment(ctx context.Context, caseID uuid.UUID, j *judge.Judgment) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE cases SET
			score = $2,
			verdict = $3,
			ai_reasoning = $4,
			red_flags = $5,
			recommendations = $6,
			external_validation = $7,
			judgment_issued_at = now()
		WHERE id = $1 AND judgment_issued_at IS NULL`,
		caseID, j.Score, string(j.Verdict), j.Reasoning, j.RedFlags, j.Recommendations, j.External,
	)
	if err != nil {
		return fmt.Errorf("write judgment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either the case is gone or another invocation won the race.
		var issuedAt *time.Time
		err := s.pool.QueryRow(ctx, `SELECT judgment_issued_at FROM cases WHERE id = $1`, caseID).Scan(&issuedAt)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrCaseNotFound
		}
		if err != nil {
			return fmt.Errorf("write judgment: %w", err)
		}
		return ErrAlreadyJudged
	}
	return nil
}
