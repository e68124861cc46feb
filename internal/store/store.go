package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors surfaced to callers so they can map storage outcomes
// onto their own failure taxonomy.
var (
	ErrCaseNotFound    = errors.New("case not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrAlreadyJudged   = errors.New("judgment already issued")
)

// Store wraps a pgx pool over the two VERDICT tables: cases (founder
// submissions plus judgment fields) and payments.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}
