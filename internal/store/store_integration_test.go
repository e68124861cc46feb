//go:build integration

package store

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"

	"github.com/verdicthq/verdict/internal/judge"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	ctx := context.Background()
	s, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func testJudgment() *judge.Judgment {
	return &judge.Judgment{
		Score:   85,
		Verdict: judge.VerdictShip,
		Reasoning: judge.Reasoning{
			Summary:              "Integration test judgment",
			MarketAnalysis:       "m",
			CompetitiveLandscape: "c",
			ExecutionRisk:        "e",
			RevenuePotential:     "r",
		},
		RedFlags:        []string{"flag"},
		Recommendations: []string{"rec"},
	}
}

func TestIntegration_CaseLifecycle(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	ownerID := uuid.New()

	freq := "daily"
	c, err := s.CreateCase(ctx, NewCase{
		OwnerID:         ownerID,
		IdeaDescription: "Integration test idea",
		TargetUser:      "Integration testers",
		PainPoint:       "Flaky pipelines",
		Frequency:       &freq,
	})
	if err != nil {
		t.Fatalf("CreateCase failed: %v", err)
	}
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM cases WHERE id = $1", c.ID)
	})

	if c.IsPaid {
		t.Error("new case must be unpaid")
	}
	if c.Score != nil || c.Verdict != nil || c.JudgmentIssuedAt != nil {
		t.Error("new case must have no judgment fields")
	}
	if c.Frequency == nil || *c.Frequency != "daily" {
		t.Errorf("expected frequency daily, got %v", c.Frequency)
	}
	if c.CurrentWorkaround != nil {
		t.Errorf("expected nil workaround, got %v", c.CurrentWorkaround)
	}

	// Pay for it.
	p, err := s.CreatePayment(ctx, ownerID, c.ID, 7, "USD")
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	t.Cleanup(func() {
		s.pool.Exec(ctx, "DELETE FROM payments WHERE id = $1", p.ID)
	})
	if p.Status != PaymentPending {
		t.Errorf("expected pending payment, got %q", p.Status)
	}

	if err := s.CompletePayment(ctx, p.ID, "prov_123"); err != nil {
		t.Fatalf("CompletePayment failed: %v", err)
	}
	if err := s.MarkCasePaid(ctx, c.ID, p.ID); err != nil {
		t.Fatalf("MarkCasePaid failed: %v", err)
	}

	c, err = s.GetCase(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCase failed: %v", err)
	}
	if !c.IsPaid {
		t.Error("case should be paid")
	}
	if c.PaymentID == nil || *c.PaymentID != p.ID {
		t.Errorf("expected payment link %s, got %v", p.ID, c.PaymentID)
	}

	// Issue the judgment.
	if err := s.WriteJudgment(ctx, c.ID, testJudgment()); err != nil {
		t.Fatalf("WriteJudgment failed: %v", err)
	}

	c, err = s.GetCase(ctx, c.ID)
	if err != nil {
		t.Fatalf("GetCase after judgment failed: %v", err)
	}
	if c.Score == nil || *c.Score != 85 {
		t.Errorf("expected score 85, got %v", c.Score)
	}
	if c.Verdict == nil || *c.Verdict != "SHIP" {
		t.Errorf("expected verdict SHIP, got %v", c.Verdict)
	}
	if c.JudgmentIssuedAt == nil {
		t.Error("expected judgment_issued_at to be set")
	}
	if c.Reasoning == nil || c.Reasoning.Summary != "Integration test judgment" {
		t.Errorf("unexpected reasoning: %+v", c.Reasoning)
	}
	if len(c.RedFlags) != 1 || c.RedFlags[0] != "flag" {
		t.Errorf("unexpected red flags: %v", c.RedFlags)
	}

	// Second write must be a detected no-op.
	second := testJudgment()
	second.Score = 10
	second.Verdict = judge.VerdictKill
	err = s.WriteJudgment(ctx, c.ID, second)
	if !errors.Is(err, ErrAlreadyJudged) {
		t.Fatalf("expected ErrAlreadyJudged, got %v", err)
	}

	c, _ = s.GetCase(ctx, c.ID)
	if *c.Score != 85 || *c.Verdict != "SHIP" {
		t.Errorf("second write must not change judgment: score=%v verdict=%v", *c.Score, *c.Verdict)
	}
}

func TestIntegration_GetCaseNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.GetCase(context.Background(), uuid.New())
	if !errors.Is(err, ErrCaseNotFound) {
		t.Errorf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestIntegration_WriteJudgmentNotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.WriteJudgment(context.Background(), uuid.New(), testJudgment())
	if !errors.Is(err, ErrCaseNotFound) {
		t.Errorf("expected ErrCaseNotFound, got %v", err)
	}
}

func TestIntegration_ListCasesByOwner(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	ownerID := uuid.New()

	for i := 0; i < 2; i++ {
		c, err := s.CreateCase(ctx, NewCase{
			OwnerID:         ownerID,
			IdeaDescription: "List test idea",
			TargetUser:      "Testers",
			PainPoint:       "Pain",
		})
		if err != nil {
			t.Fatalf("CreateCase failed: %v", err)
		}
		t.Cleanup(func() {
			s.pool.Exec(ctx, "DELETE FROM cases WHERE id = $1", c.ID)
		})
	}

	cases, err := s.ListCasesByOwner(ctx, ownerID)
	if err != nil {
		t.Fatalf("ListCasesByOwner failed: %v", err)
	}
	if len(cases) != 2 {
		t.Errorf("expected 2 cases, got %d", len(cases))
	}
	for _, c := range cases {
		if c.OwnerID != ownerID {
			t.Errorf("unexpected owner %s", c.OwnerID)
		}
	}
}
