// Package pipeline runs the judgment sequence for a paid case: load the
// case, build the prompts, call the model, parse and validate the reply,
// persist the judgment exactly once.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/verdicthq/verdict/internal/events"
	"github.com/verdicthq/verdict/internal/judge"
	"github.com/verdicthq/verdict/internal/store"
)

// Failure taxonomy surfaced to callers. Every failure leaves the case in
// "paid, pending" with no partial writes, so re-invoking later is safe.
var (
	ErrNotFound         = errors.New("case not found")
	ErrAnalysisFailed   = errors.New("analysis failed")
	ErrUnparsableOutput = errors.New("could not interpret model output")
	ErrPersistFailed    = errors.New("could not persist judgment")
)

// CaseStore is the slice of the store the pipeline needs.
type CaseStore interface {
	GetCase(ctx context.Context, id uuid.UUID) (*store.Case, error)
	WriteJudgment(ctx context.Context, id uuid.UUID, j *judge.Judgment) error
}

// Completer issues one model completion, fallback included.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Publisher announces issued judgments. May be nil.
type Publisher interface {
	Publish(subject string, data any) error
}

type Pipeline struct {
	store  CaseStore
	llm    Completer
	events Publisher
	logger *slog.Logger
}

func New(s CaseStore, llm Completer, ev Publisher, logger *slog.Logger) *Pipeline {
	return &Pipeline{store: s, llm: llm, events: ev, logger: logger}
}

// Run issues the judgment for one case. Callers invoke it fire-and-forget
// after a payment confirmation; it may be invoked more than once for the
// same case (webhook racing the redirect handler), so an already-judged
// case is a successful no-op. No step is retried beyond the model client's
// single built-in fallback.
func (p *Pipeline) Run(ctx context.Context, caseID uuid.UUID) error {
	c, err := p.store.GetCase(ctx, caseID)
	if err != nil {
		if errors.Is(err, store.ErrCaseNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, caseID)
		}
		return fmt.Errorf("load case %s: %w", caseID, err)
	}

	if c.JudgmentIssuedAt != nil {
		p.logger.Info("judgment already issued, skipping", "case_id", caseID)
		return nil
	}
	if !c.IsPaid {
		p.logger.Warn("running judgment for unpaid case", "case_id", caseID)
	}

	userPrompt := judge.BuildUserPrompt(c.Input())

	p.logger.Info("requesting judgment",
		"case_id", caseID,
		"prompt_len", len(userPrompt),
	)

	raw, err := p.llm.Complete(ctx, judge.SystemPrompt, userPrompt)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrAnalysisFailed, err)
	}

	j, err := judge.ParseJudgment(raw)
	if err != nil {
		p.logger.Error("failed to parse model output",
			"case_id", caseID,
			"error", err,
			"raw", raw,
		)
		return fmt.Errorf("%w: %v", ErrUnparsableOutput, err)
	}

	if err := p.store.WriteJudgment(ctx, caseID, j); err != nil {
		switch {
		case errors.Is(err, store.ErrAlreadyJudged):
			p.logger.Info("lost judgment write race, keeping existing judgment", "case_id", caseID)
			return nil
		case errors.Is(err, store.ErrCaseNotFound):
			return fmt.Errorf("%w: %s", ErrNotFound, caseID)
		default:
			return fmt.Errorf("%w: %v", ErrPersistFailed, err)
		}
	}

	if p.events != nil {
		if err := p.events.Publish(events.SubjectJudgmentIssued, events.JudgmentIssuedEvent{
			CaseID:  caseID.String(),
			Score:   j.Score,
			Verdict: string(j.Verdict),
		}); err != nil {
			p.logger.Warn("failed to publish judgment issued", "case_id", caseID, "error", err)
		}
	}

	p.logger.Info("judgment issued",
		"case_id", caseID,
		"score", j.Score,
		"verdict", j.Verdict,
	)
	return nil
}
