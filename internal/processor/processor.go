// Package processor consumes payment-confirmation events and runs the
// judgment pipeline. Invocations are fire-and-forget: a failure leaves the
// case in "paid, pending" and a later event for the same case retries it.
package processor

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verdicthq/verdict/internal/events"
	"github.com/verdicthq/verdict/internal/pipeline"
)

// runTimeout bounds one pipeline run end to end, covering both the
// primary and the fallback model call.
const runTimeout = 3 * time.Minute

type Processor struct {
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

func New(p *pipeline.Pipeline, logger *slog.Logger) *Processor {
	return &Processor{pipeline: p, logger: logger}
}

// HandleCasePaid is the NATS handler for verdict.case.paid. Duplicate
// deliveries for the same case are expected; the pipeline's conditional
// write keeps the judgment single.
func (p *Processor) HandleCasePaid(subject string, data []byte) {
	var evt events.CasePaidEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse case paid event", "error", err)
		return
	}

	caseID, err := uuid.Parse(evt.CaseID)
	if err != nil {
		p.logger.Error("invalid case id in event", "case_id", evt.CaseID, "error", err)
		return
	}

	p.logger.Info("processing payment confirmation",
		"case_id", caseID,
		"payment_id", evt.PaymentID,
		"source", evt.Source,
	)

	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	if err := p.pipeline.Run(ctx, caseID); err != nil {
		// Case stays paid-pending; a later trigger can retry it.
		p.logger.Error("judgment run failed", "case_id", caseID, "error", err)
		return
	}
}
