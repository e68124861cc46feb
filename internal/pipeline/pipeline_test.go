package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/verdicthq/verdict/internal/events"
	"github.com/verdicthq/verdict/internal/judge"
	"github.com/verdicthq/verdict/internal/store"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStore struct {
	cases      map[uuid.UUID]*store.Case
	written    map[uuid.UUID]*judge.Judgment
	writeErr   error
	writeCalls int
}

func newFakeStore(cases ...*store.Case) *fakeStore {
	fs := &fakeStore{
		cases:   make(map[uuid.UUID]*store.Case),
		written: make(map[uuid.UUID]*judge.Judgment),
	}
	for _, c := range cases {
		fs.cases[c.ID] = c
	}
	return fs
}

func (f *fakeStore) GetCase(ctx context.Context, id uuid.UUID) (*store.Case, error) {
	c, ok := f.cases[id]
	if !ok {
		return nil, store.ErrCaseNotFound
	}
	return c, nil
}

func (f *fakeStore) WriteJudgment(ctx context.Context, id uuid.UUID, j *judge.Judgment) error {
	f.writeCalls++
	if f.writeErr != nil {
		return f.writeErr
	}
	c, ok := f.cases[id]
	if !ok {
		return store.ErrCaseNotFound
	}
	if c.JudgmentIssuedAt != nil {
		return store.ErrAlreadyJudged
	}
	now := time.Now()
	c.JudgmentIssuedAt = &now
	f.written[id] = j
	return nil
}

type fakeCompleter struct {
	reply string
	err   error
	calls int
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

type fakePublisher struct {
	subjects []string
	payloads []any
}

func (f *fakePublisher) Publish(subject string, data any) error {
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func paidCase() *store.Case {
	return &store.Case{
		ID:              uuid.New(),
		OwnerID:         uuid.New(),
		IdeaDescription: "A marketplace for X",
		TargetUser:      "People who need X",
		PainPoint:       "Finding X is hard",
		IsPaid:          true,
	}
}

func modelReply(score int, verdict string) string {
	return fmt.Sprintf(`{
		"score": %d,
		"verdict": %q,
		"reasoning": {
			"summary": "s", "market_analysis": "m", "competitive_landscape": "c",
			"execution_risk": "e", "revenue_potential": "r"
		},
		"red_flags": [],
		"recommendations": []
	}`, score, verdict)
}

func TestRun_IssuesJudgment(t *testing.T) {
	c := paidCase()
	fs := newFakeStore(c)
	// Model contradicts its own score on purpose; derived verdict must win.
	llm := &fakeCompleter{reply: modelReply(85, "KILL")}
	pub := &fakePublisher{}

	p := New(fs, llm, pub, discardLogger())

	if err := p.Run(context.Background(), c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	j, ok := fs.written[c.ID]
	if !ok {
		t.Fatal("expected judgment to be written")
	}
	if j.Score != 85 {
		t.Errorf("expected score 85, got %d", j.Score)
	}
	if j.Verdict != judge.VerdictShip {
		t.Errorf("expected derived SHIP, got %s", j.Verdict)
	}
	if c.JudgmentIssuedAt == nil {
		t.Error("expected issuance timestamp")
	}

	if len(pub.subjects) != 1 || pub.subjects[0] != events.SubjectJudgmentIssued {
		t.Fatalf("expected one judgment.issued event, got %v", pub.subjects)
	}
	evt, ok := pub.payloads[0].(events.JudgmentIssuedEvent)
	if !ok {
		t.Fatalf("unexpected payload type %T", pub.payloads[0])
	}
	if evt.CaseID != c.ID.String() || evt.Score != 85 || evt.Verdict != "SHIP" {
		t.Errorf("unexpected event %+v", evt)
	}
}

func TestRun_NotFound(t *testing.T) {
	fs := newFakeStore()
	llm := &fakeCompleter{reply: modelReply(50, "VALIDATE")}

	p := New(fs, llm, nil, discardLogger())

	err := p.Run(context.Background(), uuid.New())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if llm.calls != 0 {
		t.Errorf("expected no model calls, got %d", llm.calls)
	}
}

func TestRun_ModelFailureLeavesCaseUntouched(t *testing.T) {
	c := paidCase()
	fs := newFakeStore(c)
	llm := &fakeCompleter{err: errors.New("both models down")}

	p := New(fs, llm, nil, discardLogger())

	err := p.Run(context.Background(), c.ID)
	if !errors.Is(err, ErrAnalysisFailed) {
		t.Fatalf("expected ErrAnalysisFailed, got %v", err)
	}
	if fs.writeCalls != 0 {
		t.Errorf("expected no write attempts, got %d", fs.writeCalls)
	}
	if c.JudgmentIssuedAt != nil {
		t.Error("case must remain pending after model failure")
	}
}

func TestRun_UnparsableOutputLeavesCaseUntouched(t *testing.T) {
	c := paidCase()
	fs := newFakeStore(c)
	llm := &fakeCompleter{reply: "I am sorry, I cannot judge this idea."}

	p := New(fs, llm, nil, discardLogger())

	err := p.Run(context.Background(), c.ID)
	if !errors.Is(err, ErrUnparsableOutput) {
		t.Fatalf("expected ErrUnparsableOutput, got %v", err)
	}
	if fs.writeCalls != 0 {
		t.Errorf("expected no write attempts, got %d", fs.writeCalls)
	}
	if c.JudgmentIssuedAt != nil {
		t.Error("case must remain pending after parse failure")
	}
}

func TestRun_AlreadyJudgedIsNoOp(t *testing.T) {
	c := paidCase()
	issued := time.Now()
	c.JudgmentIssuedAt = &issued
	fs := newFakeStore(c)
	llm := &fakeCompleter{reply: modelReply(10, "KILL")}

	p := New(fs, llm, nil, discardLogger())

	if err := p.Run(context.Background(), c.ID); err != nil {
		t.Fatalf("expected nil for already-judged case, got %v", err)
	}
	if llm.calls != 0 {
		t.Errorf("expected no model calls for already-judged case, got %d", llm.calls)
	}
	if fs.writeCalls != 0 {
		t.Errorf("expected no write attempts, got %d", fs.writeCalls)
	}
}

func TestRun_LostWriteRaceIsNoOp(t *testing.T) {
	c := paidCase()
	fs := newFakeStore(c)
	fs.writeErr = store.ErrAlreadyJudged
	llm := &fakeCompleter{reply: modelReply(50, "VALIDATE")}
	pub := &fakePublisher{}

	p := New(fs, llm, pub, discardLogger())

	if err := p.Run(context.Background(), c.ID); err != nil {
		t.Fatalf("expected nil when losing the write race, got %v", err)
	}
	if len(pub.subjects) != 0 {
		t.Errorf("losing writer must not announce a judgment, got %v", pub.subjects)
	}
}

func TestRun_PersistFailure(t *testing.T) {
	c := paidCase()
	fs := newFakeStore(c)
	fs.writeErr = errors.New("connection reset")
	llm := &fakeCompleter{reply: modelReply(50, "VALIDATE")}

	p := New(fs, llm, nil, discardLogger())

	err := p.Run(context.Background(), c.ID)
	if !errors.Is(err, ErrPersistFailed) {
		t.Fatalf("expected ErrPersistFailed, got %v", err)
	}
}

func TestRun_SecondInvocationDoesNotRejudge(t *testing.T) {
	c := paidCase()
	fs := newFakeStore(c)
	llm := &fakeCompleter{reply: modelReply(85, "SHIP")}

	p := New(fs, llm, nil, discardLogger())

	if err := p.Run(context.Background(), c.ID); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first := fs.written[c.ID]

	llm.reply = modelReply(5, "KILL")
	if err := p.Run(context.Background(), c.ID); err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if fs.written[c.ID] != first {
		t.Error("second invocation must not change the persisted judgment")
	}
	if llm.calls != 1 {
		t.Errorf("expected 1 model call across both runs, got %d", llm.calls)
	}
}

func TestRun_PromptOmitsAbsentOptionalFields(t *testing.T) {
	c := paidCase()
	fs := newFakeStore(c)

	var capturedUser string
	llm := &captureCompleter{reply: modelReply(50, "VALIDATE"), captured: &capturedUser}

	p := New(fs, llm, nil, discardLogger())
	if err := p.Run(context.Background(), c.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(capturedUser, "Usage Frequency") {
		t.Error("prompt must omit Usage Frequency for a case without it")
	}
	if !strings.Contains(capturedUser, "A marketplace for X") {
		t.Error("prompt must contain the idea description")
	}
}

type captureCompleter struct {
	reply    string
	captured *string
}

func (c *captureCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	*c.captured = user
	return c.reply, nil
}
