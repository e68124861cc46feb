package events

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NATS subjects. Payment confirmations fan in on SubjectCasePaid from both
// the webhook and the redirect handler; issued judgments are announced on
// SubjectJudgmentIssued.
const (
	SubjectCasePaid       = "verdict.case.paid"
	SubjectJudgmentIssued = "verdict.judgment.issued"
	SubjectServiceStarted = "verdict.service.started"
)

// CasePaidEvent triggers the judgment pipeline for a case. Source records
// which confirmation path fired ("webhook" or "redirect"); duplicate
// deliveries for the same case are expected and safe.
type CasePaidEvent struct {
	CaseID    string `json:"case_id"`
	PaymentID string `json:"payment_id"`
	Source    string `json:"source"`
}

// JudgmentIssuedEvent announces a persisted judgment.
type JudgmentIssuedEvent struct {
	CaseID  string `json:"case_id"`
	Score   int    `json:"score"`
	Verdict string `json:"verdict"`
}

type Client struct {
	conn   *nats.Conn
	subs   []*nats.Subscription
	logger *slog.Logger
}

func NewClient(url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

func (c *Client) Subscribe(subject string, handler func(subject string, data []byte)) error {
	sub, err := c.conn.Subscribe(subject, func(msg *nats.Msg) {
		handler(msg.Subject, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	c.subs = append(c.subs, sub)
	c.logger.Info("subscribed", "subject", subject)
	return nil
}

func (c *Client) Close() {
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.conn.Close()
}
