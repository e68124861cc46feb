// Package api exposes the HTTP surface: case intake, teaser signals,
// checkout, payment confirmation, and dossier export.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/verdicthq/verdict/internal/judge"
	"github.com/verdicthq/verdict/internal/store"
)

// Config carries the server's wiring knobs. PriceAmount is in whole
// currency units.
type Config struct {
	Port          int
	APIToken      string
	AppURL        string
	CheckoutURL   string
	WebhookSecret string
	PriceAmount   int
	PriceCurrency string
}

// Store is the persistence surface the handlers need.
type Store interface {
	CreateCase(ctx context.Context, n store.NewCase) (*store.Case, error)
	GetCase(ctx context.Context, id uuid.UUID) (*store.Case, error)
	ListCasesByOwner(ctx context.Context, ownerID uuid.UUID) ([]store.Case, error)
	MarkCasePaid(ctx context.Context, caseID, paymentID uuid.UUID) error
	CreatePayment(ctx context.Context, ownerID, caseID uuid.UUID, amount int, currency string) (*store.Payment, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*store.Payment, error)
	CompletePayment(ctx context.Context, id uuid.UUID, providerPaymentID string) error
}

// Publisher announces domain events; nil disables publishing.
type Publisher interface {
	Publish(subject string, data any) error
}

type Server struct {
	router *chi.Mux
	cfg    Config
	store  Store
	events Publisher
	logger *slog.Logger
}

func NewServer(cfg Config, db Store, events Publisher, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	s := &Server{
		router: router,
		cfg:    cfg,
		store:  db,
		events: events,
		logger: logger,
	}

	router.Get("/health", s.health)
	router.Get("/api/v1/verdict/status", s.status)

	router.Route("/api/v1/cases", func(r chi.Router) {
		r.Use(BearerAuthMiddleware(cfg.APIToken))
		r.Post("/", s.createCase)
		r.Get("/", s.listCases)
		r.Get("/{id}", s.getCase)
		r.Get("/{id}/signals", s.caseSignals)
		r.Post("/{id}/checkout", s.startCheckout)
		r.Get("/{id}/export", s.exportCase)
	})

	// Payment confirmation paths carry their own verification: the
	// webhook is HMAC-signed and the redirect arrives from a browser.
	router.Get("/api/v1/checkout/success", s.checkoutSuccess)
	router.Post("/api/v1/webhooks/payment", s.paymentWebhook)

	return s
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.logger.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// BearerAuthMiddleware requires Authorization: Bearer <token>. An empty
// configured token disables the check.
func BearerAuthMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			got := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if got != token {
				writeError(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"service":  "verdict",
		"status":   "ok",
		"price":    s.cfg.PriceAmount,
		"currency": s.cfg.PriceCurrency,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// caseResponse is the wire shape of a case. Judgment fields are null
// until a judgment is issued.
type caseResponse struct {
	ID                uuid.UUID                 `json:"id"`
	OwnerID           uuid.UUID                 `json:"owner_id"`
	CreatedAt         string                    `json:"created_at"`
	IdeaDescription   string                    `json:"idea_description"`
	TargetUser        string                    `json:"target_user"`
	PainPoint         string                    `json:"pain_point"`
	Frequency         *string                   `json:"frequency"`
	CurrentWorkaround *string                   `json:"current_workaround"`
	WillingnessToPay  *string                   `json:"willingness_to_pay"`
	IsPaid            bool                      `json:"is_paid"`
	Score             *int                      `json:"score"`
	Verdict           *string                   `json:"verdict"`
	Reasoning         *judge.Reasoning          `json:"ai_reasoning"`
	RedFlags          []string                  `json:"red_flags"`
	Recommendations   []string                  `json:"recommendations"`
	External          *judge.ExternalValidation `json:"external_validation"`
	JudgmentIssuedAt  *string                   `json:"judgment_issued_at"`
}

func toCaseResponse(c *store.Case) caseResponse {
	resp := caseResponse{
		ID:                c.ID,
		OwnerID:           c.OwnerID,
		CreatedAt:         c.CreatedAt.UTC().Format(time.RFC3339),
		IdeaDescription:   c.IdeaDescription,
		TargetUser:        c.TargetUser,
		PainPoint:         c.PainPoint,
		Frequency:         c.Frequency,
		CurrentWorkaround: c.CurrentWorkaround,
		WillingnessToPay:  c.WillingnessToPay,
		IsPaid:            c.IsPaid,
		Score:             c.Score,
		Verdict:           c.Verdict,
		Reasoning:         c.Reasoning,
		RedFlags:          c.RedFlags,
		Recommendations:   c.Recommendations,
		External:          c.External,
	}
	if c.JudgmentIssuedAt != nil {
		ts := c.JudgmentIssuedAt.UTC().Format(time.RFC3339)
		resp.JudgmentIssuedAt = &ts
	}
	return resp
}
