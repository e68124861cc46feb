package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/verdicthq/verdict/internal/events"
	"github.com/verdicthq/verdict/internal/store"
)

// startCheckout handles POST /api/v1/cases/{id}/checkout. It records a
// pending payment and hands back the provider checkout URL with our
// success redirect baked in.
func (s *Server) startCheckout(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCase(w, r)
	if !ok {
		return
	}
	if c.IsPaid {
		writeError(w, http.StatusBadRequest, "case is already paid")
		return
	}

	p, err := s.store.CreatePayment(r.Context(), c.OwnerID, c.ID, s.cfg.PriceAmount, s.cfg.PriceCurrency)
	if err != nil {
		s.logger.Error("failed to create payment", "case_id", c.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create payment")
		return
	}

	successURL := fmt.Sprintf("%s/api/v1/checkout/success?payment_id=%s&case_id=%s",
		s.cfg.AppURL, p.ID, c.ID)
	checkoutURL := fmt.Sprintf("%s?quantity=1&redirect_url=%s",
		s.cfg.CheckoutURL, url.QueryEscape(successURL))

	s.logger.Info("checkout started", "case_id", c.ID, "payment_id", p.ID)
	writeJSON(w, http.StatusCreated, map[string]any{
		"payment_id":   p.ID,
		"checkout_url": checkoutURL,
		"amount":       p.Amount,
		"currency":     p.Currency,
	})
}

// checkoutSuccess handles GET /api/v1/checkout/success: the browser
// redirect back from the payment provider. It confirms the payment and
// bounces the founder to the results page. The webhook usually beats
// this path; the conditional judgment write absorbs the duplicate.
func (s *Server) checkoutSuccess(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	paymentID, err := uuid.Parse(q.Get("payment_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "payment_id must be a UUID")
		return
	}
	caseID, err := uuid.Parse(q.Get("case_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "case_id must be a UUID")
		return
	}

	p, err := s.store.GetPayment(r.Context(), paymentID)
	if err != nil {
		if errors.Is(err, store.ErrPaymentNotFound) {
			writeError(w, http.StatusNotFound, "payment not found")
			return
		}
		s.logger.Error("failed to load payment", "payment_id", paymentID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load payment")
		return
	}
	if p.CaseID != caseID {
		writeError(w, http.StatusBadRequest, "payment does not belong to this case")
		return
	}

	if err := s.confirmPayment(r, paymentID, caseID, q.Get("provider_payment_id"), "redirect"); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to confirm payment")
		return
	}

	http.Redirect(w, r, fmt.Sprintf("%s/results/%s", s.cfg.AppURL, caseID), http.StatusSeeOther)
}

// confirmPayment finalizes a payment from either confirmation path and
// fires the pipeline trigger.
func (s *Server) confirmPayment(r *http.Request, paymentID, caseID uuid.UUID, providerRef, source string) error {
	if err := s.store.CompletePayment(r.Context(), paymentID, providerRef); err != nil {
		s.logger.Error("failed to complete payment", "payment_id", paymentID, "error", err)
		return err
	}
	if err := s.store.MarkCasePaid(r.Context(), caseID, paymentID); err != nil {
		s.logger.Error("failed to mark case paid", "case_id", caseID, "error", err)
		return err
	}

	if s.events != nil {
		evt := events.CasePaidEvent{
			CaseID:    caseID.String(),
			PaymentID: paymentID.String(),
			Source:    source,
		}
		if err := s.events.Publish(events.SubjectCasePaid, evt); err != nil {
			// Payment is recorded; the other confirmation path can still
			// trigger the pipeline.
			s.logger.Error("failed to publish case paid event", "case_id", caseID, "error", err)
		}
	}

	s.logger.Info("payment confirmed", "case_id", caseID, "payment_id", paymentID, "source", source)
	return nil
}
