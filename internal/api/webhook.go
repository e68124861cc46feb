package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// signatureHeader carries the hex HMAC-SHA256 of the raw request body.
const signatureHeader = "X-Payment-Signature"

type paymentWebhookEvent struct {
	Type              string `json:"type"`
	PaymentID         string `json:"payment_id"`
	CaseID            string `json:"case_id"`
	ProviderPaymentID string `json:"provider_payment_id"`
}

// paymentWebhook handles POST /api/v1/webhooks/payment: the provider's
// server-to-server payment confirmation.
func (s *Server) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read body")
		return
	}

	if !s.verifySignature(body, r.Header.Get(signatureHeader)) {
		writeError(w, http.StatusUnauthorized, "invalid signature")
		return
	}

	var evt paymentWebhookEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if evt.Type != "payment.success" {
		// Other event types are acknowledged and dropped.
		s.logger.Info("ignoring webhook event", "type", evt.Type)
		writeJSON(w, http.StatusOK, map[string]bool{"received": true})
		return
	}

	paymentID, err := uuid.Parse(evt.PaymentID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "payment_id must be a UUID")
		return
	}
	caseID, err := uuid.Parse(evt.CaseID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "case_id must be a UUID")
		return
	}

	if err := s.confirmPayment(r, paymentID, caseID, evt.ProviderPaymentID, "webhook"); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to confirm payment")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}

// verifySignature checks the webhook HMAC. An unset secret accepts
// everything so local setups work without provider credentials.
func (s *Server) verifySignature(body []byte, signature string) bool {
	if s.cfg.WebhookSecret == "" {
		s.logger.Warn("webhook secret not configured, accepting unsigned webhook")
		return true
	}
	mac := hmac.New(sha256.New, []byte(s.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
