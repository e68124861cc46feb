package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/verdicthq/verdict/internal/signals"
	"github.com/verdicthq/verdict/internal/store"
)

type createCaseRequest struct {
	OwnerID           string `json:"owner_id"`
	IdeaDescription   string `json:"idea_description"`
	TargetUser        string `json:"target_user"`
	PainPoint         string `json:"pain_point"`
	Frequency         string `json:"frequency"`
	CurrentWorkaround string `json:"current_workaround"`
	WillingnessToPay  string `json:"willingness_to_pay"`
}

// createCase handles POST /api/v1/cases.
func (s *Server) createCase(w http.ResponseWriter, r *http.Request) {
	var req createCaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err))
		return
	}

	ownerID, err := uuid.Parse(req.OwnerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "owner_id must be a UUID")
		return
	}

	n := store.NewCase{
		OwnerID:           ownerID,
		IdeaDescription:   strings.TrimSpace(req.IdeaDescription),
		TargetUser:        strings.TrimSpace(req.TargetUser),
		PainPoint:         strings.TrimSpace(req.PainPoint),
		Frequency:         optional(req.Frequency),
		CurrentWorkaround: optional(req.CurrentWorkaround),
		WillingnessToPay:  optional(req.WillingnessToPay),
	}
	if n.IdeaDescription == "" || n.TargetUser == "" || n.PainPoint == "" {
		writeError(w, http.StatusBadRequest, "idea_description, target_user and pain_point are required")
		return
	}

	c, err := s.store.CreateCase(r.Context(), n)
	if err != nil {
		s.logger.Error("failed to create case", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create case")
		return
	}

	s.logger.Info("case created", "case_id", c.ID, "owner_id", c.OwnerID)
	writeJSON(w, http.StatusCreated, toCaseResponse(c))
}

// optional trims a form field and maps blank to nil.
func optional(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// getCase handles GET /api/v1/cases/{id}.
func (s *Server) getCase(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCase(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toCaseResponse(c))
}

// listCases handles GET /api/v1/cases?owner_id=.
func (s *Server) listCases(w http.ResponseWriter, r *http.Request) {
	ownerID, err := uuid.Parse(r.URL.Query().Get("owner_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "owner_id query parameter must be a UUID")
		return
	}

	cases, err := s.store.ListCasesByOwner(r.Context(), ownerID)
	if err != nil {
		s.logger.Error("failed to list cases", "owner_id", ownerID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list cases")
		return
	}

	resp := make([]caseResponse, 0, len(cases))
	for i := range cases {
		resp = append(resp, toCaseResponse(&cases[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"cases": resp, "count": len(resp)})
}

// caseSignals handles GET /api/v1/cases/{id}/signals: the free teaser
// shown before payment.
func (s *Server) caseSignals(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCase(w, r)
	if !ok {
		return
	}
	in := c.Input()
	writeJSON(w, http.StatusOK, signals.Preliminary(
		in.IdeaDescription, in.TargetUser, in.PainPoint, in.WillingnessToPay,
	))
}

// loadCase resolves the {id} route param to a case, writing the error
// response itself when it fails.
func (s *Server) loadCase(w http.ResponseWriter, r *http.Request) (*store.Case, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "case id must be a UUID")
		return nil, false
	}

	c, err := s.store.GetCase(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrCaseNotFound) {
			writeError(w, http.StatusNotFound, "case not found")
			return nil, false
		}
		s.logger.Error("failed to load case", "case_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load case")
		return nil, false
	}
	return c, true
}
