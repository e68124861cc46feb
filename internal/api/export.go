package api

import (
	"fmt"
	"net/http"

	"github.com/verdicthq/verdict/internal/export"
)

// exportCase handles GET /api/v1/cases/{id}/export: the PDF dossier for
// a paid, judged case.
func (s *Server) exportCase(w http.ResponseWriter, r *http.Request) {
	c, ok := s.loadCase(w, r)
	if !ok {
		return
	}
	if !c.IsPaid || c.Verdict == nil {
		writeError(w, http.StatusBadRequest, "case has no issued judgment to export")
		return
	}

	data, err := export.Render(c)
	if err != nil {
		s.logger.Error("failed to render dossier", "case_id", c.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to render dossier")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(c)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
