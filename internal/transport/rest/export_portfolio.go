package rest

import (
	"net/http"
	"strings"

	"naijayield/internal/transport/auth"
)

const exportKeyPrefix = "exports:"

func (h *Handler) exportPortfolio(w http.ResponseWriter, r *http.Request) {
	req, err := ValidateExportRequest(r)
	if err != nil {
		writeRequestError(w, err)
		return
	}

	userID, err := auth.GetUserID(r.Context())
	if err != nil {
		ErrorUnauthorized(w, "Unauthorized")
		return
	}

	exportID, err := h.portfolio.StartPortfolioExport(r.Context(), req.Fields, req.ToRepositoryFilter(), userID)
	if err != nil {
		writeServiceError(w, "start portfolio export", err, "failed to start export")
		return
	}

	SuccessAccepted(w, "export queued", map[string]any{
		"export_id": strings.TrimPrefix(exportID, exportKeyPrefix),
	})
}
