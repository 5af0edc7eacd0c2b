// internal/reporting/handler.go
package reporting

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// HandleStatusReport handles GET /patrons/{patronID}/report.
func (h *Handler) HandleStatusReport(w http.ResponseWriter, r *http.Request) {
	patronID := chi.URLParam(r, "patronID")

	report, err := h.service.StatusReport(r.Context(), patronID)
	if err != nil {
		h.logger.Error(err.Error(), "method", r.Method, "url", r.URL.String())
		h.writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"message": "the server encountered a problem and could not process your request",
		})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"report":  report,
	})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("write response", "error", err)
	}
}
