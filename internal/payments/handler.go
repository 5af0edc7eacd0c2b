// internal/payments/handler.go
package payments

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"

	"libracore/internal/storage"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Handler struct {
	service Service
	logger  *slog.Logger
}

func NewHandler(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// HandlePayLateFees handles POST /payments.
func (h *Handler) HandlePayLateFees(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PatronID string `json:"patron_id"`
		BookID   int64  `json:"book_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.service.PayLateFees(r.Context(), req.PatronID, req.BookID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": receipt.Message,
		"payment": receipt,
	})
}

// HandleRefund handles POST /refunds.
func (h *Handler) HandleRefund(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TransactionID string  `json:"transaction_id"`
		Amount        float64 `json:"amount"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.service.RefundLateFee(r.Context(), req.TransactionID, req.Amount)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": receipt.Message,
	})
}

// HandleVerify handles GET /payments/{transactionID}.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	transactionID := chi.URLParam(r, "transactionID")

	verification, err := h.service.VerifyPayment(r.Context(), transactionID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success":      true,
		"verification": verification,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var gwErr *GatewayError
	switch {
	case errors.Is(err, ErrInvalidPatronID), errors.Is(err, ErrRefundLimit):
		h.writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrBookNotFound):
		h.writeFailure(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoFeesOwed):
		h.writeFailure(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrFeeUnavailable):
		h.writeFailure(w, http.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &gwErr):
		h.writeFailure(w, http.StatusBadGateway, err.Error())
	default:
		h.logger.Error(err.Error(), "method", r.Method, "url", r.URL.String())
		h.writeFailure(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("write response", "error", err)
	}
}

func (h *Handler) writeFailure(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]any{
		"success": false,
		"message": message,
	})
}
