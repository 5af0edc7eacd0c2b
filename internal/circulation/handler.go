// internal/circulation/handler.go
package circulation

import (
	"errors"
	"log/slog"
	"net/http"

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

// HandleBorrow handles POST /loans.
func (h *Handler) HandleBorrow(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PatronID string `json:"patron_id"`
		BookID   int64  `json:"book_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.service.Borrow(r.Context(), req.PatronID, req.BookID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": receipt.Message,
		"loan":    receipt,
	})
}

// HandleReturn handles POST /returns.
func (h *Handler) HandleReturn(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PatronID string `json:"patron_id"`
		BookID   int64  `json:"book_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.service.Return(r.Context(), req.PatronID, req.BookID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": receipt.Message,
		"return":  receipt,
	})
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrInvalidPatronID):
		h.writeFailure(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, storage.ErrBookNotFound):
		h.writeFailure(w, http.StatusNotFound, err.Error())
	case errors.Is(err, storage.ErrBookUnavailable),
		errors.Is(err, ErrBorrowLimitReached),
		errors.Is(err, storage.ErrNoOpenLoan),
		errors.Is(err, storage.ErrCopiesExceedTotal):
		h.writeFailure(w, http.StatusConflict, err.Error())
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
