// internal/catalog/handler.go
package catalog

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

// HandleAddBook handles POST /books.
func (h *Handler) HandleAddBook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string `json:"title"`
		Author      string `json:"author"`
		ISBN        string `json:"isbn"`
		TotalCopies int    `json:"total_copies"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeFailure(w, http.StatusBadRequest, err.Error())
		return
	}

	receipt, err := h.service.AddBook(r.Context(), req.Title, req.Author, req.ISBN, req.TotalCopies)
	if err != nil {
		var ve *ValidationError
		switch {
		case errors.As(err, &ve):
			h.writeFailure(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, storage.ErrDuplicateISBN):
			h.writeFailure(w, http.StatusConflict, err.Error())
		default:
			h.serverError(w, r, err)
		}
		return
	}

	h.writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": receipt.Message,
		"book":    receipt.Book,
	})
}

// HandleCatalog handles GET /books.
func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.CatalogView(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"books":   rows,
	})
}

// HandleSearch handles GET /books/search?q=<term>&type=<title|author|isbn>.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	term := r.URL.Query().Get("q")
	searchType := r.URL.Query().Get("type")

	rows, err := h.service.Search(r.Context(), term, searchType)
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"books":   rows,
	})
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

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error(err.Error(), "method", r.Method, "url", r.URL.String())
	h.writeFailure(w, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}
