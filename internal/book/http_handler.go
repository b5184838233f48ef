package book

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"bookcatalog/internal/httpx"

	jsoniter "github.com/json-iterator/go"
)

const (
	defaultPageSize = 20
	maxBodyBooks    = 1000
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Register mounts the catalog routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/books", h.Paginate)
	mux.HandleFunc("POST /v1/books", h.Insert)
	mux.HandleFunc("GET /v1/books/genre/{genre}", h.FindByGenre)
	mux.HandleFunc("GET /v1/books/author/{author}", h.FindByAuthor)
	mux.HandleFunc("GET /v1/books/published-after/{year}", h.FindPublishedAfter)
	mux.HandleFunc("GET /v1/books/in-stock-after/{year}", h.FindInStockAfter)
	mux.HandleFunc("GET /v1/books/summary", h.ProjectSummary)
	mux.HandleFunc("GET /v1/books/by-price", h.SortByPrice)
	mux.HandleFunc("PATCH /v1/books/{title}/price", h.UpdatePrice)
	mux.HandleFunc("DELETE /v1/books/{title}", h.DeleteByTitle)
	mux.HandleFunc("GET /v1/stats/genres/average-price", h.AveragePriceByGenre)
	mux.HandleFunc("GET /v1/stats/authors/top", h.AuthorWithMostBooks)
	mux.HandleFunc("GET /v1/stats/decades", h.CountByDecade)
	mux.HandleFunc("POST /v1/indexes", h.EnsureIndex)
	mux.HandleFunc("POST /v1/explain", h.Explain)
}

// FindByGenre handles GET /v1/books/genre/{genre}
func (h *HTTPHandler) FindByGenre(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.FindByGenre(r.Context(), r.PathValue("genre"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"count": len(books)})
}

// FindByAuthor handles GET /v1/books/author/{author}
func (h *HTTPHandler) FindByAuthor(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.FindByAuthor(r.Context(), r.PathValue("author"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"count": len(books)})
}

// FindPublishedAfter handles GET /v1/books/published-after/{year}
func (h *HTTPHandler) FindPublishedAfter(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYear(r.PathValue("year"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	books, err := h.service.FindPublishedAfter(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"count": len(books)})
}

// FindInStockAfter handles GET /v1/books/in-stock-after/{year}
func (h *HTTPHandler) FindInStockAfter(w http.ResponseWriter, r *http.Request) {
	year, err := ParseYear(r.PathValue("year"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	books, err := h.service.FindInStockAfter(r.Context(), year)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"count": len(books)})
}

// ProjectSummary handles GET /v1/books/summary
func (h *HTTPHandler) ProjectSummary(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ProjectSummary(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, summaries, map[string]any{"count": len(summaries)})
}

// SortByPrice handles GET /v1/books/by-price?order=asc|desc
func (h *HTTPHandler) SortByPrice(w http.ResponseWriter, r *http.Request) {
	var ascending bool
	switch strings.ToLower(r.URL.Query().Get("order")) {
	case "", "asc":
		ascending = true
	case "desc":
		ascending = false
	default:
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "order must be asc or desc", nil)
		return
	}

	books, err := h.service.SortByPrice(r.Context(), ascending)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{"count": len(books)})
}

// Paginate handles GET /v1/books?page=1&page_size=20. Pages are one based
// on the wire and zero based in the service.
func (h *HTTPHandler) Paginate(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	if v := query.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "page must be a positive integer", nil)
			return
		}
		page = n
	}
	pageSize := defaultPageSize
	if v := query.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "page_size must be an integer", nil)
			return
		}
		pageSize = n
	}

	books, err := h.service.Paginate(r.Context(), pageSize, page-1)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, books, map[string]any{
		"page":      page,
		"page_size": pageSize,
		"count":     len(books),
	})
}

type insertBody struct {
	Books []Book `json:"books"`
}

// Insert handles POST /v1/books
func (h *HTTPHandler) Insert(w http.ResponseWriter, r *http.Request) {
	var body insertBody
	if !decodeBody(w, r, &body) {
		return
	}
	if len(body.Books) > maxBodyBooks {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "too many books in one request", nil)
		return
	}

	inserted, err := h.service.InsertBooks(r.Context(), body.Books)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccessCreated(w, r, map[string]any{"insertedCount": inserted})
}

type priceBody struct {
	Price *float64 `json:"price"`
}

// UpdatePrice handles PATCH /v1/books/{title}/price
func (h *HTTPHandler) UpdatePrice(w http.ResponseWriter, r *http.Request) {
	var body priceBody
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Price == nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "price is required", []httpx.ErrorDetail{
			{Field: "price", Message: "price is required"},
		})
		return
	}

	res, err := h.service.UpdatePrice(r.Context(), r.PathValue("title"), *body.Price)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// DeleteByTitle handles DELETE /v1/books/{title}
func (h *HTTPHandler) DeleteByTitle(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.DeleteByTitle(r.Context(), r.PathValue("title"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, res, nil)
}

// AveragePriceByGenre handles GET /v1/stats/genres/average-price
func (h *HTTPHandler) AveragePriceByGenre(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.AveragePriceByGenre(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, rows, nil)
}

// AuthorWithMostBooks handles GET /v1/stats/authors/top
func (h *HTTPHandler) AuthorWithMostBooks(w http.ResponseWriter, r *http.Request) {
	top, err := h.service.AuthorWithMostBooks(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, top, nil)
}

// CountByDecade handles GET /v1/stats/decades
func (h *HTTPHandler) CountByDecade(w http.ResponseWriter, r *http.Request) {
	rows, err := h.service.CountByDecade(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, rows, nil)
}

// EnsureIndex handles POST /v1/indexes
func (h *HTTPHandler) EnsureIndex(w http.ResponseWriter, r *http.Request) {
	var spec IndexSpec
	if !decodeBody(w, r, &spec) {
		return
	}

	name, err := h.service.EnsureIndex(r.Context(), spec)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, map[string]any{"name": name}, nil)
}

// Explain handles POST /v1/explain
func (h *HTTPHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var q Query
	if !decodeBody(w, r, &q) {
		return
	}

	stats, err := h.service.ExplainQuery(r.Context(), q)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, stats, map[string]any{"index_used": stats.UsesIndex()})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewDecoder(r.Body).Decode(v); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, "BAD_REQUEST", "Invalid JSON body", nil)
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		details := make([]httpx.ErrorDetail, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			details = append(details, httpx.ErrorDetail{Field: f.Field, Message: f.Message})
		}
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", "Invalid argument", details)
	case errors.Is(err, ErrInvalidArgument):
		httpx.JSONError(w, r, http.StatusBadRequest, "INVALID_ARGUMENT", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "No books in catalog", nil)
	case errors.Is(err, ErrStoreUnavailable):
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "STORE_UNAVAILABLE", "Document store unavailable", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
