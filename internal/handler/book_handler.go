package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/costs"
	"github.com/nash-team/bookforge/internal/lifecycle"
	"github.com/nash-team/bookforge/internal/model"
	"github.com/nash-team/bookforge/internal/service"
	"github.com/nash-team/bookforge/internal/storage"
)

// BookHandler handles book generation and listing requests. It delegates to
// BookService for the pipeline and to the lifecycle service for status
// transitions; its own job is request parsing and error-to-status mapping.
type BookHandler struct {
	books      *service.BookService
	lifecycle  *lifecycle.Service
	ebooks     storage.EbookRepository
	calculator *costs.Calculator
	logger     *zap.Logger
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(
	books *service.BookService,
	lc *lifecycle.Service,
	ebooks storage.EbookRepository,
	calculator *costs.Calculator,
	logger *zap.Logger,
) *BookHandler {
	return &BookHandler{
		books:      books,
		lifecycle:  lc,
		ebooks:     ebooks,
		calculator: calculator,
		logger:     logger,
	}
}

// generateRequest is the JSON body for POST /api/v1/books.
type generateRequest struct {
	Title     string `json:"title" binding:"required"`
	Theme     string `json:"theme" binding:"required"`
	Audience  string `json:"audience"`
	Type      string `json:"type"`
	PageCount int    `json:"page_count" binding:"required"`
	Seed      *int64 `json:"seed"`
}

// Generate runs the full pipeline and returns the draft ebook with its cost.
// Route: POST /api/v1/books
func (h *BookHandler) Generate(c *gin.Context) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	bookType := model.EbookType(body.Type)
	if body.Type == "" {
		bookType = model.TypeColoring
	}
	audience := model.Audience(body.Audience)
	if body.Audience == "" {
		audience = model.AudienceChildren
	}

	req := model.GenerationRequest{
		Title:     body.Title,
		Theme:     body.Theme,
		Audience:  audience,
		Type:      bookType,
		PageCount: body.PageCount,
		Seed:      body.Seed,
	}

	ebook, result, calc, err := h.books.CreateBook(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ebook": ebook,
		"pages": result.Pages,
		"cost":  calc,
	})
}

// regenerateRequest is the JSON body for page regeneration. It repeats the
// original request parameters; the seed must match the original run for the
// replacement page to be byte-identical.
type regenerateRequest struct {
	Title     string `json:"title" binding:"required"`
	Theme     string `json:"theme" binding:"required"`
	Audience  string `json:"audience"`
	PageCount int    `json:"page_count" binding:"required"`
	Seed      *int64 `json:"seed"`
}

// RegeneratePage reproduces one content page of an existing book.
// Route: POST /api/v1/books/:id/pages/:page/regenerate
func (h *BookHandler) RegeneratePage(c *gin.Context) {
	ebook, ok := h.loadEbook(c)
	if !ok {
		return
	}
	pageNumber, err := strconv.Atoi(c.Param("page"))
	if err != nil || pageNumber < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
		return
	}

	var body regenerateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	audience := model.Audience(body.Audience)
	if body.Audience == "" {
		audience = ebook.Audience
	}
	req := model.GenerationRequest{
		RequestID: ebook.RequestID,
		Title:     body.Title,
		Theme:     body.Theme,
		Audience:  audience,
		Type:      ebook.Type,
		PageCount: body.PageCount,
		Seed:      body.Seed,
	}

	meta, stored, err := h.books.RegeneratePage(c.Request.Context(), req, pageNumber)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"page": meta,
		"file": gin.H{"id": stored.ID, "url": stored.URL},
	})
}

// List returns a page of ebooks, optionally filtered by status.
// Route: GET /api/v1/books?page=1&size=20&status=pending
func (h *BookHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	ctx := c.Request.Context()
	var (
		result model.Page[model.Ebook]
		err    error
	)
	if status := c.Query("status"); status != "" {
		result, err = h.ebooks.GetPaginatedByStatus(ctx, model.EbookStatus(status), page, size)
	} else {
		result, err = h.ebooks.GetPaginated(ctx, page, size)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":        result.Items,
		"total_count":  result.TotalCount,
		"page":         result.Number,
		"size":         result.Size,
		"total_pages":  result.TotalPages(),
		"has_next":     result.HasNext(),
		"has_previous": result.HasPrevious(),
	})
}

// Get returns one ebook by id.
// Route: GET /api/v1/books/:id
func (h *BookHandler) Get(c *gin.Context) {
	ebook, ok := h.loadEbook(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, ebook)
}

// Cost returns the settled cost calculation for a book's request.
// Route: GET /api/v1/books/:id/cost
func (h *BookHandler) Cost(c *gin.Context) {
	ebook, ok := h.loadEbook(c)
	if !ok {
		return
	}
	calc, err := h.calculator.Calculate(c.Request.Context(), ebook.RequestID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, calc)
}

// Submit moves a draft book into pending review.
// Route: POST /api/v1/books/:id/submit
func (h *BookHandler) Submit(c *gin.Context) {
	h.transition(c, func(ctx *gin.Context, id int64) (*model.Ebook, error) {
		return h.lifecycle.SubmitForValidation(ctx.Request.Context(), id)
	})
}

// Approve marks a pending or rejected book as approved.
// Route: POST /api/v1/books/:id/approve
func (h *BookHandler) Approve(c *gin.Context) {
	var body struct {
		ReviewedBy string `json:"reviewed_by"`
	}
	_ = c.ShouldBindJSON(&body)
	h.transition(c, func(ctx *gin.Context, id int64) (*model.Ebook, error) {
		return h.lifecycle.Approve(ctx.Request.Context(), id, body.ReviewedBy)
	})
}

// Reject marks a pending or approved book as rejected.
// Route: POST /api/v1/books/:id/reject
func (h *BookHandler) Reject(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)
	h.transition(c, func(ctx *gin.Context, id int64) (*model.Ebook, error) {
		return h.lifecycle.Reject(ctx.Request.Context(), id, body.Reason)
	})
}

func (h *BookHandler) transition(c *gin.Context, fn func(*gin.Context, int64) (*model.Ebook, error)) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return
	}
	ebook, err := fn(c, id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ebook)
}

func (h *BookHandler) loadEbook(c *gin.Context) (*model.Ebook, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be an integer"})
		return nil, false
	}
	ebook, err := h.ebooks.GetByID(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return ebook, true
}

// respondError maps domain error codes to HTTP statuses. Unknown errors are
// logged and returned as a bare 500 so internals don't leak.
func (h *BookHandler) respondError(c *gin.Context, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if de, ok := model.AsDomainError(err); ok {
		c.JSON(statusForCode(de.Code), gin.H{
			"error":   de.Message,
			"code":    de.Code,
			"hint":    de.Hint,
			"context": de.Context,
		})
		return
	}
	h.logger.Error("request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func statusForCode(code model.ErrorCode) int {
	switch code {
	case model.CodeValidation, model.CodePageLimitExceeded:
		return http.StatusBadRequest
	case model.CodeDPITooLow, model.CodeImageTooSmall, model.CodeWrongColorMode, model.CodeResolutionTooHigh:
		return http.StatusUnprocessableEntity
	case model.CodeProviderRateLimited:
		return http.StatusTooManyRequests
	case model.CodeProviderTimeout:
		return http.StatusGatewayTimeout
	case model.CodeModelUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
