package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/nash-team/bookforge/internal/model"
	"github.com/nash-team/bookforge/internal/registry"
	"github.com/nash-team/bookforge/internal/storage"
)

// AdminHandler handles administrative endpoints: pipeline statistics, the
// model registry, and pricing cache control.
type AdminHandler struct {
	ebookRepo storage.EbookRepository
	registry  *registry.Registry
	logger    *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(ebookRepo storage.EbookRepository, reg *registry.Registry, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		ebookRepo: ebookRepo,
		registry:  reg,
		logger:    logger,
	}
}

// Stats returns ebook counts per lifecycle status.
// Route: GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	counts := gin.H{}
	total := 0
	for _, status := range []model.EbookStatus{
		model.StatusDraft, model.StatusPending, model.StatusApproved, model.StatusRejected,
	} {
		ebooks, err := h.ebookRepo.GetByStatus(ctx, status)
		if err != nil {
			h.logger.Error("counting ebooks", zap.String("status", string(status)), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		counts[string(status)] = len(ebooks)
		total += len(ebooks)
	}
	counts["total"] = total

	c.JSON(http.StatusOK, counts)
}

// Models returns the registered model table with provider and pricing info.
// Route: GET /api/v1/admin/models
func (h *AdminHandler) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"models": h.registry.List()})
}

// RefreshPricing drops the cached pricing view so the next cost recording
// rebuilds it from the registry.
// Route: POST /api/v1/admin/pricing/refresh
func (h *AdminHandler) RefreshPricing(c *gin.Context) {
	h.registry.ClearCache()
	c.JSON(http.StatusOK, gin.H{"status": "pricing cache cleared"})
}
