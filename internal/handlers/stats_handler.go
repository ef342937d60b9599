package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStats devuelve el reporte completo
func (h *ProductHandler) GetStats(c *gin.Context) {
	report, err := h.reporter.Report(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "statistics computed", report)
}

func (h *ProductHandler) GetCategoryStats(c *gin.Context) {
	breakdown(h, c, "categories", h.reporter.Categories)
}

func (h *ProductHandler) GetBrandStats(c *gin.Context) {
	breakdown(h, c, "brands", h.reporter.Brands)
}

func (h *ProductHandler) GetPriceStats(c *gin.Context) {
	breakdown(h, c, "priceDistribution", h.reporter.PriceDistribution)
}

func (h *ProductHandler) GetRatingStats(c *gin.Context) {
	breakdown(h, c, "ratingDistribution", h.reporter.RatingDistribution)
}

func breakdown[T any](h *ProductHandler, c *gin.Context, key string, fn func(context.Context) ([]T, error)) {
	rows, err := fn(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, "statistics computed", gin.H{key: rows})
}
