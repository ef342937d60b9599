package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"products-api/internal/apperror"
	"products-api/internal/models"
	"products-api/internal/query"
	"products-api/internal/repository"
	"products-api/internal/stats"
	"products-api/internal/validation"
)

// Número de productos similares devueltos junto a un producto
const similarLimit = 4

type ProductHandler struct {
	responder
	store      repository.ProductStore
	reporter   *stats.Reporter
	searchMode query.SearchMode
	now        func() time.Time
}

// Options configura el comportamiento de los handlers
type Options struct {
	SearchMode query.SearchMode
	// Debug incluye el error interno en las respuestas 5xx
	Debug bool
}

func NewProductHandler(store repository.ProductStore, reporter *stats.Reporter, log *logrus.Logger, opts Options) *ProductHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if opts.SearchMode == "" {
		opts.SearchMode = query.SearchBoth
	}
	return &ProductHandler{
		responder:  responder{log: log, debug: opts.Debug},
		store:      store,
		reporter:   reporter,
		searchMode: opts.SearchMode,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func sortInfo(s query.Sort) gin.H {
	if s.Relevance {
		return gin.H{"by": "relevance", "order": "desc"}
	}
	return gin.H{"by": s.Field, "order": s.Order()}
}

// ListProducts lista productos con filtros, orden y paginación
func (h *ProductHandler) ListProducts(c *gin.Context) {
	plan := query.BuildList(c.Request.URL.Query(), h.searchMode)

	res, err := query.Execute(c.Request.Context(), h.store, plan)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "products retrieved", gin.H{
		"items":          res.Items,
		"pagination":     query.NewPagination(plan.Page, res.Total),
		"filtersApplied": plan.Applied,
		"stats":          stats.SummarizePage(res.Items),
		"sort":           sortInfo(plan.Sort),
	})
}

// AdvancedSearch busca por texto con filtros adicionales
func (h *ProductHandler) AdvancedSearch(c *gin.Context) {
	plan := query.BuildAdvancedSearch(c.Request.URL.Query())

	res, err := query.Execute(c.Request.Context(), h.store, plan)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "search completed", gin.H{
		"items":   res.Items,
		"total":   res.Total,
		"filters": plan.Applied,
		"sort":    sortInfo(plan.Sort),
	})
}

// GetCategories lista las categorías distintas
func (h *ProductHandler) GetCategories(c *gin.Context) {
	categories, err := h.reporter.CategoryList(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "categories retrieved", gin.H{
		"categories": categories,
		"total":      len(categories),
	})
}

// CreateProduct crea un nuevo producto
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, bindError(err))
		return
	}

	product := models.NewProduct(input, models.CreatedByAPI, h.now())
	if err := h.store.Create(c.Request.Context(), &product); err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusCreated, "product created", product)
}

// GetProduct devuelve un producto y hasta cuatro de la misma categoría
func (h *ProductHandler) GetProduct(c *gin.Context) {
	ctx := c.Request.Context()

	product, err := h.store.FindByID(ctx, c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	var filter query.Filter
	filter.Add(query.Equals{Field: models.FieldCategory, Value: product.Category})
	filter.Add(query.ExcludeID{ID: product.ID})
	similar, err := h.store.Find(ctx, filter, query.Sort{Field: models.FieldRating}, 0, similarLimit)
	if err != nil {
		// los similares son opcionales
		h.log.WithError(err).WithField("id", product.ID.Hex()).Warn("similar products lookup failed")
		similar = []models.Product{}
	}

	respond(c, http.StatusOK, "product retrieved", gin.H{
		"product":         product,
		"similarProducts": similar,
	})
}

// UpdateProduct actualiza parcialmente un producto (PUT y PATCH)
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var update models.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		h.fail(c, bindError(err))
		return
	}
	if update.IsEmpty() {
		h.fail(c, apperror.InvalidInput("no updatable fields in request body"))
		return
	}

	product, err := h.store.Update(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "product updated", product)
}

// DeleteProduct elimina un producto y lo devuelve
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	product, err := h.store.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "product deleted", product)
}

func bindError(err error) error {
	if fields := validation.FieldErrors(err); len(fields) > 0 {
		return apperror.InvalidInput("validation failed", fields...)
	}
	return apperror.InvalidInput("invalid request body",
		apperror.FieldError{Field: "body", Message: err.Error()})
}
