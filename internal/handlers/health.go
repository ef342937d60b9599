package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"products-api/internal/query"
	"products-api/internal/repository"
)

type HealthHandler struct {
	responder
	store  repository.ProductStore
	driver string
}

func NewHealthHandler(store repository.ProductStore, driver string, log *logrus.Logger) *HealthHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HealthHandler{responder: responder{log: log}, store: store, driver: driver}
}

// Health verifica la conexión con el almacenamiento y cuenta los productos
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.store.Ping(ctx); err != nil {
		h.fail(c, err)
		return
	}
	total, err := h.store.Count(ctx, query.Filter{})
	if err != nil {
		h.fail(c, err)
		return
	}

	respond(c, http.StatusOK, "ok", gin.H{
		"status":   "healthy",
		"store":    h.driver,
		"products": total,
	})
}
