package httpapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthFunc reports whether the backing store is reachable.
type HealthFunc func(ctx context.Context) error

// NewRouter wires the REST surface of the invoice service.
func NewRouter(h *Handler, health HealthFunc, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()
	r.Use(RequestID(), Recovery(logger), RequestLogger(logger))

	r.GET("/healthz", func(c *gin.Context) {
		if health != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := health(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")
	{
		v1.POST("/invoices", h.Extract)
		v1.GET("/invoices", h.ListInvoices)
		v1.GET("/invoices/:id", h.GetInvoice)
		v1.GET("/invoices/:id/export", h.ExportPayload)
		v1.POST("/invoices/:id/ask", h.Ask)
		v1.GET("/exports/invoices.xlsx", h.ExportLedger)
	}
	return r
}
