package handlers

import (
	"errors"
	"net/http"

	"waqf/internal/service"
	"waqf/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Handler struct {
	agg *service.Aggregator
	log *logrus.Logger
}

func NewHandler(agg *service.Aggregator, log *logrus.Logger) *Handler {
	return &Handler{agg: agg, log: log}
}

// Routes registers the API on r.
func (h *Handler) Routes(r gin.IRouter) {
	r.GET("/", h.Root)
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group("/api")
	api.GET("/portfolio", h.GetPortfolio)
	api.GET("/portfolio/:id", h.GetPosition)
	api.GET("/summary", h.GetSummary)
	api.GET("/prices", h.GetPrices)
	api.POST("/prices/refresh", h.RefreshPrices)
}

func (h *Handler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Al Waqf Muscat portfolio tracker is running"})
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	p, err := h.agg.Aggregate(c.Request.Context())
	if err != nil {
		h.log.Errorf("portfolio fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "portfolio fetch failed"})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) GetPosition(c *gin.Context) {
	id := c.Param("id")
	pos, err := h.agg.Position(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "position not found: " + id})
		return
	}
	if err != nil {
		h.log.Errorf("get position %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "position fetch failed"})
		return
	}
	c.JSON(http.StatusOK, pos)
}

func (h *Handler) GetSummary(c *gin.Context) {
	p, err := h.agg.Aggregate(c.Request.Context())
	if err != nil {
		h.log.Errorf("summary fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "summary fetch failed"})
		return
	}
	c.JSON(http.StatusOK, p.Summary)
}

func (h *Handler) GetPrices(c *gin.Context) {
	symbols, prices, err := h.agg.Prices(c.Request.Context())
	if err != nil {
		h.log.Errorf("price fetch failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "price fetch failed"})
		return
	}
	if prices == nil {
		prices = map[string]decimal.NullDecimal{}
	}
	c.JSON(http.StatusOK, gin.H{"tickers": symbols, "prices": prices})
}

// RefreshPrices exists for the UI's refresh button. Every read already
// fetches fresh prices, so there is nothing to invalidate.
func (h *Handler) RefreshPrices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "refreshed"})
}
