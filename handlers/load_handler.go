package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/FreightDesk/freight-desk-backend/errors"
	"github.com/FreightDesk/freight-desk-backend/logger"
	"github.com/FreightDesk/freight-desk-backend/models"
	"github.com/FreightDesk/freight-desk-backend/services"
	"github.com/FreightDesk/freight-desk-backend/store"
	"github.com/FreightDesk/freight-desk-backend/types"
	"github.com/gin-gonic/gin"
)

type LoadHandler struct {
	loadModel      *models.LoadModel
	pricingService *services.PricingService
	quoteStore     store.QuoteStore
}

func NewLoadHandler(loadModel *models.LoadModel, pricingService *services.PricingService, quoteStore store.QuoteStore) *LoadHandler {
	return &LoadHandler{
		loadModel:      loadModel,
		pricingService: pricingService,
		quoteStore:     quoteStore,
	}
}

// UpdateLoadStatusRequest is the body for PATCH /loads/:id/status.
type UpdateLoadStatusRequest struct {
	Status types.LoadStatus `json:"status" binding:"required"`
}

// ListLoads returns loads newest first, optionally filtered by status,
// category, or shipper email.
func (h *LoadHandler) ListLoads(c *gin.Context) {
	log := logger.GetLogger()

	filter := store.ListLoadsFilter{
		Status:       types.LoadStatus(strings.ToUpper(c.Query("status"))),
		Category:     types.FreightCategory(strings.ToUpper(c.Query("category"))),
		ShipperEmail: c.Query("shipper_email"),
	}

	var err error
	if filter.Limit, err = queryInt(c, "limit", 0); err != nil {
		handlerError(c, err)
		return
	}
	if filter.Offset, err = queryInt(c, "offset", 0); err != nil {
		handlerError(c, err)
		return
	}

	loads, err := h.loadModel.ListLoads(c.Request.Context(), filter)
	if err != nil {
		handlerError(c, err)
		return
	}

	log.Debugw("Listed loads", "count", len(loads), "status", filter.Status)
	c.JSON(http.StatusOK, gin.H{"loads": loads, "count": len(loads)})
}

// GetLoad returns a single load by ID.
func (h *LoadHandler) GetLoad(c *gin.Context) {
	load, err := h.loadModel.GetLoad(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlerError(c, err)
		return
	}
	c.JSON(http.StatusOK, load)
}

// GetLoadValidation returns the latest validation report for a load,
// including the human-readable list of missing fields.
func (h *LoadHandler) GetLoadValidation(c *gin.Context) {
	load, err := h.loadModel.GetLoad(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"loadId":        load.ID,
		"status":        load.Status,
		"category":      load.Category,
		"report":        load.Report,
		"missingFields": load.MissingFields,
	})
}

// UpdateLoadStatus transitions a load to a new lifecycle status. Illegal
// transitions are rejected with a validation error.
func (h *LoadHandler) UpdateLoadStatus(c *gin.Context) {
	var req UpdateLoadStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlerError(c, errors.ValidationFailed("Invalid request body", err.Error()))
		return
	}

	load, err := h.loadModel.UpdateStatus(c.Request.Context(), c.Param("id"), types.LoadStatus(strings.ToUpper(string(req.Status))))
	if err != nil {
		handlerError(c, err)
		return
	}
	c.JSON(http.StatusOK, load)
}

// CreateQuote prices a load and persists the resulting quote. Only loads in
// READY or NEEDS_REVIEW status can be quoted.
func (h *LoadHandler) CreateQuote(c *gin.Context) {
	log := logger.GetLogger()

	load, err := h.loadModel.GetLoad(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlerError(c, err)
		return
	}

	quote, err := h.pricingService.PriceLoad(c.Request.Context(), load)
	if err != nil {
		handlerError(c, err)
		return
	}

	log.Infow("Quote created",
		"loadId", load.ID,
		"quoteId", quote.ID,
		"shipperRate", quote.ShipperRate,
		"totalMiles", quote.TotalMiles)
	c.JSON(http.StatusCreated, quote)
}

// ListQuotes returns all quotes generated for a load, newest first.
func (h *LoadHandler) ListQuotes(c *gin.Context) {
	load, err := h.loadModel.GetLoad(c.Request.Context(), c.Param("id"))
	if err != nil {
		handlerError(c, err)
		return
	}

	quotes, err := h.quoteStore.ListQuotesForLoad(c.Request.Context(), load.ID)
	if err != nil {
		handlerError(c, errors.NewDatabaseError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"loadId": load.ID, "quotes": quotes, "count": len(quotes)})
}

func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.ValidationFailed("Invalid query parameter", name+" must be a non-negative integer")
	}
	return v, nil
}

func handlerError(c *gin.Context, err error) {
	_ = c.Error(err)
}
