package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/sitestock/internal/domain/models"
	"github.com/mamadbah2/sitestock/internal/service/stock"
)

// StockService is the stock ledger surface exposed over HTTP.
type StockService interface {
	AppendInbound(ctx context.Context, e stock.Entry) (stock.AppendResult, error)
	AppendOutbound(ctx context.Context, e stock.Entry) (stock.AppendResult, error)
	AppendValue(ctx context.Context, e stock.Entry) (stock.AppendResult, error)
	PointEdit(ctx context.Context, req stock.EditRequest) (stock.EditResult, error)
	LatestPerMaterial(ctx context.Context, siteID string) ([]models.LatestEntry, error)
	History(ctx context.Context, siteID, materialID string) (*models.MaterialHistory, error)
	SiteLedger(ctx context.Context, siteID string) (*models.SiteLedger, error)
	AllLedgers(ctx context.Context) ([]models.SiteLedger, error)
}

// DigestService builds stock digests on demand.
type DigestService interface {
	BuildDigest(ctx context.Context, now time.Time) (models.Digest, error)
}

// StockHandler adapts the stock service to gin.
type StockHandler struct {
	svc     StockService
	digests DigestService
	logger  *zap.Logger
}

// NewStockHandler constructs the HTTP handler adapter.
func NewStockHandler(svc StockService, digests DigestService, logger *zap.Logger) *StockHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StockHandler{svc: svc, digests: digests, logger: logger}
}

type inboundRequest struct {
	Inbound     *decimal.Decimal `json:"inbound"`
	Description string           `json:"description"`
}

type outboundRequest struct {
	Outbound    *decimal.Decimal `json:"outbound"`
	Description string           `json:"description"`
}

type valueRequest struct {
	Values      *decimal.Decimal `json:"values"`
	Description string           `json:"description"`
}

type editRequest struct {
	Inbound *decimal.Decimal `json:"inbound"`
	Value   *decimal.Decimal `json:"value"`
}

// Inbound records a delivery. It answers 201 when the ledger was created.
func (h *StockHandler) Inbound(c *gin.Context) {
	var req inboundRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Inbound == nil {
		badRequest(c, "Inbound and description are required")
		return
	}

	res, err := h.svc.AppendInbound(c.Request.Context(), h.entry(c, *req.Inbound, req.Description))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	if res.Origin == models.OriginCreated {
		c.JSON(http.StatusCreated, gin.H{"message": "Stock entry created", "ledger": res.Ledger})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock entry updated", "ledger": res.Ledger})
}

// Outbound records material consumed on site.
func (h *StockHandler) Outbound(c *gin.Context) {
	var req outboundRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Outbound == nil {
		badRequest(c, "Outbound and description are required")
		return
	}

	res, err := h.svc.AppendOutbound(c.Request.Context(), h.entry(c, *req.Outbound, req.Description))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Outbound entry updated successfully", "transaction": res.Transaction})
}

// Value records a value consumption.
func (h *StockHandler) Value(c *gin.Context) {
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Values == nil {
		badRequest(c, "Value and description are required")
		return
	}

	res, err := h.svc.AppendValue(c.Request.Context(), h.entry(c, *req.Values, req.Description))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Value entry updated successfully", "transaction": res.Transaction})
}

// UpdateHistory edits a historical transaction and cascades the running stock.
func (h *StockHandler) UpdateHistory(c *gin.Context) {
	idx, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "Invalid index")
		return
	}

	var req editRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid inbound or value")
		return
	}

	res, err := h.svc.PointEdit(c.Request.Context(), stock.EditRequest{
		SiteID:     c.Param("siteId"),
		MaterialID: c.Param("materialId"),
		Index:      idx,
		Inbound:    req.Inbound,
		Value:      req.Value,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        "Stock updated successfully",
		"updatedIndex":   res.Index,
		"updatedInbound": res.Inbound,
		"updatedValue":   res.Value,
		"updatedStock":   res.RunningStock,
		"repaired":       res.Repaired,
	})
}

// LatestEntries lists the last state of each material at the site.
func (h *StockHandler) LatestEntries(c *gin.Context) {
	rows, err := h.svc.LatestPerMaterial(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Last stock entry retrieved successfully", "lastEntry": rows})
}

// History returns the transactions of one material, newest first.
func (h *StockHandler) History(c *gin.Context) {
	history, err := h.svc.History(c.Request.Context(), c.Param("siteId"), c.Param("materialId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, history)
}

// SiteLedger returns the full stock document of a site.
func (h *StockHandler) SiteLedger(c *gin.Context) {
	ledger, err := h.svc.SiteLedger(c.Request.Context(), c.Param("siteId"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock data retrieved successfully", "stackData": ledger})
}

// AllLedgers returns the stock documents of all sites.
func (h *StockHandler) AllLedgers(c *gin.Context) {
	all, err := h.svc.AllLedgers(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Stock data retrieved successfully", "allStock": all})
}

// Digest builds the stock digest on demand.
func (h *StockHandler) Digest(c *gin.Context) {
	digest, err := h.digests.BuildDigest(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, digest)
}

func (h *StockHandler) entry(c *gin.Context, amount decimal.Decimal, description string) stock.Entry {
	return stock.Entry{
		SiteID:      c.Param("siteId"),
		MaterialID:  c.Param("materialId"),
		Amount:      amount,
		Description: description,
	}
}
