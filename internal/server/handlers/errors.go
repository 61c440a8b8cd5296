package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/sitestock/internal/service/stock"
)

var statusByCode = map[string]int{
	"invalid_input":       http.StatusBadRequest,
	"not_found":           http.StatusNotFound,
	"no_stock_record":     http.StatusBadRequest,
	"insufficient_stock":  http.StatusBadRequest,
	"index_out_of_range":  http.StatusBadRequest,
	"invalid_stock_state": http.StatusBadRequest,
}

// respondError writes the error body for err; unknown errors become a 500.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	code := stock.Code(err)
	status, ok := statusByCode[code]
	if !ok {
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal", "message": "Internal server error"})
		return
	}

	body := gin.H{"error": code, "message": err.Error()}
	if details := stock.Details(err); details != nil {
		body["details"] = details
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_input", "message": message})
}
