package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) GetTariff(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.schedule})
}

type previewBillRequest struct {
	UsageKwh float64 `json:"usage_kwh"`
}

// PreviewBill computes a bill for an arbitrary usage quantity without
// touching any record.
func (s *Server) PreviewBill(c *gin.Context) {
	var req previewBillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	breakdown, err := s.calc.Compute(req.UsageKwh)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.BillsComputed.Inc()
	c.JSON(http.StatusOK, gin.H{"data": breakdown})
}
