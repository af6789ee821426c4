package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	consumptiondomain "github.com/smallbiznis/voltra/internal/consumption/domain"
	"go.uber.org/zap"
)

// ExportRecords streams the consumption ledger as a CSV download.
func (s *Server) ExportRecords(c *gin.Context) {
	var filter consumptiondomain.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	filename := "records-" + time.Now().UTC().Format("20060102") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "text/csv")
	c.Status(http.StatusOK)

	if err := s.exportSvc.ExportRecords(c.Request.Context(), c.Writer, filter); err != nil {
		s.log.Error("csv export failed", zap.Error(err))
	}
}

// ImportRecords accepts a CSV body of readings and applies each row through
// the regular upsert path. The response summarizes added, updated and failed
// rows.
func (s *Server) ImportRecords(c *gin.Context) {
	summary, err := s.exportSvc.ImportRecords(c.Request.Context(), c.Request.Body)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": summary})
}
