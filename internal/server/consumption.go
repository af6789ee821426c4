package server

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/voltra/internal/billing/format"
	consumptiondomain "github.com/smallbiznis/voltra/internal/consumption/domain"
	"github.com/smallbiznis/voltra/internal/providers/pdf"
	subscriberdomain "github.com/smallbiznis/voltra/internal/subscriber/domain"
)

type upsertRecordRequest struct {
	UsageKwh float64 `json:"usage_kwh"`
}

// UpsertRecord writes the metered reading for one subscriber-month. The
// response status distinguishes a first write from a replacement.
func (s *Server) UpsertRecord(c *gin.Context) {
	var req upsertRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	res, err := s.recordSvc.Upsert(c.Request.Context(), consumptiondomain.UpsertRequest{
		SubscriberID: c.Param("id"),
		Period:       c.Param("period"),
		UsageKwh:     req.UsageKwh,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	status := http.StatusOK
	if res.Action == consumptiondomain.ActionCreated {
		status = http.StatusCreated
	}
	c.JSON(status, gin.H{"data": res.Record, "action": res.Action})
}

func (s *Server) GetRecord(c *gin.Context) {
	rec, err := s.recordSvc.Find(c.Request.Context(), c.Param("id"), c.Param("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rec})
}

func (s *Server) DeleteRecord(c *gin.Context) {
	if err := s.recordSvc.Delete(c.Request.Context(), c.Param("id"), c.Param("period")); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) PayRecord(c *gin.Context) {
	rec, err := s.recordSvc.Pay(c.Request.Context(), c.Param("id"), c.Param("period"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": rec})
}

func (s *Server) ListSubscriberRecords(c *gin.Context) {
	var filter consumptiondomain.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	recs, err := s.recordSvc.ListBySubscriber(c.Request.Context(), c.Param("id"), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": recs})
}

func (s *Server) ListRecords(c *gin.Context) {
	var filter consumptiondomain.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	recs, err := s.recordSvc.ListAll(c.Request.Context(), filter)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": recs})
}

func (s *Server) MonthlyTotals(c *gin.Context) {
	totals, err := s.recordSvc.MonthlyTotals(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": totals})
}

func (s *Server) SubscriberTotals(c *gin.Context) {
	totals, err := s.recordSvc.TotalsBySubscriber(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": totals})
}

// GetBillText renders the itemized bill for a stored record as plain text.
func (s *Server) GetBillText(c *gin.Context) {
	sub, rec, err := s.loadRecord(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	breakdown, err := s.calc.Compute(rec.UsageKwh)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metrics.BillsComputed.Inc()
	c.String(http.StatusOK, format.RenderBill(breakdown, rec.Period, sub.DisplayName, s.schedule))
}

// GetBillPDF renders the same bill as a downloadable PDF.
func (s *Server) GetBillPDF(c *gin.Context) {
	sub, rec, err := s.loadRecord(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	breakdown, err := s.calc.Compute(rec.UsageKwh)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.metrics.BillsComputed.Inc()

	items := make([]pdf.BillItem, 0, len(breakdown.Bands)+3)
	for _, band := range breakdown.Bands {
		items = append(items, pdf.BillItem{
			Description: "Energy charge " + band.Label,
			Units:       fmt.Sprintf("%.2f", band.Units),
			Rate:        fmt.Sprintf("%.2f", band.Rate),
			Amount:      fmt.Sprintf("%.2f", band.Cost),
		})
	}
	items = append(items,
		pdf.BillItem{Description: "Fixed charge", Amount: fmt.Sprintf("%.2f", breakdown.FixedCharge)},
		pdf.BillItem{Description: "Wheeling charge", Amount: fmt.Sprintf("%.2f", breakdown.WheelingCharge)},
		pdf.BillItem{Description: "Fuel adjustment", Amount: fmt.Sprintf("%.2f", breakdown.FuelAdjustment)},
	)

	doc, err := s.pdfProvider.GenerateBill(c.Request.Context(), pdf.BillData{
		UtilityName:    s.cfg.AppName,
		SubscriberName: sub.DisplayName,
		Username:       sub.Username,
		Period:         rec.Period,
		BillStatus:     string(rec.BillStatus),
		UsageKwh:       fmt.Sprintf("%.2f", breakdown.UsageKwh),
		Items:          items,
		SubTotal:       fmt.Sprintf("%.2f", breakdown.SubTotal),
		Duty:           fmt.Sprintf("%.2f", breakdown.ElectricityDuty),
		Total:          fmt.Sprintf("%.2f", breakdown.TotalBill),
		TariffName:     s.schedule.Name,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	filename := fmt.Sprintf("bill-%s-%s.pdf", sub.Username, rec.Period)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Header("Content-Type", "application/pdf")
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, doc)
}

func (s *Server) loadRecord(c *gin.Context) (*subscriberdomain.Subscriber, *consumptiondomain.Record, error) {
	sub, err := s.subscriberSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		return nil, nil, err
	}
	rec, err := s.recordSvc.Find(c.Request.Context(), c.Param("id"), c.Param("period"))
	if err != nil {
		return nil, nil, err
	}
	return sub, rec, nil
}
