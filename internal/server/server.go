// Package server hosts the portal's HTTP surface: subscriber management,
// consumption records and billing, grievance tickets, CSV exchange and the
// audit trail.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	auditdomain "github.com/smallbiznis/voltra/internal/audit/domain"
	billingdomain "github.com/smallbiznis/voltra/internal/billing/domain"
	"github.com/smallbiznis/voltra/internal/config"
	consumptiondomain "github.com/smallbiznis/voltra/internal/consumption/domain"
	"github.com/smallbiznis/voltra/internal/export"
	"github.com/smallbiznis/voltra/internal/metrics"
	"github.com/smallbiznis/voltra/internal/providers/pdf"
	subscriberdomain "github.com/smallbiznis/voltra/internal/subscriber/domain"
	"github.com/smallbiznis/voltra/internal/tariff"
	ticketdomain "github.com/smallbiznis/voltra/internal/ticket/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(NewEngine),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

func NewEngine(cfg config.Config, log *zap.Logger, m *metrics.Metrics) *gin.Engine {
	if !cfg.IsDev() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestContextMiddleware(cfg))
	r.Use(RequestLogMiddleware(log))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": cfg.AppName, "version": cfg.AppVersion})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})))

	return r
}

func run(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, r *gin.Engine) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal("http server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger

	schedule *tariff.Schedule
	calc     billingdomain.Calculator
	metrics  *metrics.Metrics

	subscriberSvc subscriberdomain.Service
	recordSvc     consumptiondomain.Service
	ticketSvc     ticketdomain.Service
	auditSvc      auditdomain.Service
	exportSvc     *export.Service
	pdfProvider   pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin      *gin.Engine
	Cfg      config.Config
	Log      *zap.Logger
	Schedule *tariff.Schedule
	Calc     billingdomain.Calculator
	Metrics  *metrics.Metrics

	SubscriberSvc subscriberdomain.Service
	RecordSvc     consumptiondomain.Service
	TicketSvc     ticketdomain.Service
	AuditSvc      auditdomain.Service
	ExportSvc     *export.Service
	PDFProvider   pdf.Provider
}

func NewServer(p ServerParams) *Server {
	svc := &Server{
		engine:        p.Gin,
		cfg:           p.Cfg,
		log:           p.Log.Named("server"),
		schedule:      p.Schedule,
		calc:          p.Calc,
		metrics:       p.Metrics,
		subscriberSvc: p.SubscriberSvc,
		recordSvc:     p.RecordSvc,
		ticketSvc:     p.TicketSvc,
		auditSvc:      p.AuditSvc,
		exportSvc:     p.ExportSvc,
		pdfProvider:   p.PDFProvider,
	}

	svc.registerRoutes()
	return svc
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerRoutes() {
	v1 := s.engine.Group("/v1")

	// -------- Tariff & billing --------
	v1.GET("/tariff", s.GetTariff)
	v1.POST("/bills/preview", s.PreviewBill)

	// -------- Subscribers --------
	v1.POST("/subscribers", s.CreateSubscriber)
	v1.GET("/subscribers", s.ListSubscribers)
	v1.GET("/subscribers/:id", s.GetSubscriber)
	v1.DELETE("/subscribers/:id", s.DeleteSubscriber)

	// -------- Consumption records --------
	v1.PUT("/subscribers/:id/records/:period", s.UpsertRecord)
	v1.GET("/subscribers/:id/records/:period", s.GetRecord)
	v1.DELETE("/subscribers/:id/records/:period", s.DeleteRecord)
	v1.POST("/subscribers/:id/records/:period/pay", s.PayRecord)
	v1.GET("/subscribers/:id/records/:period/bill", s.GetBillText)
	v1.GET("/subscribers/:id/records/:period/bill.pdf", s.GetBillPDF)
	v1.GET("/subscribers/:id/records", s.ListSubscriberRecords)
	v1.GET("/records", s.ListRecords)

	// -------- Aggregates --------
	v1.GET("/stats/monthly", s.MonthlyTotals)
	v1.GET("/stats/subscribers", s.SubscriberTotals)

	// -------- CSV exchange --------
	v1.GET("/records/export", s.ExportRecords)
	v1.POST("/records/import", s.ImportRecords)

	// -------- Grievance tickets --------
	v1.POST("/tickets", s.OpenTicket)
	v1.GET("/tickets", s.ListTickets)
	v1.GET("/tickets/:token", s.GetTicket)
	v1.POST("/tickets/:token/replies", s.ReplyTicket)
	v1.GET("/subscribers/:id/tickets", s.ListSubscriberTickets)

	// -------- Audit trail --------
	v1.GET("/audit", s.ListAuditEntries)
}
