package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/voltra/internal/audit/domain"
	billingdomain "github.com/smallbiznis/voltra/internal/billing/domain"
	consumptiondomain "github.com/smallbiznis/voltra/internal/consumption/domain"
	"github.com/smallbiznis/voltra/internal/metrics"
	subscriberdomain "github.com/smallbiznis/voltra/internal/subscriber/domain"
	"github.com/smallbiznis/voltra/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        consumptiondomain.Repository
	Calc        billingdomain.Calculator
	Subscribers subscriberdomain.Service
	Audit       auditdomain.Service
	Metrics     *metrics.Metrics
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        consumptiondomain.Repository
	calc        billingdomain.Calculator
	subscribers subscriberdomain.Service
	audit       auditdomain.Service
	metrics     *metrics.Metrics
}

func NewService(p Params) consumptiondomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("consumption.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		calc:        p.Calc,
		subscribers: p.Subscribers,
		audit:       p.Audit,
		metrics:     p.Metrics,
	}
}

// Upsert writes one subscriber-month reading. A second write for the same
// (subscriber, period) replaces the usage, recomputes the bill and resets
// payment state to Pending.
func (s *Service) Upsert(ctx context.Context, req consumptiondomain.UpsertRequest) (*consumptiondomain.UpsertResult, error) {
	period := strings.TrimSpace(req.Period)
	if !consumptiondomain.ValidPeriod(period) {
		return nil, consumptiondomain.ErrInvalidPeriod
	}

	sub, err := s.subscribers.Get(ctx, req.SubscriberID)
	if err != nil {
		return nil, err
	}

	breakdown, err := s.calc.Compute(req.UsageKwh)
	if err != nil {
		return nil, err
	}
	s.metrics.BillsComputed.Inc()
	total := billingdomain.Round2(breakdown.TotalBill)

	var result consumptiondomain.UpsertResult
	err = s.db.Transaction(func(tx *gorm.DB) error {
		existing, err := s.repo.FindForUpdate(ctx, tx, sub.ID, period)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if existing != nil {
			existing.UsageKwh = req.UsageKwh
			existing.TotalBill = total
			existing.BillStatus = consumptiondomain.StatusPending
			existing.PaymentAt = nil
			existing.UpdatedAt = now
			if err := s.repo.Update(ctx, tx, existing); err != nil {
				return err
			}
			result = consumptiondomain.UpsertResult{Record: existing, Action: consumptiondomain.ActionUpdated}
			return nil
		}

		rec := &consumptiondomain.Record{
			ID:           s.genID.Generate(),
			SubscriberID: sub.ID,
			Period:       period,
			UsageKwh:     req.UsageKwh,
			TotalBill:    total,
			BillStatus:   consumptiondomain.StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repo.Insert(ctx, tx, rec); err != nil {
			if db.IsDuplicateKeyErr(err) {
				return consumptiondomain.ErrDuplicateRecord
			}
			return err
		}
		result = consumptiondomain.UpsertResult{Record: rec, Action: consumptiondomain.ActionCreated}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordUpserts.WithLabelValues(string(result.Action)).Inc()
	_ = s.audit.Record(ctx, "", "consumption."+string(result.Action), map[string]any{
		"subscriber_id": sub.ID.String(),
		"username":      sub.Username,
		"period":        period,
		"usage_kwh":     req.UsageKwh,
		"total_bill":    total,
	})
	return &result, nil
}

func (s *Service) Find(ctx context.Context, subscriberID, period string) (*consumptiondomain.Record, error) {
	sub, period, err := s.resolve(ctx, subscriberID, period)
	if err != nil {
		return nil, err
	}

	rec, err := s.repo.Find(ctx, s.db, sub.ID, period)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, consumptiondomain.ErrRecordNotFound
	}
	return rec, nil
}

func (s *Service) ListBySubscriber(ctx context.Context, subscriberID string, filter consumptiondomain.ListFilter) ([]consumptiondomain.Record, error) {
	sub, err := s.subscribers.Get(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	if filter.Period != "" && !consumptiondomain.ValidPeriod(filter.Period) {
		return nil, consumptiondomain.ErrInvalidPeriod
	}
	return s.repo.ListBySubscriber(ctx, s.db, sub.ID, filter)
}

func (s *Service) ListAll(ctx context.Context, filter consumptiondomain.ListFilter) ([]consumptiondomain.Record, error) {
	if filter.Period != "" && !consumptiondomain.ValidPeriod(filter.Period) {
		return nil, consumptiondomain.ErrInvalidPeriod
	}
	return s.repo.ListAll(ctx, s.db, filter)
}

func (s *Service) MonthlyTotals(ctx context.Context) ([]consumptiondomain.MonthlyTotal, error) {
	return s.repo.MonthlyTotals(ctx, s.db)
}

func (s *Service) TotalsBySubscriber(ctx context.Context) ([]consumptiondomain.SubscriberTotal, error) {
	return s.repo.SubscriberTotals(ctx, s.db)
}

// Pay marks a pending bill as paid. Paying twice is an error; reverting a
// payment is done by writing the reading again, which resets the record to
// Pending.
func (s *Service) Pay(ctx context.Context, subscriberID, period string) (*consumptiondomain.Record, error) {
	sub, period, err := s.resolve(ctx, subscriberID, period)
	if err != nil {
		return nil, err
	}

	var paid *consumptiondomain.Record
	err = s.db.Transaction(func(tx *gorm.DB) error {
		rec, err := s.repo.FindForUpdate(ctx, tx, sub.ID, period)
		if err != nil {
			return err
		}
		if rec == nil {
			return consumptiondomain.ErrRecordNotFound
		}
		if rec.BillStatus == consumptiondomain.StatusPaid {
			return consumptiondomain.ErrAlreadyPaid
		}

		now := time.Now().UTC()
		rec.BillStatus = consumptiondomain.StatusPaid
		rec.PaymentAt = &now
		rec.UpdatedAt = now
		if err := s.repo.Update(ctx, tx, rec); err != nil {
			return err
		}
		paid = rec
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Payments.Inc()
	_ = s.audit.Record(ctx, "", "bill.paid", map[string]any{
		"subscriber_id": sub.ID.String(),
		"username":      sub.Username,
		"period":        period,
		"total_bill":    paid.TotalBill,
	})
	return paid, nil
}

func (s *Service) Delete(ctx context.Context, subscriberID, period string) error {
	sub, period, err := s.resolve(ctx, subscriberID, period)
	if err != nil {
		return err
	}

	rec, err := s.repo.Find(ctx, s.db, sub.ID, period)
	if err != nil {
		return err
	}
	if rec == nil {
		return consumptiondomain.ErrRecordNotFound
	}

	if err := s.repo.Delete(ctx, s.db, rec.ID); err != nil {
		return err
	}
	_ = s.audit.Record(ctx, "", "consumption.deleted", map[string]any{
		"subscriber_id": sub.ID.String(),
		"username":      sub.Username,
		"period":        period,
	})
	return nil
}

func (s *Service) resolve(ctx context.Context, subscriberID, period string) (*subscriberdomain.Subscriber, string, error) {
	period = strings.TrimSpace(period)
	if !consumptiondomain.ValidPeriod(period) {
		return nil, "", consumptiondomain.ErrInvalidPeriod
	}
	sub, err := s.subscribers.Get(ctx, subscriberID)
	if err != nil {
		return nil, "", err
	}
	return sub, period, nil
}
