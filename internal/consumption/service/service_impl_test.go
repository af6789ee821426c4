package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/voltra/internal/audit/domain"
	auditrepository "github.com/smallbiznis/voltra/internal/audit/repository"
	auditservice "github.com/smallbiznis/voltra/internal/audit/service"
	billingservice "github.com/smallbiznis/voltra/internal/billing/service"
	consumptiondomain "github.com/smallbiznis/voltra/internal/consumption/domain"
	"github.com/smallbiznis/voltra/internal/consumption/repository"
	"github.com/smallbiznis/voltra/internal/metrics"
	subscriberdomain "github.com/smallbiznis/voltra/internal/subscriber/domain"
	subscriberrepository "github.com/smallbiznis/voltra/internal/subscriber/repository"
	subscriberservice "github.com/smallbiznis/voltra/internal/subscriber/service"
	"github.com/smallbiznis/voltra/internal/tariff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc  consumptiondomain.Service
	subs subscriberdomain.Service
	db   *gorm.DB
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&subscriberdomain.Subscriber{},
		&consumptiondomain.Record{},
		&auditdomain.Entry{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	logger := zap.NewNop()

	audit := auditservice.NewService(auditservice.Params{
		DB: db, Log: logger, GenID: node, Repo: auditrepository.Provide(),
	})
	subs := subscriberservice.NewService(subscriberservice.Params{
		DB: db, Log: logger, GenID: node, Repo: subscriberrepository.Provide(), Audit: audit,
	})
	calc := billingservice.NewCalculator(billingservice.Params{
		Log: logger, Schedule: tariff.DefaultResidential(),
	})

	svc := NewService(Params{
		DB:          db,
		Log:         logger,
		GenID:       node,
		Repo:        repository.Provide(),
		Calc:        calc,
		Subscribers: subs,
		Audit:       audit,
		Metrics:     metrics.New(),
	})
	return &fixture{svc: svc, subs: subs, db: db}
}

func (f *fixture) newClient(t *testing.T, username string) *subscriberdomain.Subscriber {
	t.Helper()
	sub, err := f.subs.Create(context.Background(), subscriberdomain.CreateRequest{
		Username: username, DisplayName: username, Role: subscriberdomain.RoleClient,
	})
	require.NoError(t, err)
	return sub
}

func TestUpsertCreatesPendingRecord(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sub := f.newClient(t, "meera")

	res, err := f.svc.Upsert(ctx, consumptiondomain.UpsertRequest{
		SubscriberID: sub.ID.String(), Period: "2024-03", UsageKwh: 250,
	})
	require.NoError(t, err)
	assert.Equal(t, consumptiondomain.ActionCreated, res.Action)
	assert.Equal(t, consumptiondomain.StatusPending, res.Record.BillStatus)
	assert.Nil(t, res.Record.PaymentAt)
	// 250 kWh on the default schedule bills to exactly 2233.58.
	assert.Equal(t, 2233.58, res.Record.TotalBill)
}

func TestUpsertReplacesExistingRecord(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sub := f.newClient(t, "meera")

	first, err := f.svc.Upsert(ctx, consumptiondomain.UpsertRequest{
		SubscriberID: sub.ID.String(), Period: "2024-03", UsageKwh: 250,
	})
	require.NoError(t, err)
	require.Equal(t, consumptiondomain.ActionCreated, first.Action)

	second, err := f.svc.Upsert(ctx, consumptiondomain.UpsertRequest{
		SubscriberID: sub.ID.String(), Period: "2024-03", UsageKwh: 310,
	})
	require.NoError(t, err)
	assert.Equal(t, consumptiondomain.ActionUpdated, second.Action)
	assert.Equal(t, first.Record.ID, second.Record.ID)
	assert.Equal(t, 310.0, second.Record.UsageKwh)
	assert.Equal(t, consumptiondomain.StatusPending, second.Record.BillStatus)

	var count int64
	require.NoError(t, f.db.Model(&consumptiondomain.Record{}).
		Where("subscriber_id = ?", sub.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count, "re-upsert must never produce a second row")
}

func TestUpsertSameInputTwice(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sub := f.newClient(t, "meera")
	req := consumptiondomain.UpsertRequest{SubscriberID: sub.ID.String(), Period: "2024-03", UsageKwh: 180}

	first, err := f.svc.Upsert(ctx, req)
	require.NoError(t, err)
	second, err := f.svc.Upsert(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, consumptiondomain.ActionCreated, first.Action)
	assert.Equal(t, consumptiondomain.ActionUpdated, second.Action)
	assert.Equal(t, first.Record.UsageKwh, second.Record.UsageKwh)
	assert.Equal(t, first.Record.TotalBill, second.Record.TotalBill)
	assert.Equal(t, consumptiondomain.StatusPending, first.Record.BillStatus)
	assert.Equal(t, consumptiondomain.StatusPending, second.Record.BillStatus)
}

func TestUpsertValidation(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sub := f.newClient(t, "meera")

	_, err := f.svc.Upsert(ctx, consumptiondomain.UpsertRequest{
		SubscriberID: sub.ID.String(), Period: "2024-13", UsageKwh: 10,
	})
	assert.ErrorIs(t, err, consumptiondomain.ErrInvalidPeriod)

	_, err = f.svc.Upsert(ctx, consumptiondomain.UpsertRequest{
		SubscriberID: sub.ID.String(), Period: "March 2024", UsageKwh: 10,
	})
	assert.ErrorIs(t, err, consumptiondomain.ErrInvalidPeriod)

	_, err = f.svc.Upsert(ctx, consumptiondomain.UpsertRequest{
		SubscriberID: sub.ID.String(), Period: "2024-03", UsageKwh: -5,
	})
	assert.Error(t, err)

	_, err = f.svc.Upsert(ctx, consumptiondomain.UpsertRequest{
		SubscriberID: "999999999999", Period: "2024-03", UsageKwh: 10,
	})
	assert.ErrorIs(t, err, subscriberdomain.ErrNotFound)
}

func TestPay(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sub := f.newClient(t, "meera")

	_, err := f.svc.Upsert(ctx, consumptiondomain.UpsertRequest{
		SubscriberID: sub.ID.String(), Period: "2024-03", UsageKwh: 120,
	})
	require.NoError(t, err)

	paid, err := f.svc.Pay(ctx, sub.ID.String(), "2024-03")
	require.NoError(t, err)
	assert.Equal(t, consumptiondomain.StatusPaid, paid.BillStatus)
	require.NotNil(t, paid.PaymentAt)

	_, err = f.svc.Pay(ctx, sub.ID.String(), "2024-03")
	assert.ErrorIs(t, err, consumptiondomain.ErrAlreadyPaid)

	_, err = f.svc.Pay(ctx, sub.ID.String(), "2024-04")
	assert.ErrorIs(t, err, consumptiondomain.ErrRecordNotFound)
}

func TestUpsertResetsPaymentState(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sub := f.newClient(t, "meera")

	_, err := f.svc.Upsert(ctx, consumptiondomain.UpsertRequest{
		SubscriberID: sub.ID.String(), Period: "2024-03", UsageKwh: 120,
	})
	require.NoError(t, err)
	_, err = f.svc.Pay(ctx, sub.ID.String(), "2024-03")
	require.NoError(t, err)

	// Re-writing a paid period reopens it for billing.
	res, err := f.svc.Upsert(ctx, consumptiondomain.UpsertRequest{
		SubscriberID: sub.ID.String(), Period: "2024-03", UsageKwh: 140,
	})
	require.NoError(t, err)
	assert.Equal(t, consumptiondomain.StatusPending, res.Record.BillStatus)
	assert.Nil(t, res.Record.PaymentAt)

	_, err = f.svc.Pay(ctx, sub.ID.String(), "2024-03")
	assert.NoError(t, err)
}

func TestFindAndLists(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	meera := f.newClient(t, "meera")
	arun := f.newClient(t, "arun")

	seed := []struct {
		sub    *subscriberdomain.Subscriber
		period string
		usage  float64
	}{
		{meera, "2024-01", 90},
		{meera, "2024-02", 140},
		{arun, "2024-01", 260},
	}
	for _, s := range seed {
		_, err := f.svc.Upsert(ctx, consumptiondomain.UpsertRequest{
			SubscriberID: s.sub.ID.String(), Period: s.period, UsageKwh: s.usage,
		})
		require.NoError(t, err)
	}
	_, err := f.svc.Pay(ctx, meera.ID.String(), "2024-01")
	require.NoError(t, err)

	rec, err := f.svc.Find(ctx, meera.ID.String(), "2024-02")
	require.NoError(t, err)
	assert.Equal(t, 140.0, rec.UsageKwh)

	_, err = f.svc.Find(ctx, meera.ID.String(), "2030-01")
	assert.ErrorIs(t, err, consumptiondomain.ErrRecordNotFound)

	mine, err := f.svc.ListBySubscriber(ctx, meera.ID.String(), consumptiondomain.ListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	// Newest period first.
	assert.Equal(t, "2024-02", mine[0].Period)

	pending, err := f.svc.ListAll(ctx, consumptiondomain.ListFilter{Status: consumptiondomain.StatusPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	jan, err := f.svc.ListAll(ctx, consumptiondomain.ListFilter{Period: "2024-01"})
	require.NoError(t, err)
	assert.Len(t, jan, 2)
}

func TestTotals(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	meera := f.newClient(t, "meera")
	arun := f.newClient(t, "arun")

	for _, s := range []struct {
		sub    *subscriberdomain.Subscriber
		period string
		usage  float64
	}{
		{meera, "2024-01", 100},
		{meera, "2024-02", 100},
		{arun, "2024-01", 50},
	} {
		_, err := f.svc.Upsert(ctx, consumptiondomain.UpsertRequest{
			SubscriberID: s.sub.ID.String(), Period: s.period, UsageKwh: s.usage,
		})
		require.NoError(t, err)
	}

	monthly, err := f.svc.MonthlyTotals(ctx)
	require.NoError(t, err)
	require.Len(t, monthly, 2)
	assert.Equal(t, "2024-01", monthly[0].Period)
	assert.Equal(t, 150.0, monthly[0].TotalUsageKwh)
	assert.EqualValues(t, 2, monthly[0].Records)
	assert.Equal(t, "2024-02", monthly[1].Period)
	assert.Equal(t, 100.0, monthly[1].TotalUsageKwh)

	bySub, err := f.svc.TotalsBySubscriber(ctx)
	require.NoError(t, err)
	require.Len(t, bySub, 2)
	assert.Equal(t, "arun", bySub[0].Username)
	assert.Equal(t, 50.0, bySub[0].TotalUsageKwh)
	assert.Equal(t, "meera", bySub[1].Username)
	assert.Equal(t, 200.0, bySub[1].TotalUsageKwh)
	assert.EqualValues(t, 2, bySub[1].Records)
}

func TestDeleteRecord(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	sub := f.newClient(t, "meera")

	_, err := f.svc.Upsert(ctx, consumptiondomain.UpsertRequest{
		SubscriberID: sub.ID.String(), Period: "2024-03", UsageKwh: 120,
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, sub.ID.String(), "2024-03"))
	err = f.svc.Delete(ctx, sub.ID.String(), "2024-03")
	assert.ErrorIs(t, err, consumptiondomain.ErrRecordNotFound)
}
