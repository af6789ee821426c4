package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	auditdomain "github.com/smallbiznis/voltra/internal/audit/domain"
	auditrepository "github.com/smallbiznis/voltra/internal/audit/repository"
	auditservice "github.com/smallbiznis/voltra/internal/audit/service"
	billingservice "github.com/smallbiznis/voltra/internal/billing/service"
	consumptiondomain "github.com/smallbiznis/voltra/internal/consumption/domain"
	consumptionrepository "github.com/smallbiznis/voltra/internal/consumption/repository"
	consumptionservice "github.com/smallbiznis/voltra/internal/consumption/service"
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
	svc     *Service
	records consumptiondomain.Service
	subs    subscriberdomain.Service
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
	records := consumptionservice.NewService(consumptionservice.Params{
		DB:          db,
		Log:         logger,
		GenID:       node,
		Repo:        consumptionrepository.Provide(),
		Calc:        calc,
		Subscribers: subs,
		Audit:       audit,
		Metrics:     metrics.New(),
	})

	svc := NewService(Params{Log: logger, Records: records, Subscribers: subs})
	return &fixture{svc: svc, records: records, subs: subs}
}

func (f *fixture) newClient(t *testing.T, username string) *subscriberdomain.Subscriber {
	t.Helper()
	sub, err := f.subs.Create(context.Background(), subscriberdomain.CreateRequest{
		Username: username, DisplayName: username, Role: subscriberdomain.RoleClient,
	})
	require.NoError(t, err)
	return sub
}

func TestExportRecords(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	meera := f.newClient(t, "meera")

	_, err := f.records.Upsert(ctx, consumptiondomain.UpsertRequest{
		SubscriberID: meera.ID.String(), Period: "2024-03", UsageKwh: 250,
	})
	require.NoError(t, err)
	_, err = f.records.Pay(ctx, meera.ID.String(), "2024-03")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.svc.ExportRecords(ctx, &buf, consumptiondomain.ListFilter{}))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, exportHeader, rows[0])
	assert.Equal(t, "meera", rows[1][1])
	assert.Equal(t, "2024-03", rows[1][2])
	assert.Equal(t, "250", rows[1][3])
	assert.Equal(t, "2233.58", rows[1][4])
	assert.Equal(t, "Paid", rows[1][5])
	assert.NotEmpty(t, rows[1][6])
}

func TestImportRecords(t *testing.T) {
	f := setupFixture(t)
	ctx := context.Background()
	meera := f.newClient(t, "meera")
	arun := f.newClient(t, "arun")

	// Pre-existing record for meera 2024-01, so the import updates it.
	_, err := f.records.Upsert(ctx, consumptiondomain.UpsertRequest{
		SubscriberID: meera.ID.String(), Period: "2024-01", UsageKwh: 80,
	})
	require.NoError(t, err)

	input := strings.Join([]string{
		"subscriber_id,period,usage_kwh",
		meera.ID.String() + ",2024-01,95",
		arun.ID.String() + ",2024-01,120",
		meera.ID.String() + ",2024-13,10",
		arun.ID.String() + ",2024-02,not-a-number",
	}, "\n")

	summary, err := f.svc.ImportRecords(ctx, strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Added)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 2, summary.Failed)
	require.Len(t, summary.Errors, 2)
	assert.Equal(t, 4, summary.Errors[0].Line)

	rec, err := f.records.Find(ctx, meera.ID.String(), "2024-01")
	require.NoError(t, err)
	assert.Equal(t, 95.0, rec.UsageKwh)
}

func TestImportRejectsBadHeader(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.ImportRecords(context.Background(), strings.NewReader("id,month,units\n1,2024-01,5\n"))
	assert.ErrorIs(t, err, ErrBadHeader)
}
