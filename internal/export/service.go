// Package export moves consumption records in and out of the portal as CSV,
// the exchange format field offices already use.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	consumptiondomain "github.com/smallbiznis/voltra/internal/consumption/domain"
	subscriberdomain "github.com/smallbiznis/voltra/internal/subscriber/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("export",
	fx.Provide(NewService),
)

var exportHeader = []string{"record_id", "subscriber", "period", "usage_kwh", "total_bill", "bill_status", "payment_at"}

var importHeader = []string{"subscriber_id", "period", "usage_kwh"}

var ErrBadHeader = errors.New("bad_csv_header")

// RowError reports one import row that could not be applied.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

// Summary is the outcome of a bulk import. Failed rows never abort the run.
type Summary struct {
	Added   int        `json:"added"`
	Updated int        `json:"updated"`
	Failed  int        `json:"failed"`
	Errors  []RowError `json:"errors,omitempty"`
}

type Params struct {
	fx.In

	Log         *zap.Logger
	Records     consumptiondomain.Service
	Subscribers subscriberdomain.Service
}

type Service struct {
	log         *zap.Logger
	records     consumptiondomain.Service
	subscribers subscriberdomain.Service
}

func NewService(p Params) *Service {
	return &Service{
		log:         p.Log.Named("export.service"),
		records:     p.Records,
		subscribers: p.Subscribers,
	}
}

// ExportRecords writes every consumption record matching the filter as CSV,
// one row per subscriber-month, with usernames resolved for readability.
func (s *Service) ExportRecords(ctx context.Context, w io.Writer, filter consumptiondomain.ListFilter) error {
	records, err := s.records.ListAll(ctx, filter)
	if err != nil {
		return err
	}

	usernames := map[string]string{}
	lookup := func(id string) string {
		if name, ok := usernames[id]; ok {
			return name
		}
		name := id
		if sub, err := s.subscribers.Get(ctx, id); err == nil {
			name = sub.Username
		}
		usernames[id] = name
		return name
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return err
	}
	for _, rec := range records {
		paymentAt := ""
		if rec.PaymentAt != nil {
			paymentAt = rec.PaymentAt.UTC().Format(time.RFC3339)
		}
		row := []string{
			rec.ID.String(),
			lookup(rec.SubscriberID.String()),
			rec.Period,
			strconv.FormatFloat(rec.UsageKwh, 'f', -1, 64),
			strconv.FormatFloat(rec.TotalBill, 'f', 2, 64),
			string(rec.BillStatus),
			paymentAt,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportRecords applies a CSV of (subscriber_id, period, usage_kwh) rows
// through the regular upsert path, so each row computes a bill and resets
// payment state like any other write.
func (s *Service) ImportRecords(ctx context.Context, r io.Reader) (*Summary, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, ErrBadHeader
	}
	if !headerMatches(header) {
		return nil, ErrBadHeader
	}

	summary := &Summary{}
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			summary.fail(line, "malformed row")
			continue
		}
		if len(row) < len(importHeader) {
			summary.fail(line, "missing columns")
			continue
		}

		usage, err := strconv.ParseFloat(strings.TrimSpace(row[2]), 64)
		if err != nil {
			summary.fail(line, "bad usage_kwh")
			continue
		}

		res, err := s.records.Upsert(ctx, consumptiondomain.UpsertRequest{
			SubscriberID: strings.TrimSpace(row[0]),
			Period:       strings.TrimSpace(row[1]),
			UsageKwh:     usage,
		})
		if err != nil {
			summary.fail(line, err.Error())
			continue
		}
		if res.Action == consumptiondomain.ActionCreated {
			summary.Added++
		} else {
			summary.Updated++
		}
	}

	s.log.Info("import finished",
		zap.Int("added", summary.Added),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

func (s *Summary) fail(line int, reason string) {
	s.Failed++
	s.Errors = append(s.Errors, RowError{Line: line, Reason: reason})
}

func headerMatches(header []string) bool {
	if len(header) != len(importHeader) {
		return false
	}
	for i, col := range importHeader {
		if !strings.EqualFold(strings.TrimSpace(header[i]), col) {
			return false
		}
	}
	return true
}
