// Package domain contains the monthly consumption record, the portal's
// central entity. One record exists per (subscriber, period); writing the
// same period again replaces the reading and recomputes the bill.
package domain

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type BillStatus string

const (
	StatusPending BillStatus = "Pending"
	StatusPaid    BillStatus = "Paid"
)

// Action tells the caller whether an upsert inserted or replaced a record.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

var periodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

// ValidPeriod reports whether s is a billing period of the form YYYY-MM.
func ValidPeriod(s string) bool {
	return periodPattern.MatchString(s)
}

// Record is one subscriber-month of metered consumption. TotalBill is the
// computed amount rounded to two decimals; the full breakdown is recomputed
// on demand from UsageKwh.
type Record struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	SubscriberID snowflake.ID `json:"subscriber_id" gorm:"not null;uniqueIndex:idx_subscriber_period,priority:1"`
	Period       string       `json:"period" gorm:"type:text;not null;uniqueIndex:idx_subscriber_period,priority:2"`
	UsageKwh     float64      `json:"usage_kwh" gorm:"not null"`
	TotalBill    float64      `json:"total_bill" gorm:"not null"`
	BillStatus   BillStatus   `json:"bill_status" gorm:"type:text;not null;index"`
	PaymentAt    *time.Time   `json:"payment_at,omitempty"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null"`
}

func (Record) TableName() string { return "consumption_records" }

type UpsertRequest struct {
	SubscriberID string  `json:"subscriber_id"`
	Period       string  `json:"period"`
	UsageKwh     float64 `json:"usage_kwh"`
}

type UpsertResult struct {
	Record *Record `json:"record"`
	Action Action  `json:"action"`
}

// ListFilter narrows a record listing. Zero values mean no constraint.
type ListFilter struct {
	Period string     `form:"period"`
	Status BillStatus `form:"status"`
}

// MonthlyTotal aggregates all subscribers' consumption for one period.
type MonthlyTotal struct {
	Period        string  `json:"period"`
	TotalUsageKwh float64 `json:"total_usage_kwh"`
	TotalBilled   float64 `json:"total_billed"`
	Records       int64   `json:"records"`
}

// SubscriberTotal aggregates one subscriber's consumption across all periods.
type SubscriberTotal struct {
	SubscriberID  snowflake.ID `json:"subscriber_id"`
	Username      string       `json:"username"`
	TotalUsageKwh float64      `json:"total_usage_kwh"`
	TotalBilled   float64      `json:"total_billed"`
	Records       int64        `json:"records"`
}

type Repository interface {
	FindForUpdate(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID, period string) (*Record, error)
	Find(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID, period string) (*Record, error)
	Insert(ctx context.Context, db *gorm.DB, rec *Record) error
	Update(ctx context.Context, db *gorm.DB, rec *Record) error
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
	ListBySubscriber(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID, filter ListFilter) ([]Record, error)
	ListAll(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Record, error)
	MonthlyTotals(ctx context.Context, db *gorm.DB) ([]MonthlyTotal, error)
	SubscriberTotals(ctx context.Context, db *gorm.DB) ([]SubscriberTotal, error)
}

type Service interface {
	Upsert(ctx context.Context, req UpsertRequest) (*UpsertResult, error)
	Find(ctx context.Context, subscriberID, period string) (*Record, error)
	ListBySubscriber(ctx context.Context, subscriberID string, filter ListFilter) ([]Record, error)
	ListAll(ctx context.Context, filter ListFilter) ([]Record, error)
	MonthlyTotals(ctx context.Context) ([]MonthlyTotal, error)
	TotalsBySubscriber(ctx context.Context) ([]SubscriberTotal, error)
	Pay(ctx context.Context, subscriberID, period string) (*Record, error)
	Delete(ctx context.Context, subscriberID, period string) error
}

var (
	ErrInvalidPeriod   = errors.New("invalid_period")
	ErrRecordNotFound  = errors.New("record_not_found")
	ErrAlreadyPaid     = errors.New("already_paid")
	ErrDuplicateRecord = errors.New("duplicate_record")
)
