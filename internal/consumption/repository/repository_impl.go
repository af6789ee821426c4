package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	consumptiondomain "github.com/smallbiznis/voltra/internal/consumption/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() consumptiondomain.Repository {
	return &repo{}
}

// lockForUpdate acquires a row lock on dialects that support it. SQLite
// serializes writers at the connection level, so the clause is skipped there.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() == "sqlite" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (r *repo) FindForUpdate(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID, period string) (*consumptiondomain.Record, error) {
	var rec consumptiondomain.Record
	err := lockForUpdate(db.WithContext(ctx)).
		Where("subscriber_id = ? AND period = ?", subscriberID, period).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *repo) Find(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID, period string) (*consumptiondomain.Record, error) {
	var rec consumptiondomain.Record
	err := db.WithContext(ctx).
		Where("subscriber_id = ? AND period = ?", subscriberID, period).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, rec *consumptiondomain.Record) error {
	return db.WithContext(ctx).Create(rec).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, rec *consumptiondomain.Record) error {
	return db.WithContext(ctx).Save(rec).Error
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&consumptiondomain.Record{}).Error
}

func applyFilter(stmt *gorm.DB, filter consumptiondomain.ListFilter) *gorm.DB {
	if filter.Period != "" {
		stmt = stmt.Where("period = ?", filter.Period)
	}
	if filter.Status != "" {
		stmt = stmt.Where("bill_status = ?", filter.Status)
	}
	return stmt
}

func (r *repo) ListBySubscriber(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID, filter consumptiondomain.ListFilter) ([]consumptiondomain.Record, error) {
	stmt := db.WithContext(ctx).
		Model(&consumptiondomain.Record{}).
		Where("subscriber_id = ?", subscriberID)
	stmt = applyFilter(stmt, filter)

	var recs []consumptiondomain.Record
	err := stmt.Order("period DESC").Find(&recs).Error
	return recs, err
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB, filter consumptiondomain.ListFilter) ([]consumptiondomain.Record, error) {
	stmt := applyFilter(db.WithContext(ctx).Model(&consumptiondomain.Record{}), filter)

	var recs []consumptiondomain.Record
	err := stmt.Order("period DESC, subscriber_id ASC").Find(&recs).Error
	return recs, err
}

func (r *repo) MonthlyTotals(ctx context.Context, db *gorm.DB) ([]consumptiondomain.MonthlyTotal, error) {
	var totals []consumptiondomain.MonthlyTotal
	err := db.WithContext(ctx).
		Model(&consumptiondomain.Record{}).
		Select("period, SUM(usage_kwh) AS total_usage_kwh, SUM(total_bill) AS total_billed, COUNT(*) AS records").
		Group("period").
		Order("period ASC").
		Scan(&totals).Error
	return totals, err
}

func (r *repo) SubscriberTotals(ctx context.Context, db *gorm.DB) ([]consumptiondomain.SubscriberTotal, error) {
	var totals []consumptiondomain.SubscriberTotal
	err := db.WithContext(ctx).
		Table("consumption_records AS c").
		Select("c.subscriber_id, s.username, SUM(c.usage_kwh) AS total_usage_kwh, SUM(c.total_bill) AS total_billed, COUNT(*) AS records").
		Joins("JOIN subscribers s ON s.id = c.subscriber_id").
		Group("c.subscriber_id, s.username").
		Order("s.username ASC").
		Scan(&totals).Error
	return totals, err
}
