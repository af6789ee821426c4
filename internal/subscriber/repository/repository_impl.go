package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	subscriberdomain "github.com/smallbiznis/voltra/internal/subscriber/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() subscriberdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, sub *subscriberdomain.Subscriber) error {
	return db.WithContext(ctx).Create(sub).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*subscriberdomain.Subscriber, error) {
	var sub subscriberdomain.Subscriber
	err := db.WithContext(ctx).Where("id = ?", id).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repo) FindByUsername(ctx context.Context, db *gorm.DB, username string) (*subscriberdomain.Subscriber, error) {
	var sub subscriberdomain.Subscriber
	err := db.WithContext(ctx).Where("username = ?", username).First(&sub).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// sortColumns whitelists user-supplied sort keys.
var sortColumns = map[string]string{
	"":             "role",
	"role":         "role",
	"username":     "username",
	"display_name": "display_name",
	"id":           "id",
}

func (r *repo) List(ctx context.Context, db *gorm.DB, req subscriberdomain.ListRequest) ([]subscriberdomain.Subscriber, error) {
	column, ok := sortColumns[req.SortBy]
	if !ok {
		column = "role"
	}
	direction := "ASC"
	if req.Desc {
		direction = "DESC"
	}

	stmt := db.WithContext(ctx).Model(&subscriberdomain.Subscriber{})
	if req.Role != "" {
		stmt = stmt.Where("role = ?", req.Role)
	}

	var subs []subscriberdomain.Subscriber
	err := stmt.Order(fmt.Sprintf("%s %s, username ASC", column, direction)).Find(&subs).Error
	return subs, err
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Where("id = ?", id).Delete(&subscriberdomain.Subscriber{}).Error
}
