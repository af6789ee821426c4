// Package domain contains subscriber account models and contracts. The
// portal references subscribers by id; credentials and login flows are an
// external concern.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleClient Role = "client"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleClient
}

type Subscriber struct {
	ID          snowflake.ID `json:"id" gorm:"primaryKey"`
	Username    string       `json:"username" gorm:"type:text;not null;uniqueIndex"`
	DisplayName string       `json:"display_name" gorm:"type:text;not null"`
	Role        Role         `json:"role" gorm:"type:text;not null;index"`
	CreatedAt   time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt   time.Time    `json:"updated_at" gorm:"not null"`
}

func (Subscriber) TableName() string { return "subscribers" }

type CreateRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        Role   `json:"role"`
}

type ListRequest struct {
	Role   Role   `form:"role"`
	SortBy string `form:"sort_by"`
	Desc   bool   `form:"desc"`
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, sub *Subscriber) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Subscriber, error)
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*Subscriber, error)
	List(ctx context.Context, db *gorm.DB, req ListRequest) ([]Subscriber, error)
	Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Subscriber, error)
	Get(ctx context.Context, id string) (*Subscriber, error)
	GetByUsername(ctx context.Context, username string) (*Subscriber, error)
	List(ctx context.Context, req ListRequest) ([]Subscriber, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrInvalidID         = errors.New("invalid_subscriber_id")
	ErrInvalidUsername   = errors.New("invalid_username")
	ErrInvalidName       = errors.New("invalid_display_name")
	ErrInvalidRole       = errors.New("invalid_role")
	ErrDuplicateUsername = errors.New("duplicate_username")
	ErrNotFound          = errors.New("subscriber_not_found")
	ErrSelfRemoval       = errors.New("self_removal")
)
