// Package domain contains the audit trail model and contracts.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltra/pkg/db/pagination"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Entry is one audit record: who did what, when.
type Entry struct {
	ID        snowflake.ID      `json:"id" gorm:"primaryKey"`
	Actor     string            `json:"actor" gorm:"type:text;not null;index"`
	Action    string            `json:"action" gorm:"type:text;not null"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null;index"`
}

func (Entry) TableName() string { return "audit_entries" }

type ListRequest struct {
	pagination.Pagination
}

type ListResponse struct {
	pagination.PageInfo
	Entries []Entry `json:"entries"`
}

type Cursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type ListFilter struct {
	Cursor *Cursor
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *Entry) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Entry, error)
}

type Service interface {
	Record(ctx context.Context, actor, action string, metadata map[string]any) error
	List(ctx context.Context, req ListRequest) (ListResponse, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
