// Package domain contains grievance ticket models and contracts. A ticket is
// a two-party thread between a subscriber and the utility's support desk; its
// status tracks whose turn it is.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriberdomain "github.com/smallbiznis/voltra/internal/subscriber/domain"
	"gorm.io/gorm"
)

type Status string

const (
	// StatusPending means the ticket awaits a support reply.
	StatusPending Status = "Pending"
	// StatusResolved means support has answered and the ball is with the
	// subscriber.
	StatusResolved Status = "Resolved"
)

type Ticket struct {
	ID           snowflake.ID `json:"id" gorm:"primaryKey"`
	Token        string       `json:"token" gorm:"type:text;not null;uniqueIndex"`
	SubscriberID snowflake.ID `json:"subscriber_id" gorm:"not null;index"`
	Subject      string       `json:"subject" gorm:"type:text;not null"`
	Status       Status       `json:"status" gorm:"type:text;not null;index"`
	CreatedAt    time.Time    `json:"created_at" gorm:"not null"`
	UpdatedAt    time.Time    `json:"updated_at" gorm:"not null"`
}

func (Ticket) TableName() string { return "tickets" }

type Message struct {
	ID         snowflake.ID          `json:"id" gorm:"primaryKey"`
	TicketID   snowflake.ID          `json:"ticket_id" gorm:"not null;index"`
	AuthorID   snowflake.ID          `json:"author_id" gorm:"not null"`
	AuthorName string                `json:"author_name" gorm:"type:text;not null"`
	AuthorRole subscriberdomain.Role `json:"author_role" gorm:"type:text;not null"`
	Body       string                `json:"body" gorm:"type:text;not null"`
	CreatedAt  time.Time             `json:"created_at" gorm:"not null"`
}

func (Message) TableName() string { return "ticket_messages" }

type OpenRequest struct {
	SubscriberID string `json:"subscriber_id"`
	Subject      string `json:"subject"`
	Body         string `json:"body"`
}

type ReplyRequest struct {
	Token    string `json:"-"`
	AuthorID string `json:"author_id"`
	Body     string `json:"body"`
}

// Detail is a ticket with its full message thread, oldest first.
type Detail struct {
	Ticket   Ticket    `json:"ticket"`
	Messages []Message `json:"messages"`
}

type ListFilter struct {
	Status Status `form:"status"`
}

type Repository interface {
	InsertTicket(ctx context.Context, db *gorm.DB, t *Ticket) error
	FindByToken(ctx context.Context, db *gorm.DB, token string) (*Ticket, error)
	UpdateTicket(ctx context.Context, db *gorm.DB, t *Ticket) error
	InsertMessage(ctx context.Context, db *gorm.DB, m *Message) error
	ListMessages(ctx context.Context, db *gorm.DB, ticketID snowflake.ID) ([]Message, error)
	ListBySubscriber(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID, filter ListFilter) ([]Ticket, error)
	ListAll(ctx context.Context, db *gorm.DB, filter ListFilter) ([]Ticket, error)
}

type Service interface {
	Open(ctx context.Context, req OpenRequest) (*Detail, error)
	Get(ctx context.Context, token string) (*Detail, error)
	Reply(ctx context.Context, req ReplyRequest) (*Detail, error)
	ListBySubscriber(ctx context.Context, subscriberID string, filter ListFilter) ([]Ticket, error)
	ListAll(ctx context.Context, filter ListFilter) ([]Ticket, error)
}

var (
	ErrInvalidSubject = errors.New("invalid_subject")
	ErrInvalidMessage = errors.New("invalid_message")
	ErrTicketNotFound = errors.New("ticket_not_found")
	ErrNotParticipant = errors.New("not_ticket_participant")
)
