package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	auditdomain "github.com/smallbiznis/voltra/internal/audit/domain"
	"github.com/smallbiznis/voltra/internal/metrics"
	subscriberdomain "github.com/smallbiznis/voltra/internal/subscriber/domain"
	ticketdomain "github.com/smallbiznis/voltra/internal/ticket/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        ticketdomain.Repository
	Subscribers subscriberdomain.Service
	Audit       auditdomain.Service
	Metrics     *metrics.Metrics
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        ticketdomain.Repository
	subscribers subscriberdomain.Service
	audit       auditdomain.Service
	metrics     *metrics.Metrics
}

func NewService(p Params) ticketdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("ticket.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		subscribers: p.Subscribers,
		audit:       p.Audit,
		metrics:     p.Metrics,
	}
}

// newToken mints the short public handle clients quote in correspondence,
// e.g. "T-3fa9c2".
func newToken() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("T-%s", raw[:6])
}

func (s *Service) Open(ctx context.Context, req ticketdomain.OpenRequest) (*ticketdomain.Detail, error) {
	subject := strings.TrimSpace(req.Subject)
	if subject == "" {
		return nil, ticketdomain.ErrInvalidSubject
	}
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, ticketdomain.ErrInvalidMessage
	}

	sub, err := s.subscribers.Get(ctx, req.SubscriberID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ticket := &ticketdomain.Ticket{
		ID:           s.genID.Generate(),
		Token:        newToken(),
		SubscriberID: sub.ID,
		Subject:      subject,
		Status:       ticketdomain.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	message := &ticketdomain.Message{
		ID:         s.genID.Generate(),
		TicketID:   ticket.ID,
		AuthorID:   sub.ID,
		AuthorName: sub.DisplayName,
		AuthorRole: sub.Role,
		Body:       body,
		CreatedAt:  now,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertTicket(ctx, tx, ticket); err != nil {
			return err
		}
		return s.repo.InsertMessage(ctx, tx, message)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.TicketsOpened.Inc()
	_ = s.audit.Record(ctx, "", "ticket.opened", map[string]any{
		"token":         ticket.Token,
		"subscriber_id": sub.ID.String(),
		"subject":       subject,
	})
	return &ticketdomain.Detail{Ticket: *ticket, Messages: []ticketdomain.Message{*message}}, nil
}

func (s *Service) Get(ctx context.Context, token string) (*ticketdomain.Detail, error) {
	ticket, err := s.findTicket(ctx, token)
	if err != nil {
		return nil, err
	}
	messages, err := s.repo.ListMessages(ctx, s.db, ticket.ID)
	if err != nil {
		return nil, err
	}
	return &ticketdomain.Detail{Ticket: *ticket, Messages: messages}, nil
}

// Reply appends a message and flips the ticket's status: a support reply
// resolves the ticket, a subscriber reply reopens it.
func (s *Service) Reply(ctx context.Context, req ticketdomain.ReplyRequest) (*ticketdomain.Detail, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, ticketdomain.ErrInvalidMessage
	}

	ticket, err := s.findTicket(ctx, req.Token)
	if err != nil {
		return nil, err
	}
	author, err := s.subscribers.Get(ctx, req.AuthorID)
	if err != nil {
		return nil, err
	}
	if author.Role != subscriberdomain.RoleAdmin && author.ID != ticket.SubscriberID {
		return nil, ticketdomain.ErrNotParticipant
	}

	now := time.Now().UTC()
	message := &ticketdomain.Message{
		ID:         s.genID.Generate(),
		TicketID:   ticket.ID,
		AuthorID:   author.ID,
		AuthorName: author.DisplayName,
		AuthorRole: author.Role,
		Body:       body,
		CreatedAt:  now,
	}
	if author.Role == subscriberdomain.RoleAdmin {
		ticket.Status = ticketdomain.StatusResolved
	} else {
		ticket.Status = ticketdomain.StatusPending
	}
	ticket.UpdatedAt = now

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertMessage(ctx, tx, message); err != nil {
			return err
		}
		return s.repo.UpdateTicket(ctx, tx, ticket)
	})
	if err != nil {
		return nil, err
	}

	_ = s.audit.Record(ctx, "", "ticket.replied", map[string]any{
		"token":  ticket.Token,
		"author": author.Username,
		"status": string(ticket.Status),
	})

	messages, err := s.repo.ListMessages(ctx, s.db, ticket.ID)
	if err != nil {
		return nil, err
	}
	return &ticketdomain.Detail{Ticket: *ticket, Messages: messages}, nil
}

func (s *Service) ListBySubscriber(ctx context.Context, subscriberID string, filter ticketdomain.ListFilter) ([]ticketdomain.Ticket, error) {
	sub, err := s.subscribers.Get(ctx, subscriberID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListBySubscriber(ctx, s.db, sub.ID, filter)
}

func (s *Service) ListAll(ctx context.Context, filter ticketdomain.ListFilter) ([]ticketdomain.Ticket, error) {
	return s.repo.ListAll(ctx, s.db, filter)
}

func (s *Service) findTicket(ctx context.Context, token string) (*ticketdomain.Ticket, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ticketdomain.ErrTicketNotFound
	}
	ticket, err := s.repo.FindByToken(ctx, s.db, token)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, ticketdomain.ErrTicketNotFound
	}
	return ticket, nil
}
