package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	ticketdomain "github.com/smallbiznis/voltra/internal/ticket/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() ticketdomain.Repository {
	return &repo{}
}

func (r *repo) InsertTicket(ctx context.Context, db *gorm.DB, t *ticketdomain.Ticket) error {
	return db.WithContext(ctx).Create(t).Error
}

func (r *repo) FindByToken(ctx context.Context, db *gorm.DB, token string) (*ticketdomain.Ticket, error) {
	var t ticketdomain.Ticket
	err := db.WithContext(ctx).Where("token = ?", token).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &t, nil
}

func (r *repo) UpdateTicket(ctx context.Context, db *gorm.DB, t *ticketdomain.Ticket) error {
	return db.WithContext(ctx).Save(t).Error
}

func (r *repo) InsertMessage(ctx context.Context, db *gorm.DB, m *ticketdomain.Message) error {
	return db.WithContext(ctx).Create(m).Error
}

func (r *repo) ListMessages(ctx context.Context, db *gorm.DB, ticketID snowflake.ID) ([]ticketdomain.Message, error) {
	var msgs []ticketdomain.Message
	err := db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC, id ASC").
		Find(&msgs).Error
	return msgs, err
}

func (r *repo) ListBySubscriber(ctx context.Context, db *gorm.DB, subscriberID snowflake.ID, filter ticketdomain.ListFilter) ([]ticketdomain.Ticket, error) {
	stmt := db.WithContext(ctx).
		Model(&ticketdomain.Ticket{}).
		Where("subscriber_id = ?", subscriberID)
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	var tickets []ticketdomain.Ticket
	err := stmt.Order("updated_at DESC").Find(&tickets).Error
	return tickets, err
}

func (r *repo) ListAll(ctx context.Context, db *gorm.DB, filter ticketdomain.ListFilter) ([]ticketdomain.Ticket, error) {
	stmt := db.WithContext(ctx).Model(&ticketdomain.Ticket{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	var tickets []ticketdomain.Ticket
	err := stmt.Order("updated_at DESC").Find(&tickets).Error
	return tickets, err
}
