package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smallbiznis/voltra/internal/audit/domain"
	"github.com/smallbiznis/voltra/internal/requestctx"
	subscriberdomain "github.com/smallbiznis/voltra/internal/subscriber/domain"
	"github.com/smallbiznis/voltra/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  subscriberdomain.Repository
	Audit auditdomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  subscriberdomain.Repository
	audit auditdomain.Service
}

func NewService(p Params) subscriberdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("subscriber.service"),
		genID: p.GenID,
		repo:  p.Repo,
		audit: p.Audit,
	}
}

func (s *Service) Create(ctx context.Context, req subscriberdomain.CreateRequest) (*subscriberdomain.Subscriber, error) {
	username := strings.ToLower(strings.TrimSpace(req.Username))
	if username == "" {
		return nil, subscriberdomain.ErrInvalidUsername
	}
	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		return nil, subscriberdomain.ErrInvalidName
	}
	if !req.Role.Valid() {
		return nil, subscriberdomain.ErrInvalidRole
	}

	now := time.Now().UTC()
	sub := &subscriberdomain.Subscriber{
		ID:          s.genID.Generate(),
		Username:    username,
		DisplayName: displayName,
		Role:        req.Role,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Insert(ctx, s.db, sub); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, subscriberdomain.ErrDuplicateUsername
		}
		return nil, err
	}

	_ = s.audit.Record(ctx, "", "subscriber.created", map[string]any{
		"subscriber_id": sub.ID.String(),
		"username":      sub.Username,
		"role":          string(sub.Role),
	})

	return sub, nil
}

func (s *Service) Get(ctx context.Context, id string) (*subscriberdomain.Subscriber, error) {
	subID, err := parseID(id)
	if err != nil {
		return nil, subscriberdomain.ErrInvalidID
	}

	sub, err := s.repo.FindByID(ctx, s.db, subID)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, subscriberdomain.ErrNotFound
	}
	return sub, nil
}

func (s *Service) GetByUsername(ctx context.Context, username string) (*subscriberdomain.Subscriber, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, subscriberdomain.ErrInvalidUsername
	}

	sub, err := s.repo.FindByUsername(ctx, s.db, username)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, subscriberdomain.ErrNotFound
	}
	return sub, nil
}

func (s *Service) List(ctx context.Context, req subscriberdomain.ListRequest) ([]subscriberdomain.Subscriber, error) {
	if req.Role != "" && !req.Role.Valid() {
		return nil, subscriberdomain.ErrInvalidRole
	}
	return s.repo.List(ctx, s.db, req)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	subID, err := parseID(id)
	if err != nil {
		return subscriberdomain.ErrInvalidID
	}

	sub, err := s.repo.FindByID(ctx, s.db, subID)
	if err != nil {
		return err
	}
	if sub == nil {
		return subscriberdomain.ErrNotFound
	}

	// Admins cannot delete their own account.
	if actor := requestctx.ActorFromContext(ctx); actor != "" && actor == sub.Username {
		return subscriberdomain.ErrSelfRemoval
	}

	if err := s.repo.Delete(ctx, s.db, subID); err != nil {
		return err
	}

	_ = s.audit.Record(ctx, "", "subscriber.removed", map[string]any{
		"subscriber_id": sub.ID.String(),
		"username":      sub.Username,
	})
	return nil
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
