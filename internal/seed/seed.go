// Package seed bootstraps the records a fresh install needs before the first
// request.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	subscriberdomain "github.com/smallbiznis/voltra/internal/subscriber/domain"
	"gorm.io/gorm"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminDisplay  = "Portal Admin"
)

// EnsureDefaultAdmin creates the built-in admin account if no admin exists
// yet, so a fresh install is operable out of the box.
func EnsureDefaultAdmin(db *gorm.DB, node *snowflake.Node) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&subscriberdomain.Subscriber{}).
			Where("role = ?", subscriberdomain.RoleAdmin).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		admin := subscriberdomain.Subscriber{
			ID:          node.Generate(),
			Username:    defaultAdminUsername,
			DisplayName: defaultAdminDisplay,
			Role:        subscriberdomain.RoleAdmin,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Create(&admin).Error
	})
}
