// Package service contains the background pieces of the auth subsystem:
// the token reaper and the outbound mail queue.
package service

import (
	"context"
	"fmt"
	"time"

	"whatnow/cms-api/internal/model"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reaper bulk-deletes globally expired token rows. It needs no coordination
// with request traffic: a row vanishing between two verifications just makes
// the later lookup fail, which is the same outcome as an expired token.
type Reaper struct {
	db *gorm.DB
}

func NewReaper(db *gorm.DB) *Reaper {
	return &Reaper{db: db}
}

// RunOnce performs one sweep. Re-running with nothing expired is a no-op.
func (r *Reaper) RunOnce(ctx context.Context) error {
	res := r.db.WithContext(ctx).
		Where("expires_at < ?", time.Now()).
		Delete(&model.Token{})
	if res.Error != nil {
		return res.Error
	}

	if res.RowsAffected > 0 {
		zap.L().Debug("Reaped expired tokens", zap.Int64("deleted", res.RowsAffected))
	}

	return nil
}

// Attach schedules the sweep on c at the given cadence. Sweep failures are
// logged and the schedule continues regardless.
func (r *Reaper) Attach(c *cron.Cron, every time.Duration) error {
	zap.L().Debug("Token reaper attached", zap.Duration("tick_every", every))

	_, err := c.AddFunc(fmt.Sprintf("@every %s", every), func() {
		if err := r.RunOnce(context.Background()); err != nil {
			zap.L().Error("Failed to reap expired tokens", zap.Error(err))
		}
	})
	return err
}
