package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/models"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/modules/campaign"
	pkgcron "github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/cron"
	"github.com/DemandifyMedia2022/mail-marketing-app-sub001/internal/pkg/taskqueue"
)

// registerCronJobs registers all scheduled background jobs.
func registerCronJobs(sched *pkgcron.Scheduler, db *gorm.DB, worker *campaign.Worker, tasks *taskqueue.Service, logger *zap.Logger) {
	cronLogger := logger.Named("CronService")

	sched.Register(pkgcron.Job{
		Name:        "dispatch_scheduled_campaigns",
		Description: "enqueue campaigns whose scheduled time has passed",
		Interval:    time.Minute,
		Immediate:   true,
		Fn: func(ctx context.Context) error {
			if err := worker.DispatchScheduled(ctx); err != nil {
				cronLogger.Warn("scheduled campaign dispatch failed", zap.Error(err))
				return err
			}
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "cleanup_tasks",
		Description: "prune delivery queue entries older than 7 days",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			before := time.Now().AddDate(0, 0, -7).UnixMilli()
			if err := tasks.DeleteCompleted(ctx, before); err != nil {
				cronLogger.Warn("task cleanup failed", zap.Error(err))
				return err
			}
			return nil
		},
	})

	sched.Register(pkgcron.Job{
		Name:        "cleanup_tracking_events",
		Description: "delete open/click events older than 180 days",
		Interval:    24 * time.Hour,
		Fn: func(ctx context.Context) error {
			cutoff := time.Now().AddDate(0, 0, -180)
			result := db.Where("created_at < ?", cutoff).Delete(&models.CampaignEventModel{})
			if result.Error != nil {
				cronLogger.Warn("tracking event cleanup failed", zap.Error(result.Error))
				return result.Error
			}
			if result.RowsAffected > 0 {
				cronLogger.Info(fmt.Sprintf("deleted %d old tracking events", result.RowsAffected))
			}
			return nil
		},
	})
}
