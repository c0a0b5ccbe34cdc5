package services

import (
	"time"

	"schooldesk_go/config"
	"schooldesk_go/database"
	"schooldesk_go/models"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// MaintenanceService runs the recurring background jobs: retiring timetable
// slots whose end date has passed, flushing the Redis log queue and shipping
// old activity logs to S3.
type MaintenanceService struct {
	cron *cron.Cron
	logs *LogArchiveService
}

func NewMaintenanceService() *MaintenanceService {
	return &MaintenanceService{
		cron: cron.New(),
		logs: NewLogArchiveService(),
	}
}

// Start registers the cron jobs and starts the scheduler in its own
// goroutine. Safe to call once at boot.
func (ms *MaintenanceService) Start() {
	// Nightly, after midnight: retire slots whose recurrence has ended
	if _, err := ms.cron.AddFunc("30 2 * * *", ms.expireEndedSlots); err != nil {
		logrus.WithError(err).Error("Failed to schedule slot expiry job")
	}

	if _, err := ms.cron.AddFunc("@hourly", func() {
		if err := ms.logs.FlushCachedLogsToDatabase(); err != nil {
			logrus.WithError(err).Warn("Periodic log flush failed")
		}
	}); err != nil {
		logrus.WithError(err).Error("Failed to schedule log flush job")
	}

	// Monthly, first day: archive old activity logs to S3
	if _, err := ms.cron.AddFunc("0 3 1 * *", func() {
		if err := ms.logs.ArchiveOldLogs(config.AppConfig.ArchiveAfterDays); err != nil {
			logrus.WithError(err).Warn("Periodic log archival failed")
		}
	}); err != nil {
		logrus.WithError(err).Error("Failed to schedule log archival job")
	}

	ms.cron.Start()
	logrus.Info("Maintenance scheduler started")
}

// Stop halts the scheduler, waiting for running jobs to finish.
func (ms *MaintenanceService) Stop() {
	ctx := ms.cron.Stop()
	<-ctx.Done()
}

// expireEndedSlots deactivates slots whose end date lies strictly in the
// past. Expired slots stop participating in conflict checks but keep their
// history.
func (ms *MaintenanceService) expireEndedSlots() {
	today := time.Now().Truncate(24 * time.Hour)

	result := database.DB.Model(&models.ClassScheduleSlot{}).
		Where("is_active = ? AND end_date IS NOT NULL AND end_date < ?", true, today).
		Update("is_active", false)
	if result.Error != nil {
		logrus.WithError(result.Error).Error("Failed to expire ended schedule slots")
		return
	}
	if result.RowsAffected > 0 {
		logrus.Infof("Expired %d schedule slots past their end date", result.RowsAffected)
	}
}
