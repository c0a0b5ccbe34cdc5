package repository

import (
	"context"
	"fmt"
	"time"

	"schooldesk_go/models"
	"schooldesk_go/services/scheduling"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SlotRepository is the GORM-backed scheduling.SlotStore. It only ever reads
// slot rows; writes stay in the controllers.
type SlotRepository struct {
	db *gorm.DB
}

func NewSlotRepository(db *gorm.DB) *SlotRepository {
	return &SlotRepository{db: db}
}

// WithTx returns a repository bound to the given transaction so overlap
// queries observe the locks the acceptance path holds.
func (r *SlotRepository) WithTx(tx *gorm.DB) *SlotRepository {
	return &SlotRepository{db: tx}
}

type slotRow struct {
	ID            uint       `gorm:"column:id"`
	StartTime     string     `gorm:"column:start_time"`
	EndTime       string     `gorm:"column:end_time"`
	EffectiveDate time.Time  `gorm:"column:effective_date"`
	EndDate       *time.Time `gorm:"column:end_date"`
}

func resourceColumn(kind scheduling.ResourceKind) string {
	if kind == scheduling.ResourceTeacher {
		return "teacher_id"
	}
	return "stream_id"
}

// ActiveSlots returns every active slot for the resource on the given
// weekday, excluding excludeID when set. Inactive slots never show up in
// conflict checks.
func (r *SlotRepository) ActiveSlots(ctx context.Context, kind scheduling.ResourceKind, resourceID uint, dayOfWeek string, excludeID *uint) ([]scheduling.SlotRecord, error) {
	query := r.db.WithContext(ctx).
		Model(&models.ClassScheduleSlot{}).
		Select("id, start_time, end_time, effective_date, end_date").
		Where(resourceColumn(kind)+" = ?", resourceID).
		Where("day_of_week = ?", dayOfWeek).
		Where("is_active = ?", true)

	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var rows []slotRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]scheduling.SlotRecord, 0, len(rows))
	for _, row := range rows {
		start, err := scheduling.ParseTimeOfDay(row.StartTime)
		if err != nil {
			return nil, fmt.Errorf("slot %d has a corrupt start_time: %w", row.ID, err)
		}
		end, err := scheduling.ParseTimeOfDay(row.EndTime)
		if err != nil {
			return nil, fmt.Errorf("slot %d has a corrupt end_time: %w", row.ID, err)
		}

		dates := scheduling.DateRange{Start: scheduling.DateOnly(row.EffectiveDate)}
		if row.EndDate != nil {
			until := scheduling.DateOnly(*row.EndDate)
			dates.End = &until
		}

		records = append(records, scheduling.SlotRecord{
			ID:        row.ID,
			StartTime: start,
			EndTime:   end,
			Dates:     dates,
		})
	}

	return records, nil
}

// LockResource takes a FOR UPDATE lock on the stream or teacher row itself.
// Validation alone is read-then-decide and gives no concurrency guarantee;
// the acceptance path calls this inside its transaction so two submissions
// for the same resource serialize instead of both passing validation.
func (r *SlotRepository) LockResource(ctx context.Context, kind scheduling.ResourceKind, resourceID uint) error {
	locked := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"})
	if kind == scheduling.ResourceTeacher {
		var teacher models.Teacher
		return locked.First(&teacher, resourceID).Error
	}
	var stream models.Stream
	return locked.First(&stream, resourceID).Error
}
