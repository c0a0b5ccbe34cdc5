package controllers

import (
	"context"
	"fmt"
	"strconv"

	"schooldesk_go/config"
	"schooldesk_go/database"
	"schooldesk_go/middleware"
	"schooldesk_go/models"
	"schooldesk_go/repository"
	"schooldesk_go/services/scheduling"
	"schooldesk_go/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type ScheduleSlotController struct{}

type ScheduleSlotRequest struct {
	StreamID      uint   `json:"stream_id"`
	SubjectID     *uint  `json:"subject_id"`
	TeacherID     *uint  `json:"teacher_id"`
	DayOfWeek     string `json:"day_of_week"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	EffectiveDate string `json:"effective_date"`
	EndDate       string `json:"end_date"` // empty = open-ended
	Notes         string `json:"notes"`
}

type ValidateScheduleSlotRequest struct {
	ScheduleSlotRequest
	ExcludeID *uint `json:"exclude_id"`
}

// buildProposal turns a request into an engine proposal, rejecting malformed
// fields before any rule runs.
func buildProposal(req ScheduleSlotRequest) (scheduling.SlotProposal, error) {
	day := utils.NormalizeWeekday(req.DayOfWeek)
	if !utils.IsValidWeekday(day) {
		return scheduling.SlotProposal{}, fiber.NewError(fiber.StatusBadRequest, "day_of_week must be one of monday..sunday")
	}

	start, err := scheduling.ParseTimeOfDay(req.StartTime)
	if err != nil {
		return scheduling.SlotProposal{}, fiber.NewError(fiber.StatusBadRequest, "invalid start_time: "+err.Error())
	}
	end, err := scheduling.ParseTimeOfDay(req.EndTime)
	if err != nil {
		return scheduling.SlotProposal{}, fiber.NewError(fiber.StatusBadRequest, "invalid end_time: "+err.Error())
	}

	effective, err := utils.ParseDate(req.EffectiveDate)
	if err != nil {
		return scheduling.SlotProposal{}, fiber.NewError(fiber.StatusBadRequest, "invalid effective_date: "+err.Error())
	}

	dates := scheduling.DateRange{Start: scheduling.DateOnly(effective)}
	if req.EndDate != "" {
		endDate, err := utils.ParseDate(req.EndDate)
		if err != nil {
			return scheduling.SlotProposal{}, fiber.NewError(fiber.StatusBadRequest, "invalid end_date: "+err.Error())
		}
		bounded := scheduling.DateOnly(endDate)
		dates.End = &bounded
	}

	if req.StreamID == 0 {
		return scheduling.SlotProposal{}, fiber.NewError(fiber.StatusBadRequest, "stream_id is required")
	}

	return scheduling.SlotProposal{
		StreamID:  req.StreamID,
		SubjectID: req.SubjectID,
		TeacherID: req.TeacherID,
		DayOfWeek: day,
		StartTime: start,
		EndTime:   end,
		Dates:     dates,
	}, nil
}

func ruleStatus(code scheduling.Code) int {
	switch code {
	case scheduling.CodeInvalidTimeRange, scheduling.CodeInvalidDateRange:
		return fiber.StatusBadRequest
	case scheduling.CodeStreamNotFound, scheduling.CodeSubjectNotFound, scheduling.CodeTeacherNotFound:
		return fiber.StatusNotFound
	case scheduling.CodeStreamOverlap, scheduling.CodeTeacherDoubleBooking:
		return fiber.StatusConflict
	case scheduling.CodeValidationTimedOut:
		return fiber.StatusGatewayTimeout
	case scheduling.CodeDependencyUnavailable:
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusInternalServerError
}

func ruleErrorResponse(c *fiber.Ctx, err error) error {
	if re, ok := scheduling.AsRuleError(err); ok {
		body := fiber.Map{
			"error": re.Message,
			"code":  re.Code,
		}
		if re.ResourceID != 0 {
			body["resource_id"] = re.ResourceID
		}
		if re.ConflictingSlotID != 0 {
			body["conflicting_slot_id"] = re.ConflictingSlotID
		}
		return c.Status(ruleStatus(re.Code)).JSON(body)
	}
	if fe, ok := err.(*fiber.Error); ok {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Failed to process schedule slot",
	})
}

func validationContext(c *fiber.Ctx) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.UserContext(), config.AppConfig.ValidationTimeout)
}

// validateLocked runs the full rule set inside tx after taking FOR UPDATE
// locks on the booked resources. Validation on its own is read-then-decide
// and cannot stop two concurrent submissions from both passing; holding the
// resource locks for the validate+create sequence is what serializes
// acceptance.
func validateLocked(ctx context.Context, tx *gorm.DB, proposal scheduling.SlotProposal, excludeID *uint) error {
	slotRepo := repository.NewSlotRepository(tx)

	if err := slotRepo.LockResource(ctx, scheduling.ResourceStream, proposal.StreamID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return &scheduling.RuleError{
				Code:       scheduling.CodeStreamNotFound,
				Message:    "stream does not exist",
				ResourceID: proposal.StreamID,
			}
		}
		return scheduling.InfrastructureError(err, fmt.Sprintf("failed to lock stream %d", proposal.StreamID))
	}
	if proposal.TeacherID != nil {
		if err := slotRepo.LockResource(ctx, scheduling.ResourceTeacher, *proposal.TeacherID); err != nil {
			if err == gorm.ErrRecordNotFound {
				return &scheduling.RuleError{
					Code:       scheduling.CodeTeacherNotFound,
					Message:    "teacher does not exist",
					ResourceID: *proposal.TeacherID,
				}
			}
			return scheduling.InfrastructureError(err, fmt.Sprintf("failed to lock teacher %d", *proposal.TeacherID))
		}
	}

	validator := scheduling.NewValidator(
		repository.NewRefRepository(tx, database.GetRedisClient()),
		slotRepo,
	)
	return validator.ValidateTimetableRules(ctx, proposal, excludeID)
}

// GetScheduleSlots returns timetable slots with optional filters
func (sc *ScheduleSlotController) GetScheduleSlots(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	offset := (page - 1) * limit

	var slots []models.ClassScheduleSlot
	var total int64

	query := database.DB.Model(&models.ClassScheduleSlot{})

	if streamID := c.Query("stream_id"); streamID != "" {
		query = query.Where("stream_id = ?", streamID)
	}
	if teacherID := c.Query("teacher_id"); teacherID != "" {
		query = query.Where("teacher_id = ?", teacherID)
	}
	if day := c.Query("day_of_week"); day != "" {
		query = query.Where("day_of_week = ?", utils.NormalizeWeekday(day))
	}
	if active := c.Query("active"); active != "" {
		query = query.Where("is_active = ?", active == "true")
	}

	query.Count(&total)

	if err := query.Preload("Stream").Preload("Teacher").Preload("Subject").
		Order("day_of_week, start_time").
		Offset(offset).Limit(limit).Find(&slots).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch schedule slots",
		})
	}

	return c.JSON(fiber.Map{
		"schedule_slots": slots,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetScheduleSlot returns a specific slot by ID
func (sc *ScheduleSlotController) GetScheduleSlot(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid schedule slot ID",
		})
	}

	var slot models.ClassScheduleSlot
	if err := database.DB.Preload("Stream").Preload("Teacher").Preload("Subject").
		First(&slot, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Schedule slot not found",
		})
	}

	return c.JSON(fiber.Map{
		"schedule_slot": slot,
	})
}

// ValidateScheduleSlot is a dry-run conflict check: it runs the full rule
// set without persisting anything or taking locks. A passing dry run is a
// preview, not a reservation.
func (sc *ScheduleSlotController) ValidateScheduleSlot(c *fiber.Ctx) error {
	var req ValidateScheduleSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	proposal, err := buildProposal(req.ScheduleSlotRequest)
	if err != nil {
		return ruleErrorResponse(c, err)
	}

	ctx, cancel := validationContext(c)
	defer cancel()

	validator := scheduling.NewValidator(
		repository.NewRefRepository(database.DB, database.GetRedisClient()),
		repository.NewSlotRepository(database.DB),
	)
	if err := validator.ValidateTimetableRules(ctx, proposal, req.ExcludeID); err != nil {
		return ruleErrorResponse(c, err)
	}

	return c.JSON(fiber.Map{
		"valid":   true,
		"message": "Schedule slot passes all timetable rules",
	})
}

// CreateScheduleSlot validates and persists a new slot in one transaction
func (sc *ScheduleSlotController) CreateScheduleSlot(c *fiber.Ctx) error {
	var req ScheduleSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	proposal, err := buildProposal(req)
	if err != nil {
		return ruleErrorResponse(c, err)
	}

	ctx, cancel := validationContext(c)
	defer cancel()

	var slot models.ClassScheduleSlot
	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateLocked(ctx, tx, proposal, nil); err != nil {
			return err
		}

		slot = models.ClassScheduleSlot{
			StreamID:      proposal.StreamID,
			SubjectID:     proposal.SubjectID,
			TeacherID:     proposal.TeacherID,
			DayOfWeek:     proposal.DayOfWeek,
			StartTime:     proposal.StartTime.String(),
			EndTime:       proposal.EndTime.String(),
			EffectiveDate: proposal.Dates.Start,
			EndDate:       proposal.Dates.End,
			IsActive:      true,
			Notes:         utils.SanitizeString(req.Notes),
		}
		return tx.Create(&slot).Error
	})
	if err != nil {
		return ruleErrorResponse(c, err)
	}

	database.DB.Preload("Stream").Preload("Teacher").Preload("Subject").First(&slot, slot.ID)

	middleware.LogActivity(c, "CREATE", "schedule-slots", slot.ID, slot)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":       "Schedule slot created successfully",
		"schedule_slot": slot,
	})
}

// UpdateScheduleSlot replaces a slot's timetable fields after re-validating
// them with the slot itself excluded from its own conflict set
func (sc *ScheduleSlotController) UpdateScheduleSlot(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid schedule slot ID",
		})
	}

	var slot models.ClassScheduleSlot
	if err := database.DB.First(&slot, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Schedule slot not found",
		})
	}

	var req ScheduleSlotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	proposal, err := buildProposal(req)
	if err != nil {
		return ruleErrorResponse(c, err)
	}

	excludeID := slot.ID

	ctx, cancel := validationContext(c)
	defer cancel()

	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := validateLocked(ctx, tx, proposal, &excludeID); err != nil {
			return err
		}

		slot.StreamID = proposal.StreamID
		slot.SubjectID = proposal.SubjectID
		slot.TeacherID = proposal.TeacherID
		slot.DayOfWeek = proposal.DayOfWeek
		slot.StartTime = proposal.StartTime.String()
		slot.EndTime = proposal.EndTime.String()
		slot.EffectiveDate = proposal.Dates.Start
		slot.EndDate = proposal.Dates.End
		if req.Notes != "" {
			slot.Notes = utils.SanitizeString(req.Notes)
		}
		return tx.Save(&slot).Error
	})
	if err != nil {
		return ruleErrorResponse(c, err)
	}

	database.DB.Preload("Stream").Preload("Teacher").Preload("Subject").First(&slot, slot.ID)

	middleware.LogActivity(c, "UPDATE", "schedule-slots", slot.ID, req)

	return c.JSON(fiber.Map{
		"message":       "Schedule slot updated successfully",
		"schedule_slot": slot,
	})
}

// DeactivateScheduleSlot soft-disables a slot so it stops participating in
// conflict checks without losing its history
func (sc *ScheduleSlotController) DeactivateScheduleSlot(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid schedule slot ID",
		})
	}

	var slot models.ClassScheduleSlot
	if err := database.DB.First(&slot, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Schedule slot not found",
		})
	}

	if err := database.DB.Model(&slot).Update("is_active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to deactivate schedule slot",
		})
	}

	middleware.LogActivity(c, "UPDATE", "schedule-slots", slot.ID, fiber.Map{
		"action": "deactivate",
	})

	return c.JSON(fiber.Map{
		"message": "Schedule slot deactivated successfully",
	})
}

// DeleteScheduleSlot removes a slot
func (sc *ScheduleSlotController) DeleteScheduleSlot(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid schedule slot ID",
		})
	}

	var slot models.ClassScheduleSlot
	if err := database.DB.First(&slot, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Schedule slot not found",
		})
	}

	if err := database.DB.Delete(&slot).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete schedule slot",
		})
	}

	middleware.LogActivity(c, "DELETE", "schedule-slots", slot.ID, slot)

	return c.JSON(fiber.Map{
		"message": "Schedule slot deleted successfully",
	})
}
