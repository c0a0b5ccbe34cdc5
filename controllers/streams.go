package controllers

import (
	"strconv"

	"schooldesk_go/database"
	"schooldesk_go/middleware"
	"schooldesk_go/models"

	"github.com/gofiber/fiber/v2"
)

type StreamController struct{}

// GetStreams returns all streams with pagination
func (sc *StreamController) GetStreams(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "10"))
	offset := (page - 1) * limit

	var streams []models.Stream
	var total int64

	query := database.DB.Model(&models.Stream{})

	// Filter by active status if specified
	if active := c.Query("active"); active != "" {
		query = query.Where("active = ?", active == "true")
	}

	// Filter by minimum capacity if specified
	if minCapacity := c.Query("min_capacity"); minCapacity != "" {
		query = query.Where("capacity >= ?", minCapacity)
	}

	query.Count(&total)

	if err := query.Offset(offset).Limit(limit).Find(&streams).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch streams",
		})
	}

	return c.JSON(fiber.Map{
		"streams": streams,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetStream returns a specific stream by ID, with its timetable slots
func (sc *StreamController) GetStream(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid stream ID",
		})
	}

	var stream models.Stream
	if err := database.DB.Preload("Slots", "is_active = ?", true).
		First(&stream, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Stream not found",
		})
	}

	return c.JSON(fiber.Map{
		"stream": stream,
	})
}

// CreateStream creates a new stream
func (sc *StreamController) CreateStream(c *fiber.Ctx) error {
	var stream models.Stream
	if err := c.BodyParser(&stream); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if stream.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Stream name is required",
		})
	}
	if stream.Code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Stream code is required",
		})
	}

	// Check if stream code already exists
	var existing models.Stream
	if err := database.DB.Where("code = ?", stream.Code).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Stream code already exists",
		})
	}

	stream.Active = true

	if err := database.DB.Create(&stream).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create stream",
		})
	}

	middleware.LogActivity(c, "CREATE", "streams", stream.ID, stream)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Stream created successfully",
		"stream":  stream,
	})
}

// UpdateStream updates an existing stream
func (sc *StreamController) UpdateStream(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid stream ID",
		})
	}

	var stream models.Stream
	if err := database.DB.First(&stream, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Stream not found",
		})
	}

	var updateData models.Stream
	if err := c.BodyParser(&updateData); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	// Check code uniqueness when it changes
	if updateData.Code != "" && updateData.Code != stream.Code {
		var existing models.Stream
		if err := database.DB.Where("code = ? AND id != ?", updateData.Code, stream.ID).
			First(&existing).Error; err == nil {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "Stream code already exists",
			})
		}
	}

	if err := database.DB.Model(&stream).Updates(updateData).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update stream",
		})
	}

	middleware.LogActivity(c, "UPDATE", "streams", stream.ID, updateData)

	return c.JSON(fiber.Map{
		"message": "Stream updated successfully",
		"stream":  stream,
	})
}

// DeleteStream soft-deletes a stream unless it still has active slots
func (sc *StreamController) DeleteStream(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid stream ID",
		})
	}

	var stream models.Stream
	if err := database.DB.First(&stream, uint(id)).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Stream not found",
		})
	}

	var slotCount int64
	database.DB.Model(&models.ClassScheduleSlot{}).
		Where("stream_id = ? AND is_active = ?", stream.ID, true).
		Count(&slotCount)
	if slotCount > 0 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "Cannot delete stream with active schedule slots",
		})
	}

	if err := database.DB.Delete(&stream).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to delete stream",
		})
	}

	middleware.LogActivity(c, "DELETE", "streams", stream.ID, stream)

	return c.JSON(fiber.Map{
		"message": "Stream deleted successfully",
	})
}
