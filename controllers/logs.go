package controllers

import (
	"encoding/json"
	"strconv"
	"time"

	"schooldesk_go/database"
	"schooldesk_go/models"
	"schooldesk_go/services"
	"schooldesk_go/utils"

	"github.com/gofiber/fiber/v2"
)

type LogController struct{}

// LogResponse represents a log entry response
type LogResponse struct {
	ID         uint                   `json:"id"`
	Action     string                 `json:"action"`
	Resource   string                 `json:"resource"`
	ResourceID uint                   `json:"resource_id"`
	Details    map[string]interface{} `json:"details"`
	IPAddress  string                 `json:"ip_address"`
	RequestID  string                 `json:"request_id"`
	CreatedAt  time.Time              `json:"created_at"`
}

func toLogResponse(log models.ActivityLog) LogResponse {
	resp := LogResponse{
		ID:         log.ID,
		Action:     log.Action,
		Resource:   log.Resource,
		ResourceID: log.ResourceID,
		IPAddress:  log.IPAddress,
		RequestID:  log.RequestID,
		CreatedAt:  log.CreatedAt,
	}
	if len(log.Details) > 0 {
		var details map[string]interface{}
		if err := json.Unmarshal(log.Details, &details); err == nil {
			resp.Details = details
		}
	}
	return resp
}

// GetLogs retrieves paginated activity logs with filters
func (lc *LogController) GetLogs(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))
	if limit > 200 {
		limit = 200
	}
	offset := (page - 1) * limit

	query := database.DB.Model(&models.ActivityLog{})

	if action := c.Query("action"); action != "" {
		query = query.Where("action = ?", action)
	}
	if resource := c.Query("resource"); resource != "" {
		query = query.Where("resource = ?", resource)
	}
	if from := c.Query("from"); from != "" {
		if fromDate, err := utils.ParseDate(from); err == nil {
			query = query.Where("created_at >= ?", fromDate)
		}
	}
	if to := c.Query("to"); to != "" {
		if toDate, err := utils.ParseDate(to); err == nil {
			query = query.Where("created_at < ?", toDate.AddDate(0, 0, 1))
		}
	}

	var total int64
	query.Count(&total)

	var logs []models.ActivityLog
	if err := query.Order("created_at DESC").
		Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch activity logs",
		})
	}

	responses := make([]LogResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, toLogResponse(log))
	}

	return c.JSON(fiber.Map{
		"logs": responses,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

// GetLogArchives lists the archive files shipped to S3
func (lc *LogController) GetLogArchives(c *fiber.Ctx) error {
	service := services.NewLogArchiveService()

	archives, err := service.GetArchivedLogs()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch log archives",
		})
	}

	return c.JSON(fiber.Map{
		"archives": archives,
	})
}

// DownloadLogArchive streams an archived log file from S3
func (lc *LogController) DownloadLogArchive(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid archive ID",
		})
	}

	service := services.NewLogArchiveService()

	reader, fileName, err := service.DownloadArchivedLogs(uint(id))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	defer reader.Close()

	c.Set("Content-Type", "application/zip")
	c.Set("Content-Disposition", "attachment; filename="+fileName)
	return c.SendStream(reader)
}
