package controllers

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"schooldesk_go/config"
	"schooldesk_go/database"
	"schooldesk_go/middleware"
	"schooldesk_go/models"
	"schooldesk_go/services/scheduling"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// TimetableImportController imports timetable slots from CSV/XLSX exports.
// Entities are matched by their codes (stream code, subject code, teacher
// email) so spreadsheets survive database reseeds.
type TimetableImportController struct{}

type timetableImportRow struct {
	RowNumber int
	Request   ScheduleSlotRequest
}

type timetableImportStats struct {
	TotalRows    int      `json:"total_rows"`
	SlotsCreated int      `json:"slots_created"`
	RowsSkipped  int      `json:"rows_skipped"`
	RowErrors    []string `json:"row_errors,omitempty"`
}

// Import parses the uploaded file and creates one schedule slot per row.
// With dry_run=true every row is validated but nothing is persisted.
func (tic *TimetableImportController) Import(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot open file"})
	}
	defer file.Close()

	filename := strings.ToLower(fileHeader.Filename)
	var rows [][]string
	var parseErr error

	if strings.HasSuffix(filename, ".csv") {
		rows, parseErr = readCSV(file)
	} else if strings.HasSuffix(filename, ".xlsx") {
		// Save to OS temp folder for excelize to open
		tmpDir, err := os.MkdirTemp("", "sdtimetable-")
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to buffer upload"})
		}
		defer os.RemoveAll(tmpDir)
		tmp := filepath.Join(tmpDir, fmt.Sprintf("%d_%s", time.Now().UnixNano(), filepath.Base(fileHeader.Filename)))
		if err := c.SaveFile(fileHeader, tmp); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "failed to buffer upload"})
		}
		rows, parseErr = readXLSX(tmp)
	} else {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unsupported file type (csv, xlsx)"})
	}
	if parseErr != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": parseErr.Error()})
	}

	if len(rows) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is empty"})
	}

	col := buildColumnIndex(rows[0])
	required := []string{"stream_code", "day_of_week", "start_time", "end_time", "effective_date"}
	for _, key := range required {
		if _, ok := col[key]; !ok {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": fmt.Sprintf("missing column: %s", key)})
		}
	}

	parsedRows := make([]timetableImportRow, 0, len(rows)-1)
	stats := &timetableImportStats{}
	for i := 1; i < len(rows); i++ {
		raw := rows[i]
		if isRowEmpty(raw) {
			continue
		}
		stats.TotalRows++

		row, err := parseTimetableRow(raw, col, i+1)
		if err != nil {
			stats.RowsSkipped++
			stats.RowErrors = append(stats.RowErrors, err.Error())
			continue
		}
		parsedRows = append(parsedRows, row)
	}

	dryRun := c.Query("dry_run") == "true" || c.FormValue("dry_run") == "true"

	ctx, cancel := context.WithTimeout(c.UserContext(), config.AppConfig.ValidationTimeout)
	defer cancel()

	err = database.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range parsedRows {
			if err := tic.importRow(ctx, tx, row, stats); err != nil {
				return err
			}
		}
		if dryRun {
			// Roll back everything; the stats still describe what would happen
			return gorm.ErrInvalidTransaction
		}
		return nil
	})
	if err != nil && !(dryRun && err == gorm.ErrInvalidTransaction) {
		status := fiber.StatusInternalServerError
		if re, ok := scheduling.AsRuleError(err); ok {
			status = ruleStatus(re.Code)
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
			"stats": stats,
		})
	}

	if !dryRun && stats.SlotsCreated > 0 {
		middleware.LogActivity(c, "IMPORT", "schedule-slots", 0, stats)
	}

	return c.JSON(fiber.Map{
		"success":   true,
		"dry_run":   dryRun,
		"file_name": fileHeader.Filename,
		"stats":     stats,
	})
}

// importAbort reports whether a row failure must stop the whole import.
// Dependency outages and timeouts are infrastructure failures, not verdicts
// on the row, so they are never reported as per-row validation errors.
func importAbort(err error) bool {
	re, ok := scheduling.AsRuleError(err)
	if !ok {
		return true
	}
	return re.Code == scheduling.CodeDependencyUnavailable || re.Code == scheduling.CodeValidationTimedOut
}

// importRow validates one row and creates its slot. Rule violations skip the
// row and are reported in the stats; infrastructure errors abort the import.
func (tic *TimetableImportController) importRow(ctx context.Context, tx *gorm.DB, row timetableImportRow, stats *timetableImportStats) error {
	proposal, err := buildProposal(row.Request)
	if err != nil {
		stats.RowsSkipped++
		if fe, ok := err.(*fiber.Error); ok {
			stats.RowErrors = append(stats.RowErrors, fmt.Sprintf("row %d: %s", row.RowNumber, fe.Message))
		} else {
			stats.RowErrors = append(stats.RowErrors, fmt.Sprintf("row %d: %v", row.RowNumber, err))
		}
		return nil
	}

	if err := validateLocked(ctx, tx, proposal, nil); err != nil {
		// A store outage or timeout aborts the whole import; only genuine
		// rule violations are downgraded to per-row skips.
		if importAbort(err) {
			return err
		}
		re, _ := scheduling.AsRuleError(err)
		stats.RowsSkipped++
		stats.RowErrors = append(stats.RowErrors, fmt.Sprintf("row %d: %s", row.RowNumber, re.Message))
		return nil
	}

	slot := models.ClassScheduleSlot{
		StreamID:      proposal.StreamID,
		SubjectID:     proposal.SubjectID,
		TeacherID:     proposal.TeacherID,
		DayOfWeek:     proposal.DayOfWeek,
		StartTime:     proposal.StartTime.String(),
		EndTime:       proposal.EndTime.String(),
		EffectiveDate: proposal.Dates.Start,
		EndDate:       proposal.Dates.End,
		IsActive:      true,
		Notes:         row.Request.Notes,
	}
	if err := tx.Create(&slot).Error; err != nil {
		return err
	}

	stats.SlotsCreated++
	return nil
}

// parseTimetableRow resolves entity codes to IDs and assembles the request
func parseTimetableRow(raw []string, col map[string]int, rowNumber int) (timetableImportRow, error) {
	get := func(key string) string {
		idx, ok := col[key]
		if !ok || idx >= len(raw) {
			return ""
		}
		return strings.TrimSpace(raw[idx])
	}

	streamCode := get("stream_code")
	if streamCode == "" {
		return timetableImportRow{}, fmt.Errorf("row %d: stream_code is empty", rowNumber)
	}

	var stream models.Stream
	if err := database.DB.Where("code = ?", streamCode).First(&stream).Error; err != nil {
		return timetableImportRow{}, fmt.Errorf("row %d: unknown stream code %q", rowNumber, streamCode)
	}

	req := ScheduleSlotRequest{
		StreamID:      stream.ID,
		DayOfWeek:     get("day_of_week"),
		StartTime:     get("start_time"),
		EndTime:       get("end_time"),
		EffectiveDate: get("effective_date"),
		EndDate:       get("end_date"),
		Notes:         get("notes"),
	}

	if subjectCode := get("subject_code"); subjectCode != "" {
		var subject models.Subject
		if err := database.DB.Where("code = ?", subjectCode).First(&subject).Error; err != nil {
			return timetableImportRow{}, fmt.Errorf("row %d: unknown subject code %q", rowNumber, subjectCode)
		}
		req.SubjectID = &subject.ID
	}

	if teacherEmail := get("teacher_email"); teacherEmail != "" {
		var teacher models.Teacher
		if err := database.DB.Where("email = ?", teacherEmail).First(&teacher).Error; err != nil {
			return timetableImportRow{}, fmt.Errorf("row %d: unknown teacher email %q", rowNumber, teacherEmail)
		}
		req.TeacherID = &teacher.ID
	}

	return timetableImportRow{RowNumber: rowNumber, Request: req}, nil
}

func buildColumnIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if key != "" {
			col[key] = i
		}
	}
	return col
}

func isRowEmpty(raw []string) bool {
	for _, cell := range raw {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	var rows [][]string
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	// Use first sheet
	sht := f.GetSheetName(0)
	if sht == "" {
		sht = "Sheet1"
	}
	return f.GetRows(sht)
}
