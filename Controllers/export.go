package Controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/xuri/excelize/v2"

	"AgentTask/Models"
	"AgentTask/TaskImages"
)

const (
	exportSheetName = "Crime Records Data"
	minColWidth     = 10
	maxColWidth     = 50
)

// exportHeaders returns the full column list: metadata first, then the 29
// form fields in their fixed order.
func exportHeaders() []string {
	headers := []string{"Submission_ID", "Agent_ID", "Submitted_At", "Image_Name"}
	return append(headers, Models.FormFieldOrder...)
}

// ExportExcel flattens submissions into an xlsx download. Rows with
// unparseable payloads are logged and skipped rather than aborting the
// whole export.
func ExportExcel(c *fiber.Ctx) error {
	query := Models.DB.Model(&Models.SubmittedForm{})

	if agentID := c.Query("agent_id"); agentID != "" {
		query = query.Where("agent_id = ?", agentID)
	}
	if from := c.Query("date_from"); from != "" {
		fromDate, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid date_from format. Use YYYY-MM-DD"})
		}
		query = query.Where("submitted_at >= ?", fromDate)
	}
	if to := c.Query("date_to"); to != "" {
		toDate, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid date_to format. Use YYYY-MM-DD"})
		}
		// Inclusive of the whole day.
		query = query.Where("submitted_at <= ?", toDate.Add(24*time.Hour-time.Second))
	}

	var submissions []Models.SubmittedForm
	if err := query.Order("submitted_at desc").Find(&submissions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to query submissions"})
	}
	if len(submissions) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No data found with current filters"})
	}

	headers := exportHeaders()
	var rows [][]interface{}
	for _, submission := range submissions {
		var fields map[string]interface{}
		if err := json.Unmarshal(submission.FormData, &fields); err != nil {
			log.Printf("skipping submission %d: malformed payload: %v", submission.ID, err)
			continue
		}

		imageName := "Unknown"
		if v, ok := fields["image_name"].(string); ok && v != "" {
			imageName = v
		}

		row := []interface{}{
			submission.ID,
			submission.AgentID,
			submission.SubmittedAt.Format("2006-01-02 15:04:05"),
			imageName,
		}
		for _, field := range Models.FormFieldOrder {
			value := ""
			if v, ok := fields[field].(string); ok {
				value = v
			}
			row = append(row, value)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "No valid data found"})
	}

	buf, err := buildWorkbook(headers, rows)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": fmt.Sprintf("Failed to build Excel file: %v", err)})
	}

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("crime_records_export_%s.xlsx", timestamp)

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	c.Set("Content-Length", fmt.Sprintf("%d", buf.Len()))
	return c.Send(buf.Bytes())
}

// buildWorkbook writes headers plus rows into an in-memory workbook, sizing
// columns to content within the fixed floor and ceiling.
func buildWorkbook(headers []string, rows [][]interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(exportSheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)

	widths := make([]int, len(headers))
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		f.SetCellValue(exportSheetName, cell, header)
		widths[i] = len(header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(exportSheetName, 1, 1, headerStyle)
	}

	for rowIndex, row := range rows {
		for colIndex, value := range row {
			cell, err := excelize.CoordinatesToCellName(colIndex+1, rowIndex+2)
			if err != nil {
				return nil, err
			}
			f.SetCellValue(exportSheetName, cell, value)
			if n := len(fmt.Sprintf("%v", value)); n > widths[colIndex] {
				widths[colIndex] = n
			}
		}
	}

	for i := range headers {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		width := widths[i] + 2
		if width < minColWidth {
			width = minColWidth
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		f.SetColWidth(exportSheetName, col, col, float64(width))
	}

	if f.GetSheetName(0) != exportSheetName {
		f.DeleteSheet("Sheet1")
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}

// GetStatistics aggregates the admin dashboard counters. Total tasks walks
// every agent's image set, uncached.
func GetStatistics(c *fiber.Ctx) error {
	var totalAgents, activeAgents, totalSubmissions int64
	Models.DB.Model(&Models.Agent{}).Count(&totalAgents)
	Models.DB.Model(&Models.Agent{}).Where("status = ?", Models.StatusActive).Count(&activeAgents)
	Models.DB.Model(&Models.SubmittedForm{}).Count(&totalSubmissions)

	totalTasks := 0
	var agents []Models.Agent
	if err := Models.DB.Find(&agents).Error; err == nil {
		for _, agent := range agents {
			totalTasks += len(TaskImages.ListAgentImages(Models.DB, agent.AgentID))
		}
	}

	pending := totalTasks - int(totalSubmissions)
	if pending < 0 {
		pending = 0
	}

	return c.JSON(fiber.Map{
		"total_agents":    totalAgents,
		"active_agents":   activeAgents,
		"total_tasks":     totalTasks,
		"completed_tasks": totalSubmissions,
		"pending_tasks":   pending,
	})
}
