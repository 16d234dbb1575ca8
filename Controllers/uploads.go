package Controllers

import (
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"AgentTask/Models"
	"AgentTask/TaskImages"
)

// UploadTasks ingests a ZIP of images for one agent. Extraction writes to
// the agent folder; the assignment rows and the cursor reset happen together
// afterwards, so a half-failed upload never leaves an agent pointing into a
// stale batch.
func UploadTasks(c *fiber.Ctx) error {
	agentID := c.FormValue("agent_id")
	if agentID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "agent_id is required"})
	}

	var agent Models.Agent
	if err := Models.DB.Where("agent_id = ?", agentID).First(&agent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Agent not found"})
	}

	fileHeader, err := c.FormFile("zip_file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "No file provided. Please upload a ZIP archive."})
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".zip") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "File must be a ZIP archive"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to open uploaded file"})
	}
	defer src.Close()
	archive, err := io.ReadAll(src)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to read uploaded file"})
	}

	extracted, err := TaskImages.ExtractBatch(agentID, archive)
	if err != nil {
		if errors.Is(err, TaskImages.ErrNotZip) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid ZIP file"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Upload failed"})
	}

	now := time.Now().UTC()
	err = Models.DB.Transaction(func(tx *gorm.DB) error {
		// Full batch replacement: the new archive defines the agent's
		// entire task set.
		if err := tx.Where("agent_id = ?", agentID).Delete(&Models.ImageAssignment{}).Error; err != nil {
			return err
		}
		for _, img := range extracted {
			assignment := Models.ImageAssignment{
				AgentID:       agentID,
				ImageFilename: img.Filename,
				ImagePath:     img.Path,
				AssignedAt:    now,
				IsCompleted:   Models.AssignmentPending,
			}
			if err := tx.Create(&assignment).Error; err != nil {
				return err
			}
		}

		var progress Models.TaskProgress
		if err := tx.Where("agent_id = ?", agentID).First(&progress).Error; err != nil {
			return tx.Create(&Models.TaskProgress{AgentID: agentID, CurrentIndex: 0}).Error
		}
		return tx.Model(&progress).Update("current_index", 0).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Upload failed"})
	}

	return c.JSON(fiber.Map{
		"message":          "Images uploaded successfully",
		"agent_id":         agentID,
		"images_processed": len(extracted),
		"agent_directory":  TaskImages.AgentDir(agentID),
	})
}
