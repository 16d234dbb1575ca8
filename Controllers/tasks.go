package Controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"AgentTask/Models"
	"AgentTask/TaskImages"
)

// getOrCreateProgress lazily creates the cursor row, so an agent registered
// before the progress table existed still gets a working cursor.
func getOrCreateProgress(db *gorm.DB, agentID string) (*Models.TaskProgress, error) {
	var progress Models.TaskProgress
	err := db.Where("agent_id = ?", agentID).First(&progress).Error
	if err == nil {
		return &progress, nil
	}
	progress = Models.TaskProgress{AgentID: agentID, CurrentIndex: 0}
	if err := db.Create(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// GetCurrentTask returns the image at the agent's cursor, or a completion
// notice once the cursor has walked past the end of the assignment.
func GetCurrentTask(c *fiber.Ctx) error {
	agentID := c.Params("agent_id")

	var agent Models.Agent
	if err := Models.DB.Where("agent_id = ?", agentID).First(&agent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Agent not found"})
	}

	progress, err := getOrCreateProgress(Models.DB, agentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to load task progress"})
	}

	imageFiles := TaskImages.ListAgentImages(Models.DB, agentID)
	if len(imageFiles) == 0 {
		return c.JSON(fiber.Map{"message": "No tasks assigned", "completed": true})
	}

	if progress.CurrentIndex >= len(imageFiles) {
		var completedCount int64
		Models.DB.Model(&Models.SubmittedForm{}).
			Where("agent_id = ?", agentID).
			Count(&completedCount)
		return c.JSON(fiber.Map{
			"message":         "All tasks completed",
			"completed":       true,
			"total_completed": completedCount,
		})
	}

	currentImage := imageFiles[progress.CurrentIndex]
	return c.JSON(fiber.Map{
		"image_url":     TaskImages.ImageURL(agentID, currentImage),
		"image_name":    currentImage,
		"progress":      fmt.Sprintf("%d/%d", progress.CurrentIndex+1, len(imageFiles)),
		"current_index": progress.CurrentIndex,
		"total_images":  len(imageFiles),
		"task_number":   progress.CurrentIndex + 1,
		"completed":     false,
	})
}

// SubmitTask stores a completed form and advances the cursor. The image name
// is captured at the current cursor before advancing, so the stored row is
// tagged with the image the agent was actually looking at. Write and advance
// happen in one transaction.
func SubmitTask(c *fiber.Ctx) error {
	agentID := c.Params("agent_id")

	var agent Models.Agent
	if err := Models.DB.Where("agent_id = ?", agentID).First(&agent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Agent not found"})
	}

	var form Models.CrimeRecordForm
	if err := c.BodyParser(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}
	if err := validate.Struct(&form); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	progress, err := getOrCreateProgress(Models.DB, agentID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to load task progress"})
	}

	currentImageName := ""
	imageFiles := TaskImages.ListAgentImages(Models.DB, agentID)
	if progress.CurrentIndex < len(imageFiles) {
		currentImageName = imageFiles[progress.CurrentIndex]
	}

	payload, err := form.Payload(currentImageName)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to serialize submission"})
	}

	submission := Models.SubmittedForm{
		AgentID:     agentID,
		FormData:    payload,
		SubmittedAt: time.Now().UTC(),
	}
	err = Models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&submission).Error; err != nil {
			return err
		}
		if currentImageName != "" {
			// Marks the assignment row done; a no-op for agents still
			// on the legacy folder fallback.
			tx.Model(&Models.ImageAssignment{}).
				Where("agent_id = ? AND image_filename = ?", agentID, currentImageName).
				Update("is_completed", Models.AssignmentCompleted)
		}
		return tx.Model(&Models.TaskProgress{}).
			Where("agent_id = ?", agentID).
			UpdateColumn("current_index", gorm.Expr("current_index + 1")).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to store submission"})
	}

	return c.JSON(fiber.Map{
		"message":         "Task submitted successfully",
		"success":         true,
		"submission_id":   submission.ID,
		"next_task_index": progress.CurrentIndex + 1,
	})
}
