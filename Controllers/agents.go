package Controllers

import (
	"crypto/rand"
	"math/big"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"AgentTask/Models"
)

var validate = validator.New()

const maxIDAttempts = 10

const (
	digitCharset    = "0123456789"
	passwordCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

func randomString(charset string, length int) (string, error) {
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		out[i] = charset[n.Int64()]
	}
	return string(out), nil
}

// generateAgentCredentials returns a fresh AGT###### identifier and an
// 8-character alphanumeric password.
func generateAgentCredentials() (string, string, error) {
	digits, err := randomString(digitCharset, 6)
	if err != nil {
		return "", "", err
	}
	password, err := randomString(passwordCharset, 8)
	if err != nil {
		return "", "", err
	}
	return "AGT" + digits, password, nil
}

type registerInput struct {
	Name    string `form:"name" json:"name" validate:"required"`
	Email   string `form:"email" json:"email" validate:"required,email"`
	Mobile  string `form:"mobile" json:"mobile" validate:"required"`
	DOB     string `form:"dob" json:"dob" validate:"required"`
	Country string `form:"country" json:"country" validate:"required"`
	Gender  string `form:"gender" json:"gender" validate:"required"`
}

// RegisterAgent provisions a new agent with generated credentials. The
// plaintext password appears in this response and nowhere else.
func RegisterAgent(c *fiber.Ctx) error {
	var input registerInput
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}
	if err := validate.Struct(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": err.Error()})
	}

	var existing Models.Agent
	if err := Models.DB.Where("email = ?", input.Email).First(&existing).Error; err == nil {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"message": "Email already registered"})
	}

	agentID, password, err := generateAgentCredentials()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to generate credentials"})
	}
	// Collisions on a 6-digit suffix are unlikely but cheap to check.
	attempt := 0
	for ; attempt < maxIDAttempts; attempt++ {
		var taken Models.Agent
		if err := Models.DB.Where("agent_id = ?", agentID).First(&taken).Error; err != nil {
			break
		}
		if agentID, password, err = generateAgentCredentials(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to generate credentials"})
		}
	}
	if attempt >= maxIDAttempts {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to generate unique agent ID"})
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to hash password"})
	}

	agent := Models.Agent{
		AgentID:        agentID,
		Name:           input.Name,
		Email:          input.Email,
		Mobile:         input.Mobile,
		DOB:            input.DOB,
		Country:        input.Country,
		Gender:         input.Gender,
		HashedPassword: string(hashed),
		Status:         Models.StatusActive,
	}
	err = Models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&agent).Error; err != nil {
			return err
		}
		return tx.Create(&Models.TaskProgress{AgentID: agentID, CurrentIndex: 0}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Registration failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "Agent registered successfully",
		"agent_id": agentID,
		"password": password,
		"agent_details": fiber.Map{
			"name":   agent.Name,
			"email":  agent.Email,
			"mobile": agent.Mobile,
			"status": agent.Status,
		},
	})
}

// GetAllAgents lists every agent with submission counts and their last five
// sessions, newest first.
func GetAllAgents(c *fiber.Ctx) error {
	var agents []Models.Agent
	if err := Models.DB.Find(&agents).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to retrieve agents"})
	}

	result := make([]fiber.Map, 0, len(agents))
	for _, agent := range agents {
		var completedCount int64
		Models.DB.Model(&Models.SubmittedForm{}).
			Where("agent_id = ?", agent.AgentID).
			Count(&completedCount)

		// Session lookup is best-effort: a broken sessions table must
		// not take down the agent list.
		var sessions []Models.AgentSession
		if err := Models.DB.Where("agent_id = ?", agent.AgentID).
			Order("login_time desc").
			Limit(5).
			Find(&sessions).Error; err != nil {
			sessions = nil
		}

		var lastLogin, lastLogout interface{}
		loggedIn := false
		if len(sessions) > 0 {
			lastLogin = sessions[0].LoginTime.Format("2006-01-02 15:04:05")
			loggedIn = sessions[0].LogoutTime == nil
			for _, s := range sessions {
				if s.LogoutTime != nil {
					lastLogout = s.LogoutTime.Format("2006-01-02 15:04:05")
					break
				}
			}
		}

		recent := make([]fiber.Map, 0, len(sessions))
		for _, s := range sessions {
			var logoutTime interface{}
			if s.LogoutTime != nil {
				logoutTime = s.LogoutTime.Format("2006-01-02 15:04:05")
			}
			recent = append(recent, fiber.Map{
				"login_time":       s.LoginTime.Format("2006-01-02 15:04:05"),
				"logout_time":      logoutTime,
				"duration_minutes": s.DurationMinutes,
			})
		}

		result = append(result, fiber.Map{
			"agent_id":               agent.AgentID,
			"name":                   agent.Name,
			"email":                  agent.Email,
			"status":                 agent.Status,
			"tasks_completed":        completedCount,
			"created_at":             agent.CreatedAt.Format("2006-01-02 15:04:05"),
			"last_login":             lastLogin,
			"last_logout":            lastLogout,
			"is_currently_logged_in": loggedIn,
			"recent_sessions":        recent,
		})
	}
	return c.JSON(result)
}

// UpdateAgentStatus flips an account between active and inactive.
func UpdateAgentStatus(c *fiber.Ctx) error {
	var input struct {
		Status string `json:"status" form:"status" validate:"required,oneof=active inactive"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}
	if err := validate.Struct(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Status must be active or inactive"})
	}

	var agent Models.Agent
	if err := Models.DB.Where("agent_id = ?", c.Params("agent_id")).First(&agent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Agent not found"})
	}

	if err := Models.DB.Model(&agent).Update("status", input.Status).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to update agent status"})
	}
	return c.JSON(fiber.Map{"message": "Agent status updated successfully"})
}

// DeleteAgent removes the account and its dependent rows. Submissions stay:
// collected data outlives the account that produced it. Deletes are hard
// deletes so the unique email and agent_id indexes free up for reuse.
func DeleteAgent(c *fiber.Ctx) error {
	agentID := c.Params("agent_id")

	var agent Models.Agent
	if err := Models.DB.Where("agent_id = ?", agentID).First(&agent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Agent not found"})
	}

	err := Models.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("agent_id = ?", agentID).Delete(&Models.AgentSession{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("agent_id = ?", agentID).Delete(&Models.TaskProgress{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("agent_id = ?", agentID).Delete(&Models.ImageAssignment{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&agent).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to delete agent"})
	}
	return c.JSON(fiber.Map{"message": "Agent deleted successfully"})
}

// GetAgentPassword exists for the admin console; hashes are one-way, so all
// it can do is point at the reset flow.
func GetAgentPassword(c *fiber.Ctx) error {
	agentID := c.Params("agent_id")

	var agent Models.Agent
	if err := Models.DB.Where("agent_id = ?", agentID).First(&agent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Agent not found"})
	}

	return c.JSON(fiber.Map{
		"agent_id":  agentID,
		"message":   "Password is hashed and cannot be retrieved. Generate new password if needed.",
		"can_reset": true,
	})
}

// ResetAgentPassword replaces the stored hash and returns the new plaintext
// once.
func ResetAgentPassword(c *fiber.Ctx) error {
	agentID := c.Params("agent_id")

	var agent Models.Agent
	if err := Models.DB.Where("agent_id = ?", agentID).First(&agent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Agent not found"})
	}

	_, newPassword, err := generateAgentCredentials()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to generate password"})
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to hash password"})
	}
	if err := Models.DB.Model(&agent).Update("hashed_password", string(hashed)).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to reset password"})
	}

	return c.JSON(fiber.Map{
		"agent_id":     agentID,
		"new_password": newPassword,
		"message":      "Password reset successfully",
	})
}
