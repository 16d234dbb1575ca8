package Controllers

import (
	"log"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"AgentTask/Models"
	"AgentTask/middleware"
)

const tokenLifetime = 24 * time.Hour

func signAgentToken(agentID string, now time.Time) (string, error) {
	claims := &jwt.RegisteredClaims{
		Subject:   agentID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(middleware.SecretKey()))
}

// closeSession stamps the logout time and stores the duration in minutes,
// rounded to two decimals.
func closeSession(tx *gorm.DB, session *Models.AgentSession, at time.Time) error {
	logout := at
	session.LogoutTime = &logout
	minutes := math.Round(logout.Sub(session.LoginTime).Minutes()*100) / 100
	if minutes < 0 {
		minutes = 0
	}
	session.DurationMinutes = &minutes
	return tx.Save(session).Error
}

// Login authenticates an agent and opens a session. Closing leftover open
// sessions and opening the new one is a single transaction; if that
// transaction fails the login still succeeds, since session tracking is
// bookkeeping, not auth.
func Login(c *fiber.Ctx) error {
	var input struct {
		AgentID  string `form:"agent_id" json:"agent_id" validate:"required"`
		Password string `form:"password" json:"password" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request format"})
	}
	if err := validate.Struct(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "agent_id and password are required"})
	}

	var agent Models.Agent
	if err := Models.DB.Where("agent_id = ?", input.AgentID).First(&agent).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
	}
	if err := bcrypt.CompareHashAndPassword([]byte(agent.HashedPassword), []byte(input.Password)); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid credentials"})
	}
	if agent.Status != Models.StatusActive {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": "Agent account is not active"})
	}

	now := time.Now().UTC()

	signed, err := signAgentToken(agent.AgentID, now)
	if err != nil {
		log.Printf("token signing failed for %s: %v", agent.AgentID, err)
	} else {
		c.Cookie(&fiber.Cookie{
			Name:     "jwt",
			Value:    signed,
			Expires:  now.Add(tokenLifetime),
			HTTPOnly: true,
		})
	}

	session := Models.AgentSession{
		AgentID:   agent.AgentID,
		LoginTime: now,
		IPAddress: c.IP(),
		UserAgent: c.Get("User-Agent"),
	}
	err = Models.DB.Transaction(func(tx *gorm.DB) error {
		var open []Models.AgentSession
		if err := tx.Where("agent_id = ? AND logout_time IS NULL", agent.AgentID).Find(&open).Error; err != nil {
			return err
		}
		for i := range open {
			if err := closeSession(tx, &open[i], now); err != nil {
				return err
			}
		}
		return tx.Create(&session).Error
	})

	resp := fiber.Map{
		"message":  "Login successful",
		"agent_id": agent.AgentID,
		"name":     agent.Name,
	}
	if signed != "" {
		resp["token"] = signed
	}
	if err != nil {
		log.Printf("session tracking failed for %s: %v", agent.AgentID, err)
		return c.JSON(resp)
	}

	resp["session_id"] = session.ID
	resp["login_time"] = session.LoginTime.Format(time.RFC3339)
	return c.JSON(resp)
}

// Logout closes the agent's open session. No open session is not an error.
func Logout(c *fiber.Ctx) error {
	agentID := c.Params("agent_id")

	var agent Models.Agent
	if err := Models.DB.Where("agent_id = ?", agentID).First(&agent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Agent not found"})
	}

	c.Cookie(&fiber.Cookie{
		Name:     "jwt",
		Value:    "",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
	})

	var session Models.AgentSession
	err := Models.DB.Where("agent_id = ? AND logout_time IS NULL", agentID).First(&session).Error
	if err == nil {
		if err := closeSession(Models.DB, &session, time.Now().UTC()); err != nil {
			log.Printf("logout session error for %s: %v", agentID, err)
			return c.JSON(fiber.Map{"message": "Logout successful"})
		}
		return c.JSON(fiber.Map{
			"message":          "Logout successful",
			"session_duration": *session.DurationMinutes,
		})
	}
	return c.JSON(fiber.Map{"message": "Logout successful"})
}

// ForceLogout lets the admin close an agent's open session.
func ForceLogout(c *fiber.Ctx) error {
	agentID := c.Params("agent_id")

	var agent Models.Agent
	if err := Models.DB.Where("agent_id = ?", agentID).First(&agent).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Agent not found"})
	}

	var session Models.AgentSession
	err := Models.DB.Where("agent_id = ? AND logout_time IS NULL", agentID).First(&session).Error
	if err == nil {
		if err := closeSession(Models.DB, &session, time.Now().UTC()); err != nil {
			log.Printf("force logout error for %s: %v", agentID, err)
			return c.JSON(fiber.Map{"message": "Agent was not logged in"})
		}
		return c.JSON(fiber.Map{
			"message":          "Agent " + agentID + " has been forcefully logged out",
			"session_duration": *session.DurationMinutes,
		})
	}
	return c.JSON(fiber.Map{"message": "Agent was not logged in"})
}

// ValidateToken resolves the current session token back to an agent.
func ValidateToken(c *fiber.Ctx) error {
	tokenString := middleware.TokenFromRequest(c)
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Not Logged In."})
	}
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(middleware.SecretKey()), nil
	})
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid or expired token"})
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid token claims"})
	}

	var agent Models.Agent
	if err := Models.DB.Where("agent_id = ?", claims.Subject).First(&agent).Error; err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Agent not found"})
	}
	return c.JSON(fiber.Map{
		"agent_id": agent.AgentID,
		"name":     agent.Name,
		"status":   agent.Status,
	})
}

// SessionReport lists sessions newest-login-first with optional agent and
// date filters. Date parameters use YYYY-MM-DD.
func SessionReport(c *fiber.Ctx) error {
	query := Models.DB.Model(&Models.AgentSession{})

	if agentID := c.Query("agent_id"); agentID != "" {
		query = query.Where("agent_id = ?", agentID)
	}
	if from := c.Query("date_from"); from != "" {
		fromDate, err := time.Parse("2006-01-02", from)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid date_from format. Use YYYY-MM-DD"})
		}
		query = query.Where("login_time >= ?", fromDate)
	}
	if to := c.Query("date_to"); to != "" {
		toDate, err := time.Parse("2006-01-02", to)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid date_to format. Use YYYY-MM-DD"})
		}
		query = query.Where("login_time <= ?", toDate.Add(24*time.Hour-time.Second))
	}

	var sessions []Models.AgentSession
	if err := query.Order("login_time desc").Find(&sessions).Error; err != nil {
		// Reporting is best-effort; a storage hiccup degrades to an
		// empty report rather than a 500.
		log.Printf("session report error: %v", err)
		return c.JSON([]fiber.Map{})
	}

	// Resolve display names once per agent, not per row.
	names := map[string]string{}
	result := make([]fiber.Map, 0, len(sessions))
	for _, session := range sessions {
		name, seen := names[session.AgentID]
		if !seen {
			var agent Models.Agent
			if err := Models.DB.Where("agent_id = ?", session.AgentID).First(&agent).Error; err != nil {
				name = "Unknown"
			} else {
				name = agent.Name
			}
			names[session.AgentID] = name
		}

		var logoutTime interface{}
		if session.LogoutTime != nil {
			logoutTime = session.LogoutTime.Format(time.RFC3339)
		}
		result = append(result, fiber.Map{
			"session_id":       session.ID,
			"agent_id":         session.AgentID,
			"agent_name":       name,
			"login_time":       session.LoginTime.Format(time.RFC3339),
			"logout_time":      logoutTime,
			"duration_minutes": session.DurationMinutes,
			"is_active":        session.LogoutTime == nil,
		})
	}
	return c.JSON(result)
}
