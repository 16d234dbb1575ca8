package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"AgentTask/Models"
)

// SecretKey signs agent session tokens. JWT_SECRET overrides the dev
// default.
func SecretKey() string {
	if v := os.Getenv("JWT_SECRET"); v != "" {
		return v
	}
	return "secret"
}

// TokenFromRequest pulls the session token from the jwt cookie or an
// Authorization bearer header.
func TokenFromRequest(c *fiber.Ctx) string {
	if cookie := c.Cookies("jwt"); cookie != "" {
		return cookie
	}
	auth := c.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// VerifyAgent gates agent-facing routes. The token subject must match the
// :agent_id route parameter, the account must still exist and be active.
func VerifyAgent() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := TokenFromRequest(c)
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Not Logged In.",
			})
		}

		token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
			return []byte(SecretKey()), nil
		})
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid or expired token",
			})
		}

		claims, ok := token.Claims.(*jwt.RegisteredClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Invalid token claims",
			})
		}

		if paramID := c.Params("agent_id"); paramID != "" && paramID != claims.Subject {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Token does not match agent",
			})
		}

		var agent Models.Agent
		if err := Models.DB.Where("agent_id = ?", claims.Subject).First(&agent).Error; err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Agent not found",
			})
		}
		if agent.Status != Models.StatusActive {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Agent account is not active",
			})
		}

		c.Locals("agent", agent)
		return c.Next()
	}
}
