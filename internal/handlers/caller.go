package handlers

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/himanshu123g/fitlife-plus-sub001/internal/models"
)

var errInvalidCaller = errors.New("invalid caller")

// callerFromContext rebuilds the verified identity stored by AuthRequired.
func callerFromContext(c *fiber.Ctx) (models.Caller, error) {
	userIDStr, ok := c.Locals("user_id").(string)
	if !ok {
		return models.Caller{}, errInvalidCaller
	}
	userID, err := strconv.ParseInt(userIDStr, 10, 64)
	if err != nil || userID <= 0 {
		return models.Caller{}, errInvalidCaller
	}

	role, _ := c.Locals("role").(string)
	caller := models.Caller{
		ID:   userID,
		Role: models.Role(strings.ToLower(strings.TrimSpace(role))),
	}
	if !caller.Role.IsValid() {
		return models.Caller{}, errInvalidCaller
	}
	caller.MembershipPlan, _ = c.Locals("membership_plan").(string)
	return caller, nil
}

func parseIDParam(c *fiber.Ctx, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Params(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func invalidTokenResponse(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
}
