package controllers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/revenuefox/revenuefox/internal/pkg/database"
	"github.com/revenuefox/revenuefox/internal/pkg/integration"
	"github.com/revenuefox/revenuefox/internal/pkg/providers"
	"github.com/revenuefox/revenuefox/internal/pkg/usercontext"
)

const revenueFetchTimeout = 30 * time.Second

// HandleAPIIntegrationStatus returns the connection state of every known
// provider for the authenticated user.
func HandleAPIIntegrationStatus(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	svc := integration.NewServiceFromDB(database.GetDB())
	statuses, err := svc.StatusByProvider(c.UserContext(), userCtx.UserID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal_server_error", "message": "Failed to load integrations"})
	}

	out := make(fiber.Map, len(statuses))
	for p, st := range statuses {
		out[string(p)] = st
	}
	return c.JSON(fiber.Map{"success": true, "integrations": out})
}

// HandleAPIIntegrationRevenue fetches and normalizes daily revenue for one
// provider. The provider is queried live on every request; responses are
// never cached.
func HandleAPIIntegrationRevenue(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	p, err := providers.ParseProvider(c.Params("provider"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "unknown provider"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), revenueFetchTimeout)
	defer cancel()

	svc := integration.NewServiceFromDB(database.GetDB())
	series, err := svc.GetRevenue(ctx, userCtx.UserID, p)
	if err != nil {
		switch {
		case errors.Is(err, integration.ErrNotConnected):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": fmt.Sprintf("%s not connected", p)})
		case errors.Is(err, providers.ErrProviderNotImplemented):
			return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": fmt.Sprintf("%s integration is not available yet", p)})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("Failed to fetch %s data", p)})
		}
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"totalRevenue": series.TotalRevenue,
		"dailyRevenue": series.Points,
		"count":        series.Count,
	})
}
