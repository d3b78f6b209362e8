package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sujit-baniya/flash"

	"github.com/revenuefox/revenuefox/internal/pkg/database"
	"github.com/revenuefox/revenuefox/internal/pkg/env"
	"github.com/revenuefox/revenuefox/internal/pkg/integration"
	"github.com/revenuefox/revenuefox/internal/pkg/providers"
	"github.com/revenuefox/revenuefox/internal/pkg/session"
	"github.com/revenuefox/revenuefox/internal/pkg/usercontext"
)

const connectStateSessionKey = "integration_oauth_state"

// HandleIntegrationConnect starts the OAuth dance for a payment provider:
// GET /integrations/:provider/connect
func HandleIntegrationConnect(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	provider, err := providers.ParseProvider(c.Params("provider"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("unknown provider")
	}

	state := uuid.NewString()

	svc := integration.NewServiceFromDB(database.GetDB())
	authURL, err := svc.BeginAuth(provider, callbackURL(provider), state)
	if err != nil {
		if errors.Is(err, providers.ErrProviderNotImplemented) {
			fm := fiber.Map{"type": "info", "message": providers.Registry[provider].DisplayName + " support is coming soon"}
			return flash.WithInfo(c, fm).Redirect("/dashboard")
		}
		log.Printf("connect: user=%d provider=%s begin auth failed: %v", userCtx.UserID, provider, err)
		fm := fiber.Map{"type": "error", "message": providers.Registry[provider].DisplayName + " OAuth is not configured"}
		return flash.WithError(c, fm).Redirect("/dashboard")
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		fm := fiber.Map{"type": "error", "message": "Session could not be loaded"}
		return flash.WithError(c, fm).Redirect("/dashboard")
	}
	sess.Set(connectStateSessionKey, state)
	if err := sess.Save(); err != nil {
		fm := fiber.Map{"type": "error", "message": "Session could not be saved"}
		return flash.WithError(c, fm).Redirect("/dashboard")
	}

	return c.Redirect(authURL, fiber.StatusSeeOther)
}

// HandleIntegrationCallback completes the OAuth dance:
// GET /integrations/:provider/callback
func HandleIntegrationCallback(c *fiber.Ctx) error {
	provider, err := providers.ParseProvider(c.Params("provider"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).SendString("unknown provider")
	}

	// Provider sent the user back with an error flag; user can retry.
	if oauthErr := strings.TrimSpace(c.Query("error")); oauthErr != "" {
		log.Printf("callback: provider=%s oauth error=%s", provider, oauthErr)
		return c.Redirect("/dashboard?error="+string(provider), fiber.StatusSeeOther)
	}

	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		log.Printf("callback: provider=%s missing code", provider)
		return c.Redirect("/dashboard?error="+string(provider), fiber.StatusSeeOther)
	}

	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn {
		return c.Redirect("/login?error=no_user", fiber.StatusSeeOther)
	}

	// One-shot state; the provider must echo back exactly what the connect
	// handler stored, otherwise abort before the exchange.
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return c.Redirect("/dashboard?error="+string(provider), fiber.StatusSeeOther)
	}
	expectedState, _ := sess.Get(connectStateSessionKey).(string)
	gotState := strings.TrimSpace(c.Query("state"))
	sess.Delete(connectStateSessionKey)
	_ = sess.Save()
	if !stateMatches(expectedState, gotState) {
		log.Printf("callback: user=%d provider=%s state mismatch", userCtx.UserID, provider)
		return c.Redirect("/dashboard?error="+string(provider), fiber.StatusSeeOther)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	svc := integration.NewServiceFromDB(database.GetDB())
	if _, err := svc.CompleteAuth(ctx, userCtx.UserID, provider, code, callbackURL(provider)); err != nil {
		log.Printf("callback: user=%d provider=%s connect failed: %v", userCtx.UserID, provider, err)
		return c.Redirect("/dashboard?error="+string(provider), fiber.StatusSeeOther)
	}

	log.Printf("callback: user=%d provider=%s connected", userCtx.UserID, provider)
	return c.Redirect("/dashboard?connected="+string(provider), fiber.StatusSeeOther)
}

// stateMatches accepts only a non-empty session state echoed back verbatim.
func stateMatches(expected, got string) bool {
	return expected != "" && got != "" && expected == got
}

func callbackURL(p providers.Provider) string {
	base := strings.TrimRight(env.GetEnv("PUBLIC_DOMAIN", ""), "/")
	if base == "" {
		base = "http://localhost:" + env.GetEnv("APP_PORT", "4000")
	}
	return base + "/integrations/" + string(p) + "/callback"
}
