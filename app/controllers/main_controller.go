package controllers

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/revenuefox/revenuefox/internal/pkg/database"
	"github.com/revenuefox/revenuefox/internal/pkg/integration"
	"github.com/revenuefox/revenuefox/internal/pkg/providers"
	"github.com/revenuefox/revenuefox/internal/pkg/usercontext"
)

func HandleHome(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)
	if userCtx.IsLoggedIn {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}

	return c.Render("index", fiber.Map{
		"Title": "RevenueFox",
		"Flash": flash.Get(c),
	}, "layouts/main")
}

// providerCard is the view model for one integration card on the dashboard.
type providerCard struct {
	Provider       string
	DisplayName    string
	ConnectPath    string
	Connected      bool
	ProviderUserID string
}

func HandleDashboard(c *fiber.Ctx) error {
	userCtx := usercontext.GetUserContext(c)

	svc := integration.NewServiceFromDB(database.GetDB())
	status, err := svc.StatusByProvider(c.Context(), userCtx.UserID)
	if err != nil {
		log.Printf("dashboard: user=%d status lookup failed: %v", userCtx.UserID, err)
		status = map[providers.Provider]integration.Status{}
	}

	cards := make([]providerCard, 0, len(providers.Registry))
	for _, p := range providers.All() {
		info := providers.Registry[p]
		st := status[p]
		cards = append(cards, providerCard{
			Provider:       string(p),
			DisplayName:    info.DisplayName,
			ConnectPath:    info.ConnectPath,
			Connected:      st.Connected,
			ProviderUserID: st.ProviderUserID,
		})
	}

	return c.Render("dashboard", fiber.Map{
		"Title":         "Dashboard",
		"Username":      userCtx.Username,
		"Cards":         cards,
		"ConnectedFlag": c.Query("connected"),
		"ErrorFlag":     c.Query("error"),
		"Flash":         flash.Get(c),
	}, "layouts/main")
}
