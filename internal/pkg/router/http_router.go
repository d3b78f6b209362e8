package router

import (
	"github.com/revenuefox/revenuefox/app/controllers"
	"github.com/revenuefox/revenuefox/app/repository"
	"github.com/revenuefox/revenuefox/internal/pkg/database"
	"github.com/revenuefox/revenuefox/internal/pkg/middleware"
	"github.com/revenuefox/revenuefox/internal/pkg/oauth"
	"github.com/revenuefox/revenuefox/internal/pkg/session"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// init repositories
	repository.InitializeFactory(database.GetDB())

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
	h.registerProtectedRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func (h HttpRouter) registerPublicRoutes(app *fiber.App) {
	app.Get("/", controllers.HandleHome)

	// Auth
	app.Get("/login", controllers.HandleAuthLogin)
	app.Post("/login", controllers.HandleAuthLogin)
	app.Get("/register", controllers.HandleAuthRegister)
	app.Post("/register", controllers.HandleAuthRegister)
	app.Post("/logout", middleware.RequireAuth, controllers.HandleAuthLogout)

	// Social sign-in
	app.Get("/auth/:provider", gothfiber.BeginAuthHandler)
	app.Get("/auth/:provider/callback", controllers.HandleOAuthCallback)

	// Payment provider OAuth. The callback stays public: the provider
	// redirects the browser here, and the handler checks the session itself
	// so a missing login becomes /login?error=no_user instead of a bare 302.
	app.Get("/integrations/:provider/connect", controllers.HandleIntegrationConnect)
	app.Get("/integrations/:provider/callback", controllers.HandleIntegrationCallback)
}

func (h HttpRouter) registerProtectedRoutes(app *fiber.App) {
	app.Get("/dashboard", middleware.RequireAuth, controllers.HandleDashboard)
}
