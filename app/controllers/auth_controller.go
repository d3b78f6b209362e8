package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sujit-baniya/flash"

	"github.com/revenuefox/revenuefox/app/models"
	"github.com/revenuefox/revenuefox/app/repository"
	"github.com/revenuefox/revenuefox/internal/pkg/database"
	"github.com/revenuefox/revenuefox/internal/pkg/session"
	"github.com/revenuefox/revenuefox/internal/pkg/usercontext"
)

func HandleAuthLogin(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodGet {
		return c.Render("auth/login", fiber.Map{
			"Title": "Log in",
			"Flash": flash.Get(c),
		}, "layouts/main")
	}

	fm := fiber.Map{"type": "error"}

	// notice: in production you should not inform the user
	// with detailed messages about login failures
	user, err := repository.GetGlobalFactory().GetUserRepository().GetByEmail(c.FormValue("email"))
	if err != nil {
		fm["message"] = "There is a problem with the login process"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if !user.CheckPassword(c.FormValue("password")) {
		fm["message"] = "There is a problem with the login process"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if !user.IsActive() {
		fm["message"] = "This account is disabled"

		return flash.WithError(c, fm).Redirect("/login")
	}

	if err := createUserSession(c, user); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	_ = database.GetDB().Model(user).UpdateColumn("last_login_at", time.Now()).Error

	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

func HandleAuthRegister(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodGet {
		return c.Render("auth/register", fiber.Map{
			"Title": "Create account",
			"Flash": flash.Get(c),
		}, "layouts/main")
	}

	fm := fiber.Map{"type": "error"}

	user, err := models.CreateUser(c.FormValue("name"), c.FormValue("email"), c.FormValue("password"))
	if err != nil {
		fm["message"] = "Please check your input and try again"

		return flash.WithError(c, fm).Redirect("/register")
	}

	if err := repository.GetGlobalFactory().GetUserRepository().Create(user); err != nil {
		fm["message"] = "This email address is already registered"

		return flash.WithError(c, fm).Redirect("/register")
	}

	if err := createUserSession(c, user); err != nil {
		fm["message"] = fmt.Sprintf("something went wrong: %s", err)

		return flash.WithError(c, fm).Redirect("/login")
	}

	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

func HandleAuthLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		_ = sess.Destroy()
	}

	return c.Redirect("/", fiber.StatusSeeOther)
}

func createUserSession(c *fiber.Ctx, user *models.User) error {
	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		return err
	}

	sess.Set(usercontext.AuthKey, true)
	sess.Set(usercontext.KeyUserID, user.ID)
	sess.Set(usercontext.KeyUsername, user.Name)
	sess.Set(usercontext.KeyIsAdmin, user.Role == models.ROLE_ADMIN)

	return sess.Save()
}
