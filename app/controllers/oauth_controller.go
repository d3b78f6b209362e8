package controllers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	gothfiber "github.com/shareed2k/goth_fiber"
	"gorm.io/gorm"

	"github.com/revenuefox/revenuefox/app/models"
	"github.com/revenuefox/revenuefox/internal/pkg/database"
)

// HandleOAuthCallback completes the social-login flow and logs the user in
func HandleOAuthCallback(c *fiber.Ctx) error {
	// Complete OAuth with provider and obtain unified user
	u, err := gothfiber.CompleteUserAuth(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString(fmt.Sprintf("OAuth failed: %v", err))
	}

	db := database.GetDB()

	var appUser models.User
	if u.Email != "" {
		if err := db.Where("email = ?", u.Email).First(&appUser).Error; err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprintf("db error: %v", err))
		}
	}

	if appUser.ID == 0 {
		// Create new user; password is a random placeholder since validation
		// requires one (not usable for login).
		placeholder := fmt.Sprintf("oauth_%d", time.Now().UnixNano())
		hash, _ := models.HashPassword(placeholder)
		email := u.Email
		if email == "" {
			// Ensure unique, non-empty email to satisfy unique index semantics in MySQL
			email = fmt.Sprintf("%s_%s@%s.oauth.local", u.Provider, u.UserID, u.Provider)
		}
		appUser = models.User{
			Name:      firstNonEmpty(u.Name, u.NickName, u.Email, "User"),
			Email:     email,
			Password:  hash,
			AvatarURL: u.AvatarURL,
			Status:    models.STATUS_ACTIVE,
		}
		if err := db.Create(&appUser).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString(fmt.Sprintf("create user failed: %v", err))
		}
	}

	if err := createUserSession(c, &appUser); err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("session save failed")
	}

	// Update last login timestamp
	_ = db.Model(&appUser).UpdateColumn("last_login_at", time.Now()).Error

	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}
