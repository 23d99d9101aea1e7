package flash

import (
	"github.com/gofiber/fiber/v2"
	sflash "github.com/sujit-baniya/flash"
)

// Flash message key in Locals
const FlashKey = "flash"

// Set sets a flash message for the current render only
func Set(c *fiber.Ctx, message fiber.Map) {
	c.Locals(FlashKey, message)
}

// Get returns the message of this request, falling back to the one carried
// over a redirect in the flash cookie.
func Get(c *fiber.Ctx) fiber.Map {
	if msg, ok := c.Locals(FlashKey).(fiber.Map); ok && msg != nil {
		return msg
	}
	if msg := sflash.Get(c); len(msg) > 0 {
		return msg
	}
	return nil
}

// Error redirects to location with an error message.
func Error(c *fiber.Ctx, location, message string) error {
	return sflash.WithError(c, fiber.Map{"type": "error", "message": message}).Redirect(location, fiber.StatusSeeOther)
}

// Success redirects to location with a success message.
func Success(c *fiber.Ctx, location, message string) error {
	return sflash.WithSuccess(c, fiber.Map{"type": "success", "message": message}).Redirect(location, fiber.StatusSeeOther)
}

// Info redirects to location with an informational message.
func Info(c *fiber.Ctx, location, message string) error {
	return sflash.WithInfo(c, fiber.Map{"type": "info", "message": message}).Redirect(location, fiber.StatusSeeOther)
}
