package routes

import (
	"freshkeep-backend/internal/api/handlers"
	"freshkeep-backend/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App                 *fiber.App
	AssistantHandler    handlers.AssistantHandler
	FoodHandler         handlers.FoodHandler
	SettingsHandler     handlers.SettingsHandler
	NotificationHandler handlers.NotificationHandler
	Middleware          middleware.Middleware
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.Assistant()
	c.FoodItems()
	c.Settings()
	c.Notifications()
	c.GuestRoute()
}

// Assistant mounts the AI proxy at the root. These routes answer with bare
// bodies: the product, {recipes} or {error}.
func (c *Config) Assistant() {
	limited := []fiber.Handler{
		c.Middleware.BareBodyMiddleware(),
		c.Middleware.ConnectionLimitMiddleware(),
		c.Middleware.DeviceMiddleware(),
	}

	c.App.Post("/scan-label", append(limited, c.AssistantHandler.ScanLabel)...)
	c.App.Post("/generate-recipes", append(limited, c.AssistantHandler.GenerateRecipes)...)
}

func (c *Config) FoodItems() {
	foodItems := c.App.Group("/api/v1/food-items", c.Middleware.DeviceMiddleware())
	foodItems.Get("/dashboard", c.FoodHandler.GetDashboardStats)

	foodItems.Post("", c.FoodHandler.AddFoodItem)
	foodItems.Get("", c.FoodHandler.GetFoodItems)
	foodItems.Get("/:id", c.FoodHandler.GetFoodItemDetails)
	foodItems.Put("/:id", c.FoodHandler.UpdateFoodItem)
	foodItems.Delete("/:id", c.FoodHandler.DeleteFoodItem)

	foodItems.Post("/:id/consume", c.FoodHandler.ConsumeFoodItem)
	foodItems.Post("/:id/discard", c.FoodHandler.DiscardFoodItem)
}

func (c *Config) Settings() {
	settings := c.App.Group("/api/v1/settings/notifications", c.Middleware.DeviceMiddleware())
	settings.Get("", c.SettingsHandler.GetSettings)
	settings.Put("", c.SettingsHandler.UpdatePreferences)
	settings.Post("/permission", c.SettingsHandler.SetPermission)
}

func (c *Config) Notifications() {
	notifications := c.App.Group("/api/v1/notifications", c.Middleware.DeviceMiddleware())
	notifications.Post("/recompute", c.NotificationHandler.Recompute)
	notifications.Get("/scheduled", c.NotificationHandler.ListScheduled)
	notifications.Post("/test", c.NotificationHandler.SendTest)
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}
