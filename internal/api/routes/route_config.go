package routes

import (
	"flavorpal-backend/internal/api/handlers"
	"flavorpal-backend/internal/middleware"
	"flavorpal-backend/pkg/jwt"
	"github.com/gofiber/fiber/v2"
)

type Config struct {
	App            *fiber.App
	UserHandler    handlers.UserHandler
	ProductHandler handlers.ProductHandler
	Middleware     middleware.Middleware
	JWTService     jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.User()
	c.Products()
	c.History()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
}

func (c *Config) User() {
	user := c.App.Group("/api/v1/users", c.Middleware.AuthMiddleware(c.JWTService))
	{
		user.Get("/me/health-flags", c.UserHandler.GetHealthFlags)
		user.Put("/me/health-flags", c.UserHandler.UpdateHealthFlags)
	}
}

func (c *Config) Products() {
	products := c.App.Group("/api/v1/products", c.Middleware.AuthMiddleware(c.JWTService))

	// Registration
	products.Post("/barcode", c.ProductHandler.RegisterByBarcode)
	products.Post("/photo", c.ProductHandler.RegisterByPhoto)
	products.Post("/search", c.ProductHandler.SearchByPhoto)

	products.Get("", c.ProductHandler.GetProducts)
	products.Get("/:id", c.ProductHandler.GetProductDetails)
	products.Post("/:id/health-suggestion", c.ProductHandler.AttachHealthSuggestion)
	products.Put("/:id/review", c.ProductHandler.ReviewProduct)
}

func (c *Config) History() {
	history := c.App.Group("/api/v1/history", c.Middleware.AuthMiddleware(c.JWTService))
	history.Delete("/:productId", c.ProductHandler.RemoveFromHistory)
}
