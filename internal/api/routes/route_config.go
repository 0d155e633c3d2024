package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"Pantry-Service/internal/api/handlers"
	"Pantry-Service/internal/middleware"
	"Pantry-Service/pkg/jwt"
)

type Config struct {
	App           *fiber.App
	StockHandler  handlers.StockHandler
	ScanHandler   handlers.ScanHandler
	RecipeHandler handlers.RecipeHandler
	Middleware    middleware.Middleware
	JWTService    jwt.JWTService
}

func (c *Config) Setup() {
	c.App.Use(c.Middleware.CORSMiddleware())
	c.GuestRoute()
	c.Stock()
	c.Scans()
	c.Recipes()
}

func (c *Config) GuestRoute() {
	c.App.Get("/api/ping", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"message": "pong"})
	})
	c.App.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}

func (c *Config) Stock() {
	stock := c.App.Group("/api/v1/stock", c.Middleware.AuthMiddleware(c.JWTService))
	stock.Get("/dashboard", c.StockHandler.GetDashboardStats)
	stock.Get("/export", c.StockHandler.ExportStockItems)
	stock.Post("/reconcile", c.StockHandler.Reconcile)

	stock.Post("", c.StockHandler.AddStockItem)
	stock.Get("", c.StockHandler.GetStockItems)
	stock.Get("/:id", c.StockHandler.GetStockItemDetails)
	stock.Put("/:id", c.StockHandler.UpdateStockItem)
	stock.Delete("/:id", c.StockHandler.DeleteStockItem)
	stock.Post("/:id/consume", c.StockHandler.ConsumeStockItem)
}

func (c *Config) Scans() {
	scans := c.App.Group("/api/v1/scans", c.Middleware.AuthMiddleware(c.JWTService))
	scans.Post("", c.ScanHandler.UploadScan)
	scans.Get("/:id", c.ScanHandler.GetScan)
}

func (c *Config) Recipes() {
	recipes := c.App.Group("/api/v1/recipes", c.Middleware.AuthMiddleware(c.JWTService))
	recipes.Get("/history", c.RecipeHandler.GetRecipeHistory)
	recipes.Post("/suggest", c.RecipeHandler.GetRecipeRecommendations)
	recipes.Post("/check-inventory", c.RecipeHandler.CheckInventory)
	recipes.Post("/shopping-list/email", c.RecipeHandler.EmailShoppingList)

	recipes.Post("", c.RecipeHandler.CreateRecipe)
	recipes.Get("", c.RecipeHandler.GetRecipes)
	recipes.Get("/:id", c.RecipeHandler.GetRecipeDetail)
	recipes.Delete("/:id", c.RecipeHandler.DeleteRecipe)
	recipes.Post("/:id/cook", c.RecipeHandler.MarkAsCooked)
}
