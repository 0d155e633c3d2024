package config

import (
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"Pantry-Service/internal/api/handlers"
	"Pantry-Service/internal/api/routes"
	"Pantry-Service/internal/middleware"
	"Pantry-Service/internal/scheduler"
	"Pantry-Service/internal/utils"
	"Pantry-Service/internal/utils/mailing"
	"Pantry-Service/internal/utils/storage"
	"Pantry-Service/pkg/inference"
	"Pantry-Service/pkg/jwt"
	"Pantry-Service/pkg/logger"
	"Pantry-Service/pkg/recipe"
	"Pantry-Service/pkg/scan"
	"Pantry-Service/pkg/stock"
)

// App is the wired HTTP server plus its background jobs.
type App struct {
	Fiber     *fiber.App
	Scheduler *scheduler.Scheduler
	logFile   *os.File
}

// Close releases the access log file.
func (a *App) Close() error {
	if a.logFile == nil {
		return nil
	}
	return a.logFile.Close()
}

func NewApp(db *gorm.DB, baseLogger *zap.Logger) (*App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: utils.GetConfig("APP_ENV") != "production",
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	if err := os.MkdirAll("./logs", os.ModePerm); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		return nil, fmt.Errorf("open access log: %w", err)
	}
	app.Use(fiberlogger.New(fiberlogger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	// optional integrations
	s3, err := storage.NewAwsS3(storage.Config{
		Bucket:    utils.GetConfig("AWS_S3_BUCKET"),
		Region:    utils.GetConfig("AWS_S3_REGION"),
		AccessKey: utils.GetConfig("AWS_ACCESS_KEY"),
		SecretKey: utils.GetConfig("AWS_SECRET_KEY"),
		Endpoint:  utils.GetConfig("AWS_S3_ENDPOINT"),
	})
	if err != nil {
		baseLogger.Warn("object storage disabled, scan images will not be kept", zap.Error(err))
	}

	var (
		detector  scan.Detector
		suggester recipe.Suggester
	)
	geminiClient := inference.NewClient(inference.Config{
		APIKey:  utils.GetConfig("GEMINI_API_KEY"),
		Model:   utils.GetConfig("GEMINI_MODEL"),
		BaseURL: utils.GetConfig("GEMINI_BASE_URL"),
	}, logger.Named(baseLogger, "client.inference"))
	if geminiClient.Configured() {
		detector = geminiClient
		suggester = geminiClient
		baseLogger.Info("inference client enabled")
	} else {
		baseLogger.Warn("gemini api key missing, scans and recipe suggestions disabled")
	}

	var mailer recipe.Mailer
	smtpMailer, err := mailing.NewMailer(mailing.LoadMailConfig())
	if err != nil {
		baseLogger.Warn("mailer disabled", zap.Error(err))
	} else {
		mailer = smtpMailer
	}

	// Repository
	stockRepository := stock.NewStockRepository(db)
	scanRepository := scan.NewScanRepository(db)
	recipeRepository := recipe.NewRecipeRepository(db)

	// Service
	jwtService := jwt.NewJWTService(utils.GetConfig("JWT_SECRET"))
	stockService := stock.NewStockService(stockRepository, scanRepository, logger.Named(baseLogger, "svc.stock"))
	scanService := scan.NewScanService(scanRepository, s3, detector, logger.Named(baseLogger, "svc.scan"))
	recipeService := recipe.NewRecipeService(recipeRepository, stockRepository, suggester, mailer, logger.Named(baseLogger, "svc.recipe"))

	// Handler
	handlerLogger := logger.Named(baseLogger, "handlers")
	stockHandler := handlers.NewStockHandler(stockService, validator, handlerLogger)
	scanHandler := handlers.NewScanHandler(scanService, validator, handlerLogger)
	recipeHandler := handlers.NewRecipeHandler(recipeService, validator, handlerLogger)

	// routes
	routesConfig := routes.Config{
		App:           app,
		StockHandler:  stockHandler,
		ScanHandler:   scanHandler,
		RecipeHandler: recipeHandler,
		Middleware:    middlewares,
		JWTService:    jwtService,
	}
	routesConfig.Setup()

	sched := scheduler.NewScheduler(
		utils.GetConfig("FRESHNESS_CRON"),
		stockService,
		logger.Named(baseLogger, "scheduler"),
	)

	return &App{Fiber: app, Scheduler: sched, logFile: file}, nil
}
