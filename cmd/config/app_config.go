package config

import (
	"flavorpal-backend/internal/api/handlers"
	"flavorpal-backend/internal/api/routes"
	"flavorpal-backend/internal/middleware"
	"flavorpal-backend/internal/utils"
	"flavorpal-backend/internal/utils/storage"
	"flavorpal-backend/pkg/ai"
	"flavorpal-backend/pkg/jwt"
	"flavorpal-backend/pkg/openfoodfacts"
	"flavorpal-backend/pkg/product"
	"flavorpal-backend/pkg/user"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func NewApp(db *gorm.DB) (*fiber.App, error) {
	utils.InitValidator()
	app := fiber.New(fiber.Config{
		EnablePrintRoutes: true,
		BodyLimit:         12 * 1024 * 1024,
	})
	middlewares := middleware.NewMiddleware()
	validator := utils.Validate

	// setting up logging and limiter
	err := os.MkdirAll("./logs", os.ModePerm)
	if err != nil {
		log.Fatalf("error creating logs directory: %v", err)
	}
	file, err := os.OpenFile(
		"./logs/app.log",
		os.O_RDWR|os.O_CREATE|os.O_APPEND,
		0666,
	)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		TimeZone:   "Asia/Jakarta",
		Output:     file,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        10,
		Expiration: 1 * time.Second,
	}))

	serviceLogger := logrus.New()
	serviceLogger.SetFormatter(&logrus.JSONFormatter{})
	serviceLogger.SetOutput(os.Stdout)

	// utils
	var s3 storage.AwsS3
	if bucket := utils.GetConfig("AWS_S3_BUCKET"); bucket != "" {
		s3, err = storage.NewAwsS3(
			bucket,
			utils.GetConfig("AWS_S3_REGION"),
			utils.GetConfig("AWS_ACCESS_KEY"),
			utils.GetConfig("AWS_SECRET_KEY"),
		)
		if err != nil {
			return nil, err
		}
	} else {
		log.Warn("AWS_S3_BUCKET not set, photo products keep their inline image")
	}

	// upstream clients
	catalogURL := utils.GetConfig("OPENFOODFACTS_URL")
	catalog := openfoodfacts.NewClient(
		catalogURL,
		utils.GetDurationConfig("CATALOG_TIMEOUT", 12*time.Second),
		serviceLogger.WithField("client", "openfoodfacts"),
	)

	promptVersion := utils.GetConfig("PROMPT_VERSION")
	aiClient, err := ai.New(ai.Config{
		APIKey:           utils.GetConfig("OPENAI_API_KEY"),
		BaseURL:          utils.GetConfig("OPENAI_BASE_URL"),
		Vision:           ai.ModelConfig{Model: utils.GetConfig("VISION_MODEL"), PromptVersion: promptVersion},
		Health:           ai.ModelConfig{Model: utils.GetConfig("VISION_MODEL"), PromptVersion: promptVersion},
		Embedding:        ai.ModelConfig{Model: utils.GetConfig("EMBEDDING_MODEL")},
		VisionTimeout:    utils.GetDurationConfig("VISION_TIMEOUT", 60*time.Second),
		EmbeddingTimeout: utils.GetDurationConfig("EMBEDDING_TIMEOUT", 30*time.Second),
	}, serviceLogger.WithField("client", "openai"))
	if err != nil {
		return nil, err
	}

	// Repository
	userRepository := user.NewUserRepository(db)
	productRepository := product.NewProductRepository(db)

	// Service
	jwtService := jwt.NewJWTService(utils.GetConfig("JWT_SECRET"))
	userService := user.NewUserService(userRepository)
	productService := product.NewProductService(
		productRepository,
		catalog,
		aiClient,
		aiClient,
		userService,
		s3,
		utils.GetFloatConfig("SIMILARITY_THRESHOLD", product.DefaultSimilarityThreshold),
		serviceLogger.WithField("service", "product"),
	)

	// Handler
	userHandler := handlers.NewUserHandler(userService, validator)
	productHandler := handlers.NewProductHandler(productService, validator)

	// routes
	routesConfig := routes.Config{
		App:            app,
		UserHandler:    userHandler,
		ProductHandler: productHandler,
		Middleware:     middlewares,
		JWTService:     jwtService,
	}
	routesConfig.Setup()
	return app, nil
}
