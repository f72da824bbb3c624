package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewApp builds the fiber application with middleware and the shared
// error envelope.
func NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "SWFM API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorHandler: errorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": message,
	})
}

// SetupRoutes configures all HTTP routes
func SetupRoutes(app *fiber.App, handler *Handler) {
	// Health and metrics
	app.Get("/health", handler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API v1 routes
	api := app.Group("/api/v1")
	{
		// Dashboard
		api.Get("/dashboard", handler.GetDashboard)

		// Stations
		api.Get("/stations", handler.ListStations)
		api.Get("/stations/nearest", handler.NearestStation)
		api.Get("/stations/:id", handler.GetStation)
		api.Post("/stations", handler.CreateStation)
		api.Put("/stations/:id", handler.UpdateStation)
		api.Delete("/stations/:id", handler.DeleteStation)

		// Telemetry and charts
		api.Get("/stations/:id/measurements", handler.GetMeasurements)
		api.Post("/stations/:id/measurements", handler.IngestMeasurements)
		api.Get("/stations/:id/chart", handler.GetChart)

		// Forecast service proxies
		api.Post("/predict/generate-forecasts", handler.GenerateForecasts)
		api.Post("/predict/generate-all", handler.GenerateAllForecasts)
		api.Post("/predict/:model", handler.Predict)

		api.Post("/training/train", handler.Train)
		api.Get("/training/status", handler.TrainingStatus)
		api.Get("/training/models/:station_id", handler.TrainedModels)
		api.Post("/training/train-all-stations", handler.TrainAllStations)

		api.Get("/models", handler.ListModels)
		api.Post("/models/upload", handler.UploadModel)
		api.Post("/models/:name/promote/:version", handler.PromoteModel)
		api.Delete("/models/:name", handler.DeleteModel)

		api.Get("/weather/forecast", handler.WeatherForecast)
		api.Get("/evaluation/feature-importance", handler.FeatureImportance)

		// Preprocessing configuration
		api.Get("/configs", handler.ListConfigs)
		api.Get("/configs/:method_id", handler.GetConfig)
		api.Put("/configs/:method_id", handler.UpsertConfig)

		// Forecast maintenance
		api.Delete("/forecasts/stale", handler.DeleteStaleForecasts)
	}
}
