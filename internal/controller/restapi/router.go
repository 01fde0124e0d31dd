package restapi

import (
	"errors"
	"net/http"

	"github.com/andreyxaxa/Image-Hosting/config"
	v1 "github.com/andreyxaxa/Image-Hosting/internal/controller/restapi/v1"
	"github.com/andreyxaxa/Image-Hosting/internal/controller/restapi/v1/response"
	"github.com/andreyxaxa/Image-Hosting/internal/usecase"
	"github.com/andreyxaxa/Image-Hosting/pkg/logger"
	"github.com/andreyxaxa/Image-Hosting/pkg/metrics"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
)

// @title Image hosting
// @version 1.0.0
// @host localhost:8080
// @BasePath /v1
func NewRouter(app *fiber.App, cfg *config.Config, img usecase.ImageUseCase, m *metrics.Metrics, l logger.Interface) {
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Content-Type",
	}))

	// K8s probe
	app.Get("/healthz", func(ctx *fiber.Ctx) error { return ctx.SendStatus(http.StatusOK) })

	// Prometheus metrics
	if cfg.Metrics.Enabled {
		app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))
	}

	// Swagger
	if cfg.Swagger.Enabled {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}

	// Routers
	apiV1Group := app.Group("/v1")
	{
		v1.NewImageRoutes(apiV1Group, img, m, l, cfg.Images.ListDegradeOnError)
	}

	app.Use(func(ctx *fiber.Ctx) error {
		return ctx.Status(http.StatusNotFound).JSON(response.Error{Error: "Not found"})
	})
}

// ErrorHandler renders errors that escape the handlers, such as an
// oversized body, in the same JSON shape as handler errors.
func ErrorHandler(ctx *fiber.Ctx, err error) error {
	code := http.StatusInternalServerError
	msg := "Internal server error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	return ctx.Status(code).JSON(response.Error{Error: msg})
}
