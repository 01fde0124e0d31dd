package v1

import (
	"github.com/andreyxaxa/Image-Hosting/internal/entity"
	"github.com/andreyxaxa/Image-Hosting/internal/usecase"
	"github.com/andreyxaxa/Image-Hosting/pkg/logger"
	"github.com/andreyxaxa/Image-Hosting/pkg/metrics"
	"github.com/gofiber/fiber/v2"
)

func NewImageRoutes(apiV1Group fiber.Router, img usecase.ImageUseCase, m *metrics.Metrics, l logger.Interface, degradeList bool) {
	r := &V1{img: img, metrics: m, logger: l, degradeList: degradeList}

	{
		apiV1Group.Post("/images", r.track(entity.OpCreate, r.uploadImage))
		apiV1Group.Get("/images", r.track(entity.OpList, r.listImages))
		apiV1Group.Get("/images/:id", r.track(entity.OpGet, r.getImage))
		apiV1Group.Delete("/images/:id?", r.track(entity.OpDelete, r.deleteImage))
	}
}
