package v1

import (
	"errors"
	"net/http"
	"time"

	"github.com/andreyxaxa/Image-Hosting/internal/entity"
	"github.com/gofiber/fiber/v2"
)

// track records status and latency of every request under its operation.
func (r *V1) track(op entity.Operation, h fiber.Handler) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		start := time.Now()
		err := h(ctx)

		status := ctx.Response().StatusCode()
		if err != nil {
			status = http.StatusInternalServerError

			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		r.metrics.ObserveRequest(op.String(), status, time.Since(start))

		return err
	}
}
