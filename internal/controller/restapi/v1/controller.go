package v1

import (
	"github.com/andreyxaxa/Image-Hosting/internal/usecase"
	"github.com/andreyxaxa/Image-Hosting/pkg/logger"
	"github.com/andreyxaxa/Image-Hosting/pkg/metrics"
)

type V1 struct {
	img     usecase.ImageUseCase
	metrics *metrics.Metrics
	logger  logger.Interface

	// answer list storage failures with 200 and an empty page instead of 500
	degradeList bool
}
