package httpapi

import (
	"go.uber.org/zap"

	"swipe-quiz/internal/metrics"
	"swipe-quiz/internal/quiz"
)

type API struct {
	service *quiz.Service
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func NewAPI(service *quiz.Service, logger *zap.Logger, m *metrics.Metrics) *API {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		service: service,
		logger:  logger,
		metrics: m,
	}
}
