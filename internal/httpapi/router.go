package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"swipe-quiz/internal/metrics"
	"swipe-quiz/internal/quiz"
)

type Options struct {
	Logger  *zap.Logger
	Metrics *metrics.Metrics
	// EnableCORS lets the browser front-end call the API from another origin.
	EnableCORS     bool
	AllowedOrigins []string
}

func NewRouter(service *quiz.Service, options Options) http.Handler {
	api := NewAPI(service, options.Logger, options.Metrics)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(api.logger, api.metrics))
	if options.EnableCORS {
		engine.Use(cors.New(corsConfig(options.AllowedOrigins)))
	}

	engine.GET("/healthz", api.HandleHealth)
	if api.metrics != nil {
		engine.GET("/metrics", gin.WrapH(api.metrics.Handler()))
	}

	engine.GET("/deck", api.HandleDeck)
	engine.GET("/profiles/:label", api.HandleProfile)

	sessions := engine.Group("/sessions")
	sessions.POST("", api.HandleStartSession)
	sessions.GET("/:session_id", api.HandleGetSession)
	sessions.POST("/:session_id/decisions", api.HandleDecision)
	sessions.POST("/:session_id/reset", api.HandleReset)
	sessions.GET("/:session_id/result", api.HandleResult)

	engine.NoRoute(func(c *gin.Context) {
		writeJSON(c, http.StatusNotFound, errorResponse{Error: "route not found"})
	})

	return engine
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}

	allowAll := len(origins) == 0
	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}
	}
	if allowAll {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	return config
}

// requestLogger logs every request with zap and feeds the latency histogram.
// Server errors log at error level, client errors at warn.
func requestLogger(logger *zap.Logger, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		route := c.FullPath()
		m.ObserveRequest(c.Request.Method, route, status, latency)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request failed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request rejected", fields...)
		default:
			logger.Info("request served", fields...)
		}
	}
}
