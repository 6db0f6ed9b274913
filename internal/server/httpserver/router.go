package httpserver

import (
	"net/http"

	"github.com/Vinuthna-Athimamula/QuMail/internal/core/service"
	"github.com/Vinuthna-Athimamula/QuMail/internal/localpool"
	"github.com/Vinuthna-Athimamula/QuMail/internal/server/httpserver/handler"
	"github.com/Vinuthna-Athimamula/QuMail/internal/telemetry/logger"
)

// RouterConfig carries everything the HTTP surface needs.
type RouterConfig struct {
	Presence *service.PresenceService
	Sessions *service.SessionService
	Pool     *localpool.Pool
	Logger   logger.Logger

	// MetricsHandler serves the Prometheus exposition endpoint. Nil
	// disables /metrics.
	MetricsHandler http.Handler
	// Observer receives per-request metrics. Nil disables them.
	Observer RequestObserver

	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
}

// NewRouter assembles the handler tree and middleware chain.
//
// Chain order, outermost first: Recover, CORS, RequestID, RateLimit,
// Audit, Metrics. Recover sits outside so a panic anywhere below it
// still produces a response, and RateLimit sits inside RequestID so
// rejected requests are still traceable.
func NewRouter(cfg RouterConfig) http.Handler {
	h := handler.New(handler.Config{
		Presence: cfg.Presence,
		Sessions: cfg.Sessions,
		Pool:     cfg.Pool,
		Logger:   cfg.Logger,
	})

	mux := http.NewServeMux()
	mux.Handle("/", h)
	if cfg.MetricsHandler != nil {
		// Exposition format, not the JSON envelope.
		mux.Handle("GET /metrics", cfg.MetricsHandler)
	}

	middlewares := []Middleware{
		Recover(cfg.Logger),
		CORS(cfg.AllowedOrigins),
		RequestID(),
	}
	if cfg.RateLimitRPS > 0 {
		middlewares = append(middlewares, RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}
	middlewares = append(middlewares, Audit(cfg.Logger))
	if cfg.Observer != nil {
		middlewares = append(middlewares, Metrics(cfg.Observer))
	}

	return Chain(mux, middlewares...)
}
