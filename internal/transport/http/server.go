package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Chrezm/TsuserverDR/internal/config"
	"github.com/Chrezm/TsuserverDR/internal/core"
	"github.com/Chrezm/TsuserverDR/internal/metrics"
	"github.com/Chrezm/TsuserverDR/internal/session"
)

// NewServer builds the HTTP surface: health, metrics, the read-only area API
// and the WebSocket transport.
func NewServer(hub *core.Hub, opts session.Options, rec *metrics.Recorder, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), LoggerMiddleware(logger))

	router.GET("/health", healthHandler)
	router.GET("/metrics", gin.WrapH(rec.Handler()))

	areas := NewAreaHandlers(hub, logger)
	api := router.Group("/api")
	{
		api.GET("/areas", areas.ListAreas)
		api.GET("/areas/:id", areas.GetArea)
	}

	// The upgrade needs the raw ResponseWriter: gin's writer refuses to
	// hijack once the handshake headers are flushed.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, opts, cfg.IdleTimeout, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
