package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/duelforge/duel-server/internal/config"
	"github.com/duelforge/duel-server/internal/core"
)

// NewServer builds the HTTP server: health, room info, ws upgrade.
func NewServer(hub *core.Hub, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(LoggerMiddleware(logger), gin.Recovery())

	router.GET("/health", healthHandler)

	rooms := NewRoomHandlers(hub, logger)
	router.GET("/api/rooms/:id", rooms.GetRoom)

	router.GET("/ws", gin.WrapH(NewWSHandler(hub, cfg, logger)))

	// Browser clients serve the game page from another origin.
	handler := cors.Default().Handler(router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
