// Package rest exposes the picshare API over HTTP. Routing and binding are
// handled by gin; authentication happens in a middleware that performs at
// most one token introspection round trip per request.
package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/picshare/internal/logging"
	"github.com/dmitrijs2005/picshare/internal/server/auth"
	"github.com/dmitrijs2005/picshare/internal/server/config"
	"github.com/dmitrijs2005/picshare/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type RestServer struct {
	address      string
	corsOrigin   string
	accounts     *services.AccountService
	photos       *services.PhotoService
	introspector *auth.Introspector
	logger       logging.Logger
}

func NewRestServer(cfg *config.Config, l logging.Logger, accounts *services.AccountService, photos *services.PhotoService) *RestServer {
	return &RestServer{
		address:      cfg.EndpointAddrHTTP,
		corsOrigin:   cfg.CORSAllowedOrigin,
		accounts:     accounts,
		photos:       photos,
		introspector: auth.NewIntrospector(cfg.TokenInfoEndpoint),
		logger:       l.With("module", "rest_server"),
	}
}

func (s *RestServer) router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{s.corsOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Content-Length", "Accept-Encoding", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", s.getHealth)

	v1 := router.Group("/v1", s.authMiddleware())
	v1.POST("/users/join", s.postJoin)
	v1.POST("/photo", s.postPhoto)
	v1.GET("/photo/:key", s.getPhoto)
	v1.PUT("/photo/:key", s.putPhoto)
	v1.PATCH("/photo/:key", s.patchPhoto)
	v1.DELETE("/photo/:key", s.deletePhoto)
	v1.GET("/photos", s.listPhotos)
	v1.POST("/acl/:key", s.postACL)

	router.NoRoute(func(c *gin.Context) { c.JSON(http.StatusNotFound, gin.H{}) })

	return router
}

// Run serves the API until ctx is cancelled, then drains in-flight
// requests.
func (s *RestServer) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.address,
		Handler: s.router(),
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP server shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
