// Package web is the HTTP surface of gatekeeper: the session based login and
// logout pages plus a small JSON API that hands out access tokens.
package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

const (
	SessionCookieName = "gatekeeper_session"
	shutdownTimeout   = 5 * time.Second
)

type Server struct {
	address string
	engine  *gin.Engine
	logger  logging.Logger
}

func NewServer(cfg *config.Config, login LoginEngine, tokens TokenIssuer, renderer Renderer, l logging.Logger) *Server {
	logger := l.With("module", "http_server")

	engine := gin.New()
	engine.Use(gin.Recovery(), RequestID(), RequestLogger(logger))

	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	engine.Use(sessions.Sessions(SessionCookieName, store))

	h := &handlers{
		login:       login,
		tokens:      tokens,
		renderer:    renderer,
		loginRoute:  cfg.LoginRoute,
		logoutRoute: cfg.LogoutRoute,
		log:         logger,
	}

	engine.GET("/health", health)
	engine.GET(cfg.LoginRoute, h.getLogin)
	engine.POST(cfg.LoginRoute, h.postLogin)
	engine.GET(cfg.LogoutRoute, Restrict(cfg.LoginRoute), h.getLogout)

	corsConfig := cors.DefaultConfig()
	if origins := splitOrigins(cfg.CORSAllowedOrigins); len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", RequestIDHeader, "access_token"}
	corsConfig.ExposeHeaders = []string{RequestIDHeader, "access_token"}

	api := engine.Group("/api", cors.New(corsConfig))
	{
		api.POST("/login", h.apiLogin)
		api.GET("/me", RequireToken(tokens), h.apiMe)
	}

	return &Server{address: cfg.EndpointAddrHTTP, engine: engine, logger: logger}
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "HTTP shutdown failed", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func splitOrigins(s string) []string {
	var origins []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
