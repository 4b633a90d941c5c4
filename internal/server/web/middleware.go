package web

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	RequestIDHeader     = "X-Request-ID"
	contextRequestIDKey = "request_id"
	contextClaimsKey    = "claims"
)

// RequestID tags every request with an id, reusing a well-formed incoming one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		c.Set(contextRequestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// RequestLogger writes one line per request, including the last error a
// handler attached to the context.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		args := []any{
			"request_id", c.GetString(contextRequestIDKey),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if err := c.Errors.Last(); err != nil {
			args = append(args, "error", err.Err)
		}
		log.Info(c.Request.Context(), "http request", args...)
	}
}

// Restrict lets only logged-in sessions through and sends everyone else to
// the login page, remembering where they wanted to go.
func Restrict(loginRoute string) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if user, ok := session.Get(common.SessionKeyUsername).(string); ok && user != "" {
			c.Next()
			return
		}
		target := loginRoute + "?redirect=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// RequireToken checks the access token of the JSON API.
func RequireToken(tokens TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader(common.AccessTokenHeaderName)
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "message": "missing token"})
			return
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			_ = c.Error(fmt.Errorf("%w: %w", common.ErrorUnauthorized, err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "unauthorized", "message": "invalid token"})
			return
		}
		c.Set(contextClaimsKey, claims)
		c.Next()
	}
}

// safeRedirect keeps post-login redirects on this site.
func safeRedirect(target string) bool {
	return strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//") && !strings.Contains(target, "\\")
}
