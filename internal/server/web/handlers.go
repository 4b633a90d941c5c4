package web

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	titleLogin     = "Login"
	titleLoggedOut = "Logout successful"
)

// LoginEngine decides login attempts.
type LoginEngine interface {
	Login(ctx context.Context, at services.Attempt) (*services.Decision, error)
}

// TokenIssuer mints and checks API access tokens.
type TokenIssuer interface {
	Issue(a *models.Account) (string, error)
	Verify(token string) (*auth.Claims, error)
}

type handlers struct {
	login       LoginEngine
	tokens      TokenIssuer
	renderer    Renderer
	loginRoute  string
	logoutRoute string
	log         logging.Logger
}

type loginRequest struct {
	Login    string `json:"login" form:"login"`
	Password string `json:"password" form:"password"`
}

func (h *handlers) getLogin(c *gin.Context) {
	session := sessions.Default(c)
	if target := c.Query("redirect"); target != "" && safeRedirect(target) {
		session.Set(common.SessionKeyRedirectAfterLogin, target)
	} else {
		session.Delete(common.SessionKeyRedirectAfterLogin)
	}
	if err := session.Save(); err != nil {
		h.internalError(c, err)
		return
	}

	h.renderer.Render(c, http.StatusOK, ViewLogin, ViewData{Title: titleLogin, Action: h.loginRoute})
}

func (h *handlers) postLogin(c *gin.Context) {
	var req loginRequest
	_ = c.ShouldBind(&req)

	session := sessions.Default(c)
	target, _ := session.Get(common.SessionKeyRedirectAfterLogin).(string)

	d, err := h.login.Login(c.Request.Context(), services.Attempt{
		Login:          req.Login,
		Password:       req.Password,
		ClientIP:       c.ClientIP(),
		RedirectTarget: target,
	})
	if err != nil {
		h.internalError(c, err)
		return
	}

	if !d.Accepted {
		h.renderer.Render(c, http.StatusForbidden, ViewLogin, ViewData{
			Title:  titleLogin,
			Error:  d.Message,
			Login:  req.Login,
			Action: h.loginRoute,
		})
		return
	}

	session.Delete(common.SessionKeyRedirectAfterLogin)
	session.Set(common.SessionKeyUsername, d.Account.Username)
	session.Set(common.SessionKeyEmail, d.Account.Email)
	session.Set(common.SessionKeyFailedLoginAttempts, d.PreviousFailedAttempts)
	if err := session.Save(); err != nil {
		h.internalError(c, err)
		return
	}

	c.Redirect(http.StatusFound, d.RedirectTarget)
}

func (h *handlers) getLogout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		h.internalError(c, err)
		return
	}

	h.renderer.Render(c, http.StatusOK, ViewLoggedOut, ViewData{Title: titleLoggedOut})
}

func (h *handlers) apiLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req = loginRequest{}
	}

	d, err := h.login.Login(c.Request.Context(), services.Attempt{
		Login:    req.Login,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		h.log.Error(c.Request.Context(), "api login failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": http.StatusText(http.StatusInternalServerError)})
		return
	}

	if !d.Accepted {
		c.JSON(http.StatusForbidden, gin.H{"code": d.Reason, "message": d.Message})
		return
	}

	token, err := h.tokens.Issue(d.Account)
	if err != nil {
		h.log.Error(c.Request.Context(), "token generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"code": "internal", "message": http.StatusText(http.StatusInternalServerError)})
		return
	}

	c.Header(common.AccessTokenHeaderName, token)
	c.JSON(http.StatusOK, gin.H{
		"access_token":             token,
		"username":                 d.Account.Username,
		"previous_failed_attempts": d.PreviousFailedAttempts,
	})
}

func (h *handlers) apiMe(c *gin.Context) {
	claims := c.MustGet(contextClaimsKey).(*auth.Claims)
	c.JSON(http.StatusOK, gin.H{
		"account_id": claims.AccountID,
		"username":   claims.Username,
		"expires_at": claims.ExpiresAt.Time,
	})
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handlers) internalError(c *gin.Context, err error) {
	h.log.Error(c.Request.Context(), "login route failed", "path", c.Request.URL.Path, "error", err)
	c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
}
