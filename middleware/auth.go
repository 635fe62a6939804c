package middleware

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/services"
	"github.com/cppla/blogicum/utils"
)

const (
	// SessionCookie holds the signed session token.
	SessionCookie = "blogicum_session"
	// LoginPath is where anonymous visitors are sent before mutating anything.
	LoginPath = "/auth/login/"

	contextViewerKey = "viewer"
	contextUserKey   = "user"
)

// CurrentUser resolves the session cookie into a viewer. Invalid or revoked
// tokens are dropped and the request continues anonymously.
func CurrentUser(svc *services.Service) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set(contextViewerKey, services.Anonymous)

		token, err := ctx.Cookie(SessionCookie)
		if err != nil || token == "" {
			ctx.Next()
			return
		}

		claims, err := utils.ParseToken(token)
		if err != nil {
			ClearSession(ctx)
			ctx.Next()
			return
		}

		user, err := svc.User(ctx.Request.Context(), claims.UserID)
		if err != nil {
			ClearSession(ctx)
			ctx.Next()
			return
		}

		ctx.Set(contextUserKey, user)
		ctx.Set(contextViewerKey, services.ViewerOf(user, config.Get().IsAdminUsername(user.Username)))
		ctx.Next()
	}
}

// LoginRequired redirects anonymous visitors to the login page, remembering where they were going.
func LoginRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ViewerFrom(ctx).IsAuthenticated() {
			ctx.Next()
			return
		}
		target := LoginPath + "?next=" + url.QueryEscape(ctx.Request.URL.RequestURI())
		ctx.Redirect(http.StatusFound, target)
		ctx.Abort()
	}
}

// StaffRequired lets only staff through; everyone else is handed to onDenied.
// Mount it after LoginRequired.
func StaffRequired(onDenied gin.HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ViewerFrom(ctx).IsStaff {
			ctx.Next()
			return
		}
		onDenied(ctx)
		ctx.Abort()
	}
}

// ViewerFrom returns the viewer resolved by CurrentUser, or Anonymous.
func ViewerFrom(ctx *gin.Context) services.Viewer {
	if v, ok := ctx.Get(contextViewerKey); ok {
		if viewer, ok := v.(services.Viewer); ok {
			return viewer
		}
	}
	return services.Anonymous
}

// UserFrom returns the signed-in user record, if any.
func UserFrom(ctx *gin.Context) *models.User {
	if v, ok := ctx.Get(contextUserKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// StartSession issues a session cookie for user.
func StartSession(ctx *gin.Context, user *models.User) error {
	token, expiresAt, err := utils.GenerateToken(user.ID, user.Username)
	if err != nil {
		return err
	}
	maxAge := int(time.Until(expiresAt).Seconds())
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookie, token, maxAge, "/", "", config.Get().SecureCookies, true)
	return nil
}

// EndSession revokes the current token and clears the cookie.
func EndSession(ctx *gin.Context) {
	if token, err := ctx.Cookie(SessionCookie); err == nil && token != "" {
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			utils.BlacklistToken(token, claims.ExpiresAt.Time)
		}
	}
	ClearSession(ctx)
	ctx.Set(contextViewerKey, services.Anonymous)
	ctx.Set(contextUserKey, (*models.User)(nil))
}

// ClearSession removes the session cookie.
func ClearSession(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(SessionCookie, "", -1, "/", "", config.Get().SecureCookies, true)
}
