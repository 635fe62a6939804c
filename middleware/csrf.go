package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cppla/blogicum/config"
)

const (
	// CSRFCookie carries the per-browser token.
	CSRFCookie = "csrftoken"
	// CSRFField is the hidden form field echoing the token.
	CSRFField = "csrfmiddlewaretoken"
	// CSRFHeader lets scripts echo the token instead of the form field.
	CSRFHeader = "X-CSRFToken"

	contextCSRFKey = "csrf_token"
	csrfMaxAge     = 365 * 24 * 60 * 60
)

// CSRF guards unsafe methods with a double-submit token. Every request gets a
// token in its context for templates; POSTs must echo the cookie value back.
func CSRF(onFailure gin.HandlerFunc) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token, err := ctx.Cookie(CSRFCookie)
		if err != nil || !validCSRFToken(token) {
			token = ""
		}

		if !isSafeMethod(ctx.Request.Method) {
			submitted := ctx.GetHeader(CSRFHeader)
			if submitted == "" {
				submitted = ctx.PostForm(CSRFField)
			}
			if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(submitted)) != 1 {
				ctx.Status(http.StatusForbidden)
				onFailure(ctx)
				ctx.Abort()
				return
			}
		}

		if token == "" {
			token = strings.ReplaceAll(uuid.NewString(), "-", "")
			ctx.SetSameSite(http.SameSiteLaxMode)
			ctx.SetCookie(CSRFCookie, token, csrfMaxAge, "/", "", config.Get().SecureCookies, false)
		}
		ctx.Set(contextCSRFKey, token)
		ctx.Next()
	}
}

// CSRFToken returns the token for embedding in forms.
func CSRFToken(ctx *gin.Context) string {
	return ctx.GetString(contextCSRFKey)
}

func validCSRFToken(token string) bool {
	if len(token) != 32 {
		return false
	}
	for _, r := range token {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return false
		}
	}
	return true
}

func isSafeMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
