package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/services"
	"github.com/cppla/blogicum/utils"
)

// PageViewRecorder counts successful GET page views per day and path.
func PageViewRecorder(svc *services.Service) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Next()

		if ctx.Request.Method != http.MethodGet {
			return
		}
		if status := ctx.Writer.Status(); status < 200 || status >= 300 {
			return
		}

		path := ctx.Request.URL.Path
		// Ignore non-content endpoints to avoid skewing PV
		if path == "/health" || isAPIPath(path) || strings.HasPrefix(path, "/static/") || strings.HasPrefix(path, "/auth/") {
			return
		}

		if err := svc.RecordPageView(ctx.Request.Context(), path); err != nil {
			utils.Sugar.Warnf("page view not recorded path=%s err=%v", path, err)
		}
	}
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/")
}
