package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/services"
	"github.com/cppla/blogicum/utils"
)

// Form carries submitted values and field errors back into a template.
type Form struct {
	Values map[string]string
	Errors map[string]string
}

// NewForm builds a form from values and, optionally, the error of a failed submission.
func NewForm(values map[string]string, err error) Form {
	f := Form{Values: values, Errors: services.FieldErrors(err)}
	if f.Values == nil {
		f.Values = map[string]string{}
	}
	if f.Errors == nil {
		f.Errors = map[string]string{}
	}
	return f
}

func (f Form) Value(name string) string { return f.Values[name] }
func (f Form) Error(name string) string { return f.Errors[name] }

// Checked reports whether a checkbox value is on.
func (f Form) Checked(name string) bool {
	v, err := strconv.ParseBool(f.Values[name])
	return err == nil && v
}

// Selected reports whether a select box currently holds id.
func (f Form) Selected(name string, id uint) bool {
	return f.Values[name] == strconv.FormatUint(uint64(id), 10)
}

// render executes a page template with the request's viewer and CSRF token attached.
func render(ctx *gin.Context, status int, name string, data gin.H) {
	if data == nil {
		data = gin.H{}
	}
	data["viewer"] = middleware.ViewerFrom(ctx)
	data["user"] = middleware.UserFrom(ctx)
	data["csrf_token"] = middleware.CSRFToken(ctx)
	ctx.HTML(status, name, data)
}

// NotFound renders the 404 page.
func NotFound(ctx *gin.Context) {
	render(ctx, http.StatusNotFound, "pages/404.html", gin.H{"title": "Page not found"})
}

// ServerError renders the 500 page.
func ServerError(ctx *gin.Context) {
	render(ctx, http.StatusInternalServerError, "pages/500.html", gin.H{"title": "Server error"})
}

// CSRFFailure renders the 403 page shown for rejected form submissions.
func CSRFFailure(ctx *gin.Context) {
	if isAPI(ctx) {
		utils.Error(ctx, http.StatusForbidden, 40301, "csrf verification failed")
		return
	}
	render(ctx, http.StatusForbidden, "pages/403csrf.html", gin.H{"title": "Forbidden"})
}

// TooManyRequests answers rate limited requests.
func TooManyRequests(ctx *gin.Context) {
	if isAPI(ctx) {
		utils.Error(ctx, http.StatusTooManyRequests, 42901, "rate limit exceeded")
		return
	}
	render(ctx, http.StatusTooManyRequests, "pages/429.html", gin.H{"title": "Too many requests"})
}

// NoRoute answers unknown paths, in JSON for the API and as the 404 page otherwise.
func NoRoute(ctx *gin.Context) {
	if isAPI(ctx) {
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
		return
	}
	NotFound(ctx)
}

// fail maps a service error onto the error pages.
func fail(ctx *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) || errors.Is(err, services.ErrForbidden) {
		NotFound(ctx)
		return
	}
	_ = ctx.Error(err)
	ServerError(ctx)
}

// paramID reads a positive numeric path parameter.
func paramID(ctx *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

func isAPI(ctx *gin.Context) bool {
	path := ctx.Request.URL.Path
	return len(path) >= 5 && path[:5] == "/api/"
}

func redirect(ctx *gin.Context, location string) {
	ctx.Redirect(http.StatusFound, location)
}

func postURL(id uint) string {
	return "/posts/" + strconv.FormatUint(uint64(id), 10) + "/"
}

func profileURL(username string) string {
	return "/profile/" + url.PathEscape(username) + "/"
}
