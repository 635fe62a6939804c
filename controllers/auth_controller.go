package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/services"
	"github.com/cppla/blogicum/utils"
)

// AuthController handles registration, sessions and the profile form.
type AuthController struct {
	svc   *services.Service
	oauth *OAuthProviders
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(svc *services.Service, oauth *OAuthProviders) *AuthController {
	return &AuthController{svc: svc, oauth: oauth}
}

// Register shows the sign-up form and creates the account on POST.
func (a *AuthController) Register(ctx *gin.Context) {
	if ctx.Request.Method != http.MethodPost {
		render(ctx, http.StatusOK, "registration/registration_form.html", gin.H{"title": "Sign up", "form": NewForm(nil, nil)})
		return
	}

	if utils.RegistrationCoolingDown(ctx.ClientIP()) {
		TooManyRequests(ctx)
		return
	}

	var in services.RegisterInput
	_ = ctx.ShouldBind(&in)
	user, err := a.svc.Register(ctx.Request.Context(), in)
	if services.FieldErrors(err) != nil {
		values := map[string]string{"username": in.Username, "email": in.Email}
		render(ctx, http.StatusOK, "registration/registration_form.html", gin.H{"title": "Sign up", "form": NewForm(values, err)})
		return
	}
	if err != nil {
		fail(ctx, err)
		return
	}
	utils.StartRegistrationCooldown(ctx.ClientIP(), time.Duration(config.Get().RegisterCooldownSec)*time.Second)
	utils.Sugar.Infow("account created", "user_id", user.ID, "username", user.Username)
	redirect(ctx, middleware.LoginPath)
}

// Login shows the login form and starts a session on valid credentials.
func (a *AuthController) Login(ctx *gin.Context) {
	next := safeNext(ctx.Query("next"))
	if ctx.Request.Method != http.MethodPost {
		a.renderLogin(ctx, http.StatusOK, next, NewForm(nil, nil))
		return
	}

	next = safeNext(ctx.PostForm("next"))
	username := ctx.PostForm("username")
	user, err := a.svc.Authenticate(ctx.Request.Context(), username, ctx.PostForm("password"))
	if errors.Is(err, services.ErrInvalidCredentials) {
		form := NewForm(map[string]string{"username": username}, &services.ValidationError{
			Fields: map[string]string{"__all__": "Please enter a correct username and password. Note that both fields may be case-sensitive."},
		})
		a.renderLogin(ctx, http.StatusOK, next, form)
		return
	}
	if err != nil {
		fail(ctx, err)
		return
	}
	if err := middleware.StartSession(ctx, user); err != nil {
		fail(ctx, err)
		return
	}
	redirect(ctx, next)
}

func (a *AuthController) renderLogin(ctx *gin.Context, status int, next string, form Form) {
	render(ctx, status, "registration/login.html", gin.H{
		"title":     "Log in",
		"form":      form,
		"next":      next,
		"providers": a.oauth.Enabled(),
	})
}

// Logout revokes the session and shows the goodbye page.
func (a *AuthController) Logout(ctx *gin.Context) {
	middleware.EndSession(ctx)
	render(ctx, http.StatusOK, "registration/logged_out.html", gin.H{"title": "Logged out"})
}

// EditProfile edits the signed-in user's own profile. No path parameter picks the target.
func (a *AuthController) EditProfile(ctx *gin.Context) {
	viewer := middleware.ViewerFrom(ctx)
	rc := ctx.Request.Context()

	if ctx.Request.Method != http.MethodPost {
		user, err := a.svc.User(rc, viewer.ID)
		if err != nil {
			fail(ctx, err)
			return
		}
		values := map[string]string{
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"username":   user.Username,
			"email":      user.Email,
			"bio":        user.Bio,
		}
		renderProfileForm(ctx, NewForm(values, nil))
		return
	}

	var in services.ProfileInput
	_ = ctx.ShouldBind(&in)
	user, err := a.svc.EditProfile(rc, viewer, in)
	if services.FieldErrors(err) != nil {
		values := map[string]string{
			"first_name": in.FirstName,
			"last_name":  in.LastName,
			"username":   in.Username,
			"email":      in.Email,
			"bio":        in.Bio,
		}
		renderProfileForm(ctx, NewForm(values, err))
		return
	}
	if err != nil {
		fail(ctx, err)
		return
	}
	redirect(ctx, profileURL(user.Username))
}

type profileField struct {
	Name  string
	Label string
	Type  string
}

var profileFields = []profileField{
	{"first_name", "First name", "text"},
	{"last_name", "Last name", "text"},
	{"username", "Username", "text"},
	{"email", "Email", "email"},
	{"bio", "About me", "text"},
}

func renderProfileForm(ctx *gin.Context, form Form) {
	render(ctx, http.StatusOK, "blog/user.html", gin.H{"title": "Edit profile", "form": form, "fields": profileFields})
}

// safeNext only allows local redirect targets.
func safeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	if u, err := url.Parse(next); err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return next
}
