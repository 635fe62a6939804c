package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/google"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/services"
	"github.com/cppla/blogicum/utils"
)

// identityFetcher asks a provider who owns token.
type identityFetcher func(ctx context.Context, client *http.Client) (services.OAuthIdentity, error)

type oauthProvider struct {
	config *oauth2.Config
	fetch  identityFetcher
}

// OAuthProviders holds the configured third-party login providers.
type OAuthProviders struct {
	providers map[string]oauthProvider
	order     []string
}

// NewOAuthProviders configures every provider that has credentials.
func NewOAuthProviders(cfg config.AppConfig) *OAuthProviders {
	p := &OAuthProviders{providers: map[string]oauthProvider{}}
	if cfg.GitHubClientID != "" && cfg.GitHubClientSecret != "" {
		p.add("github", &oauth2.Config{
			ClientID:     cfg.GitHubClientID,
			ClientSecret: cfg.GitHubClientSecret,
			RedirectURL:  fmt.Sprintf("%s/auth/oauth/github/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		}, fetchGitHubUser)
	}
	if cfg.GoogleClientID != "" && cfg.GoogleClientSecret != "" {
		p.add("google", &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  fmt.Sprintf("%s/auth/oauth/google/callback", cfg.OAuthRedirectBase),
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint:     google.Endpoint,
		}, fetchGoogleUser)
	}
	return p
}

func (p *OAuthProviders) add(name string, cfg *oauth2.Config, fetch identityFetcher) {
	p.providers[name] = oauthProvider{config: cfg, fetch: fetch}
	p.order = append(p.order, name)
}

// Enabled lists configured provider names for the login page.
func (p *OAuthProviders) Enabled() []string {
	if p == nil {
		return nil
	}
	return p.order
}

func (p *OAuthProviders) get(name string) (oauthProvider, bool) {
	if p == nil {
		return oauthProvider{}, false
	}
	provider, ok := p.providers[strings.ToLower(name)]
	return provider, ok
}

// OAuthController runs the authorization code flow for third-party login.
type OAuthController struct {
	svc       *services.Service
	providers *OAuthProviders
}

// NewOAuthController creates a new OAuthController instance.
func NewOAuthController(svc *services.Service, providers *OAuthProviders) *OAuthController {
	return &OAuthController{svc: svc, providers: providers}
}

// Redirect sends the browser to the provider's consent page.
func (o *OAuthController) Redirect(ctx *gin.Context) {
	provider, ok := o.providers.get(ctx.Param("provider"))
	if !ok {
		NotFound(ctx)
		return
	}
	state := uuid.NewString()
	utils.SaveState(state, 10*time.Minute)
	redirect(ctx, provider.config.AuthCodeURL(state, oauth2.AccessTypeOnline))
}

// Callback exchanges the code, links or creates the local user and signs them in.
func (o *OAuthController) Callback(ctx *gin.Context) {
	name := strings.ToLower(ctx.Param("provider"))
	provider, ok := o.providers.get(name)
	if !ok {
		NotFound(ctx)
		return
	}

	code, state := ctx.Query("code"), ctx.Query("state")
	if code == "" || state == "" || !utils.ConsumeState(state) {
		o.loginFailed(ctx, "The sign-in request expired. Please try again.")
		return
	}

	rc := ctx.Request.Context()
	token, err := provider.config.Exchange(rc, code)
	if err != nil {
		utils.Sugar.Warnf("oauth exchange failed provider=%s err=%v", name, err)
		o.loginFailed(ctx, "Could not complete sign-in with the provider.")
		return
	}

	identity, err := provider.fetch(rc, provider.config.Client(rc, token))
	if err != nil {
		utils.Sugar.Warnf("oauth profile fetch failed provider=%s err=%v", name, err)
		o.loginFailed(ctx, "Could not read your profile from the provider.")
		return
	}
	identity.Provider = name

	user, err := o.svc.FindOrCreateOAuthUser(rc, identity)
	if err != nil {
		fail(ctx, err)
		return
	}
	if err := middleware.StartSession(ctx, user); err != nil {
		fail(ctx, err)
		return
	}
	redirect(ctx, "/")
}

func (o *OAuthController) loginFailed(ctx *gin.Context, msg string) {
	form := NewForm(nil, &services.ValidationError{Fields: map[string]string{"__all__": msg}})
	render(ctx, http.StatusBadRequest, "registration/login.html", gin.H{
		"title":     "Log in",
		"form":      form,
		"next":      "/",
		"providers": o.providers.Enabled(),
	})
}

func getJSON(ctx context.Context, client *http.Client, endpoint string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: %s", endpoint, resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func fetchGitHubUser(ctx context.Context, client *http.Client) (services.OAuthIdentity, error) {
	var payload struct {
		ID    int64  `json:"id"`
		Login string `json:"login"`
		Name  string `json:"name"`
		Email string `json:"email"`
	}
	if err := getJSON(ctx, client, "https://api.github.com/user", &payload); err != nil {
		return services.OAuthIdentity{}, err
	}

	email := payload.Email
	if email == "" {
		var emails []struct {
			Email    string `json:"email"`
			Primary  bool   `json:"primary"`
			Verified bool   `json:"verified"`
		}
		if err := getJSON(ctx, client, "https://api.github.com/user/emails", &emails); err == nil {
			for _, e := range emails {
				if e.Primary && e.Verified {
					email = e.Email
					break
				}
			}
		}
	}

	return services.OAuthIdentity{
		ID:          fmt.Sprintf("%d", payload.ID),
		Username:    payload.Login,
		DisplayName: payload.Name,
		Email:       email,
	}, nil
}

func fetchGoogleUser(ctx context.Context, client *http.Client) (services.OAuthIdentity, error) {
	var payload struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := getJSON(ctx, client, "https://www.googleapis.com/oauth2/v2/userinfo", &payload); err != nil {
		return services.OAuthIdentity{}, err
	}
	return services.OAuthIdentity{
		ID:          payload.ID,
		Username:    payload.Email,
		DisplayName: payload.Name,
		Email:       payload.Email,
	}, nil
}
