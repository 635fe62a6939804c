package routes

import (
	"html/template"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/controllers"
	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/services"
	"github.com/cppla/blogicum/utils"
	"github.com/cppla/blogicum/views"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(svc *services.Service) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file; without a path it joins the app log
	accessLog := utils.Logger
	if cfg.GinPath != "" {
		accessLog = utils.NewAccessLogger(utils.NewRollingFileLogger(cfg, cfg.GinPath))
	}
	r.Use(utils.Ginzap(accessLog))
	r.Use(utils.RecoveryWithZap(accessLog.With(zap.String("component", "recovery")), controllers.ServerError))

	r.SetHTMLTemplate(template.Must(views.Templates()))

	// JSON mirror is read-only, so preflights only need GET
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))
	r.Use(middleware.CurrentUser(svc))
	r.Use(middleware.CSRF(controllers.CSRFFailure))
	r.Use(middleware.RateLimit(cfg.RateLimitPerMinute, controllers.TooManyRequests))
	// Record PV after each request
	r.Use(middleware.PageViewRecorder(svc))

	r.GET("/health", controllers.Health)

	blog := controllers.NewBlogController(svc)
	posts := controllers.NewPostController(svc)
	comments := controllers.NewCommentController(svc)
	providers := controllers.NewOAuthProviders(cfg)
	auth := controllers.NewAuthController(svc, providers)
	oauth := controllers.NewOAuthController(svc, providers)

	r.GET("/", blog.Index)
	r.GET("/category/:slug/", blog.Category)
	r.GET("/profile/:username/", blog.Profile)

	login := middleware.LoginRequired()
	r.GET("/edit_profile/", login, auth.EditProfile)
	r.POST("/edit_profile/", login, auth.EditProfile)

	r.GET("/posts/create/", login, posts.Create)
	r.POST("/posts/create/", login, posts.Create)
	post := r.Group("/posts/:id")
	post.GET("/", blog.Detail)
	post.GET("/edit/", login, posts.Edit)
	post.POST("/edit/", login, posts.Edit)
	post.GET("/delete/", login, posts.Delete)
	post.POST("/delete/", login, posts.Delete)
	post.GET("/comment/", login, comments.Add)
	post.POST("/comment/", login, comments.Add)
	post.GET("/edit_comment/:comment_id/", login, comments.Edit)
	post.POST("/edit_comment/:comment_id/", login, comments.Edit)
	post.GET("/delete_comment/:comment_id/", login, comments.Delete)
	post.POST("/delete_comment/:comment_id/", login, comments.Delete)

	accounts := r.Group("/auth")
	accounts.GET("/registration/", auth.Register)
	accounts.POST("/registration/", auth.Register)
	accounts.GET("/login/", auth.Login)
	accounts.POST("/login/", auth.Login)
	accounts.POST("/logout/", auth.Logout)
	accounts.GET("/oauth/:provider/login", oauth.Redirect)
	accounts.GET("/oauth/:provider/callback", oauth.Callback)

	pages := r.Group("/pages")
	pages.GET("/about/", controllers.About)
	pages.GET("/rules/", controllers.Rules)

	manage := controllers.NewManageController(svc)
	staff := r.Group("/manage", login, middleware.StaffRequired(controllers.NotFound))
	staff.GET("/categories/", manage.Categories)
	staff.POST("/categories/", manage.Categories)
	staff.GET("/categories/:id/", manage.EditCategory)
	staff.POST("/categories/:id/", manage.EditCategory)
	staff.POST("/categories/:id/toggle/", manage.ToggleCategory)
	staff.GET("/locations/", manage.Locations)
	staff.POST("/locations/", manage.Locations)
	staff.GET("/locations/:id/", manage.EditLocation)
	staff.POST("/locations/:id/", manage.EditLocation)
	staff.POST("/locations/:id/toggle/", manage.ToggleLocation)

	api := controllers.NewAPIController(svc)
	stats := controllers.NewStatsController(svc)
	v1 := r.Group("/api/v1")
	v1.GET("/posts", api.ListPosts)
	v1.GET("/posts/:id", api.GetPost)
	v1.GET("/posts/:id/stats", stats.GetPostStats)
	v1.GET("/categories/:slug/posts", api.CategoryPosts)
	v1.GET("/stats", stats.GetStats)

	r.NoRoute(controllers.NoRoute)

	return r
}
