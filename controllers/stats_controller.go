package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/services"
	"github.com/cppla/blogicum/utils"
)

// StatsController provides site statistics such as counts and today's page views.
type StatsController struct {
	svc *services.Service
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(svc *services.Service) *StatsController {
	return &StatsController{svc: svc}
}

// GetStats returns aggregate statistics for the site.
func (s *StatsController) GetStats(ctx *gin.Context) {
	key := services.CacheKeyPrefix + "stats"
	if b, ok := utils.CacheGetBytes(key); ok {
		utils.SuccessRaw(ctx, b)
		return
	}

	stats, err := s.svc.SiteStats(ctx.Request.Context())
	if err != nil {
		_ = ctx.Error(err)
		utils.Error(ctx, http.StatusInternalServerError, 50001, "failed to load stats")
		return
	}
	body := utils.JSONResponse{Message: "success", Data: stats}
	utils.CacheSetJSON(key, body, time.Minute)
	utils.Success(ctx, stats)
}

// GetPostStats returns page views and comment count for a visible post.
func (s *StatsController) GetPostStats(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
		return
	}
	rc := ctx.Request.Context()
	if _, err := s.svc.GetPost(rc, id, services.Anonymous); err != nil {
		apiFail(ctx, err)
		return
	}
	views, err := s.svc.PostViews(rc, id)
	if err != nil {
		apiFail(ctx, err)
		return
	}
	comments, err := s.svc.Comments(rc, id)
	if err != nil {
		apiFail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{
		"pv":             views,
		"comments_count": len(comments),
	})
}
