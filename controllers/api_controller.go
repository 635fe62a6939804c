package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/services"
	"github.com/cppla/blogicum/utils"
)

// apiCacheTTL bounds how long a scheduled post may stay missing from cached listings.
const apiCacheTTL = time.Minute

// APIController is a read-only JSON mirror of the public listings.
// It always answers as an anonymous visitor so responses can be shared through the cache.
type APIController struct {
	svc *services.Service
}

// NewAPIController creates a new APIController instance.
func NewAPIController(svc *services.Service) *APIController {
	return &APIController{svc: svc}
}

// PostSummary is a post as listed by the API.
type PostSummary struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Excerpt      string    `json:"excerpt"`
	PubDate      time.Time `json:"pub_date"`
	Author       string    `json:"author"`
	Category     string    `json:"category,omitempty"`
	Location     string    `json:"location,omitempty"`
	CommentCount int64     `json:"comment_count"`
}

// CommentView is a comment as shown by the API.
type CommentView struct {
	ID        uint      `json:"id"`
	Author    string    `json:"author"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

func summarize(p models.Post, _ int) PostSummary {
	s := PostSummary{
		ID:           p.ID,
		Title:        p.Title,
		Excerpt:      utils.Truncate(utils.StripTags(p.Text), 30),
		PubDate:      p.PubDate,
		Author:       p.Author.Username,
		CommentCount: p.CommentCount,
	}
	if p.Category != nil {
		s.Category = p.Category.Slug
	}
	if p.Location != nil && p.Location.IsPublished {
		s.Location = p.Location.Name
	}
	return s
}

func pageBody(page services.Page[models.Post]) utils.Page {
	return utils.Page{
		Items:      lo.Map(page.Items, summarize),
		Page:       page.Number,
		NumPages:   page.NumPages,
		TotalCount: page.Total,
	}
}

// cached serves key from the cache or computes, stores and serves it.
func cached(ctx *gin.Context, key string, load func() (interface{}, error)) {
	if b, ok := utils.CacheGetBytes(key); ok {
		utils.SuccessRaw(ctx, b)
		return
	}
	data, err := load()
	if err != nil {
		apiFail(ctx, err)
		return
	}
	utils.CacheSetJSON(key, utils.JSONResponse{Message: "success", Data: data}, apiCacheTTL)
	utils.Success(ctx, data)
}

// ListPosts returns a page of public posts.
func (a *APIController) ListPosts(ctx *gin.Context) {
	page := services.ParsePage(ctx.Query("page"))
	key := fmt.Sprintf("%sposts:page:%d", services.CacheKeyPrefix, page)
	cached(ctx, key, func() (interface{}, error) {
		posts, err := a.svc.ListIndex(ctx.Request.Context(), page)
		if err != nil {
			return nil, err
		}
		return pageBody(posts), nil
	})
}

// CategoryPosts returns a page of public posts in a published category.
func (a *APIController) CategoryPosts(ctx *gin.Context) {
	slug := ctx.Param("slug")
	page := services.ParsePage(ctx.Query("page"))
	key := fmt.Sprintf("%scategory:%s:page:%d", services.CacheKeyPrefix, slug, page)
	cached(ctx, key, func() (interface{}, error) {
		category, posts, err := a.svc.ListCategory(ctx.Request.Context(), slug, page)
		if err != nil {
			return nil, err
		}
		return gin.H{
			"category": gin.H{"slug": category.Slug, "title": category.Title, "description": category.Description},
			"posts":    pageBody(posts),
		}, nil
	})
}

// GetPost returns a public post with its comments.
func (a *APIController) GetPost(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
		return
	}
	key := fmt.Sprintf("%spost:%d", services.CacheKeyPrefix, id)
	cached(ctx, key, func() (interface{}, error) {
		rc := ctx.Request.Context()
		post, err := a.svc.GetPost(rc, id, services.Anonymous)
		if err != nil {
			return nil, err
		}
		comments, err := a.svc.Comments(rc, post.ID)
		if err != nil {
			return nil, err
		}
		summary := summarize(*post, 0)
		summary.CommentCount = int64(len(comments))
		return gin.H{
			"post": summary,
			"text": post.Text,
			"comments": lo.Map(comments, func(c models.Comment, _ int) CommentView {
				return CommentView{ID: c.ID, Author: c.Author.Username, Text: c.Text, CreatedAt: c.CreatedAt}
			}),
		}, nil
	})
}

// apiFail maps service errors onto the JSON envelope.
func apiFail(ctx *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		utils.Error(ctx, http.StatusNotFound, 40401, "not found")
		return
	}
	_ = ctx.Error(err)
	utils.Error(ctx, http.StatusInternalServerError, 50001, "internal error")
}
