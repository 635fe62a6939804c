package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/services"
	"github.com/cppla/blogicum/utils"
)

// BlogController serves the public listings and the post page.
type BlogController struct {
	svc *services.Service
}

// NewBlogController creates a new BlogController instance.
func NewBlogController(svc *services.Service) *BlogController {
	return &BlogController{svc: svc}
}

// Index lists the latest public posts.
func (b *BlogController) Index(ctx *gin.Context) {
	page, err := b.svc.ListIndex(ctx.Request.Context(), services.ParsePage(ctx.Query("page")))
	if err != nil {
		fail(ctx, err)
		return
	}
	render(ctx, http.StatusOK, "blog/index.html", gin.H{"page_obj": page})
}

// Category lists the public posts of a published category.
func (b *BlogController) Category(ctx *gin.Context) {
	category, page, err := b.svc.ListCategory(ctx.Request.Context(), ctx.Param("slug"), services.ParsePage(ctx.Query("page")))
	if err != nil {
		fail(ctx, err)
		return
	}
	render(ctx, http.StatusOK, "blog/category.html", gin.H{
		"title":    category.Title,
		"category": category,
		"page_obj": page,
	})
}

// Profile lists an author's posts; authors looking at their own page see drafts too.
func (b *BlogController) Profile(ctx *gin.Context) {
	viewer := middleware.ViewerFrom(ctx)
	profile, page, err := b.svc.ListProfile(ctx.Request.Context(), ctx.Param("username"), viewer, services.ParsePage(ctx.Query("page")))
	if err != nil {
		fail(ctx, err)
		return
	}
	render(ctx, http.StatusOK, "blog/profile.html", gin.H{
		"title":    profile.Username,
		"profile":  profile,
		"page_obj": page,
	})
}

// Detail shows a post with its comments, or 404 when the viewer may not see it.
func (b *BlogController) Detail(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		NotFound(ctx)
		return
	}
	rc := ctx.Request.Context()
	post, err := b.svc.GetPost(rc, id, middleware.ViewerFrom(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	comments, err := b.svc.Comments(rc, post.ID)
	if err != nil {
		fail(ctx, err)
		return
	}
	views, err := b.svc.PostViews(rc, post.ID)
	if err != nil {
		utils.Sugar.Warnf("post views unavailable post=%d err=%v", post.ID, err)
	}
	render(ctx, http.StatusOK, "blog/detail.html", gin.H{
		"title":    post.Title,
		"post":     post,
		"comments": comments,
		"views":    views,
	})
}
