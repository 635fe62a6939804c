package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/services"
)

// CommentController handles comments on posts.
type CommentController struct {
	svc *services.Service
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(svc *services.Service) *CommentController {
	return &CommentController{svc: svc}
}

// Add stores a comment and always returns to the post. Invalid comments are dropped.
func (c *CommentController) Add(ctx *gin.Context) {
	postID, ok := paramID(ctx, "id")
	if !ok {
		NotFound(ctx)
		return
	}
	if ctx.Request.Method != http.MethodPost {
		redirect(ctx, postURL(postID))
		return
	}

	var in services.CommentInput
	_ = ctx.ShouldBind(&in)
	_, err := c.svc.AddComment(ctx.Request.Context(), postID, middleware.ViewerFrom(ctx), in)
	if err != nil && services.FieldErrors(err) == nil {
		fail(ctx, err)
		return
	}
	redirect(ctx, postURL(postID))
}

// commentIDs reads the post and comment ids from the path.
func commentIDs(ctx *gin.Context) (postID, commentID uint, ok bool) {
	postID, ok = paramID(ctx, "id")
	if !ok {
		return 0, 0, false
	}
	commentID, ok = paramID(ctx, "comment_id")
	return postID, commentID, ok
}

func renderComment(ctx *gin.Context, mode string, comment *models.Comment, form Form) {
	render(ctx, http.StatusOK, "blog/comment.html", gin.H{
		"title":   "Comment",
		"mode":    mode,
		"comment": comment,
		"form":    form,
	})
}

// Edit lets the author change a comment.
func (c *CommentController) Edit(ctx *gin.Context) {
	postID, commentID, ok := commentIDs(ctx)
	if !ok {
		NotFound(ctx)
		return
	}
	viewer := middleware.ViewerFrom(ctx)
	rc := ctx.Request.Context()

	if ctx.Request.Method != http.MethodPost {
		comment, err := c.svc.CommentForEdit(rc, postID, commentID, viewer)
		if errors.Is(err, services.ErrForbidden) {
			redirect(ctx, postURL(postID))
			return
		}
		if err != nil {
			fail(ctx, err)
			return
		}
		renderComment(ctx, "edit", comment, NewForm(map[string]string{"text": comment.Text}, nil))
		return
	}

	var in services.CommentInput
	_ = ctx.ShouldBind(&in)
	comment, err := c.svc.UpdateComment(rc, postID, commentID, viewer, in)
	switch {
	case errors.Is(err, services.ErrForbidden):
		redirect(ctx, postURL(postID))
	case services.FieldErrors(err) != nil:
		renderComment(ctx, "edit", comment, NewForm(map[string]string{"text": in.Text}, err))
	case err != nil:
		fail(ctx, err)
	default:
		redirect(ctx, postURL(postID))
	}
}

// Delete asks for confirmation on GET and removes the comment on POST.
func (c *CommentController) Delete(ctx *gin.Context) {
	postID, commentID, ok := commentIDs(ctx)
	if !ok {
		NotFound(ctx)
		return
	}
	viewer := middleware.ViewerFrom(ctx)
	rc := ctx.Request.Context()

	if ctx.Request.Method != http.MethodPost {
		comment, err := c.svc.CommentForDelete(rc, postID, commentID, viewer)
		if errors.Is(err, services.ErrForbidden) {
			redirect(ctx, postURL(postID))
			return
		}
		if err != nil {
			fail(ctx, err)
			return
		}
		renderComment(ctx, "delete", comment, NewForm(nil, nil))
		return
	}

	err := c.svc.DeleteComment(rc, postID, commentID, viewer)
	switch {
	case errors.Is(err, services.ErrForbidden):
		redirect(ctx, postURL(postID))
	case err != nil:
		fail(ctx, err)
	default:
		redirect(ctx, postURL(postID))
	}
}
