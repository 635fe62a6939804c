package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/services"
)

// PostController handles creating, editing and deleting posts.
type PostController struct {
	svc *services.Service
}

// NewPostController creates a new PostController instance.
func NewPostController(svc *services.Service) *PostController {
	return &PostController{svc: svc}
}

// postValues fills the post form from a stored post.
func postValues(post *models.Post) map[string]string {
	values := map[string]string{
		"title":        post.Title,
		"text":         post.Text,
		"pub_date":     post.PubDate.UTC().Format(services.PubDateLayout),
		"is_published": strconv.FormatBool(post.IsPublished),
	}
	if post.CategoryID != nil {
		values["category"] = strconv.FormatUint(uint64(*post.CategoryID), 10)
	}
	if post.LocationID != nil {
		values["location"] = strconv.FormatUint(uint64(*post.LocationID), 10)
	}
	return values
}

// inputValues echoes a submitted post form back into the template.
func inputValues(in services.PostInput) map[string]string {
	return map[string]string{
		"title":        in.Title,
		"text":         in.Text,
		"pub_date":     in.PubDate,
		"is_published": strconv.FormatBool(in.IsPublished),
		"category":     in.Category,
		"location":     in.Location,
	}
}

// bindPost reads the submitted post form.
func bindPost(ctx *gin.Context) (services.PostInput, error) {
	var in services.PostInput
	if err := ctx.ShouldBind(&in); err != nil {
		return in, &services.ValidationError{Fields: map[string]string{"__all__": "The form could not be read."}}
	}
	return in, nil
}

// renderPostForm shows create.html in create, edit or delete mode.
func (p *PostController) renderPostForm(ctx *gin.Context, status int, mode string, post *models.Post, form Form) {
	data := gin.H{"title": "Post", "mode": mode, "form": form, "post": post}
	if mode != "delete" {
		rc := ctx.Request.Context()
		categories, err := p.svc.Categories(rc)
		if err != nil {
			fail(ctx, err)
			return
		}
		locations, err := p.svc.Locations(rc)
		if err != nil {
			fail(ctx, err)
			return
		}
		// a post keeps its current choices even when they are unpublished
		if post != nil && post.Category != nil && !lo.ContainsBy(categories, func(c models.Category) bool { return c.ID == post.Category.ID }) {
			categories = append(categories, *post.Category)
		}
		if post != nil && post.Location != nil && !lo.ContainsBy(locations, func(l models.Location) bool { return l.ID == post.Location.ID }) {
			locations = append(locations, *post.Location)
		}
		data["categories"] = categories
		data["locations"] = locations
	}
	render(ctx, status, "blog/create.html", data)
}

// Create shows the empty form on GET and stores the post on POST.
func (p *PostController) Create(ctx *gin.Context) {
	viewer := middleware.ViewerFrom(ctx)
	if ctx.Request.Method != http.MethodPost {
		values := map[string]string{
			"pub_date":     p.svc.Now().Format(services.PubDateLayout),
			"is_published": "true",
		}
		p.renderPostForm(ctx, http.StatusOK, "create", nil, NewForm(values, nil))
		return
	}

	in, err := bindPost(ctx)
	if err == nil {
		_, err = p.svc.CreatePost(ctx.Request.Context(), viewer, in)
	}
	if services.FieldErrors(err) != nil {
		p.renderPostForm(ctx, http.StatusOK, "create", nil, NewForm(inputValues(in), err))
		return
	}
	if err != nil {
		fail(ctx, err)
		return
	}
	redirect(ctx, profileURL(viewer.Username))
}

// Edit lets the author change a post. Anyone else is sent back to the post.
func (p *PostController) Edit(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		NotFound(ctx)
		return
	}
	viewer := middleware.ViewerFrom(ctx)
	rc := ctx.Request.Context()

	if ctx.Request.Method != http.MethodPost {
		post, err := p.svc.PostForEdit(rc, id, viewer)
		if errors.Is(err, services.ErrForbidden) {
			redirect(ctx, postURL(id))
			return
		}
		if err != nil {
			fail(ctx, err)
			return
		}
		p.renderPostForm(ctx, http.StatusOK, "edit", post, NewForm(postValues(post), nil))
		return
	}

	in, err := bindPost(ctx)
	var post *models.Post
	if err == nil {
		post, err = p.svc.UpdatePost(rc, id, viewer, in)
	}
	switch {
	case errors.Is(err, services.ErrForbidden):
		redirect(ctx, postURL(id))
	case services.FieldErrors(err) != nil:
		p.renderPostForm(ctx, http.StatusOK, "edit", post, NewForm(inputValues(in), err))
	case err != nil:
		fail(ctx, err)
	default:
		redirect(ctx, postURL(id))
	}
}

// Delete asks for confirmation on GET and removes the post on POST.
// Authors and staff may delete; anyone else is sent back to the post.
func (p *PostController) Delete(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		NotFound(ctx)
		return
	}
	viewer := middleware.ViewerFrom(ctx)
	rc := ctx.Request.Context()

	if ctx.Request.Method != http.MethodPost {
		post, err := p.svc.PostForDelete(rc, id, viewer)
		if errors.Is(err, services.ErrForbidden) {
			redirect(ctx, postURL(id))
			return
		}
		if err != nil {
			fail(ctx, err)
			return
		}
		p.renderPostForm(ctx, http.StatusOK, "delete", post, NewForm(postValues(post), nil))
		return
	}

	err := p.svc.DeletePost(rc, id, viewer)
	switch {
	case errors.Is(err, services.ErrForbidden):
		redirect(ctx, postURL(id))
	case err != nil:
		fail(ctx, err)
	default:
		redirect(ctx, "/")
	}
}
