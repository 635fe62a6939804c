package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/cppla/blogicum/middleware"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/services"
)

const (
	manageCategoriesPath = "/manage/categories/"
	manageLocationsPath  = "/manage/locations/"
)

// ManageController is the staff back office for categories and locations.
type ManageController struct {
	svc *services.Service
}

// NewManageController creates a new ManageController instance.
func NewManageController(svc *services.Service) *ManageController {
	return &ManageController{svc: svc}
}

func categoryValues(c *models.Category) map[string]string {
	return map[string]string{
		"title":        c.Title,
		"description":  c.Description,
		"slug":         c.Slug,
		"is_published": strconv.FormatBool(c.IsPublished),
	}
}

func categoryInputValues(in services.CategoryInput) map[string]string {
	return categoryValues(&models.Category{Title: in.Title, Description: in.Description, Slug: in.Slug, IsPublished: in.IsPublished})
}

func locationValues(l *models.Location) map[string]string {
	return map[string]string{"name": l.Name, "is_published": strconv.FormatBool(l.IsPublished)}
}

func (m *ManageController) renderCategories(ctx *gin.Context, form Form) {
	categories, err := m.svc.AllCategories(ctx.Request.Context(), middleware.ViewerFrom(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	render(ctx, http.StatusOK, "manage/categories.html", gin.H{"title": "Categories", "categories": categories, "form": form})
}

// Categories lists every category with a form for a new one.
func (m *ManageController) Categories(ctx *gin.Context) {
	if ctx.Request.Method != http.MethodPost {
		m.renderCategories(ctx, NewForm(map[string]string{"is_published": "true"}, nil))
		return
	}
	var in services.CategoryInput
	_ = ctx.ShouldBind(&in)
	_, err := m.svc.CreateCategory(ctx.Request.Context(), middleware.ViewerFrom(ctx), in)
	if services.FieldErrors(err) != nil {
		m.renderCategories(ctx, NewForm(categoryInputValues(in), err))
		return
	}
	if err != nil {
		fail(ctx, err)
		return
	}
	redirect(ctx, manageCategoriesPath)
}

// EditCategory shows and saves the form of one category.
func (m *ManageController) EditCategory(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		NotFound(ctx)
		return
	}
	viewer := middleware.ViewerFrom(ctx)
	rc := ctx.Request.Context()

	if ctx.Request.Method != http.MethodPost {
		category, err := m.svc.Category(rc, viewer, id)
		if err != nil {
			fail(ctx, err)
			return
		}
		render(ctx, http.StatusOK, "manage/category.html", gin.H{"title": "Edit category", "category": category, "form": NewForm(categoryValues(category), nil)})
		return
	}

	var in services.CategoryInput
	_ = ctx.ShouldBind(&in)
	category, err := m.svc.UpdateCategory(rc, viewer, id, in)
	if services.FieldErrors(err) != nil {
		render(ctx, http.StatusOK, "manage/category.html", gin.H{"title": "Edit category", "category": category, "form": NewForm(categoryInputValues(in), err)})
		return
	}
	if err != nil {
		fail(ctx, err)
		return
	}
	redirect(ctx, manageCategoriesPath)
}

// ToggleCategory publishes or hides a category.
func (m *ManageController) ToggleCategory(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		NotFound(ctx)
		return
	}
	if _, err := m.svc.ToggleCategory(ctx.Request.Context(), middleware.ViewerFrom(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	redirect(ctx, manageCategoriesPath)
}

func (m *ManageController) renderLocations(ctx *gin.Context, form Form) {
	locations, err := m.svc.AllLocations(ctx.Request.Context(), middleware.ViewerFrom(ctx))
	if err != nil {
		fail(ctx, err)
		return
	}
	render(ctx, http.StatusOK, "manage/locations.html", gin.H{"title": "Locations", "locations": locations, "form": form})
}

// Locations lists every location with a form for a new one.
func (m *ManageController) Locations(ctx *gin.Context) {
	if ctx.Request.Method != http.MethodPost {
		m.renderLocations(ctx, NewForm(map[string]string{"is_published": "true"}, nil))
		return
	}
	var in services.LocationInput
	_ = ctx.ShouldBind(&in)
	_, err := m.svc.CreateLocation(ctx.Request.Context(), middleware.ViewerFrom(ctx), in)
	if services.FieldErrors(err) != nil {
		m.renderLocations(ctx, NewForm(locationValues(&models.Location{Name: in.Name, IsPublished: in.IsPublished}), err))
		return
	}
	if err != nil {
		fail(ctx, err)
		return
	}
	redirect(ctx, manageLocationsPath)
}

// EditLocation shows and saves the form of one location.
func (m *ManageController) EditLocation(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		NotFound(ctx)
		return
	}
	viewer := middleware.ViewerFrom(ctx)
	rc := ctx.Request.Context()

	if ctx.Request.Method != http.MethodPost {
		location, err := m.svc.Location(rc, viewer, id)
		if err != nil {
			fail(ctx, err)
			return
		}
		render(ctx, http.StatusOK, "manage/location.html", gin.H{"title": "Edit location", "location": location, "form": NewForm(locationValues(location), nil)})
		return
	}

	var in services.LocationInput
	_ = ctx.ShouldBind(&in)
	location, err := m.svc.UpdateLocation(rc, viewer, id, in)
	if services.FieldErrors(err) != nil {
		values := locationValues(&models.Location{Name: in.Name, IsPublished: in.IsPublished})
		render(ctx, http.StatusOK, "manage/location.html", gin.H{"title": "Edit location", "location": location, "form": NewForm(values, err)})
		return
	}
	if err != nil {
		fail(ctx, err)
		return
	}
	redirect(ctx, manageLocationsPath)
}

// ToggleLocation publishes or hides a location.
func (m *ManageController) ToggleLocation(ctx *gin.Context) {
	id, ok := paramID(ctx, "id")
	if !ok {
		NotFound(ctx)
		return
	}
	if _, err := m.svc.ToggleLocation(ctx.Request.Context(), middleware.ViewerFrom(ctx), id); err != nil {
		fail(ctx, err)
		return
	}
	redirect(ctx, manageLocationsPath)
}
