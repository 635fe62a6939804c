package services

import (
	"context"
	"fmt"

	"github.com/cppla/blogicum/models"
)

// Categories and locations are curated by staff only. Every operation here
// answers ErrForbidden for anyone else.

func requireStaff(viewer Viewer) error {
	if !viewer.IsAuthenticated() || !viewer.IsStaff {
		return ErrForbidden
	}
	return nil
}

// AllCategories lists every category, published or not.
func (s *Service) AllCategories(ctx context.Context, viewer Viewer) ([]models.Category, error) {
	if err := requireStaff(viewer); err != nil {
		return nil, err
	}
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Order("title").Order("id").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list all categories: %w", err)
	}
	return categories, nil
}

// Category loads one category for its edit form.
func (s *Service) Category(ctx context.Context, viewer Viewer, id uint) (*models.Category, error) {
	if err := requireStaff(viewer); err != nil {
		return nil, err
	}
	return FindOrFail[models.Category](ctx, s.db, id)
}

func (s *Service) validateCategory(ctx context.Context, in *CategoryInput, id uint) error {
	trimAll(&in.Title, &in.Description, &in.Slug)
	verr := validateStruct(*in)
	if in.Slug != "" {
		var n int64
		if err := s.db.WithContext(ctx).Model(&models.Category{}).
			Where("slug = ? AND id <> ?", in.Slug, id).
			Count(&n).Error; err != nil {
			return fmt.Errorf("check slug: %w", err)
		}
		if n > 0 {
			verr.Add("slug", "Category with this slug already exists.")
		}
	}
	return verr.OrNil()
}

// CreateCategory stores a new category.
func (s *Service) CreateCategory(ctx context.Context, viewer Viewer, in CategoryInput) (*models.Category, error) {
	if err := requireStaff(viewer); err != nil {
		return nil, err
	}
	if err := s.validateCategory(ctx, &in, 0); err != nil {
		return nil, err
	}
	category := &models.Category{
		Title:       in.Title,
		Description: in.Description,
		Slug:        in.Slug,
		IsPublished: in.IsPublished,
	}
	if err := s.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.invalidate()
	return category, nil
}

// UpdateCategory replaces the fields of category id. On validation failure the stored row is returned.
func (s *Service) UpdateCategory(ctx context.Context, viewer Viewer, id uint, in CategoryInput) (*models.Category, error) {
	category, err := s.Category(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if err := s.validateCategory(ctx, &in, id); err != nil {
		return category, err
	}
	if err := s.db.WithContext(ctx).Model(category).Updates(map[string]interface{}{
		"title":        in.Title,
		"description":  in.Description,
		"slug":         in.Slug,
		"is_published": in.IsPublished,
	}).Error; err != nil {
		return category, fmt.Errorf("update category %d: %w", id, err)
	}
	s.invalidate()
	category.Title, category.Description, category.Slug, category.IsPublished = in.Title, in.Description, in.Slug, in.IsPublished
	return category, nil
}

// ToggleCategory flips the publication flag of category id.
func (s *Service) ToggleCategory(ctx context.Context, viewer Viewer, id uint) (*models.Category, error) {
	category, err := s.Category(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	category.IsPublished = !category.IsPublished
	if err := s.db.WithContext(ctx).Model(category).Update("is_published", category.IsPublished).Error; err != nil {
		return nil, fmt.Errorf("toggle category %d: %w", id, err)
	}
	s.invalidate()
	return category, nil
}

// AllLocations lists every location, published or not.
func (s *Service) AllLocations(ctx context.Context, viewer Viewer) ([]models.Location, error) {
	if err := requireStaff(viewer); err != nil {
		return nil, err
	}
	locations := []models.Location{}
	if err := s.db.WithContext(ctx).Order("name").Order("id").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("list all locations: %w", err)
	}
	return locations, nil
}

// Location loads one location for its edit form.
func (s *Service) Location(ctx context.Context, viewer Viewer, id uint) (*models.Location, error) {
	if err := requireStaff(viewer); err != nil {
		return nil, err
	}
	return FindOrFail[models.Location](ctx, s.db, id)
}

// CreateLocation stores a new location.
func (s *Service) CreateLocation(ctx context.Context, viewer Viewer, in LocationInput) (*models.Location, error) {
	if err := requireStaff(viewer); err != nil {
		return nil, err
	}
	trimAll(&in.Name)
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	location := &models.Location{Name: in.Name, IsPublished: in.IsPublished}
	if err := s.db.WithContext(ctx).Create(location).Error; err != nil {
		return nil, fmt.Errorf("create location: %w", err)
	}
	s.invalidate()
	return location, nil
}

// UpdateLocation replaces the fields of location id. On validation failure the stored row is returned.
func (s *Service) UpdateLocation(ctx context.Context, viewer Viewer, id uint, in LocationInput) (*models.Location, error) {
	location, err := s.Location(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	trimAll(&in.Name)
	if err := validateStruct(in).OrNil(); err != nil {
		return location, err
	}
	if err := s.db.WithContext(ctx).Model(location).Updates(map[string]interface{}{
		"name":         in.Name,
		"is_published": in.IsPublished,
	}).Error; err != nil {
		return location, fmt.Errorf("update location %d: %w", id, err)
	}
	s.invalidate()
	location.Name, location.IsPublished = in.Name, in.IsPublished
	return location, nil
}

// ToggleLocation flips the publication flag of location id.
func (s *Service) ToggleLocation(ctx context.Context, viewer Viewer, id uint) (*models.Location, error) {
	location, err := s.Location(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	location.IsPublished = !location.IsPublished
	if err := s.db.WithContext(ctx).Model(location).Update("is_published", location.IsPublished).Error; err != nil {
		return nil, fmt.Errorf("toggle location %d: %w", id, err)
	}
	s.invalidate()
	return location, nil
}
