package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/cppla/blogicum/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// applyPostInput validates in and copies it onto post.
func (s *Service) applyPostInput(ctx context.Context, in PostInput, post *models.Post) error {
	trimAll(&in.Title, &in.Text, &in.PubDate)
	verr := validateStruct(in)

	pubDate, ok := parsePubDate(in.PubDate)
	if in.PubDate != "" && !ok {
		verr.Add("pub_date", "Enter a valid date/time.")
	}

	categoryID, ok := parseOptionalID(in.Category)
	if !ok {
		verr.Add("category", "Select a valid choice.")
	} else if categoryID != nil {
		if _, err := FindOrFail[models.Category](ctx, s.db, *categoryID); errors.Is(err, ErrNotFound) {
			verr.Add("category", "Select a valid choice. That choice is not one of the available choices.")
		} else if err != nil {
			return err
		}
	}

	locationID, ok := parseOptionalID(in.Location)
	if !ok {
		verr.Add("location", "Select a valid choice.")
	} else if locationID != nil {
		if _, err := FindOrFail[models.Location](ctx, s.db, *locationID); errors.Is(err, ErrNotFound) {
			verr.Add("location", "Select a valid choice. That choice is not one of the available choices.")
		} else if err != nil {
			return err
		}
	}

	if err := verr.OrNil(); err != nil {
		return err
	}
	post.Title = in.Title
	post.Text = in.Text
	post.PubDate = pubDate
	post.IsPublished = in.IsPublished
	post.CategoryID = categoryID
	post.LocationID = locationID
	return nil
}

// CreatePost stores a new post authored by viewer, whatever the form says about authorship.
func (s *Service) CreatePost(ctx context.Context, viewer Viewer, in PostInput) (*models.Post, error) {
	if !viewer.IsAuthenticated() {
		return nil, ErrForbidden
	}
	post := &models.Post{AuthorID: viewer.ID}
	if err := s.applyPostInput(ctx, in, post); err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.invalidate()
	return post, nil
}

// postFor loads a post and checks that viewer may perform action on it.
func (s *Service) postFor(ctx context.Context, id uint, viewer Viewer, action Action) (*models.Post, error) {
	post, err := FindOrFail[models.Post](ctx, s.db.Preload("Author").Preload("Category").Preload("Location"), id)
	if err != nil {
		return nil, err
	}
	if !CanMutate(post.AuthorID, action, viewer) {
		return post, ErrForbidden
	}
	return post, nil
}

// PostForEdit loads a post for its edit form.
func (s *Service) PostForEdit(ctx context.Context, id uint, viewer Viewer) (*models.Post, error) {
	return s.postFor(ctx, id, viewer, ActionEditPost)
}

// UpdatePost applies a submitted form to a post owned by viewer.
// On validation failure the returned post still holds the stored values.
func (s *Service) UpdatePost(ctx context.Context, id uint, viewer Viewer, in PostInput) (*models.Post, error) {
	post, err := s.postFor(ctx, id, viewer, ActionEditPost)
	if err != nil {
		return post, err
	}
	updated := *post
	if err := s.applyPostInput(ctx, in, &updated); err != nil {
		return post, err
	}
	if err := s.db.WithContext(ctx).Model(post).Updates(map[string]interface{}{
		"title":        updated.Title,
		"text":         updated.Text,
		"pub_date":     updated.PubDate,
		"is_published": updated.IsPublished,
		"category_id":  updated.CategoryID,
		"location_id":  updated.LocationID,
	}).Error; err != nil {
		return post, fmt.Errorf("update post %d: %w", id, err)
	}
	s.invalidate()
	return &updated, nil
}

// PostForDelete loads a post for the delete confirmation page.
func (s *Service) PostForDelete(ctx context.Context, id uint, viewer Viewer) (*models.Post, error) {
	return s.postFor(ctx, id, viewer, ActionDeletePost)
}

// DeletePost removes a post and its comments. Authors and staff may delete.
func (s *Service) DeletePost(ctx context.Context, id uint, viewer Viewer) error {
	post, err := s.postFor(ctx, id, viewer, ActionDeletePost)
	if err != nil {
		return err
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		return fmt.Errorf("delete post %d: %w", id, err)
	}
	s.invalidate()
	return nil
}
