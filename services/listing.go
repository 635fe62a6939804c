package services

import (
	"context"
	"fmt"

	"github.com/cppla/blogicum/models"
	"gorm.io/gorm"
)

const commentCountSelect = "posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

type scope = func(*gorm.DB) *gorm.DB

// listPosts runs a paginated, newest-first query over posts restricted by scopes.
func (s *Service) listPosts(ctx context.Context, page int, scopes ...scope) (Page[models.Post], error) {
	query := func() *gorm.DB {
		return s.db.WithContext(ctx).Model(&models.Post{}).Scopes(scopes...)
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return Page[models.Post]{}, fmt.Errorf("count posts: %w", err)
	}
	number, numPages := ClampPage(page, total, PageSize)

	posts := []models.Post{}
	err := query().
		Select(commentCountSelect).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		Order("posts.pub_date DESC").
		Order("posts.id DESC").
		Limit(PageSize).
		Offset((number - 1) * PageSize).
		Find(&posts).Error
	if err != nil {
		return Page[models.Post]{}, fmt.Errorf("list posts: %w", err)
	}
	return Page[models.Post]{Items: posts, Number: number, NumPages: numPages, Total: total}, nil
}

// ListIndex returns the public posts for the home page.
func (s *Service) ListIndex(ctx context.Context, page int) (Page[models.Post], error) {
	return s.listPosts(ctx, page, PublishedScope(s.Now()))
}

// ListCategory returns the public posts of a published category.
// Unknown and unpublished categories both yield ErrNotFound.
func (s *Service) ListCategory(ctx context.Context, slug string, page int) (*models.Category, Page[models.Post], error) {
	category, err := FindOrFail[models.Category](ctx, s.db, "slug = ? AND is_published = ?", slug, true)
	if err != nil {
		return nil, Page[models.Post]{}, err
	}
	posts, err := s.listPosts(ctx, page, PublishedScope(s.Now()), func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.category_id = ?", category.ID)
	})
	return category, posts, err
}

// ListProfile returns the posts of username. The owner sees every post of theirs,
// other viewers only the public subset.
func (s *Service) ListProfile(ctx context.Context, username string, viewer Viewer, page int) (*models.User, Page[models.Post], error) {
	author, err := FindOrFail[models.User](ctx, s.db, "username = ?", username)
	if err != nil {
		return nil, Page[models.Post]{}, err
	}
	scopes := []scope{func(db *gorm.DB) *gorm.DB {
		return db.Where("posts.author_id = ?", author.ID)
	}}
	if !viewer.Is(author.ID) {
		scopes = append(scopes, PublishedScope(s.Now()))
	}
	posts, err := s.listPosts(ctx, page, scopes...)
	return author, posts, err
}

// GetPost loads a post for display, hiding it from viewers the visibility gate rejects.
func (s *Service) GetPost(ctx context.Context, id uint, viewer Viewer) (*models.Post, error) {
	post, err := FindOrFail[models.Post](ctx, s.db.Preload("Author").Preload("Category").Preload("Location"), id)
	if err != nil {
		return nil, err
	}
	if !IsVisible(post, viewer, s.Now()) {
		return nil, ErrNotFound
	}
	return post, nil
}

// Comments lists the comments of a post, oldest first.
func (s *Service) Comments(ctx context.Context, postID uint) ([]models.Comment, error) {
	comments := []models.Comment{}
	err := s.db.WithContext(ctx).
		Preload("Author").
		Where("post_id = ?", postID).
		Order("created_at ASC").
		Order("id ASC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

// Categories lists the published categories, for forms and navigation.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	categories := []models.Category{}
	if err := s.db.WithContext(ctx).Where("is_published = ?", true).Order("title").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Locations lists the published locations for the post form.
func (s *Service) Locations(ctx context.Context) ([]models.Location, error) {
	locations := []models.Location{}
	if err := s.db.WithContext(ctx).Where("is_published = ?", true).Order("name").Find(&locations).Error; err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	return locations, nil
}
