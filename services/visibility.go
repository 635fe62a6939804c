package services

import (
	"time"

	"github.com/cppla/blogicum/models"
	"gorm.io/gorm"
)

// IsVisible decides whether viewer may see post at now.
// Authors always see their own posts. Everyone else needs the post published, not
// future-dated and either uncategorised or in a published category.
func IsVisible(post *models.Post, viewer Viewer, now time.Time) bool {
	if post == nil {
		return false
	}
	if viewer.Is(post.AuthorID) {
		return true
	}
	if !post.IsPublished || post.PubDate.After(now) {
		return false
	}
	if post.CategoryID != nil {
		// an unloaded category is treated as hidden
		return post.Category != nil && post.Category.IsPublished
	}
	return true
}

// PublishedScope restricts a posts query to the publicly visible subset at now.
func PublishedScope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("LEFT JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ? AND posts.pub_date <= ?", true, now).
			Where("posts.category_id IS NULL OR categories.is_published = ?", true)
	}
}
