package services

import (
	"context"
	"fmt"
	"time"

	"github.com/cppla/blogicum/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecordPageView bumps today's counter for path.
func (s *Service) RecordPageView(ctx context.Context, path string) error {
	now := s.now()
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}, {Name: "path"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"count":      gorm.Expr("page_views.count + 1"),
			"updated_at": now,
		}),
	}).Create(&models.PageView{Date: models.Day(now), Path: path, Count: 1}).Error
	if err != nil {
		return fmt.Errorf("record page view: %w", err)
	}
	return nil
}

// PrunePageViews deletes counters older than retention and returns how many rows went.
func (s *Service) PrunePageViews(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := models.Day(s.now().Add(-retention))
	res := s.db.WithContext(ctx).Where("date < ?", cutoff).Delete(&models.PageView{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune page views: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// PostViews sums the recorded views of a post's detail page.
func (s *Service) PostViews(ctx context.Context, postID uint) (int64, error) {
	var views int64
	err := s.db.WithContext(ctx).Model(&models.PageView{}).
		Where("path = ?", fmt.Sprintf("/posts/%d/", postID)).
		Select("COALESCE(SUM(count),0)").
		Scan(&views).Error
	if err != nil {
		return 0, fmt.Errorf("post views: %w", err)
	}
	return views, nil
}

// Stats are site-wide aggregate numbers.
type Stats struct {
	UserCount      int64 `json:"user_count"`
	PostCount      int64 `json:"post_count"`
	CommentCount   int64 `json:"comment_count"`
	CategoryCount  int64 `json:"category_count"`
	TodayPageViews int64 `json:"today_page_views"`
}

// SiteStats counts public posts, their comments, users, categories and today's page views.
func (s *Service) SiteStats(ctx context.Context) (Stats, error) {
	var st Stats
	db := s.db.WithContext(ctx)
	now := s.Now()

	if err := db.Model(&models.User{}).Count(&st.UserCount).Error; err != nil {
		return st, fmt.Errorf("count users: %w", err)
	}
	if err := db.Model(&models.Post{}).Scopes(PublishedScope(now)).Count(&st.PostCount).Error; err != nil {
		return st, fmt.Errorf("count posts: %w", err)
	}
	if err := db.Model(&models.Comment{}).
		Where("post_id IN (?)", db.Model(&models.Post{}).Select("posts.id").Scopes(PublishedScope(now))).
		Count(&st.CommentCount).Error; err != nil {
		return st, fmt.Errorf("count comments: %w", err)
	}
	if err := db.Model(&models.Category{}).Where("is_published = ?", true).Count(&st.CategoryCount).Error; err != nil {
		return st, fmt.Errorf("count categories: %w", err)
	}
	if err := db.Model(&models.PageView{}).
		Where("date = ?", models.Day(now)).
		Select("COALESCE(SUM(count),0)").
		Scan(&st.TodayPageViews).Error; err != nil {
		return st, fmt.Errorf("sum page views: %w", err)
	}
	return st, nil
}
