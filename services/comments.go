package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/cppla/blogicum/models"
	"gorm.io/gorm/clause"
)

// AddComment stores a comment by viewer on a post the viewer can see.
// Callers may ignore a *ValidationError: an invalid comment is simply not stored.
func (s *Service) AddComment(ctx context.Context, postID uint, viewer Viewer, in CommentInput) (*models.Comment, error) {
	if !viewer.IsAuthenticated() {
		return nil, ErrForbidden
	}
	if _, err := s.GetPost(ctx, postID, viewer); err != nil {
		return nil, err
	}
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in).OrNil(); err != nil {
		return nil, err
	}
	comment := &models.Comment{PostID: postID, AuthorID: viewer.ID, Text: in.Text}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(comment).Error; err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	s.invalidate()
	return comment, nil
}

// commentFor loads the comment commentID of post postID and checks viewer's rights for action.
func (s *Service) commentFor(ctx context.Context, postID, commentID uint, viewer Viewer, action Action) (*models.Comment, error) {
	comment, err := FindOrFail[models.Comment](ctx, s.db.Preload("Author"), "id = ? AND post_id = ?", commentID, postID)
	if err != nil {
		return nil, err
	}
	if !CanMutate(comment.AuthorID, action, viewer) {
		return comment, ErrForbidden
	}
	return comment, nil
}

// CommentForEdit loads a comment for its edit form.
func (s *Service) CommentForEdit(ctx context.Context, postID, commentID uint, viewer Viewer) (*models.Comment, error) {
	return s.commentFor(ctx, postID, commentID, viewer, ActionEditComment)
}

// UpdateComment replaces the text of viewer's comment.
func (s *Service) UpdateComment(ctx context.Context, postID, commentID uint, viewer Viewer, in CommentInput) (*models.Comment, error) {
	comment, err := s.commentFor(ctx, postID, commentID, viewer, ActionEditComment)
	if err != nil {
		return comment, err
	}
	in.Text = strings.TrimSpace(in.Text)
	if err := validateStruct(in).OrNil(); err != nil {
		return comment, err
	}
	if err := s.db.WithContext(ctx).Model(comment).Update("text", in.Text).Error; err != nil {
		return comment, fmt.Errorf("update comment %d: %w", commentID, err)
	}
	comment.Text = in.Text
	s.invalidate()
	return comment, nil
}

// CommentForDelete loads a comment for the delete confirmation page.
func (s *Service) CommentForDelete(ctx context.Context, postID, commentID uint, viewer Viewer) (*models.Comment, error) {
	return s.commentFor(ctx, postID, commentID, viewer, ActionDeleteComment)
}

// DeleteComment removes a comment. Its author and staff may delete.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID uint, viewer Viewer) error {
	comment, err := s.commentFor(ctx, postID, commentID, viewer, ActionDeleteComment)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Delete(&models.Comment{}, comment.ID).Error; err != nil {
		return fmt.Errorf("delete comment %d: %w", commentID, err)
	}
	s.invalidate()
	return nil
}
