package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a blog entry. PubDate may lie in the future to schedule publication.
type Post struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:256;not null" json:"title"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	PubDate      time.Time `gorm:"index;not null" json:"pub_date"`
	IsPublished  bool      `gorm:"not null" json:"is_published"`
	AuthorID     uint      `gorm:"index;not null" json:"author_id"`
	CategoryID   *uint     `gorm:"index" json:"category_id"`
	LocationID   *uint     `gorm:"index" json:"location_id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Author       User      `gorm:"foreignKey:AuthorID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"author"`
	Category     *Category `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"category,omitempty"`
	Location     *Location `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"location,omitempty"`
	Comments     []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	CommentCount int64     `gorm:"->;-:migration" json:"comment_count"`
}

// BeforeSave stores publication dates in UTC with second precision so that
// string-typed datetime columns compare chronologically.
func (p *Post) BeforeSave(tx *gorm.DB) error {
	if p.PubDate.IsZero() {
		p.PubDate = time.Now()
	}
	p.PubDate = p.PubDate.UTC().Truncate(time.Second)
	return nil
}
