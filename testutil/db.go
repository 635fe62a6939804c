// Package testutil provides throwaway stores and fixtures for package tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cppla/blogicum/config"
	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/utils"
)

// NewDB opens a private in-memory SQLite database with every model migrated.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, config.Migrate(db, models.All()...))
	return db
}

// UseConfig installs a test configuration with a signing secret.
func UseConfig(t testing.TB) config.AppConfig {
	t.Helper()
	cfg := config.AppConfig{
		AppPort:            "0",
		JWTSecret:          "test-secret",
		TokenTTLHours:      1,
		RateLimitPerMinute: 6000,
		AllowedOrigins:     []string{"*"},
		AdminUsernames:     []string{"root"},
	}
	config.Set(cfg)
	utils.PasswordCost = 4
	return cfg
}

// Fixtures creates records with sensible defaults.
type Fixtures struct {
	t  testing.TB
	db *gorm.DB
	n  int
}

// NewFixtures binds fixture helpers to db.
func NewFixtures(t testing.TB, db *gorm.DB) *Fixtures {
	return &Fixtures{t: t, db: db}
}

func (f *Fixtures) seq() int {
	f.n++
	return f.n
}

// User creates a user with password "s3cret-pass".
func (f *Fixtures) User(username string, staff bool) *models.User {
	f.t.Helper()
	hash, err := utils.HashPassword("s3cret-pass")
	require.NoError(f.t, err)
	u := &models.User{Username: username, PasswordHash: hash, IsStaff: staff, Email: username + "@example.com"}
	require.NoError(f.t, f.db.Create(u).Error)
	return u
}

// Category creates a category.
func (f *Fixtures) Category(slug string, published bool) *models.Category {
	f.t.Helper()
	c := &models.Category{Title: "Category " + slug, Slug: slug, Description: "about " + slug, IsPublished: published}
	require.NoError(f.t, f.db.Create(c).Error)
	return c
}

// Location creates a published location.
func (f *Fixtures) Location(name string) *models.Location {
	f.t.Helper()
	l := &models.Location{Name: name, IsPublished: true}
	require.NoError(f.t, f.db.Create(l).Error)
	return l
}

// PostOpts tweaks a fixture post.
type PostOpts struct {
	PubDate     time.Time
	Unpublished bool
	Category    *models.Category
	Location    *models.Location
}

// Post creates a post by author. Unless told otherwise it is published an hour ago.
func (f *Fixtures) Post(author *models.User, opts PostOpts) *models.Post {
	f.t.Helper()
	n := f.seq()
	p := &models.Post{
		Title:       fmt.Sprintf("Post %d", n),
		Text:        fmt.Sprintf("Body of post %d", n),
		PubDate:     opts.PubDate,
		IsPublished: !opts.Unpublished,
		AuthorID:    author.ID,
	}
	if p.PubDate.IsZero() {
		p.PubDate = time.Now().Add(-time.Hour)
	}
	if opts.Category != nil {
		p.CategoryID = &opts.Category.ID
	}
	if opts.Location != nil {
		p.LocationID = &opts.Location.ID
	}
	require.NoError(f.t, f.db.Omit("Author", "Category", "Location").Create(p).Error)
	return p
}

// Comment creates a comment by author on post.
func (f *Fixtures) Comment(post *models.Post, author *models.User, text string) *models.Comment {
	f.t.Helper()
	c := &models.Comment{PostID: post.ID, AuthorID: author.ID, Text: text}
	require.NoError(f.t, f.db.Omit("Author").Create(c).Error)
	return c
}
