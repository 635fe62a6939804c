package services

import (
	"time"

	"github.com/cppla/blogicum/utils"
	"gorm.io/gorm"
)

// Service holds the blog's listing, mutation and account operations.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

// Option customises a Service.
type Option func(*Service)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service backed by db.
func New(db *gorm.DB, opts ...Option) *Service {
	s := &Service{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the service clock in UTC with second precision, matching stored publish dates.
func (s *Service) Now() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

// DB exposes the underlying handle for maintenance jobs and the JSON API.
func (s *Service) DB() *gorm.DB {
	return s.db
}

// invalidate drops cached API responses after a mutation.
func (s *Service) invalidate() {
	utils.InvalidateByPrefix(CacheKeyPrefix)
}

// CacheKeyPrefix namespaces every cached API response.
const CacheKeyPrefix = "blogicum:api:"
