package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cppla/blogicum/models"
)

func TestTaxonomyIsStaffOnly(t *testing.T) {
	f := newFixture(t)
	alice := f.fx.User("alice", false)
	travel := f.fx.Category("travel", true)
	park := f.fx.Location("Park")

	for _, viewer := range []Viewer{Anonymous, viewerOf(alice)} {
		_, err := f.svc.AllCategories(f.ctx, viewer)
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = f.svc.CreateCategory(f.ctx, viewer, CategoryInput{Title: "x", Description: "x", Slug: "x"})
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = f.svc.ToggleCategory(f.ctx, viewer, travel.ID)
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = f.svc.AllLocations(f.ctx, viewer)
		assert.ErrorIs(t, err, ErrForbidden)
		_, err = f.svc.UpdateLocation(f.ctx, viewer, park.ID, LocationInput{Name: "Garden"})
		assert.ErrorIs(t, err, ErrForbidden)
	}

	var stored models.Category
	require.NoError(t, f.svc.DB().First(&stored, travel.ID).Error)
	assert.True(t, stored.IsPublished)
}

func TestCreateCategory(t *testing.T) {
	f := newFixture(t)
	staff := ViewerOf(f.fx.User("editor", true), false)

	c, err := f.svc.CreateCategory(f.ctx, staff, CategoryInput{
		Title: "  Travel  ", Description: "Trips", Slug: "travel", IsPublished: false,
	})
	require.NoError(t, err)
	assert.Equal(t, "Travel", c.Title)
	assert.False(t, c.IsPublished)

	_, err = f.svc.CreateCategory(f.ctx, staff, CategoryInput{Title: "Again", Description: "d", Slug: "travel"})
	assert.Contains(t, FieldErrors(err), "slug")

	_, err = f.svc.CreateCategory(f.ctx, staff, CategoryInput{Title: "Bad", Description: "d", Slug: "no spaces"})
	assert.Contains(t, FieldErrors(err), "slug")

	_, err = f.svc.CreateCategory(f.ctx, staff, CategoryInput{Slug: "empty"})
	assert.Contains(t, FieldErrors(err), "title")
	assert.Contains(t, FieldErrors(err), "description")

	all, err := f.svc.AllCategories(f.ctx, staff)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, c.ID, all[0].ID)
}

func TestUpdateAndToggleCategory(t *testing.T) {
	f := newFixture(t)
	staff := ViewerOf(f.fx.User("editor", true), false)
	travel := f.fx.Category("travel", true)
	f.fx.Category("food", true)

	_, err := f.svc.UpdateCategory(f.ctx, staff, travel.ID, CategoryInput{Title: "T", Description: "d", Slug: "food"})
	assert.Contains(t, FieldErrors(err), "slug")

	c, err := f.svc.UpdateCategory(f.ctx, staff, travel.ID, CategoryInput{Title: "Trips", Description: "d", Slug: "travel", IsPublished: true})
	require.NoError(t, err)
	assert.Equal(t, "Trips", c.Title)

	c, err = f.svc.ToggleCategory(f.ctx, staff, travel.ID)
	require.NoError(t, err)
	assert.False(t, c.IsPublished)

	var stored models.Category
	require.NoError(t, f.svc.DB().First(&stored, travel.ID).Error)
	assert.Equal(t, "Trips", stored.Title)
	assert.False(t, stored.IsPublished)

	_, err = f.svc.ToggleCategory(f.ctx, staff, travel.ID+100)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestManageLocations(t *testing.T) {
	f := newFixture(t)
	staff := ViewerOf(f.fx.User("editor", true), false)

	_, err := f.svc.CreateLocation(f.ctx, staff, LocationInput{Name: "   "})
	assert.Contains(t, FieldErrors(err), "name")

	l, err := f.svc.CreateLocation(f.ctx, staff, LocationInput{Name: "Harbour", IsPublished: true})
	require.NoError(t, err)

	l, err = f.svc.UpdateLocation(f.ctx, staff, l.ID, LocationInput{Name: "Old harbour", IsPublished: true})
	require.NoError(t, err)
	assert.Equal(t, "Old harbour", l.Name)

	l, err = f.svc.ToggleLocation(f.ctx, staff, l.ID)
	require.NoError(t, err)
	assert.False(t, l.IsPublished)

	all, err := f.svc.AllLocations(f.ctx, staff)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Old harbour", all[0].Name)
	assert.False(t, all[0].IsPublished)
}
