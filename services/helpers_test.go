package services

import (
	"context"
	"testing"

	"github.com/cppla/blogicum/models"
	"github.com/cppla/blogicum/testutil"
)

type fixture struct {
	svc *Service
	fx  *testutil.Fixtures
	ctx context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	testutil.UseConfig(t)
	db := testutil.NewDB(t)
	return &fixture{svc: New(db), fx: testutil.NewFixtures(t, db), ctx: context.Background()}
}

func viewerOf(u *models.User) Viewer {
	return ViewerOf(u, false)
}

func postIDs(posts []models.Post) []uint {
	ids := make([]uint, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
	}
	return ids
}
