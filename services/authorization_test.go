package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanMutate(t *testing.T) {
	const owner = uint(10)
	author := Viewer{ID: owner}
	other := Viewer{ID: 11}
	staff := Viewer{ID: 12, IsStaff: true}

	cases := []struct {
		action Action
		viewer Viewer
		want   bool
	}{
		{ActionEditPost, author, true},
		{ActionEditPost, other, false},
		{ActionEditPost, staff, false},
		{ActionEditPost, Anonymous, false},
		{ActionDeletePost, author, true},
		{ActionDeletePost, other, false},
		{ActionDeletePost, staff, true},
		{ActionEditComment, author, true},
		{ActionEditComment, staff, false},
		{ActionDeleteComment, author, true},
		{ActionDeleteComment, other, false},
		{ActionDeleteComment, staff, true},
		{ActionDeleteComment, Viewer{IsStaff: true}, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanMutate(owner, tc.action, tc.viewer), "action=%d viewer=%+v", tc.action, tc.viewer)
	}
}
