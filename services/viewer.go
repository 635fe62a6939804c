package services

import "github.com/cppla/blogicum/models"

// Viewer is the identity a request acts as. The zero value is the anonymous visitor.
type Viewer struct {
	ID       uint
	Username string
	IsStaff  bool
}

// Anonymous is the viewer of unauthenticated requests.
var Anonymous = Viewer{}

// IsAuthenticated reports whether the viewer is signed in.
func (v Viewer) IsAuthenticated() bool {
	return v.ID != 0
}

// Is reports whether the viewer is the user with the given id.
func (v Viewer) Is(userID uint) bool {
	return v.ID != 0 && v.ID == userID
}

// ViewerOf builds the viewer for a loaded user. admin marks usernames promoted by configuration.
func ViewerOf(user *models.User, admin bool) Viewer {
	if user == nil {
		return Anonymous
	}
	return Viewer{ID: user.ID, Username: user.Username, IsStaff: user.IsStaff || admin}
}
