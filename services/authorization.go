package services

// Action names a mutation guarded by ownership.
type Action int

const (
	ActionEditPost Action = iota
	ActionDeletePost
	ActionEditComment
	ActionDeleteComment
)

// CanMutate reports whether viewer may perform action on a resource owned by ownerID.
// Edits belong to the owner alone; staff may additionally delete.
func CanMutate(ownerID uint, action Action, viewer Viewer) bool {
	if !viewer.IsAuthenticated() {
		return false
	}
	if viewer.Is(ownerID) {
		return true
	}
	switch action {
	case ActionDeletePost, ActionDeleteComment:
		return viewer.IsStaff
	default:
		return false
	}
}
