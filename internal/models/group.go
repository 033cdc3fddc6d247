package models

// Group represents a reusable participant list owned by its creator.
// Bills may reference a group to prefill their participants.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "Roommates", "Work Lunch").
	Name string

	// CreatorID is the user who created the group. Only the creator may add
	// members or delete the group.
	CreatorID string

	// Members is the de-duplicated set of member user IDs, creator included.
	Members []string

	// CreatedAt is the Unix timestamp when the group was created.
	CreatedAt int64
}

// HasMember reports whether userID belongs to the group.
func (g *Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}
