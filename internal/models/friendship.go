package models

// Friendship is an undirected edge between two users.
// UserA and UserB are stored normalized (UserA < UserB) so the same pair can
// only exist once no matter who initiated it.
type Friendship struct {
	UserA string

	UserB string

	// RequestedBy is the user who added the friend. It is informational only;
	// balance logic never looks at it.
	RequestedBy string

	CreatedAt int64
}

// NewFriendship builds a normalized edge between two distinct users.
func NewFriendship(requesterID, targetID string, createdAt int64) Friendship {
	a, b := requesterID, targetID
	if b < a {
		a, b = b, a
	}
	return Friendship{UserA: a, UserB: b, RequestedBy: requesterID, CreatedAt: createdAt}
}

// Other returns the user on the opposite end of the edge from userID.
func (f Friendship) Other(userID string) string {
	if f.UserA == userID {
		return f.UserB
	}
	return f.UserA
}
