package application

// Identity is the authenticated actor decoded from a session token. Ownership
// checks compare its username against the snapshot stored on the aggregate.
type Identity struct {
	ID       string
	Username string
	Email    string
}
