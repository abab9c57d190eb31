package domain

// Identity is the claim set carried by an access token.
type Identity struct {
	UserID   int64
	Username string
}
