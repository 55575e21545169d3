package entity

// User is the account a human player plays under. Account management itself
// lives outside the game core; the core only resolves callers to users.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
