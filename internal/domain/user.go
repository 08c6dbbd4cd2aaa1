package domain

import "time"

type User struct {
	ID         string     `json:"user_id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	FirstName  string     `json:"first_name"`
	LastName   string     `json:"last_name"`
	LoginCount int        `json:"login_count"`
	LastLogin  *time.Time `json:"last_login"`
	CreatedAt  *time.Time `json:"created_at"`
}

// Session is a login issued to a user. Only the sha256 of its secret is kept.
type Session struct {
	ID        string
	TokenHash string
	UserID    string
	ExpiresAt *time.Time
	CreatedAt *time.Time
}
