package domain

import "time"

// Session is the read reference this service holds onto an auth-provider
// session. Issuance, refresh and expiry are owned entirely by Supabase.
type Session struct {
	AccessToken string
	UserID      string
	Email       string
	ExpiresAt   time.Time
}

// SupabaseUser represents a user from Supabase Auth.
type SupabaseUser struct {
	ID           string                 `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata"`
	CreatedAt    string                 `json:"created_at"`
	UpdatedAt    string                 `json:"updated_at"`
}

// AuthService validates and terminates sessions against the auth provider.
type AuthService interface {
	ValidateToken(token string) (*Session, error)
	Logout(token string) error
	AuthorizeURL(redirectTo string) string
}
