package domain

// SupabaseClient wraps the auth-provider SDK. Only token validation, logout
// and the OAuth authorize URL are exercised here; session issuance and refresh
// happen inside Supabase.
type SupabaseClient interface {
	Initialize() error
	ValidateToken(token string) (*SupabaseUser, error)
	Logout(token string) error
	AuthorizeURL(provider, redirectTo string) string
}
