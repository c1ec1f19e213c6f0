package service

import (
	"fmt"

	"docscan-gateway/internal/domain"
)

type authService struct {
	supabaseClient domain.SupabaseClient
	logger         domain.Logger
}

// NewAuthService creates the session glue over the Supabase client.
func NewAuthService(supabaseClient domain.SupabaseClient, logger domain.Logger) domain.AuthService {
	return &authService{
		supabaseClient: supabaseClient,
		logger:         logger,
	}
}

// ValidateToken validates a token with the auth provider and returns the
// session reference this service attaches to backend requests.
func (s *authService) ValidateToken(token string) (*domain.Session, error) {
	user, err := s.supabaseClient.ValidateToken(token)
	if err != nil {
		s.logger.Error("Failed to validate token with Supabase", err)
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	return &domain.Session{
		AccessToken: token,
		UserID:      user.ID,
		Email:       user.Email,
	}, nil
}

// Logout revokes the session with the auth provider.
func (s *authService) Logout(token string) error {
	return s.supabaseClient.Logout(token)
}

// AuthorizeURL returns the Google OAuth entry point for the login page.
func (s *authService) AuthorizeURL(redirectTo string) string {
	return s.supabaseClient.AuthorizeURL("google", redirectTo)
}
