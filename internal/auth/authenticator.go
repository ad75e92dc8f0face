package auth

import (
	"context"

	"github.com/mmynk/rentbook/internal/models"
)

// Authenticator resolves credentials to a user identity.
// Swapping password login for another method only touches this interface.
type Authenticator interface {
	// Register creates a new user account with the given email and credential.
	Register(ctx context.Context, email, displayName, credential string) (*models.User, error)

	// Authenticate verifies the credential and returns the user.
	Authenticate(ctx context.Context, email, credential string) (*models.User, error)

	// ValidateCredential checks the credential against the implementation's rules.
	ValidateCredential(credential string) error
}
