package auth

import (
	"context"
	"fmt"

	"google.golang.org/api/idtoken"
)

// FederatedAccount is what the identity provider vouches for.
type FederatedAccount struct {
	Subject     string
	Email       string
	DisplayName string
}

// FederatedVerifier validates a provider-issued ID token.
type FederatedVerifier interface {
	Verify(ctx context.Context, idToken string) (*FederatedAccount, error)
}

type googleVerifier struct {
	clientID string
}

// NewGoogleVerifier validates Google ID tokens issued for clientID.
func NewGoogleVerifier(clientID string) FederatedVerifier {
	return &googleVerifier{clientID: clientID}
}

func (v *googleVerifier) Verify(ctx context.Context, idToken string) (*FederatedAccount, error) {
	if v.clientID == "" {
		return nil, newError(CodeOperationNotAllowed)
	}

	payload, err := idtoken.Validate(ctx, idToken, v.clientID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", newError(CodeInvalidCredential), err)
	}

	account := &FederatedAccount{Subject: payload.Subject}
	if email, ok := payload.Claims["email"].(string); ok {
		account.Email = email
	}
	if name, ok := payload.Claims["name"].(string); ok {
		account.DisplayName = name
	}
	if verified, ok := payload.Claims["email_verified"].(bool); ok && !verified {
		return nil, newError(CodeInvalidCredential)
	}
	return account, nil
}
