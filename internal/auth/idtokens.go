package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/HendrickPhan/go-verify-apple-id-token/validator"
	"google.golang.org/api/idtoken"
)

// Google and Apple sign-in verify an id token minted on the client and
// hand back only the verified email address. The sign-in flow matches
// existing accounts by email and never provisions one, so nothing else
// from the provider's identity is kept.

// GoogleSignInEmail verifies a Google id token against clientID and
// returns the normalized account email.
func GoogleSignInEmail(ctx context.Context, rawToken, clientID string) (string, error) {
	if strings.TrimSpace(rawToken) == "" {
		return "", errors.New("missing id token")
	}
	if strings.TrimSpace(clientID) == "" {
		return "", errors.New("google sign-in is not configured")
	}

	payload, err := idtoken.Validate(ctx, rawToken, clientID)
	if err != nil {
		return "", fmt.Errorf("verify google id token: %w", err)
	}
	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return "", fmt.Errorf("google id token from unexpected issuer %q", payload.Issuer)
	}

	email, _ := payload.Claims["email"].(string)
	return signInEmail(email)
}

// AppleSignInEmail verifies an Apple id token against serviceID and
// returns the normalized account email.
func AppleSignInEmail(ctx context.Context, rawToken, serviceID string) (string, error) {
	if strings.TrimSpace(rawToken) == "" {
		return "", errors.New("missing id token")
	}
	if strings.TrimSpace(serviceID) == "" {
		return "", errors.New("apple sign-in is not configured")
	}

	_ = ctx // the apple validator manages its own key-fetch client
	idToken, err := validator.NewClient().VerifyIdToken(serviceID, rawToken)
	if err != nil {
		return "", fmt.Errorf("verify apple id token: %w", err)
	}
	if idToken.Iss != "https://appleid.apple.com" {
		return "", fmt.Errorf("apple id token from unexpected issuer %q", idToken.Iss)
	}

	return signInEmail(idToken.Email)
}

// signInEmail normalizes a provider-reported email the same way login
// normalizes typed ones, so the account lookup keys agree. A token
// without an email claim cannot match an account and is rejected here.
func signInEmail(email string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return "", errors.New("id token carries no email")
	}
	return email, nil
}
