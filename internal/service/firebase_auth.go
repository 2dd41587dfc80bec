package service

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"github.com/pageza/larder/backend/internal/types"
)

// IDTokenVerifier is the part of the Firebase auth client used here.
type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// FirebaseAuth accepts Firebase ID tokens. The Firebase uid becomes the
// document namespace.
type FirebaseAuth struct {
	verifier IDTokenVerifier
}

func NewFirebaseAuth(verifier IDTokenVerifier) *FirebaseAuth {
	return &FirebaseAuth{verifier: verifier}
}

func (a *FirebaseAuth) ValidateToken(ctx context.Context, idToken string) (*types.Identity, error) {
	token, err := a.verifier.VerifyIDToken(ctx, idToken)
	if err != nil || token.UID == "" {
		return nil, ErrUnauthenticated
	}
	email, _ := token.Claims["email"].(string)
	return &types.Identity{UID: token.UID, Email: email}, nil
}
