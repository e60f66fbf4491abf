// README: Firebase Admin SDK initialisation and ID-token verifier for caller identity.
package infra

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"
)

// Caller is the verified identity attached to a request.
type Caller struct {
	UID   string
	Email string
	// Plan is the "plan" custom claim ("free" when absent).
	Plan string
}

// TokenVerifier verifies a raw Firebase ID token string and returns the caller.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*Caller, error)
}

// firebaseVerifier is the production implementation backed by the Firebase Admin SDK.
type firebaseVerifier struct {
	client *auth.Client
}

// NewFirebaseVerifier creates a TokenVerifier using the Firebase Admin SDK.
// If credentialsFile is non-empty it is used as the service-account JSON path;
// otherwise application-default credentials / GOOGLE_APPLICATION_CREDENTIALS are used.
// projectID is required so the SDK can construct the correct token-verification URL.
func NewFirebaseVerifier(ctx context.Context, projectID, credentialsFile string) (TokenVerifier, error) {
	opts := []option.ClientOption{}
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: projectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase.NewApp: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase app.Auth: %w", err)
	}
	return &firebaseVerifier{client: client}, nil
}

func (v *firebaseVerifier) VerifyIDToken(ctx context.Context, idToken string) (*Caller, error) {
	token, err := v.client.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	return CallerFromClaims(token.UID, token.Claims), nil
}

// CallerFromClaims reads the email and plan claims, tolerating missing or
// mistyped values.
func CallerFromClaims(uid string, claims map[string]interface{}) *Caller {
	c := &Caller{UID: uid, Plan: "free"}
	if email, ok := claims["email"].(string); ok {
		c.Email = email
	}
	if plan, ok := claims["plan"].(string); ok && plan != "" {
		c.Plan = plan
	}
	return c
}
