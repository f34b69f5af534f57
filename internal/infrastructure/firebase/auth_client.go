package firebase

import (
	"context"
	"strings"

	"firebase.google.com/go/v4/auth"
)

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

func (f *FirebaseAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).
		Email(email).
		Password(password).
		DisplayName(displayName)

	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		return "", err
	}

	return user.UID, nil
}

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", err
	}

	return result.UID, nil
}

// EmailFromToken extracts the verified email claim, if present.
func (f *FirebaseAuthClient) EmailFromToken(ctx context.Context, token string) (string, string, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return "", "", err
	}

	email := ""
	if claim, ok := result.Claims["email"].(string); ok {
		email = claim
	}
	return result.UID, email, nil
}

func (f *FirebaseAuthClient) GenerateToken(ctx context.Context, uid string) (string, error) {
	token, err := f.client.CustomToken(ctx, uid)
	if err != nil {
		return "", err
	}

	return token, nil
}

// TestConnection probes the Auth backend. A user-not-found answer still means
// the connection is healthy.
func (f *FirebaseAuthClient) TestConnection(ctx context.Context) error {
	_, err := f.client.GetUser(ctx, "connection-probe")
	if err != nil && strings.Contains(err.Error(), "no user exists") {
		return nil
	}
	return err
}
