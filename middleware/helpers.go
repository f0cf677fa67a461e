package middleware

import (
	"context"
	"errors"

	"github.com/ShinAdam/Badminton-Elo-App/services"
)

var ErrNoAccessToken = errors.New("access token not found in context")

// WithAccessToken returns a copy of ctx carrying token. Used by Authenticate and by tests.
func WithAccessToken(ctx context.Context, token *services.AccessToken) context.Context {
	return context.WithValue(ctx, accessTokenContextKey, token)
}

func GetAccessTokenFromContext(ctx context.Context) (*services.AccessToken, error) {
	token, ok := ctx.Value(accessTokenContextKey).(*services.AccessToken)
	if !ok || token == nil {
		return nil, ErrNoAccessToken
	}
	return token, nil
}

func GetUserIDFromContext(ctx context.Context) (int, error) {
	token, err := GetAccessTokenFromContext(ctx)
	if err != nil {
		return 0, err
	}
	if token.UserID <= 0 {
		return 0, errors.New("invalid user id in access token")
	}
	return token.UserID, nil
}
