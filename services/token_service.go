package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/ShinAdam/Badminton-Elo-App/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	claimUserID   = "user_id"
	claimUsername = "username"
	claimTokenID  = "jti"
	claimExpires  = "exp"
	claimIssued   = "iat"
)

// AccessToken is the verified content of a bearer token.
type AccessToken struct {
	ID        string
	UserID    int
	Username  string
	ExpiresAt time.Time
}

type TokenService interface {
	Issue(user *models.User) (string, *AccessToken, error)
	Parse(raw string) (*AccessToken, error)
}

type jwtTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) TokenService {
	return &jwtTokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (s *jwtTokenService) Issue(user *models.User) (string, *AccessToken, error) {
	now := s.now()
	at := &AccessToken{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Username:  user.Username,
		ExpiresAt: now.Add(s.ttl),
	}

	claims := jwt.MapClaims{
		claimUserID:   at.UserID,
		claimUsername: at.Username,
		claimTokenID:  at.ID,
		claimIssued:   now.Unix(),
		claimExpires:  at.ExpiresAt.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	// exp is stored in whole seconds, keep the returned value consistent with it.
	at.ExpiresAt = time.Unix(at.ExpiresAt.Unix(), 0)
	return signed, at, nil
}

func (s *jwtTokenService) Parse(raw string) (*AccessToken, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	userID, err := intClaim(claims, claimUserID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	jti, _ := claims[claimTokenID].(string)
	if jti == "" {
		return nil, fmt.Errorf("%w: missing %s claim", ErrTokenInvalid, claimTokenID)
	}
	exp, err := intClaim(claims, claimExpires)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	username, _ := claims[claimUsername].(string)

	return &AccessToken{
		ID:        jti,
		UserID:    userID,
		Username:  username,
		ExpiresAt: time.Unix(int64(exp), 0),
	}, nil
}

// intClaim reads a numeric claim. encoding/json decodes numbers as float64.
func intClaim(claims jwt.MapClaims, name string) (int, error) {
	raw, ok := claims[name]
	if !ok {
		return 0, fmt.Errorf("missing '%s' claim", name)
	}
	f, ok := raw.(float64)
	if !ok {
		return 0, fmt.Errorf("invalid type for '%s' claim: %T", name, raw)
	}
	if f != float64(int(f)) || f <= 0 {
		return 0, errors.New("claim '" + name + "' is not a positive integer")
	}
	return int(f), nil
}
