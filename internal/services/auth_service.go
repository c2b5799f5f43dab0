package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrNotModerator = errors.New("user is not a moderator")
	ErrNoJWTSecret  = errors.New("JWT_SECRET is not configured")
)

// AuthService issues the bearer tokens the admin API accepts.
type AuthService struct {
	store  Store
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewAuthService(store Store, secret string, expiry time.Duration) *AuthService {
	if expiry <= 0 {
		expiry = 12 * time.Hour
	}
	return &AuthService{store: store, secret: []byte(secret), expiry: expiry, now: time.Now}
}

// IssueModeratorToken signs an HS256 token for a MODERATOR user. The admin
// middleware re-checks the role on every request, so demoting a user revokes
// access before the token expires.
func (s *AuthService) IssueModeratorToken(ctx context.Context, facebookID string) (string, time.Time, error) {
	if len(s.secret) == 0 {
		return "", time.Time{}, ErrNoJWTSecret
	}
	user, err := s.store.GetUser(ctx, facebookID)
	if err != nil {
		return "", time.Time{}, err
	}
	if !user.IsModerator() {
		return "", time.Time{}, fmt.Errorf("%s: %w", facebookID, ErrNotModerator)
	}

	now := s.now()
	exp := now.Add(s.expiry)
	claims := jwt.MapClaims{
		"sub":  user.FacebookID,
		"role": user.Role,
		"iat":  now.Unix(),
		"exp":  exp.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return token, exp, nil
}
