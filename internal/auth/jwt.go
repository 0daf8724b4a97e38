package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

// ErrInvalidToken covers malformed, expired, mistyped, and revoked tokens.
var ErrInvalidToken = errors.New("invalid token")

// Claims extends the registered claims with the user identity and the
// token's role in the pair.
type Claims struct {
	jwt.RegisteredClaims
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
}

// TokenPair is an access/refresh token pair issued at login or refresh.
type TokenPair struct {
	Access  string
	Refresh string
}

// Manager issues and verifies HS256 token pairs. Revoked refresh tokens
// are tracked in the blacklist by their jti until they expire anyway.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	blacklist  Blacklist
}

func NewManager(secret string, accessTTL, refreshTTL time.Duration, blacklist Blacklist) *Manager {
	return &Manager{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		blacklist:  blacklist,
	}
}

// IssuePair mints a fresh access/refresh pair for the user.
func (m *Manager) IssuePair(userID int64) (TokenPair, error) {
	access, err := m.sign(userID, tokenTypeAccess, m.accessTTL, "")
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign access token: %w", err)
	}
	refresh, err := m.sign(userID, tokenTypeRefresh, m.refreshTTL, uuid.NewString())
	if err != nil {
		return TokenPair{}, fmt.Errorf("sign refresh token: %w", err)
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}

// VerifyAccess validates an access token and returns the user it belongs to.
func (m *Manager) VerifyAccess(tokenString string) (int64, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return 0, err
	}
	if claims.TokenType != tokenTypeAccess {
		return 0, ErrInvalidToken
	}
	return claims.UserID, nil
}

// Verify validates a token of either type, consulting the blacklist for
// refresh tokens.
func (m *Manager) Verify(ctx context.Context, tokenString string) error {
	claims, err := m.parse(tokenString)
	if err != nil {
		return err
	}
	if claims.TokenType == tokenTypeRefresh {
		return m.checkNotRevoked(ctx, claims)
	}
	return nil
}

// Refresh exchanges a valid, non-revoked refresh token for a new pair.
func (m *Manager) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := m.parseRefresh(ctx, refreshToken)
	if err != nil {
		return TokenPair{}, err
	}
	return m.IssuePair(claims.UserID)
}

// RevokeRefresh blacklists a refresh token for the remainder of its
// lifetime. Used by logout.
func (m *Manager) RevokeRefresh(ctx context.Context, refreshToken string) error {
	claims, err := m.parseRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return ErrInvalidToken
	}
	if err := m.blacklist.Add(ctx, claims.ID, ttl); err != nil {
		return fmt.Errorf("blacklist refresh token: %w", err)
	}
	return nil
}

func (m *Manager) parseRefresh(ctx context.Context, tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokenTypeRefresh || claims.ID == "" || claims.ExpiresAt == nil {
		return nil, ErrInvalidToken
	}
	if err := m.checkNotRevoked(ctx, claims); err != nil {
		return nil, err
	}
	return claims, nil
}

func (m *Manager) checkNotRevoked(ctx context.Context, claims *Claims) error {
	revoked, err := m.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return ErrInvalidToken
	}
	return nil
}

func (m *Manager) sign(userID int64, tokenType string, ttl time.Duration, jti string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID:    userID,
		TokenType: tokenType,
	})
	return token.SignedString(m.secret)
}

func (m *Manager) parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
