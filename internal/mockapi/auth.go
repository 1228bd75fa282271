package mockapi

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/MFE-Works/shell_layer/internal/errors"
)

// AuthUser is the public view of an authenticated account.
type AuthUser struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}

// LoginRequest is the credentials payload for /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest carries a refresh token for /api/auth/refresh and logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse is the token pair returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Claims are the JWT claims carried by both token kinds. TokenType
// distinguishes access from refresh so one cannot stand in for the other.
type Claims struct {
	UserID    int    `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenIssuer mints and verifies HS256 token pairs.
type TokenIssuer struct {
	secret        []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewTokenIssuer creates a token issuer with separate secrets for the two
// token kinds.
func NewTokenIssuer(secret, refreshSecret string, accessTTL, refreshTTL time.Duration) *TokenIssuer {
	return &TokenIssuer{
		secret:        []byte(secret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// IssuePair mints an access/refresh token pair for the user.
func (t *TokenIssuer) IssuePair(u AuthUser) (TokenResponse, error) {
	access, err := t.issue(u, "access", t.secret, t.accessTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	refresh, err := t.issue(u, "refresh", t.refreshSecret, t.refreshTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{AccessToken: access, RefreshToken: refresh, TokenType: "bearer"}, nil
}

func (t *TokenIssuer) issue(u AuthUser, kind string, secret []byte, ttl time.Duration) (string, error) {
	now := t.now().UTC()
	claims := Claims{
		UserID:    u.ID,
		Email:     u.Email,
		Role:      u.Role,
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseAccess verifies an access token and returns its claims.
func (t *TokenIssuer) ParseAccess(token string) (*Claims, error) {
	return t.parse(token, "access", t.secret)
}

// ParseRefresh verifies a refresh token and returns its claims.
func (t *TokenIssuer) ParseRefresh(token string) (*Claims, error) {
	return t.parse(token, "refresh", t.refreshSecret)
}

func (t *TokenIssuer) parse(token, kind string, secret []byte) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (interface{}, error) {
		if _, ok := tok.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.InvalidToken(nil)
		}
		return secret, nil
	}, jwt.WithTimeFunc(t.now))
	if err != nil {
		return nil, errors.InvalidToken(err)
	}
	if !parsed.Valid || claims.TokenType != kind {
		return nil, errors.InvalidToken(nil)
	}
	return claims, nil
}

type authAccount struct {
	user AuthUser
	hash []byte
}

// AuthStore holds the demo accounts and the set of revocable refresh
// tokens.
type AuthStore struct {
	mu       sync.RWMutex
	accounts map[string]authAccount // keyed by lowercase email
	refresh  map[string]int         // refresh token -> user id
}

// NewAuthStore creates a store seeded with the standard demo accounts.
// Passwords match the usernames with a "123" suffix.
func NewAuthStore() *AuthStore {
	s := &AuthStore{
		accounts: make(map[string]authAccount),
		refresh:  make(map[string]int),
	}
	demo := []struct {
		user     AuthUser
		password string
	}{
		{AuthUser{ID: 1, Email: "admin@example.com", Username: "admin", FullName: "Admin User", Role: "admin", IsActive: true}, "admin123"},
		{AuthUser{ID: 2, Email: "user@example.com", Username: "user", FullName: "Regular User", Role: "user", IsActive: true}, "user123"},
		{AuthUser{ID: 3, Email: "viewer@example.com", Username: "viewer", FullName: "Viewer User", Role: "viewer", IsActive: true}, "viewer123"},
	}
	for _, d := range demo {
		hash, err := bcrypt.GenerateFromPassword([]byte(d.password), bcrypt.DefaultCost)
		if err != nil {
			panic(err)
		}
		s.accounts[strings.ToLower(d.user.Email)] = authAccount{user: d.user, hash: hash}
	}
	return s
}

// Authenticate checks credentials and returns the matching account.
func (s *AuthStore) Authenticate(email, password string) (AuthUser, error) {
	s.mu.RLock()
	acct, ok := s.accounts[strings.ToLower(email)]
	s.mu.RUnlock()

	if !ok || !acct.user.IsActive {
		return AuthUser{}, errors.Unauthorized("incorrect email or password")
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(password)); err != nil {
		return AuthUser{}, errors.Unauthorized("incorrect email or password")
	}
	return acct.user, nil
}

// GetByEmail returns the account for an email, if any.
func (s *AuthStore) GetByEmail(email string) (AuthUser, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	acct, ok := s.accounts[strings.ToLower(email)]
	return acct.user, ok
}

// RememberRefresh records an issued refresh token so it can be revoked.
func (s *AuthStore) RememberRefresh(token string, userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh[token] = userID
}

// RefreshValid reports whether a refresh token is still honored.
func (s *AuthStore) RefreshValid(token string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.refresh[token]
	return ok
}

// RevokeRefresh invalidates a single refresh token.
func (s *AuthStore) RevokeRefresh(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.refresh, token)
}

// RevokeAllRefresh invalidates every refresh token for a user.
func (s *AuthStore) RevokeAllRefresh(userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for tok, id := range s.refresh {
		if id == userID {
			delete(s.refresh, tok)
		}
	}
}
