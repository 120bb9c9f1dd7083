package helpers

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

var (
	// ErrTokenExpired is returned when a token's ttl has elapsed.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers bad signature, bad shape, and wrong namespace.
	ErrTokenInvalid = errors.New("token invalid")
)

// TokenManager issues and verifies signed bearer tokens. User and admin
// tokens are independent namespaces: they are signed with different secrets
// and carry a role claim, so a token from one namespace never verifies in
// the other.
type TokenManager struct {
	UserSecret  []byte
	AdminSecret []byte
	UserTTL     time.Duration
	AdminTTL    time.Duration
}

var defaultManager *TokenManager

func NewTokenManager(userSecret, adminSecret string, userTTL, adminTTL time.Duration) *TokenManager {
	m := &TokenManager{
		UserSecret:  []byte(userSecret),
		AdminSecret: []byte(adminSecret),
		UserTTL:     userTTL,
		AdminTTL:    adminTTL,
	}
	defaultManager = m
	return m
}

// DefaultTokenManager returns the last constructed TokenManager (used for auto-wiring routes)
func DefaultTokenManager() *TokenManager { return defaultManager }

type Claims struct {
	SubjectID string `json:"uid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

func (m *TokenManager) GenerateUserToken(userID string) (string, time.Time, error) {
	return sign(userID, RoleUser, m.UserSecret, m.UserTTL)
}

func (m *TokenManager) GenerateAdminToken(adminID string) (string, time.Time, error) {
	return sign(adminID, RoleAdmin, m.AdminSecret, m.AdminTTL)
}

func (m *TokenManager) ParseUserToken(tokenStr string) (*Claims, error) {
	return parseToken(tokenStr, m.UserSecret, RoleUser)
}

func (m *TokenManager) ParseAdminToken(tokenStr string) (*Claims, error) {
	return parseToken(tokenStr, m.AdminSecret, RoleAdmin)
}

func sign(subjectID, role string, secret []byte, ttl time.Duration) (string, time.Time, error) {
	exp := time.Now().Add(ttl)
	claims := &Claims{
		SubjectID: subjectID,
		Role:      role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(secret)
	return s, exp, err
}

func parseToken(tokenStr string, secret []byte, wantRole string) (*Claims, error) {
	claims := &Claims{}
	tkn, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tkn.Valid || claims.Role != wantRole {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
