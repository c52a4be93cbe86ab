package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// AccessTokenExpiry is the duration for which access tokens are valid.
const AccessTokenExpiry = 20 * time.Minute

var (
	errMissingClaims    = errors.New("token is missing required claims")
	errUnsupportedAlgo  = errors.New("unsupported signing algorithm")
	errInvalidTokenType = errors.New("invalid token")
)

// Claims represents JWT claims. The subject carries the username.
type Claims struct {
	UserID uint `json:"id"`
	jwt.RegisteredClaims
}

// Identity is the authenticated caller extracted from a valid token.
type Identity struct {
	Username string
	UserID   uint
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret []byte
	method jwt.SigningMethod
	now    func() time.Time
}

// NewJWTService creates a JWT service signing with secret and the named HMAC algorithm.
func NewJWTService(secret, algorithm string) (*JWTService, error) {
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: %q", errUnsupportedAlgo, algorithm)
	}
	return &JWTService{
		secret: []byte(secret),
		method: method,
		now:    time.Now,
	}, nil
}

// GenerateAccessToken generates a new access token for the user.
func (s *JWTService) GenerateAccessToken(username string, userID uint) (string, error) {
	now := s.now()
	claims := &Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   username,
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns the identity it carries.
func (s *JWTService) ValidateToken(tokenString string) (*Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{s.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errInvalidTokenType
	}

	if claims.Subject == "" || claims.UserID == 0 {
		return nil, errMissingClaims
	}

	return &Identity{Username: claims.Subject, UserID: claims.UserID}, nil
}
