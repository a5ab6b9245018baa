package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Trust domains. User tokens are minted for anonymous uploaders and
// signed with the user secret; admin tokens are minted at login and
// signed with the admin secret. The domain travels inside the token as
// an explicit claim, so verification never has to trial-decode against
// both secrets.
const (
	DomainUser  = "user"
	DomainAdmin = "admin"
)

var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	UserID string `json:"user_id"`
	Domain string `json:"dom"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	userSecret  []byte
	adminSecret []byte
}

func NewTokenIssuer(userSecret, adminSecret string) *TokenIssuer {
	return &TokenIssuer{
		userSecret:  []byte(userSecret),
		adminSecret: []byte(adminSecret),
	}
}

// IssueUserToken mints a token for an (anonymous) user identity.
// Tokens carry no expiry; possession of the token is possession of the
// identity.
func (i *TokenIssuer) IssueUserToken(userID string) (string, error) {
	claims := Claims{
		UserID: userID,
		Domain: DomainUser,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.userSecret)
}

// IssueAdminToken mints an admin-domain token carrying the issuance
// time.
func (i *TokenIssuer) IssueAdminToken(userID string, issuedAt time.Time) (string, error) {
	claims := Claims{
		UserID: userID,
		Domain: DomainAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(issuedAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(i.adminSecret)
}

// Validate verifies a token against the secret of the domain it
// declares. Any malformed, mis-signed or foreign-domain token is
// rejected with ErrInvalidToken; validation never panics up to the
// caller.
func (i *TokenIssuer) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		switch claims.Domain {
		case DomainUser:
			return i.userSecret, nil
		case DomainAdmin:
			return i.adminSecret, nil
		default:
			return nil, fmt.Errorf("unknown trust domain %q", claims.Domain)
		}
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.UserID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
