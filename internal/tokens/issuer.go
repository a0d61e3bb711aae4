package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/tajious/repairdesk/internal/models"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoSubject    = errors.New("token has no subject")
)

// Issuer signs access and refresh tokens, each with its own secret and
// lifetime.
type Issuer struct {
	accessSecret  []byte
	accessTTL     time.Duration
	refreshSecret []byte
	refreshTTL    time.Duration
	now           func() time.Time
}

func NewIssuer(accessSecret string, accessTTL time.Duration, refreshSecret string, refreshTTL time.Duration) *Issuer {
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		accessTTL:     accessTTL,
		refreshSecret: []byte(refreshSecret),
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

func (i *Issuer) AccessTTL() time.Duration {
	return i.accessTTL
}

func (i *Issuer) RefreshTTL() time.Duration {
	return i.refreshTTL
}

// IssueAccess signs claims as an access token. Subject must be set; the
// registered time claims and token id are filled in here.
func (i *Issuer) IssueAccess(claims models.AccessClaims) (string, error) {
	if claims.Subject == "" {
		return "", ErrNoSubject
	}
	claims.RegisteredClaims = i.registered(claims.Subject, i.accessTTL)
	return sign(claims, i.accessSecret)
}

// IssueRefresh signs a refresh token that names only the subject.
func (i *Issuer) IssueRefresh(subject string) (string, error) {
	if subject == "" {
		return "", ErrNoSubject
	}
	claims := models.RefreshClaims{RegisteredClaims: i.registered(subject, i.refreshTTL)}
	return sign(claims, i.refreshSecret)
}

// ParseAccess verifies signature and expiry of an access token.
func (i *Issuer) ParseAccess(tokenString string) (*models.AccessClaims, error) {
	claims := &models.AccessClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return i.accessSecret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(i.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// SubjectOf decodes the subject of a token without checking its signature.
// It only routes a refresh request to the right session; the session store
// decides whether the token is actually valid.
func SubjectOf(tokenString string) (string, error) {
	claims := &models.RefreshClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenString, claims); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return "", ErrNoSubject
	}
	return claims.Subject, nil
}

func (i *Issuer) registered(subject string, ttl time.Duration) jwt.RegisteredClaims {
	now := i.now()
	return jwt.RegisteredClaims{
		Subject:   subject,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
}

func sign(claims jwt.Claims, secret []byte) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
