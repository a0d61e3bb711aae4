package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tajious/repairdesk/internal/models"
)

func newTestIssuer() *Issuer {
	return NewIssuer("access-secret", 15*time.Minute, "refresh-secret", 7*24*time.Hour)
}

func TestIssueAndParseAccess(t *testing.T) {
	issuer := newTestIssuer()

	token, err := issuer.IssueAccess(models.AccessClaims{
		Phone:      "0984235573",
		Role:       "admin",
		Status:     models.StatusActive,
		PositionID: "pos-1",
		FirstName:  "Lan",
		LastName:   "Nguyen",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "user-1",
		},
	})
	require.NoError(t, err)

	claims, err := issuer.ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "0984235573", claims.Phone)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, models.StatusActive, claims.Status)
	assert.Equal(t, "pos-1", claims.PositionID)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}

func TestIssueAccessRequiresSubject(t *testing.T) {
	_, err := newTestIssuer().IssueAccess(models.AccessClaims{Phone: "1"})
	assert.ErrorIs(t, err, ErrNoSubject)
}

func TestParseAccessRejects(t *testing.T) {
	issuer := newTestIssuer()

	refresh, err := issuer.IssueRefresh("user-1")
	require.NoError(t, err)

	other := NewIssuer("other-secret", time.Minute, "refresh-secret", time.Hour)
	foreign, err := other.IssueAccess(models.AccessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	require.NoError(t, err)

	expiredIssuer := newTestIssuer()
	expiredIssuer.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expired, err := expiredIssuer.IssueAccess(models.AccessClaims{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}})
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, models.AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "refresh token", token: refresh},
		{name: "different secret", token: foreign},
		{name: "expired", token: expired},
		{name: "alg none", token: unsigned},
		{name: "garbage", token: "not.a.jwt"},
		{name: "empty", token: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := issuer.ParseAccess(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestIssueRefreshIsUniquePerCall(t *testing.T) {
	issuer := newTestIssuer()

	first, err := issuer.IssueRefresh("user-1")
	require.NoError(t, err)
	second, err := issuer.IssueRefresh("user-1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestSubjectOf(t *testing.T) {
	issuer := newTestIssuer()
	refresh, err := issuer.IssueRefresh("user-42")
	require.NoError(t, err)

	subject, err := SubjectOf(refresh)
	require.NoError(t, err)
	assert.Equal(t, "user-42", subject)

	_, err = SubjectOf("garbage-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	empty := jwt.NewWithClaims(jwt.SigningMethodHS256, models.RefreshClaims{})
	noSubject, err := empty.SignedString([]byte("x"))
	require.NoError(t, err)
	_, err = SubjectOf(noSubject)
	assert.ErrorIs(t, err, ErrNoSubject)
}
