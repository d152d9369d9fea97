package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() Session {
	return Session{UserID: uuid.New(), ProfileID: uuid.New(), Role: RoleDoctor}
}

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer("test-secret", time.Hour)
	want := testSession()

	token, err := iss.Issue(want)
	require.NoError(t, err)

	got, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestIssuer_RejectsExpired(t *testing.T) {
	iss := NewIssuer("test-secret", time.Minute)
	issuedAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	iss.now = func() time.Time { return issuedAt }

	token, err := iss.Issue(testSession())
	require.NoError(t, err)

	iss.now = func() time.Time { return issuedAt.Add(2 * time.Minute) }
	_, err = iss.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsForeignKey(t *testing.T) {
	token, err := NewIssuer("other-secret", time.Hour).Issue(testSession())
	require.NoError(t, err)

	_, err = NewIssuer("test-secret", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssuer_RejectsUnknownRole(t *testing.T) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		ProfileID: uuid.NewString(),
		Role:      "admin",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = NewIssuer("test-secret", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSessionContext(t *testing.T) {
	_, ok := SessionFromContext(context.Background())
	assert.False(t, ok)

	s := testSession()
	got, ok := SessionFromContext(WithSession(context.Background(), s))
	require.True(t, ok)
	assert.Equal(t, s, got)
}
