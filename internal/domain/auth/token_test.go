package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m := NewTokenManager(testSecret, 0)
	userID := uuid.New()

	token, err := m.Generate(userID)
	require.NoError(t, err)

	got, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenManager_DefaultTTL(t *testing.T) {
	issued := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	m := NewTokenManager(testSecret, 0).WithClock(func() time.Time { return issued })

	token, err := m.Generate(uuid.New())
	require.NoError(t, err)

	var claims jwt.RegisteredClaims
	_, _, err = jwt.NewParser().ParseUnverified(token, &claims)
	require.NoError(t, err)
	assert.Equal(t, issued.Add(30*24*time.Hour), claims.ExpiresAt.Time.UTC())
}

func TestTokenManager_Rejects(t *testing.T) {
	now := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	m := NewTokenManager(testSecret, time.Hour).WithClock(clock)
	userID := uuid.New()

	valid, err := m.Generate(userID)
	require.NoError(t, err)

	forged, err := NewTokenManager("another-secret-another-secret-00", time.Hour).WithClock(clock).Generate(userID)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   userID.String(),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: userID.String()}).
		SignedString([]byte(testSecret))
	require.NoError(t, err)

	badSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
		at    time.Time
	}{
		{"garbage", "not.a.token", now},
		{"wrong secret", forged, now},
		{"unsigned", none, now},
		{"no expiry", noExpiry, now},
		{"non uuid subject", badSubject, now},
		{"expired", valid, now.Add(2 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			at := tt.at
			checker := NewTokenManager(testSecret, time.Hour).WithClock(func() time.Time { return at })
			_, err := checker.ParseToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
