package devbackend

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hrms-console/internal/models"
)

func TestTokensRoundTrip(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour)

	signed, err := tokens.Issue("admin")
	require.NoError(t, err)

	claims, err := tokens.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
	assert.Equal(t, "admin", claims.Subject)
}

func TestTokensRejects(t *testing.T) {
	tokens := NewTokens("s3cret", time.Hour)
	signed, err := tokens.Issue("admin")
	require.NoError(t, err)

	other := NewTokens("different", time.Hour)
	_, err = other.Verify(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired := NewTokens("s3cret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.Issue("admin")
	require.NoError(t, err)
	_, err = tokens.Verify(old)
	assert.ErrorIs(t, err, ErrInvalidToken)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Username: "admin"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = tokens.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
	}{
		{header: "Bearer abc", want: "abc"},
		{header: "bearer abc", want: "abc"},
		{header: "Basic abc", want: ""},
		{header: "", want: ""},
		{header: "Bearer ", want: ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, bearerToken(tt.header), "header %q", tt.header)
	}
}

func TestMissingEmployeeFields(t *testing.T) {
	assert.Empty(t, missingEmployeeFields(models.CreateEmployeeCommand{EmployeeID: "E1", FullName: "A", Email: "a@x", Department: "IT"}))
	assert.Equal(t, []string{"email", "department"},
		missingEmployeeFields(models.CreateEmployeeCommand{EmployeeID: "E1", FullName: "A", Email: " "}))
}
