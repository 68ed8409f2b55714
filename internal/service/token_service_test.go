package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTTokenService_GenerateAndValidate(t *testing.T) {
	svc := NewJWTTokenService("test-secret-key", "token-ledger")

	token, err := svc.Generate("operator-1", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "operator-1", claims.Subject)
}

func TestJWTTokenService_RejectsWrongSecret(t *testing.T) {
	issuer := NewJWTTokenService("secret-a", "token-ledger")
	verifier := NewJWTTokenService("secret-b", "token-ledger")

	token, err := issuer.Generate("operator-1", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_RejectsWrongIssuer(t *testing.T) {
	issuer := NewJWTTokenService("secret", "someone-else")
	verifier := NewJWTTokenService("secret", "token-ledger")

	token, err := issuer.Generate("operator-1", time.Hour)
	require.NoError(t, err)

	_, err = verifier.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_RejectsExpired(t *testing.T) {
	svc := NewJWTTokenService("secret", "token-ledger")

	token, err := svc.Generate("operator-1", -time.Minute)
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.Error(t, err)
}

func TestJWTTokenService_RejectsGarbage(t *testing.T) {
	svc := NewJWTTokenService("secret", "token-ledger")
	_, err := svc.Validate("not-a-token")
	assert.Error(t, err)
}
