package services_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/FarahBaraket-03/ChatTily/internal/core/services"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := services.NewTokenService("test-secret")

	token, err := svc.GenerateToken("user-42")
	require.NoError(t, err)

	userID, err := svc.ValidateToken(token)
	require.NoError(t, err)
	require.Equal(t, "user-42", userID)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := services.NewTokenService("secret-a").GenerateToken("user-42")
	require.NoError(t, err)

	_, err = services.NewTokenService("secret-b").ValidateToken(token)
	require.Error(t, err)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := services.NewTokenService("secret").ValidateToken("not.a.token")
	require.Error(t, err)
}
