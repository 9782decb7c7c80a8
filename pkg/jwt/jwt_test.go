package jwt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateParse(t *testing.T) {
	tok, err := Generate("secreto", "bodega-1", RoleAdmin, "imanod-api", 5)
	require.NoError(t, err)

	userID, role, err := Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, "bodega-1", userID)
	assert.Equal(t, RoleAdmin, role)

	_, _, err = Parse("otro", tok)
	assert.Error(t, err)
}

func TestTokenExpirado(t *testing.T) {
	tok, err := Generate("secreto", "u", RoleOperator, "imanod-api", -1)
	require.NoError(t, err)
	_, _, err = Parse("secreto", tok)
	assert.Error(t, err)
}

func TestSecretVacio(t *testing.T) {
	_, err := Generate("", "u", RoleAdmin, "x", 5)
	assert.Error(t, err)
}
