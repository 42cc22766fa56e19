package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyPassword(t *testing.T) {
	user := User{Password: HashPassword("secret123")}

	assert.True(t, user.VerifyPassword("secret123"))
	assert.False(t, user.VerifyPassword("wrong"))
}

func TestUserJSONOmitsPassword(t *testing.T) {
	user := User{
		ID:       1,
		Username: "someone",
		Email:    "someone@example.com",
		Password: HashPassword("secret123"),
	}

	out, err := json.Marshal(user)
	require.NoError(t, err)

	assert.NotContains(t, string(out), "Password")
	assert.NotContains(t, string(out), "argon2id")
}
