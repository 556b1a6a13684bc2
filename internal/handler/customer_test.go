package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithoutPasswords(t *testing.T) {
	account := map[string]any{
		"email":            "jane@example.com",
		"password":         "secret1",
		"new_password":     "secret2",
		"current_password": "secret0",
	}

	assert.Equal(t, map[string]any{"email": "jane@example.com"}, withoutPasswords(account))
	assert.Len(t, account, 4)
}
