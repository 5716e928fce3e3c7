package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	t.Parallel()

	user, err := NewUser("student@example.com", "correct horse battery staple")
	require.NoError(t, err)

	assert.Equal(t, "student@example.com", user.Email)
	assert.NotEmpty(t, user.Password)
	assert.Empty(t, user.HashedPassword)
}

func TestUserValidate(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		email    string
		password string
		expected error
	}{
		{"valid", "a@example.com", "a long enough password", nil},
		{"empty email", "", "a long enough password", ErrEmptyEmail},
		{"malformed email", "not-an-email", "a long enough password", ErrInvalidEmail},
		{"short password", "a@example.com", "short", ErrPasswordTooShort},
		{"overlong password", "a@example.com", strings.Repeat("x", 73), ErrPasswordTooLong},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := NewUser(tc.email, tc.password)
			if tc.expected == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tc.expected)
			}
		})
	}
}

func TestUserValidateWithHashedPasswordOnly(t *testing.T) {
	t.Parallel()

	user, err := NewUser("a@example.com", "a long enough password")
	require.NoError(t, err)

	// Users loaded from the store carry only the hash.
	user.Password = ""
	user.HashedPassword = "$2a$10$abcdefghijklmnopqrstuv"
	assert.NoError(t, user.Validate())

	user.HashedPassword = ""
	assert.ErrorIs(t, user.Validate(), ErrEmptyPassword)
}
