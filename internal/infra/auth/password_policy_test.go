package auth

import (
	"testing"

	"credcheck/config"
	domainerrors "credcheck/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func strictPolicy() *passwordPolicy {
	return NewPasswordPolicy(&config.Config{PasswordStrength: &config.PasswordStrengthConfig{
		MinLength:        8,
		MaxLength:        64,
		RequireUppercase: true,
		RequireLowercase: true,
		RequireNumbers:   true,
		RequireSpecial:   true,
	}}).(*passwordPolicy)
}

func TestPasswordPolicy_Validate(t *testing.T) {
	policy := strictPolicy()

	// Test valid passwords
	for _, password := range []string{"StrongPass123!", "MySecure@Pass1", "Complex#Secret9", "Pässphräse123!"} {
		assert.NoError(t, policy.Validate(password), "Expected no error for valid password: %s", password)
	}

	testCases := []struct {
		password    string
		expectedErr string
	}{
		{"", "must be at least 8 characters long"},
		{"123", "must be at least 8 characters long"},
		{"Aa1!" + string(make([]byte, 70)), "must be at most 64 characters long"},
		{"PASSWORD123!", "must contain at least one lowercase letter"},
		{"secure123!", "must contain at least one uppercase letter"},
		{"SecureABC!", "must contain at least one number"},
		{"Secure1234", "must contain at least one special character"},
		{"Password123!", "contains forbidden words"},
		{"MyAdmin123!", "contains forbidden words"},
	}

	for _, tc := range testCases {
		err := policy.Validate(tc.password)
		assert.True(t, errors.Is(err, domainerrors.ErrPasswordPolicy), "Expected policy error for password: %q", tc.password)
		assert.Contains(t, err.Error(), tc.expectedErr)
	}
}

func TestPasswordPolicy_DefaultsWithoutSection(t *testing.T) {
	policy := NewPasswordPolicy(&config.Config{})

	assert.NoError(t, policy.Validate("correct horse battery"))
	assert.Error(t, policy.Validate("short"))
	assert.Error(t, policy.Validate("admin-admin"))
}

func TestPasswordPolicy_Helpers(t *testing.T) {
	policy := &passwordPolicy{}

	assert.True(t, policy.hasUppercase("Password"))
	assert.False(t, policy.hasUppercase("password"))

	assert.True(t, policy.hasLowercase("Password"))
	assert.False(t, policy.hasLowercase("PASSWORD"))

	assert.True(t, policy.hasNumbers("Password123"))
	assert.False(t, policy.hasNumbers("Password"))

	assert.True(t, policy.hasSpecialChars("Password!"))
	assert.False(t, policy.hasSpecialChars("Password"))

	words := []string{"password", "admin"}
	assert.True(t, policy.containsForbiddenWords("MyPassword123", words))
	assert.True(t, policy.containsForbiddenWords("AdminUser", words))
	assert.False(t, policy.containsForbiddenWords("SecurePass123", words))
}
