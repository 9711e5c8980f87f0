package entity

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentifierFields(t *testing.T) {
	fields, err := ParseIdentifierFields(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultIdentifierFields, fields)

	fields, err = ParseIdentifierFields([]string{" Email ", "username", "email"})
	require.NoError(t, err)
	assert.Equal(t, []IdentifierField{IdentifierFieldEmail, IdentifierFieldUsername}, fields)

	_, err = ParseIdentifierFields([]string{"phone"})
	assert.Error(t, err)
}

func TestIdentifierField_Normalize(t *testing.T) {
	assert.Equal(t, "admin@example.com", IdentifierFieldEmail.Normalize("  Admin@Example.COM "))
	assert.Equal(t, "Admin", IdentifierFieldUsername.Normalize(" Admin "))
}

func TestStoredCredential_Identifiers(t *testing.T) {
	cred := &StoredCredential{Username: "admin", Email: "admin@example.com"}
	assert.Equal(t, []string{"admin", "admin@example.com"}, cred.Identifiers())

	cred = &StoredCredential{Email: "ops@example.com"}
	assert.Equal(t, []string{"ops@example.com"}, cred.Identifiers())
}

func TestStoredCredential_HasIdentifier(t *testing.T) {
	cred := &StoredCredential{Username: "admin"}

	assert.True(t, cred.HasIdentifier("admin"))
	assert.False(t, cred.HasIdentifier("Admin"))
	assert.False(t, cred.HasIdentifier(""))
}

func TestStoredCredential_MatchesIdentifier(t *testing.T) {
	cred := &StoredCredential{Username: "admin", Email: "admin@example.com"}

	assert.True(t, cred.MatchesIdentifier("admin", DefaultIdentifierFields))
	assert.True(t, cred.MatchesIdentifier("ADMIN@example.com", DefaultIdentifierFields))
	assert.False(t, cred.MatchesIdentifier("Admin", DefaultIdentifierFields))
	assert.False(t, cred.MatchesIdentifier("admin@example.com", []IdentifierField{IdentifierFieldUsername}))
}

func TestStoredCredential_Validate(t *testing.T) {
	assert.Error(t, (&StoredCredential{PasswordHash: "$2a$10$x"}).Validate())
	assert.Error(t, (&StoredCredential{Username: "admin"}).Validate())
	assert.NoError(t, (&StoredCredential{Username: "admin", PasswordHash: "$2a$10$x"}).Validate())
}

func TestVerificationRequest_RedactsPassword(t *testing.T) {
	req := VerificationRequest{Identifier: "admin", CandidatePassword: "hunter2"}

	assert.NotContains(t, fmt.Sprintf("%v", req), "hunter2")
	assert.NotContains(t, req.String(), "hunter2")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("check", slog.Any("request", req))
	assert.NotContains(t, buf.String(), "hunter2")
	assert.Contains(t, buf.String(), "admin")
}

func TestVerificationOutcome_Succeeded(t *testing.T) {
	assert.True(t, OutcomeMatch.Succeeded())
	assert.True(t, OutcomeRotationRequired.Succeeded())
	assert.False(t, OutcomeMismatch.Succeeded())
	assert.False(t, OutcomeNotFound.Succeeded())
	assert.False(t, OutcomeMalformed.Succeeded())
}
