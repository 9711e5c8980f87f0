// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// IdentifierField names a credential attribute that may be used to resolve a lookup.
type IdentifierField string

const (
	IdentifierFieldUsername IdentifierField = "username"
	IdentifierFieldEmail    IdentifierField = "email"
)

// DefaultIdentifierFields is the resolution order used when none is configured.
var DefaultIdentifierFields = []IdentifierField{IdentifierFieldUsername, IdentifierFieldEmail}

// ParseIdentifierField converts a configuration value into an IdentifierField.
func ParseIdentifierField(s string) (IdentifierField, error) {
	switch IdentifierField(strings.ToLower(strings.TrimSpace(s))) {
	case IdentifierFieldUsername:
		return IdentifierFieldUsername, nil
	case IdentifierFieldEmail:
		return IdentifierFieldEmail, nil
	default:
		return "", errors.Errorf("unknown identifier field: %q", s)
	}
}

// ParseIdentifierFields converts a list of configuration values, dropping duplicates.
// An empty list yields DefaultIdentifierFields.
func ParseIdentifierFields(values []string) ([]IdentifierField, error) {
	if len(values) == 0 {
		return append([]IdentifierField(nil), DefaultIdentifierFields...), nil
	}

	fields := make([]IdentifierField, 0, len(values))
	seen := make(map[IdentifierField]struct{}, len(values))
	for _, v := range values {
		field, err := ParseIdentifierField(v)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[field]; ok {
			continue
		}
		seen[field] = struct{}{}
		fields = append(fields, field)
	}

	return fields, nil
}

// Normalize returns the canonical form of a raw identifier for this field.
// Emails are compared case-insensitively; usernames are case-sensitive.
func (f IdentifierField) Normalize(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if f == IdentifierFieldEmail {
		return strings.ToLower(trimmed)
	}

	return trimmed
}

// StoredCredential represents one principal's persisted authentication secret.
// The verifier only reads it; creation and rotation belong to the credential usecase.
type StoredCredential struct {
	ID           uuid.UUID // The unique ID of the credential record.
	Username     string    // Login name; part of the identifier set when non-empty.
	Email        string    // Contact address; part of the identifier set when non-empty.
	PasswordHash string    // Encoded one-way hash, algorithm parameters included. Never a plaintext.
	MustRotate   bool      // Set for injected bootstrap credentials until the first rotation.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identifiers returns the set of strings that resolve to this credential.
func (c *StoredCredential) Identifiers() []string {
	ids := make([]string, 0, 2)
	if c.Username != "" {
		ids = append(ids, c.Username)
	}
	if c.Email != "" {
		ids = append(ids, c.Email)
	}

	return ids
}

// HasIdentifier reports whether s is exactly one of the credential's identifiers.
func (c *StoredCredential) HasIdentifier(s string) bool {
	for _, id := range c.Identifiers() {
		if id == s {
			return true
		}
	}

	return false
}

// Value returns the credential attribute backing the given identifier field.
func (c *StoredCredential) Value(field IdentifierField) string {
	switch field {
	case IdentifierFieldUsername:
		return c.Username
	case IdentifierFieldEmail:
		return c.Email
	default:
		return ""
	}
}

// MatchesIdentifier reports whether identifier resolves to this credential through any of fields.
func (c *StoredCredential) MatchesIdentifier(identifier string, fields []IdentifierField) bool {
	for _, field := range fields {
		value := c.Value(field)
		if value != "" && field.Normalize(value) == field.Normalize(identifier) {
			return true
		}
	}

	return false
}

// Validate checks the structural invariants of a credential before it is persisted.
func (c *StoredCredential) Validate() error {
	if len(c.Identifiers()) == 0 {
		return errors.New("credential must have at least one identifier")
	}
	if c.PasswordHash == "" {
		return errors.New("credential must have a password hash")
	}

	return nil
}

// VerificationRequest is the caller-supplied input to a single credential check.
// It is never persisted, and the candidate password never reaches a log line.
// The candidate may be any string; one that cannot match is a mismatch.
type VerificationRequest struct {
	Identifier        string `validate:"required,max=320"`
	CandidatePassword string
}

// String redacts the candidate password.
func (r VerificationRequest) String() string {
	return "VerificationRequest{Identifier: " + r.Identifier + ", CandidatePassword: [REDACTED]}"
}

// LogValue keeps the candidate password out of structured logs.
func (r VerificationRequest) LogValue() slog.Value {
	return slog.GroupValue(slog.String("identifier", r.Identifier))
}

// VerificationOutcome is the result category of a credential check.
type VerificationOutcome string

const (
	OutcomeMatch            VerificationOutcome = "match"
	OutcomeMismatch         VerificationOutcome = "mismatch"
	OutcomeNotFound         VerificationOutcome = "not_found"
	OutcomeMalformed        VerificationOutcome = "malformed"
	OutcomeRotationRequired VerificationOutcome = "rotation_required"
)

// Succeeded reports whether the candidate password was accepted.
func (o VerificationOutcome) Succeeded() bool {
	return o == OutcomeMatch || o == OutcomeRotationRequired
}
