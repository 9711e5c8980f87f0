// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"
	"log/slog"

	"credcheck/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CheckInput defines the data required to check a password against a stored credential.
type CheckInput struct {
	Identifier string
	Password   string
}

// LogValue keeps the password out of structured logs.
func (in CheckInput) LogValue() slog.Value {
	return in.Request().LogValue()
}

// Request converts the input into the domain verification request.
func (in CheckInput) Request() entity.VerificationRequest {
	return entity.VerificationRequest{Identifier: in.Identifier, CandidatePassword: in.Password}
}

// BootstrapInput defines the initial credential injected at deployment time.
type BootstrapInput struct {
	Username string `validate:"required_without=Email,max=320"`
	Email    string `validate:"omitempty,email,max=320"`
	Password string `validate:"required,max=1024"`
}

// RotateInput defines the data required to replace a credential's password.
type RotateInput struct {
	Identifier      string `validate:"required,max=320"`
	CurrentPassword string
	NewPassword     string `validate:"required,max=1024"`
}

// --- Output DTOs ---

// CheckOutput reports how a check concluded. Failures that are not a plain
// mismatch are returned as errors instead.
type CheckOutput struct {
	Outcome      entity.VerificationOutcome `json:"outcome"`
	CredentialID uuid.UUID                  `json:"credential_id"`
	MustRotate   bool                       `json:"must_rotate"`
	NeedsRehash  bool                       `json:"needs_rehash"`
}

// BootstrapOutput reports the seeded credential.
type BootstrapOutput struct {
	CredentialID uuid.UUID `json:"credential_id"`
	Created      bool      `json:"created"`
}

// RotateOutput reports the rotated credential.
type RotateOutput struct {
	CredentialID uuid.UUID `json:"credential_id"`
}

// CredentialUsecase defines the credential operations exposed to the delivery layer.
type CredentialUsecase interface {
	// Check resolves the identifier and verifies the password against the stored hash.
	Check(ctx context.Context, input CheckInput) (*CheckOutput, error)
	// HashPassword applies the password policy and encodes a new hash with the default algorithm.
	HashPassword(ctx context.Context, password string) (string, error)
	// Bootstrap creates the injected initial credential unless it already exists.
	Bootstrap(ctx context.Context, input BootstrapInput) (*BootstrapOutput, error)
	// Rotate replaces the password of an existing credential and clears its rotation flag.
	Rotate(ctx context.Context, input RotateInput) (*RotateOutput, error)
}
