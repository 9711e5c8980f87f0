// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"credcheck/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for credential persistence.
// This allows the application layer to handle specific outcomes without depending on store-specific errors.
var (
	// ErrCredentialNotFound is returned when no credential resolves from an identifier.
	ErrCredentialNotFound = errors.New("credential not found")
	// ErrDuplicateIdentifier is returned when a new credential reuses an identifier.
	ErrDuplicateIdentifier = errors.New("credential identifier already in use")
)

// CredentialRepository resolves identifiers to stored credentials.
// Implementations match only against the identifier fields they were constructed with.
type CredentialRepository interface {
	// FindByIdentifier returns the credential whose eligible fields match identifier,
	// or ErrCredentialNotFound.
	FindByIdentifier(ctx context.Context, identifier string) (*entity.StoredCredential, error)

	// Create persists a new credential. ID and timestamps are assigned when empty.
	Create(ctx context.Context, credential *entity.StoredCredential) error

	// UpdatePasswordHash replaces the hash of an existing credential and sets its rotation flag.
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string, mustRotate bool) error
}
