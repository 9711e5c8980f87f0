// Package service defines interfaces for core, stateless domain logic.
// These services encapsulate business rules that don't naturally fit within a single entity.
package service

import "credcheck/internal/domain/entity"

// PasswordHasher defines one password hashing algorithm.
// This abstracts the underlying algorithm (e.g., bcrypt), keeping the domain pure.
type PasswordHasher interface {
	// Name identifies the algorithm, e.g. "bcrypt".
	Name() string

	// Hash generates a salted hash from a plaintext password.
	Hash(password string) (string, error)

	// Recognizes reports whether hash carries this algorithm's encoding prefix.
	Recognizes(hash string) bool

	// Verify compares a plaintext password with a hash in constant time.
	// A structurally invalid hash yields ErrMalformedCredential, never false.
	Verify(password, hash string) (bool, error)

	// NeedsRehash reports whether hash was produced with weaker parameters than the current ones.
	NeedsRehash(hash string) bool
}

// CredentialVerifier decides whether a candidate password matches a stored credential.
// It holds no mutable state and may be called concurrently.
type CredentialVerifier interface {
	Verify(stored *entity.StoredCredential, candidatePassword string) (bool, error)
	NeedsRehash(stored *entity.StoredCredential) bool
}

// PasswordPolicy validates new passwords before they are hashed.
type PasswordPolicy interface {
	Validate(password string) error
}
