package auth

import (
	"credcheck/config"
	"credcheck/internal/domain/entity"
	domainerrors "credcheck/internal/domain/errors"
	"credcheck/internal/domain/service"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// HasherParams collects every registered hashing algorithm.
type HasherParams struct {
	fx.In

	Config  *config.Config
	Hashers []service.PasswordHasher `group:"hashers"`
}

// credentialVerifier dispatches a stored hash to the algorithm that produced it.
// It holds only the immutable hasher list and is safe for concurrent use.
type credentialVerifier struct {
	hashers []service.PasswordHasher
}

// NewCredentialVerifier builds a verifier over the given algorithms, tried in order.
func NewCredentialVerifier(hashers ...service.PasswordHasher) service.CredentialVerifier {
	return &credentialVerifier{hashers: hashers}
}

// ProvideCredentialVerifier is the fx constructor over the "hashers" group.
func ProvideCredentialVerifier(params HasherParams) service.CredentialVerifier {
	return NewCredentialVerifier(params.Hashers...)
}

// ProvideDefaultHasher picks the algorithm used for new hashes from auth.algorithm.
func ProvideDefaultHasher(params HasherParams) (service.PasswordHasher, error) {
	algorithm := config.AlgorithmBcrypt
	if params.Config != nil && params.Config.Auth != nil && params.Config.Auth.Algorithm != "" {
		algorithm = params.Config.Auth.Algorithm
	}

	for _, h := range params.Hashers {
		if h.Name() == algorithm {
			return h, nil
		}
	}

	return nil, errors.Errorf("no password hasher registered for algorithm %q", algorithm)
}

// Verify reports whether candidatePassword matches the stored hash.
// An empty or unrecognised hash is a malformed credential, never a mismatch.
func (v *credentialVerifier) Verify(stored *entity.StoredCredential, candidatePassword string) (bool, error) {
	if stored == nil {
		return false, errors.WithStack(domainerrors.ErrInternalError.WithDetails("verify called without a stored credential"))
	}
	if stored.PasswordHash == "" {
		return false, errors.WithStack(domainerrors.ErrMalformedCredential.WithDetails("empty password hash"))
	}

	hasher := v.hasherFor(stored.PasswordHash)
	if hasher == nil {
		return false, errors.WithStack(domainerrors.ErrMalformedCredential.WithDetails("unrecognized hash encoding"))
	}

	return hasher.Verify(candidatePassword, stored.PasswordHash)
}

// NeedsRehash reports whether the stored hash should be upgraded on next rotation.
func (v *credentialVerifier) NeedsRehash(stored *entity.StoredCredential) bool {
	if stored == nil {
		return false
	}
	hasher := v.hasherFor(stored.PasswordHash)
	if hasher == nil {
		return false
	}

	return hasher.NeedsRehash(stored.PasswordHash)
}

func (v *credentialVerifier) hasherFor(hash string) service.PasswordHasher {
	for _, h := range v.hashers {
		if h.Recognizes(hash) {
			return h
		}
	}

	return nil
}
