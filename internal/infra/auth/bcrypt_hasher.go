// Package auth provides concrete implementations for authentication-related domain services.
package auth

import (
	"strings"

	"credcheck/config"
	domainerrors "credcheck/internal/domain/errors"
	"credcheck/internal/domain/service"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
)

var bcryptPrefixes = []string{"$2a$", "$2b$", "$2y$"}

// bcryptHashLen is the modular crypt length: "$2b$", two cost digits, "$",
// then a 22 character salt and a 31 character digest.
const bcryptHashLen = 60

// bcryptHasher is a concrete implementation of the PasswordHasher interface using bcrypt.
type bcryptHasher struct {
	cost int
}

// NewBcryptHasher is the constructor for bcryptHasher.
// The cost comes from auth.bcryptCost and falls back to bcrypt.DefaultCost.
func NewBcryptHasher(cfg *config.Config) service.PasswordHasher {
	cost := bcrypt.DefaultCost
	if cfg != nil && cfg.Auth != nil && cfg.Auth.BcryptCost != 0 {
		cost = cfg.Auth.BcryptCost
	}

	return NewBcryptHasherWithCost(cost)
}

// NewBcryptHasherWithCost creates a bcrypt hasher with an explicit cost factor.
func NewBcryptHasherWithCost(cost int) service.PasswordHasher {
	return &bcryptHasher{cost: cost}
}

func (h *bcryptHasher) Name() string {
	return config.AlgorithmBcrypt
}

// Hash generates a salted hash from a plaintext password using bcrypt.
// bcrypt automatically handles salt generation.
func (h *bcryptHasher) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", domainerrors.ErrPasswordHashFailed.WithDetails(err.Error()).WrapMessage("bcrypt")
	}

	return string(hash), nil
}

func (h *bcryptHasher) Recognizes(hash string) bool {
	for _, prefix := range bcryptPrefixes {
		if strings.HasPrefix(hash, prefix) {
			return true
		}
	}

	return false
}

// Verify compares a plaintext password with a bcrypt hash.
// The hash structure is checked first so a corrupt record never reads as a wrong password.
func (h *bcryptHasher) Verify(password, hash string) (bool, error) {
	if !h.Recognizes(hash) {
		return false, domainerrors.ErrMalformedCredential.WithDetails("not a bcrypt hash").WrapMessage("bcrypt")
	}
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return false, domainerrors.ErrMalformedCredential.WithDetails(err.Error()).WrapMessage("bcrypt")
	}
	if err := checkBcryptEncoding(hash); err != nil {
		return false, domainerrors.ErrMalformedCredential.WithDetails(err.Error()).WrapMessage("bcrypt")
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword), errors.Is(err, bcrypt.ErrPasswordTooLong):
		return false, nil
	default:
		// Salt or digest segments that fail to decode.
		return false, domainerrors.ErrMalformedCredential.WithDetails(err.Error()).WrapMessage("bcrypt")
	}
}

// NeedsRehash reports whether the stored cost is below the configured one.
func (h *bcryptHasher) NeedsRehash(hash string) bool {
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}

	return cost < h.cost
}

// checkBcryptEncoding rejects hashes the bcrypt package would still compare,
// such as ones with trailing bytes or a short digest.
func checkBcryptEncoding(hash string) error {
	if len(hash) != bcryptHashLen {
		return errors.Errorf("bcrypt hash is %d bytes, want %d", len(hash), bcryptHashLen)
	}
	if hash[6] != '$' {
		return errors.New("bcrypt cost is not followed by '$'")
	}
	for i := 7; i < len(hash); i++ {
		if !isBcryptBase64(hash[i]) {
			return errors.Errorf("invalid bcrypt base64 character at offset %d", i)
		}
	}

	return nil
}

func isBcryptBase64(c byte) bool {
	return c == '.' || c == '/' ||
		(c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9')
}
