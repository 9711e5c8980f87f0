package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"credcheck/config"
	domainerrors "credcheck/internal/domain/errors"
	"credcheck/internal/domain/service"

	"golang.org/x/crypto/argon2"
)

const argon2idPrefix = "$argon2id$"

// Upper bounds accepted from a stored hash. Anything larger is treated as
// corrupt rather than handed to argon2.IDKey.
const (
	maxArgon2Memory     = 4 * 1024 * 1024 // KiB, i.e. 4 GiB
	maxArgon2Iterations = 64
	maxArgon2Bytes      = 1024 // salt and key length
)

// DefaultArgon2Params follows the OWASP baseline for Argon2id.
var DefaultArgon2Params = config.Argon2Config{
	Memory:      64 * 1024,
	Iterations:  3,
	Parallelism: 2,
	SaltLength:  16,
	KeyLength:   32,
}

// argon2idHasher stores hashes in the PHC string format:
//
//	$argon2id$v=19$m=65536,t=3,p=2$<base64-salt>$<base64-hash>
type argon2idHasher struct {
	params config.Argon2Config
}

// NewArgon2idHasher builds an Argon2id hasher from auth.argon2, filling unset fields with defaults.
func NewArgon2idHasher(cfg *config.Config) service.PasswordHasher {
	params := DefaultArgon2Params
	if cfg != nil && cfg.Auth != nil {
		params = mergeArgon2Params(cfg.Auth.Argon2)
	}

	return NewArgon2idHasherWithParams(params)
}

// NewArgon2idHasherWithParams creates an Argon2id hasher with explicit parameters.
func NewArgon2idHasherWithParams(params config.Argon2Config) service.PasswordHasher {
	return &argon2idHasher{params: mergeArgon2Params(params)}
}

func mergeArgon2Params(p config.Argon2Config) config.Argon2Config {
	if p.Memory == 0 {
		p.Memory = DefaultArgon2Params.Memory
	}
	if p.Iterations == 0 {
		p.Iterations = DefaultArgon2Params.Iterations
	}
	if p.Parallelism == 0 {
		p.Parallelism = DefaultArgon2Params.Parallelism
	}
	if p.SaltLength == 0 {
		p.SaltLength = DefaultArgon2Params.SaltLength
	}
	if p.KeyLength == 0 {
		p.KeyLength = DefaultArgon2Params.KeyLength
	}

	return p
}

func (h *argon2idHasher) Name() string {
	return config.AlgorithmArgon2id
}

func (h *argon2idHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", domainerrors.ErrPasswordHashFailed.WithDetails(err.Error()).WrapMessage("argon2id salt")
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Iterations, h.params.Memory, h.params.Parallelism, h.params.KeyLength)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2idPrefix,
		argon2.Version,
		h.params.Memory, h.params.Iterations, h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *argon2idHasher) Recognizes(hash string) bool {
	return strings.HasPrefix(hash, argon2idPrefix)
}

func (h *argon2idHasher) Verify(password, hash string) (bool, error) {
	decoded, err := decodeArgon2id(hash)
	if err != nil {
		return false, domainerrors.ErrMalformedCredential.WithDetails(err.Error()).WrapMessage("argon2id")
	}

	candidate := argon2.IDKey([]byte(password), decoded.salt,
		decoded.params.Iterations, decoded.params.Memory, decoded.params.Parallelism, uint32(len(decoded.key)))

	return subtle.ConstantTimeCompare(candidate, decoded.key) == 1, nil
}

func (h *argon2idHasher) NeedsRehash(hash string) bool {
	decoded, err := decodeArgon2id(hash)
	if err != nil {
		return false
	}

	return decoded.params.Memory < h.params.Memory ||
		decoded.params.Iterations < h.params.Iterations ||
		decoded.params.Parallelism < h.params.Parallelism ||
		uint32(len(decoded.key)) < h.params.KeyLength
}

type argon2idHash struct {
	params config.Argon2Config
	salt   []byte
	key    []byte
}

func decodeArgon2id(hash string) (*argon2idHash, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[0] != "" || parts[1] != "argon2id" {
		return nil, fmt.Errorf("expected 6 PHC segments, got %d", len(parts))
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return nil, fmt.Errorf("parse version: %w", err)
	}
	if version != argon2.Version {
		return nil, fmt.Errorf("unsupported argon2 version %d", version)
	}

	var out argon2idHash
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d",
		&out.params.Memory, &out.params.Iterations, &out.params.Parallelism); err != nil {
		return nil, fmt.Errorf("parse parameters: %w", err)
	}
	if out.params.Memory == 0 || out.params.Iterations == 0 || out.params.Parallelism == 0 {
		return nil, fmt.Errorf("zero parameter in %q", parts[3])
	}
	if out.params.Memory > maxArgon2Memory || out.params.Iterations > maxArgon2Iterations {
		return nil, fmt.Errorf("parameters out of range in %q", parts[3])
	}
	if len(parts[4]) > base64.RawStdEncoding.EncodedLen(maxArgon2Bytes) ||
		len(parts[5]) > base64.RawStdEncoding.EncodedLen(maxArgon2Bytes) {
		return nil, fmt.Errorf("salt or key longer than %d bytes", maxArgon2Bytes)
	}

	var err error
	if out.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil || len(out.salt) == 0 {
		return nil, fmt.Errorf("decode salt: %v", err)
	}
	if out.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil || len(out.key) < 4 {
		return nil, fmt.Errorf("decode key: %v", err)
	}
	out.params.SaltLength = uint32(len(out.salt))
	out.params.KeyLength = uint32(len(out.key))

	return &out, nil
}
