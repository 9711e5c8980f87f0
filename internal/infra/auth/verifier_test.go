package auth

import (
	"strings"
	"sync"
	"testing"

	"credcheck/config"
	"credcheck/internal/domain/entity"
	domainerrors "credcheck/internal/domain/errors"
	"credcheck/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestVerifier() (service.CredentialVerifier, service.PasswordHasher, service.PasswordHasher) {
	bcryptH := NewBcryptHasherWithCost(bcrypt.MinCost)
	argonH := NewArgon2idHasherWithParams(testArgon2Params)

	return NewCredentialVerifier(bcryptH, argonH), bcryptH, argonH
}

func storedWith(t *testing.T, hasher service.PasswordHasher, password string) *entity.StoredCredential {
	t.Helper()

	hash, err := hasher.Hash(password)
	require.NoError(t, err)

	return &entity.StoredCredential{Username: "admin", PasswordHash: hash}
}

func TestCredentialVerifier_Verify(t *testing.T) {
	verifier, bcryptH, argonH := newTestVerifier()

	for _, hasher := range []service.PasswordHasher{bcryptH, argonH} {
		t.Run(hasher.Name(), func(t *testing.T) {
			stored := storedWith(t, hasher, "admin123")

			tests := []struct {
				candidate string
				want      bool
			}{
				{candidate: "admin123", want: true},
				{candidate: "Admin123", want: false},
				{candidate: "", want: false},
			}

			for _, tt := range tests {
				ok, err := verifier.Verify(stored, tt.candidate)
				require.NoError(t, err)
				assert.Equal(t, tt.want, ok, "candidate %q", tt.candidate)
			}
		})
	}
}

func TestCredentialVerifier_LongCandidate(t *testing.T) {
	verifier, bcryptH, argonH := newTestVerifier()
	candidate := strings.Repeat("admin123", 256)

	for _, hasher := range []service.PasswordHasher{bcryptH, argonH} {
		t.Run(hasher.Name(), func(t *testing.T) {
			ok, err := verifier.Verify(storedWith(t, hasher, "admin123"), candidate)

			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestCredentialVerifier_IsDeterministic(t *testing.T) {
	verifier, bcryptH, _ := newTestVerifier()
	stored := storedWith(t, bcryptH, "admin123")

	for range 5 {
		ok, err := verifier.Verify(stored, "admin123")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = verifier.Verify(stored, "admin124")
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestCredentialVerifier_MalformedStoredHash(t *testing.T) {
	verifier, bcryptH, _ := newTestVerifier()
	valid, err := bcryptH.Hash("admin123")
	require.NoError(t, err)

	tests := []struct {
		name string
		hash string
	}{
		{name: "empty", hash: ""},
		{name: "plaintext stored by mistake", hash: "admin123"},
		{name: "unknown scheme", hash: "$pbkdf2-sha256$29000$abc$def"},
		{name: "truncated bcrypt", hash: "$2b$10$tooShort"},
		{name: "truncated argon2id", hash: "$argon2id$v=19$m=1024"},
		{name: "bcrypt with trailing junk", hash: valid + "junk"},
		{name: "bcrypt with trailing newline", hash: valid + "\n"},
		{name: "bcrypt missing last byte", hash: valid[:len(valid)-1]},
		{name: "bcrypt digest outside alphabet", hash: valid[:len(valid)-1] + "="},
		{name: "argon2id memory beyond limit", hash: "$argon2id$v=19$m=4294967295,t=1,p=1$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNoaGFzaA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stored := &entity.StoredCredential{Username: "admin", PasswordHash: tt.hash}

			// Even the right password must not succeed against a corrupt record.
			ok, err := verifier.Verify(stored, "admin123")
			assert.False(t, ok)
			assert.True(t, errors.Is(err, domainerrors.ErrMalformedCredential), "got %v", err)
			assert.Equal(t, domainerrors.ExitDataProblem, domainerrors.ExitCodeOf(err))
		})
	}
}

func TestCredentialVerifier_NilStored(t *testing.T) {
	verifier, _, _ := newTestVerifier()

	ok, err := verifier.Verify(nil, "admin123")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, domainerrors.ErrInternalError))
	assert.False(t, verifier.NeedsRehash(nil))
}

func TestCredentialVerifier_ConcurrentUse(t *testing.T) {
	verifier, bcryptH, argonH := newTestVerifier()
	stored := []*entity.StoredCredential{
		storedWith(t, bcryptH, "admin123"),
		storedWith(t, argonH, "admin123"),
	}

	var wg sync.WaitGroup
	results := make(chan bool, 32)
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			candidate := "admin123"
			if i%2 == 1 {
				candidate = "Admin123"
			}
			ok, err := verifier.Verify(stored[i%len(stored)], candidate)
			if err == nil {
				results <- ok == (i%2 == 0)
			} else {
				results <- false
			}
		}(i)
	}
	wg.Wait()
	close(results)

	for correct := range results {
		assert.True(t, correct)
	}
}

func TestCredentialVerifier_NeedsRehash(t *testing.T) {
	verifier := NewCredentialVerifier(NewBcryptHasherWithCost(bcrypt.MinCost + 1))
	stored := storedWith(t, NewBcryptHasherWithCost(bcrypt.MinCost), "StrongPass123!")

	assert.True(t, verifier.NeedsRehash(stored))
	assert.False(t, verifier.NeedsRehash(&entity.StoredCredential{PasswordHash: "unknown"}))
}

func TestProvideDefaultHasher(t *testing.T) {
	hashers := []service.PasswordHasher{NewBcryptHasherWithCost(bcrypt.MinCost), NewArgon2idHasherWithParams(testArgon2Params)}

	h, err := ProvideDefaultHasher(HasherParams{Config: &config.Config{}, Hashers: hashers})
	require.NoError(t, err)
	assert.Equal(t, config.AlgorithmBcrypt, h.Name())

	h, err = ProvideDefaultHasher(HasherParams{
		Config:  &config.Config{Auth: &config.AuthConfig{Algorithm: config.AlgorithmArgon2id}},
		Hashers: hashers,
	})
	require.NoError(t, err)
	assert.Equal(t, config.AlgorithmArgon2id, h.Name())

	_, err = ProvideDefaultHasher(HasherParams{
		Config:  &config.Config{Auth: &config.AuthConfig{Algorithm: config.AlgorithmArgon2id}},
		Hashers: hashers[:1],
	})
	assert.Error(t, err)
}
