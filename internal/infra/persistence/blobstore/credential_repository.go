package blobstore

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"credcheck/internal/domain/entity"
	domainerrors "credcheck/internal/domain/errors"
	"credcheck/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
)

const snapshotVersion = 1

// Snapshot is the JSON document stored under blob.key.
type Snapshot struct {
	Version     int                  `json:"version"`
	Credentials []SnapshotCredential `json:"credentials"`
}

// SnapshotCredential is one credential inside a Snapshot.
type SnapshotCredential struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username,omitempty"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"password_hash"`
	MustRotate   bool      `json:"must_rotate"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type credentialRepository struct {
	bucket *blob.Bucket
	key    string
	fields []entity.IdentifierField

	// mu serialises read-modify-write cycles within this process.
	mu sync.Mutex
}

// NewCredentialRepository returns a repository over the snapshot at key.
// A missing snapshot reads as an empty credential set.
func NewCredentialRepository(bucket *blob.Bucket, key string, fields []entity.IdentifierField) repository.CredentialRepository {
	return &credentialRepository{
		bucket: bucket,
		key:    key,
		fields: fields,
	}
}

func (r *credentialRepository) FindByIdentifier(ctx context.Context, identifier string) (*entity.StoredCredential, error) {
	snap, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	for _, field := range r.fields {
		if field.Normalize(identifier) == "" {
			continue
		}
		for i := range snap.Credentials {
			credential := snap.Credentials[i].toDomain()
			if credential.MatchesIdentifier(identifier, []entity.IdentifierField{field}) {
				return credential, nil
			}
		}
	}

	return nil, repository.ErrCredentialNotFound
}

func (r *credentialRepository) Create(ctx context.Context, credential *entity.StoredCredential) error {
	if err := credential.Validate(); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails(err.Error()))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load(ctx)
	if err != nil {
		return err
	}

	for i := range snap.Credentials {
		existing := snap.Credentials[i].toDomain()
		for _, field := range entity.DefaultIdentifierFields {
			if v := credential.Value(field); v != "" && existing.MatchesIdentifier(v, []entity.IdentifierField{field}) {
				return errors.Wrap(repository.ErrDuplicateIdentifier, "create credential")
			}
		}
	}

	now := time.Now().UTC()
	if credential.ID == uuid.Nil {
		credential.ID = uuid.New()
	}
	if credential.CreatedAt.IsZero() {
		credential.CreatedAt = now
	}
	credential.UpdatedAt = now

	snap.Credentials = append(snap.Credentials, fromDomain(credential))

	return r.save(ctx, snap)
}

func (r *credentialRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string, mustRotate bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap, err := r.load(ctx)
	if err != nil {
		return err
	}

	for i := range snap.Credentials {
		if snap.Credentials[i].ID != id {
			continue
		}
		snap.Credentials[i].PasswordHash = passwordHash
		snap.Credentials[i].MustRotate = mustRotate
		snap.Credentials[i].UpdatedAt = time.Now().UTC()

		return r.save(ctx, snap)
	}

	return repository.ErrCredentialNotFound
}

func (r *credentialRepository) load(ctx context.Context) (*Snapshot, error) {
	data, err := r.bucket.ReadAll(ctx, r.key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return &Snapshot{Version: snapshotVersion}, nil
		}

		return nil, domainerrors.NewStoreExecuteError(err, "failed to read credential snapshot")
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.WithStack(domainerrors.ErrMalformedCredential.WithDetails("credential snapshot is not valid JSON: " + err.Error()))
	}
	if snap.Version != snapshotVersion {
		return nil, errors.WithStack(domainerrors.ErrMalformedCredential.WithDetails("unsupported credential snapshot version"))
	}

	return &snap, nil
}

func (r *credentialRepository) save(ctx context.Context, snap *Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode credential snapshot")
	}

	if err := r.bucket.WriteAll(ctx, r.key, data, &blob.WriterOptions{ContentType: "application/json"}); err != nil {
		return domainerrors.NewStoreExecuteError(err, "failed to write credential snapshot")
	}

	return nil
}

func (c *SnapshotCredential) toDomain() *entity.StoredCredential {
	return &entity.StoredCredential{
		ID:           c.ID,
		Username:     c.Username,
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		MustRotate:   c.MustRotate,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}

func fromDomain(c *entity.StoredCredential) SnapshotCredential {
	return SnapshotCredential{
		ID:           c.ID,
		Username:     entity.IdentifierFieldUsername.Normalize(c.Username),
		Email:        entity.IdentifierFieldEmail.Normalize(c.Email),
		PasswordHash: c.PasswordHash,
		MustRotate:   c.MustRotate,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
