// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"
	"time"

	"credcheck/internal/domain/entity"
	domainerrors "credcheck/internal/domain/errors"
	"credcheck/internal/domain/repository"
	"credcheck/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/plugin/dbresolver"
)

// identifierColumns maps each lookup field to its column in admin_credentials.
var identifierColumns = map[entity.IdentifierField]string{
	entity.IdentifierFieldUsername: "username",
	entity.IdentifierFieldEmail:    "email",
}

// credentialRepository implements the domain.CredentialRepository interface.
type credentialRepository struct {
	db     *gorm.DB
	fields []entity.IdentifierField
}

// NewCredentialRepository is the constructor for credentialRepository.
// Lookups only consult the given fields, in order of precedence.
func NewCredentialRepository(db *gorm.DB, fields []entity.IdentifierField) repository.CredentialRepository {
	return &credentialRepository{
		db:     db,
		fields: fields,
	}
}

// FindByIdentifier resolves identifier against the declared fields on the primary.
// When rows match through different fields, the earlier field wins.
func (repo *credentialRepository) FindByIdentifier(ctx context.Context, identifier string) (*entity.StoredCredential, error) {
	conds := make([]clause.Expression, 0, len(repo.fields))
	for _, field := range repo.fields {
		value := field.Normalize(identifier)
		column, ok := identifierColumns[field]
		if value == "" || !ok {
			continue
		}
		conds = append(conds, clause.Eq{Column: clause.Column{Name: column}, Value: value})
	}
	if len(conds) == 0 {
		return nil, repository.ErrCredentialNotFound
	}

	var credentialMs []*model.CredentialModel
	err := repo.db.WithContext(ctx).
		Clauses(dbresolver.Write).
		Where(clause.Or(conds...)).
		Limit(len(conds)).
		Find(&credentialMs).Error
	if err != nil {
		return nil, domainerrors.NewStoreExecuteError(err, "failed to find credential")
	}

	for _, field := range repo.fields {
		for _, credentialM := range credentialMs {
			credential := toCredentialDomain(credentialM)
			if credential.MatchesIdentifier(identifier, []entity.IdentifierField{field}) {
				return credential, nil
			}
		}
	}

	return nil, repository.ErrCredentialNotFound
}

// Create persists a new credential record.
func (repo *credentialRepository) Create(ctx context.Context, credential *entity.StoredCredential) error {
	if err := credential.Validate(); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails(err.Error()))
	}

	credentialM := fromCredentialDomain(credential)
	if err := repo.db.WithContext(ctx).Create(credentialM).Error; err != nil {
		// Convert PostgreSQL errors to domain errors
		if isUniqueConstraintViolation(err) {
			return errors.Wrap(repository.ErrDuplicateIdentifier, "create credential")
		}
		if isNotNullConstraintViolation(err) {
			return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("missing required credential information"))
		}

		return domainerrors.NewStoreExecuteError(err, "failed to create credential")
	}

	// Update the entity with generated values
	credential.ID = credentialM.ID
	credential.CreatedAt = credentialM.CreatedAt
	credential.UpdatedAt = credentialM.UpdatedAt

	return nil
}

// UpdatePasswordHash replaces the stored hash and rotation flag of a credential.
func (repo *credentialRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string, mustRotate bool) error {
	result := repo.db.WithContext(ctx).
		Model(&model.CredentialModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"password_hash": passwordHash,
			"must_rotate":   mustRotate,
			"updated_at":    time.Now().UTC(),
		})
	if result.Error != nil {
		return domainerrors.NewStoreExecuteError(result.Error, "failed to update password hash")
	}

	// If no rows were affected, it means the credential was not found.
	if result.RowsAffected == 0 {
		return repository.ErrCredentialNotFound
	}

	return nil
}

// --- Mapper Functions ---

// toCredentialDomain converts a GORM CredentialModel to a domain StoredCredential entity.
func toCredentialDomain(data *model.CredentialModel) *entity.StoredCredential {
	if data == nil {
		return nil
	}

	credential := &entity.StoredCredential{
		ID:           data.ID,
		PasswordHash: data.PasswordHash,
		MustRotate:   data.MustRotate,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
	if data.Username != nil {
		credential.Username = *data.Username
	}
	if data.Email != nil {
		credential.Email = *data.Email
	}

	return credential
}

// fromCredentialDomain converts a domain StoredCredential entity to a GORM CredentialModel.
// Identifiers are stored in their normalised form.
func fromCredentialDomain(data *entity.StoredCredential) *model.CredentialModel {
	if data == nil {
		return nil
	}

	return &model.CredentialModel{
		ID:           data.ID,
		Username:     nullableIdentifier(entity.IdentifierFieldUsername.Normalize(data.Username)),
		Email:        nullableIdentifier(entity.IdentifierFieldEmail.Normalize(data.Email)),
		PasswordHash: data.PasswordHash,
		MustRotate:   data.MustRotate,
		CreatedAt:    data.CreatedAt,
		UpdatedAt:    data.UpdatedAt,
	}
}

func nullableIdentifier(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}
