package mongodb

import (
	"context"
	"time"

	"credcheck/internal/domain/entity"
	domainerrors "credcheck/internal/domain/errors"
	"credcheck/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// identifierKeys maps each lookup field to its document key.
var identifierKeys = map[entity.IdentifierField]string{
	entity.IdentifierFieldUsername: "username",
	entity.IdentifierFieldEmail:    "email",
}

// credentialDocument is the stored shape of a credential.
type credentialDocument struct {
	ID           string    `bson:"_id"`
	Username     string    `bson:"username,omitempty"`
	Email        string    `bson:"email,omitempty"`
	PasswordHash string    `bson:"password_hash"`
	MustRotate   bool      `bson:"must_rotate"`
	CreatedAt    time.Time `bson:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at"`
}

type credentialRepository struct {
	coll   *mongo.Collection
	fields []entity.IdentifierField
}

var _ repository.CredentialRepository = (*credentialRepository)(nil)

// NewCredentialRepository instantiates a MongoDB implementation of the credential repository.
func NewCredentialRepository(coll *mongo.Collection, fields []entity.IdentifierField) repository.CredentialRepository {
	return &credentialRepository{
		coll:   coll,
		fields: fields,
	}
}

// EnsureIndexes creates the unique identifier indexes. Documents without a
// given identifier are left out of its index.
func EnsureIndexes(ctx context.Context, coll *mongo.Collection) error {
	models := make([]mongo.IndexModel, 0, len(identifierKeys))
	for _, field := range entity.DefaultIdentifierFields {
		key := identifierKeys[field]
		models = append(models, mongo.IndexModel{
			Keys: bson.D{{Key: key, Value: 1}},
			Options: options.Index().
				SetName("uniq_" + key).
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: key, Value: bson.D{{Key: "$type", Value: "string"}}}}),
		})
	}

	if _, err := coll.Indexes().CreateMany(ctx, models); err != nil {
		return errors.Wrap(err, "failed to create credential indexes")
	}

	return nil
}

func (cr *credentialRepository) FindByIdentifier(ctx context.Context, identifier string) (*entity.StoredCredential, error) {
	conds := bson.A{}
	for _, field := range cr.fields {
		value := field.Normalize(identifier)
		key, ok := identifierKeys[field]
		if value == "" || !ok {
			continue
		}
		conds = append(conds, bson.D{{Key: key, Value: value}})
	}
	if len(conds) == 0 {
		return nil, repository.ErrCredentialNotFound
	}

	filter := bson.D{{Key: "$or", Value: conds}}
	cur, err := cr.coll.Find(ctx, filter, options.Find().SetLimit(int64(len(conds))))
	if err != nil {
		return nil, domainerrors.NewStoreExecuteError(err, "failed to find credential")
	}

	var docs []credentialDocument
	if err := cur.All(ctx, &docs); err != nil {
		return nil, domainerrors.NewStoreExecuteError(err, "failed to decode credential")
	}

	// Earlier fields take precedence when documents match through different keys.
	for _, field := range cr.fields {
		for i := range docs {
			credential, err := docs[i].toDomain()
			if err != nil {
				return nil, err
			}
			if credential.MatchesIdentifier(identifier, []entity.IdentifierField{field}) {
				return credential, nil
			}
		}
	}

	return nil, repository.ErrCredentialNotFound
}

func (cr *credentialRepository) Create(ctx context.Context, credential *entity.StoredCredential) error {
	if err := credential.Validate(); err != nil {
		return errors.WithStack(domainerrors.ErrValidationFailed.WithDetails(err.Error()))
	}

	now := time.Now().UTC()
	if credential.ID == uuid.Nil {
		credential.ID = uuid.New()
	}
	if credential.CreatedAt.IsZero() {
		credential.CreatedAt = now
	}
	credential.UpdatedAt = now

	if _, err := cr.coll.InsertOne(ctx, fromDomain(credential)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return errors.Wrap(repository.ErrDuplicateIdentifier, "create credential")
		}

		return domainerrors.NewStoreExecuteError(err, "failed to create credential")
	}

	return nil
}

func (cr *credentialRepository) UpdatePasswordHash(ctx context.Context, id uuid.UUID, passwordHash string, mustRotate bool) error {
	filter := bson.D{{Key: "_id", Value: id.String()}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "password_hash", Value: passwordHash},
		{Key: "must_rotate", Value: mustRotate},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}

	res, err := cr.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return domainerrors.NewStoreExecuteError(err, "failed to update password hash")
	}
	if res.MatchedCount < 1 {
		return repository.ErrCredentialNotFound
	}

	return nil
}

func (d *credentialDocument) toDomain() (*entity.StoredCredential, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, errors.WithStack(domainerrors.ErrMalformedCredential.WithDetails("credential document has invalid _id " + d.ID))
	}

	return &entity.StoredCredential{
		ID:           id,
		Username:     d.Username,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		MustRotate:   d.MustRotate,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}, nil
}

// fromDomain stores identifiers in their normalised form.
func fromDomain(c *entity.StoredCredential) credentialDocument {
	return credentialDocument{
		ID:           c.ID.String(),
		Username:     entity.IdentifierFieldUsername.Normalize(c.Username),
		Email:        entity.IdentifierFieldEmail.Normalize(c.Email),
		PasswordHash: c.PasswordHash,
		MustRotate:   c.MustRotate,
		CreatedAt:    c.CreatedAt,
		UpdatedAt:    c.UpdatedAt,
	}
}
