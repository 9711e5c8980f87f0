// Package persistence selects the credential store named by store.driver.
package persistence

import (
	"context"

	"credcheck/config"
	"credcheck/internal/domain/entity"
	"credcheck/internal/domain/repository"
	"credcheck/internal/infra/persistence/blobstore"
	"credcheck/internal/infra/persistence/mongodb"
	"credcheck/internal/infra/persistence/postgres"

	"github.com/pkg/errors"
	"go.uber.org/fx"
	"gocloud.dev/blob"
)

// Module provides the CredentialRepository and TransactionManager for driver.
// Only the selected store is constructed, so other sections may be absent.
func Module(driver string) fx.Option {
	common := fx.Provide(NewIdentifierFields)

	switch driver {
	case config.StoreDriverPostgres:
		return fx.Options(common, fx.Provide(
			postgres.New,
			postgres.NewCredentialRepository,
			postgres.NewTransactionManager,
		))
	case config.StoreDriverMongoDB:
		return fx.Options(common, fx.Provide(
			mongodb.New,
			mongodb.NewCredentialRepository,
			NewDirectTransactionManager,
		))
	case config.StoreDriverBlob:
		return fx.Options(common, fx.Provide(
			blobstore.New,
			newBlobCredentialRepository,
			NewDirectTransactionManager,
		))
	default:
		return fx.Error(errors.Errorf("unsupported store driver %q", driver))
	}
}

// NewIdentifierFields resolves lookup.fields, defaulting to username then email.
func NewIdentifierFields(cfg *config.Config) ([]entity.IdentifierField, error) {
	fields, err := entity.ParseIdentifierFields(cfg.Lookup.Fields)
	if err != nil {
		return nil, errors.Wrap(err, "invalid lookup.fields")
	}

	return fields, nil
}

func newBlobCredentialRepository(bucket *blob.Bucket, cfg *config.Config, fields []entity.IdentifierField) repository.CredentialRepository {
	return blobstore.NewCredentialRepository(bucket, cfg.Blob.Key, fields)
}

// directTransactionManager serves stores without multi-statement transactions.
// The callback runs against the shared repository and its writes are not rolled back.
type directTransactionManager struct {
	factory directRepositoryFactory
}

type directRepositoryFactory struct {
	credentialRepo repository.CredentialRepository
}

func (f directRepositoryFactory) CredentialRepo() repository.CredentialRepository {
	return f.credentialRepo
}

// NewDirectTransactionManager wraps repo in a TransactionManager that runs callbacks directly.
func NewDirectTransactionManager(repo repository.CredentialRepository) repository.TransactionManager {
	return &directTransactionManager{factory: directRepositoryFactory{credentialRepo: repo}}
}

func (tm *directTransactionManager) Execute(ctx context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	return fn(tm.factory)
}
