// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"time"

	"credcheck/config"
	deliverycontext "credcheck/internal/delivery/context"
	"credcheck/internal/domain/entity"
	domainerrors "credcheck/internal/domain/errors"
	"credcheck/internal/domain/repository"
	"credcheck/internal/domain/service"
	"credcheck/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

const defaultVerifyTimeout = 5 * time.Second

// credentialService implements the CredentialUsecase interface.
type credentialService struct {
	txManager      repository.TransactionManager
	credentialRepo repository.CredentialRepository
	verifier       service.CredentialVerifier
	hasher         service.PasswordHasher
	policy         service.PasswordPolicy
	verifyTimeout  time.Duration
	validate       *validator.Validate
	logger         *slog.Logger
}

// CredentialServiceParams holds dependencies for CredentialService, injected by Fx.
type CredentialServiceParams struct {
	fx.In

	// The store is absent for offline hashing; store-backed operations then fail.
	TxManager      repository.TransactionManager   `optional:"true"`
	CredentialRepo repository.CredentialRepository `optional:"true"`
	Verifier       service.CredentialVerifier
	Hasher         service.PasswordHasher
	Policy         service.PasswordPolicy
	Config         *config.Config
	Logger         *slog.Logger
}

// NewCredentialService is the constructor for credentialService. It receives all dependencies as interfaces.
func NewCredentialService(params CredentialServiceParams) usecase.CredentialUsecase {
	timeout := defaultVerifyTimeout
	if params.Config != nil && params.Config.Verify != nil && params.Config.Verify.Timeout > 0 {
		timeout = params.Config.Verify.Timeout
	}

	return &credentialService{
		txManager:      params.TxManager,
		credentialRepo: params.CredentialRepo,
		verifier:       params.Verifier,
		hasher:         params.Hasher,
		policy:         params.Policy,
		verifyTimeout:  timeout,
		validate:       validator.New(),
		logger:         params.Logger,
	}
}

// log returns a run-scoped logger if available, otherwise falls back to the service's logger.
func (srv *credentialService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *credentialService) requireStore() error {
	if srv.credentialRepo == nil || srv.txManager == nil {
		return errors.WithStack(domainerrors.ErrInternalError.WithDetails("no credential store configured"))
	}

	return nil
}

type verifyResult struct {
	ok  bool
	err error
}

// Check resolves the identifier and verifies the password against the stored hash.
// The whole check is bounded by verify.timeout; an abandoned verification
// finishes in the background and its result is discarded.
func (srv *credentialService) Check(ctx context.Context, input usecase.CheckInput) (*usecase.CheckOutput, error) {
	if err := srv.requireStore(); err != nil {
		return nil, err
	}

	req := input.Request()
	if err := srv.validate.Struct(req); err != nil {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails(err.Error()))
	}

	ctx, cancel := context.WithTimeout(ctx, srv.verifyTimeout)
	defer cancel()

	srv.log(ctx).Debug("Starting credential check", slog.Any("request", req))

	stored, err := srv.credentialRepo.FindByIdentifier(ctx, req.Identifier)
	if err != nil {
		if errors.Is(err, repository.ErrCredentialNotFound) {
			srv.log(ctx).Info("Credential check rejected", slog.String("identifier", req.Identifier), slog.Any("outcome", entity.OutcomeNotFound))

			return nil, domainerrors.ErrCredentialNotFound.WrapMessage("check credential")
		}
		if ctx.Err() != nil {
			return nil, srv.timeoutError(ctx)
		}

		return nil, errors.Wrap(err, "failed to find credential")
	}

	done := make(chan verifyResult, 1)
	go func() {
		ok, verifyErr := srv.verifier.Verify(stored, req.CandidatePassword)
		done <- verifyResult{ok: ok, err: verifyErr}
	}()

	var res verifyResult
	select {
	case res = <-done:
	case <-ctx.Done():
		srv.log(ctx).Warn("Credential check abandoned", slog.String("identifier", req.Identifier), slog.Duration("timeout", srv.verifyTimeout))

		return nil, srv.timeoutError(ctx)
	}

	if res.err != nil {
		if errors.Is(res.err, domainerrors.ErrMalformedCredential) {
			srv.log(ctx).Error("Stored credential is malformed",
				slog.String("identifier", req.Identifier),
				slog.String("credentialID", stored.ID.String()),
				slog.Any("error", res.err))

			return nil, errors.Wrap(res.err, "check credential")
		}

		return nil, errors.Wrap(res.err, "failed to verify credential")
	}

	out := &usecase.CheckOutput{
		CredentialID: stored.ID,
		MustRotate:   stored.MustRotate,
	}

	switch {
	case !res.ok:
		out.Outcome = entity.OutcomeMismatch
		srv.log(ctx).Info("Credential check rejected", slog.String("identifier", req.Identifier), slog.Any("outcome", out.Outcome))

		return out, nil
	case stored.MustRotate:
		out.Outcome = entity.OutcomeRotationRequired
	default:
		out.Outcome = entity.OutcomeMatch
	}

	out.NeedsRehash = srv.verifier.NeedsRehash(stored)
	srv.log(ctx).Info("Credential check accepted",
		slog.String("identifier", req.Identifier),
		slog.Any("outcome", out.Outcome),
		slog.Bool("needsRehash", out.NeedsRehash))

	return out, nil
}

func (srv *credentialService) timeoutError(ctx context.Context) error {
	return errors.WithStack(domainerrors.ErrVerificationTimeout.WithDetails(ctx.Err().Error()))
}

// HashPassword applies the password policy and encodes a new hash.
func (srv *credentialService) HashPassword(ctx context.Context, password string) (string, error) {
	if err := srv.policy.Validate(password); err != nil {
		return "", errors.Wrap(err, "password rejected")
	}

	hash, err := srv.hasher.Hash(password)
	if err != nil {
		return "", errors.Wrap(err, "failed to hash password")
	}
	srv.log(ctx).Debug("Password hashed", slog.String("algorithm", srv.hasher.Name()))

	return hash, nil
}

// Bootstrap creates the injected initial credential with MustRotate set.
// Running it again once the credential exists is a no-op.
func (srv *credentialService) Bootstrap(ctx context.Context, input usecase.BootstrapInput) (*usecase.BootstrapOutput, error) {
	if err := srv.requireStore(); err != nil {
		return nil, err
	}
	if err := srv.validate.Struct(input); err != nil {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails(err.Error()))
	}

	candidate := &entity.StoredCredential{
		Username:   input.Username,
		Email:      input.Email,
		MustRotate: true,
	}
	srv.log(ctx).Info("Starting bootstrap", slog.Any("identifiers", candidate.Identifiers()))

	var out usecase.BootstrapOutput
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		credentialRepo := repoFactory.CredentialRepo()

		for _, identifier := range candidate.Identifiers() {
			existing, err := credentialRepo.FindByIdentifier(ctx, identifier)
			if err == nil {
				out.CredentialID = existing.ID

				return nil
			}
			if !errors.Is(err, repository.ErrCredentialNotFound) {
				return errors.Wrap(err, "failed to find credential")
			}
		}

		hash, err := srv.HashPassword(ctx, input.Password)
		if err != nil {
			return err
		}
		candidate.PasswordHash = hash

		if err := credentialRepo.Create(ctx, candidate); err != nil {
			if errors.Is(err, repository.ErrDuplicateIdentifier) {
				return domainerrors.ErrCredentialAlreadyExists.WrapMessage("bootstrap credential")
			}

			return errors.Wrap(err, "failed to create credential")
		}
		out.CredentialID = candidate.ID
		out.Created = true

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Bootstrap failed", slog.Any("error", err))

		return nil, errors.Wrap(err, "bootstrap failed")
	}

	if out.Created {
		srv.log(ctx).Info("Bootstrap credential created", slog.String("credentialID", out.CredentialID.String()))
	} else {
		srv.log(ctx).Info("Bootstrap credential already present", slog.String("credentialID", out.CredentialID.String()))
	}

	return &out, nil
}

// Rotate verifies the current password and stores a hash of the new one.
func (srv *credentialService) Rotate(ctx context.Context, input usecase.RotateInput) (*usecase.RotateOutput, error) {
	if err := srv.requireStore(); err != nil {
		return nil, err
	}
	if err := srv.validate.Struct(input); err != nil {
		return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails(err.Error()))
	}
	if input.NewPassword == input.CurrentPassword {
		return nil, errors.WithStack(domainerrors.ErrPasswordPolicy.WithDetails("new password must differ from the current one"))
	}

	srv.log(ctx).Info("Starting rotation", slog.String("identifier", input.Identifier))

	// 1. Verify the current password outside the transaction (hashing is CPU-bound).
	check, err := srv.Check(ctx, usecase.CheckInput{Identifier: input.Identifier, Password: input.CurrentPassword})
	if err != nil {
		return nil, errors.Wrap(err, "rotation failed")
	}
	if !check.Outcome.Succeeded() {
		return nil, domainerrors.ErrInvalidCredentials.WrapMessage("rotation failed")
	}

	newHash, err := srv.HashPassword(ctx, input.NewPassword)
	if err != nil {
		return nil, errors.Wrap(err, "rotation failed")
	}

	// 2. Re-read on the primary and swap the hash only if the identifier still resolves to the same credential.
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		credentialRepo := repoFactory.CredentialRepo()

		current, err := credentialRepo.FindByIdentifier(ctx, input.Identifier)
		if err != nil {
			if errors.Is(err, repository.ErrCredentialNotFound) {
				return domainerrors.ErrCredentialNotFound.WrapMessage("rotate credential")
			}

			return errors.Wrap(err, "failed to find credential")
		}
		if current.ID != check.CredentialID {
			return domainerrors.ErrInvalidCredentials.WrapMessage("credential changed during rotation")
		}

		if err := credentialRepo.UpdatePasswordHash(ctx, current.ID, newHash, false); err != nil {
			if errors.Is(err, repository.ErrCredentialNotFound) {
				return domainerrors.ErrCredentialNotFound.WrapMessage("rotate credential")
			}

			return errors.Wrap(err, "failed to update password hash")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Rotation failed", slog.String("identifier", input.Identifier), slog.Any("error", err))

		return nil, errors.Wrap(err, "rotation failed")
	}

	srv.log(ctx).Info("Credential rotated", slog.String("credentialID", check.CredentialID.String()))

	return &usecase.RotateOutput{CredentialID: check.CredentialID}, nil
}
