package cli

import (
	"context"
	"io"
	"log/slog"

	"credcheck/config"
	deliverycontext "credcheck/internal/delivery/context"
	"credcheck/internal/domain/lifecycle"
	"credcheck/internal/infra/auth"
	logs "credcheck/internal/infra/log"
	"credcheck/internal/infra/persistence"
	"credcheck/internal/usecase"
	"credcheck/internal/usecase/impl"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// deps is what a command receives from the started application.
type deps struct {
	config  *config.Config
	usecase usecase.CredentialUsecase
}

type commandFunc func(ctx context.Context, d deps) (*result, error)

// run executes fn inside a freshly started application and reports the outcome.
// withStore=false skips the credential store so hashing works offline.
func (o *options) run(cmd *cobra.Command, withStore bool, fn commandFunc) error {
	runID := deliverycontext.NewRunID()
	res, err := o.execute(cmd.Context(), runID, withStore, fn)

	return o.report(runID, res, err)
}

func (o *options) execute(ctx context.Context, runID string, withStore bool, fn commandFunc) (res *result, err error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}

	var (
		d      = deps{config: cfg}
		logger *slog.Logger
	)
	app := fx.New(
		o.appOptions(cfg, withStore),
		fx.Populate(&d.usecase, &logger),
	)
	if err := app.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to build application")
	}

	startCtx, cancel := context.WithTimeout(ctx, app.StartTimeout())
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		return nil, errors.Wrap(err, "failed to start application")
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
		defer cancel()
		if stopErr := app.Stop(stopCtx); stopErr != nil {
			logger.Warn("Failed to stop application", slog.Any("error", stopErr))
			if err == nil {
				err = errors.Wrap(stopErr, "failed to stop application")
			}
		}
	}()

	ctx = deliverycontext.WithRun(ctx, runID, logger)
	deliverycontext.GetLogger(ctx).Debug("Command started", slog.String("store", cfg.Store.Driver))

	return fn(ctx, d)
}

func (o *options) loadConfig() (*config.Config, error) {
	if o.configDir != "" {
		return config.Load(o.configDir)
	}

	return config.Load()
}

func (o *options) appOptions(cfg *config.Config, withStore bool) fx.Option {
	opts := []fx.Option{
		fx.Supply(cfg),
		fx.StartTimeout(lifecycle.DefaultTimeout),
		fx.StopTimeout(lifecycle.DefaultTimeout),
		fx.WithLogger(newFxLogger),
		injectInfra(o.stderr),
		injectService(),
		injectUsecase(),
	}
	if withStore {
		opts = append(opts, persistence.Module(cfg.Store.Driver))
	}

	return fx.Options(opts...)
}

func injectInfra(logOutput io.Writer) fx.Option {
	return fx.Provide(
		func() io.Writer { return logOutput },
		logs.New,
	)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				auth.NewBcryptHasher,
				fx.ResultTags(`group:"hashers"`),
			),
			fx.Annotate(
				auth.NewArgon2idHasher,
				fx.ResultTags(`group:"hashers"`),
			),
			auth.ProvideCredentialVerifier,
			auth.ProvideDefaultHasher,
			auth.NewPasswordPolicy,
		),
	)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewCredentialService,
		),
	)
}

// newFxLogger keeps fx lifecycle events at debug level on the application logger.
func newFxLogger(logger *slog.Logger) fxevent.Logger {
	l := &fxevent.SlogLogger{Logger: logger}
	l.UseLogLevel(slog.LevelDebug)

	return l
}
