package cli

import (
	"context"
	"fmt"

	domainerrors "credcheck/internal/domain/errors"
	"credcheck/internal/usecase"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func newBootstrapCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "bootstrap",
		Short: "Seed the initial admin credential from configuration",
		Long: "Seed the initial admin credential from configuration.\n\n" +
			"The password is taken from CREDCHECK_BOOTSTRAP_PASSWORD and the credential\n" +
			"must be rotated before it is accepted. Running it again is a no-op.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(ctx context.Context, d deps) (*result, error) {
				if !d.config.HasBootstrap() {
					return nil, errors.WithStack(domainerrors.ErrValidationFailed.WithDetails(
						"bootstrap.password and one of bootstrap.username or bootstrap.email are required"))
				}

				out, err := d.usecase.Bootstrap(ctx, usecase.BootstrapInput{
					Username: d.config.Bootstrap.Username,
					Email:    d.config.Bootstrap.Email,
					Password: d.config.Bootstrap.Password,
				})
				if err != nil {
					return nil, err
				}

				text := fmt.Sprintf("credential %s already present", out.CredentialID)
				if out.Created {
					text = fmt.Sprintf("created credential %s; rotate it before first use", out.CredentialID)
				}

				return &result{Data: out, Text: text}, nil
			})
		},
	}
}
