package cli

import (
	"context"

	domainerrors "credcheck/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

type hashOutput struct {
	Hash string `json:"hash"`
}

func newHashCommand(opts *options) *cobra.Command {
	var passwordStdin bool
	cmd := &cobra.Command{
		Use:   "hash",
		Short: "Hash a password with the configured algorithm",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, false, func(ctx context.Context, d deps) (*result, error) {
				password, err := readNewPassword(opts.passwordReader(passwordStdin), "Password")
				if err != nil {
					return nil, err
				}

				hash, err := d.usecase.HashPassword(ctx, password)
				if err != nil {
					return nil, err
				}

				return &result{Data: hashOutput{Hash: hash}, Text: hash}, nil
			})
		},
	}
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")

	return cmd
}

// readNewPassword asks twice on a terminal; stdin input is taken as given.
func readNewPassword(r *passwordReader, prompt string) (string, error) {
	password, err := r.Read(prompt)
	if err != nil {
		return "", err
	}
	if r.fromStdin {
		return password, nil
	}

	confirm, err := r.Read("Confirm " + prompt)
	if err != nil {
		return "", err
	}
	if confirm != password {
		return "", errors.WithStack(domainerrors.ErrValidationFailed.WithDetails("passwords do not match"))
	}

	return password, nil
}
