package cli

import (
	"context"

	"credcheck/internal/domain/entity"
	domainerrors "credcheck/internal/domain/errors"
	"credcheck/internal/usecase"

	"github.com/spf13/cobra"
)

func newVerifyCommand(opts *options) *cobra.Command {
	var (
		identifier    string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a password against the stored credential",
		Long: "Check a password against the stored credential.\n\n" +
			"Exit codes: 0 accepted, 1 wrong password, unknown identifier or rotation required,\n" +
			"2 stored credential is malformed, 3 any other failure.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(ctx context.Context, d deps) (*result, error) {
				password, err := opts.passwordReader(passwordStdin).Read("Password")
				if err != nil {
					return nil, err
				}

				out, err := d.usecase.Check(ctx, usecase.CheckInput{Identifier: identifier, Password: password})
				if err != nil {
					return nil, err
				}

				return verifyResult(out)
			})
		},
	}
	cmd.Flags().StringVar(&identifier, "identifier", "", "username or email of the credential")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("identifier")

	return cmd
}

// verifyResult maps a completed check onto the command result and exit status.
func verifyResult(out *usecase.CheckOutput) (*result, error) {
	res := &result{Data: out, Text: string(out.Outcome)}

	switch out.Outcome {
	case entity.OutcomeMismatch:
		return res, domainerrors.ErrInvalidCredentials.WrapMessage("verify")
	case entity.OutcomeRotationRequired:
		res.Text += ": password accepted but must be changed with 'credcheck rotate'"

		return res, domainerrors.ErrRotationRequired.WrapMessage("verify")
	}

	if out.NeedsRehash {
		res.Text += " (stored hash uses outdated parameters; rotate to upgrade)"
	}

	return res, nil
}
