package cli

import (
	"context"
	"fmt"

	"credcheck/internal/usecase"

	"github.com/spf13/cobra"
)

func newRotateCommand(opts *options) *cobra.Command {
	var (
		identifier    string
		passwordStdin bool
	)
	cmd := &cobra.Command{
		Use:   "rotate",
		Short: "Replace the password of a credential",
		Long: "Replace the password of a credential.\n\n" +
			"With --password-stdin the current and new passwords are read as two lines.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.run(cmd, true, func(ctx context.Context, d deps) (*result, error) {
				reader := opts.passwordReader(passwordStdin)
				current, err := reader.Read("Current password")
				if err != nil {
					return nil, err
				}
				next, err := readNewPassword(reader, "New password")
				if err != nil {
					return nil, err
				}

				out, err := d.usecase.Rotate(ctx, usecase.RotateInput{
					Identifier:      identifier,
					CurrentPassword: current,
					NewPassword:     next,
				})
				if err != nil {
					return nil, err
				}

				return &result{Data: out, Text: fmt.Sprintf("rotated credential %s", out.CredentialID)}, nil
			})
		},
	}
	cmd.Flags().StringVar(&identifier, "identifier", "", "username or email of the credential")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the passwords from stdin")
	_ = cmd.MarkFlagRequired("identifier")

	return cmd
}
