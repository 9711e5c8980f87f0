// Package cli exposes the credential usecases as cobra commands.
package cli

import (
	"io"
	"os"

	domainerrors "credcheck/internal/domain/errors"

	"github.com/spf13/cobra"
)

type options struct {
	configDir string
	ci        bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// NewRootCommand builds the credcheck command tree over the given streams.
func NewRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stdin: stdin, stdout: stdout, stderr: stderr}

	cmd := &cobra.Command{
		Use:           "credcheck",
		Short:         "Verify and manage admin credentials",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.PersistentFlags().StringVar(&opts.configDir, "config-dir", "", "directory holding config.yaml")
	cmd.PersistentFlags().BoolVar(&opts.ci, "ci", false, "non-interactive machine-readable output")
	cmd.AddCommand(
		newVerifyCommand(opts),
		newHashCommand(opts),
		newBootstrapCommand(opts),
		newRotateCommand(opts),
	)

	return cmd
}

// Execute runs the command line against the process streams and returns the exit code.
func Execute(args []string) int {
	return Run(args, os.Stdin, os.Stdout, os.Stderr)
}

// Run executes args and maps the outcome to a process exit code.
func Run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := NewRootCommand(stdin, stdout, stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	if err == nil {
		return domainerrors.ExitOK
	}

	var reported *reportedError
	if !asReported(err, &reported) {
		// Flag and argument errors never reached a command.
		_, _ = io.WriteString(stderr, "Error: "+err.Error()+"\n")

		return domainerrors.ExitFailure
	}

	return domainerrors.ExitCodeOf(err)
}
