package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

// passwordReader reads secrets either from a no-echo terminal prompt or from stdin lines.
type passwordReader struct {
	fromStdin bool
	in        *bufio.Reader
	prompt    io.Writer
}

func (o *options) passwordReader(fromStdin bool) *passwordReader {
	return &passwordReader{
		fromStdin: fromStdin,
		in:        bufio.NewReader(o.stdin),
		prompt:    o.stderr,
	}
}

// Read returns the next secret. The prompt is written only for a terminal.
func (r *passwordReader) Read(prompt string) (string, error) {
	if r.fromStdin {
		return r.readLine()
	}

	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return "", errors.New("stdin is not a terminal; use --password-stdin")
	}

	if _, err := fmt.Fprint(r.prompt, prompt+": "); err != nil {
		return "", errors.WithStack(err)
	}
	pw, err := readPassword(fd)
	_, _ = fmt.Fprintln(r.prompt)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}

	return string(pw), nil
}

// readLine returns the next line without its terminator. End of input
// reads as an empty password, the same as a blank line.
func (r *passwordReader) readLine() (string, error) {
	line, err := r.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "read password from stdin")
	}

	return strings.TrimRight(line, "\r\n"), nil
}
