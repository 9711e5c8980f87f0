package cli

import (
	"bytes"
	"strings"
	"testing"

	domainerrors "credcheck/internal/domain/errors"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stubTerminal(t *testing.T, terminal bool, passwords ...string) {
	t.Helper()

	origIsTerminal, origReadPassword := isTerminal, readPassword
	t.Cleanup(func() {
		isTerminal, readPassword = origIsTerminal, origReadPassword
	})

	isTerminal = func(int) bool { return terminal }
	readPassword = func(int) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, errors.New("no more input")
		}
		next := passwords[0]
		passwords = passwords[1:]

		return []byte(next), nil
	}
}

func newTestOptions(stdin string) (*options, *bytes.Buffer) {
	var stderr bytes.Buffer

	return &options{stdin: strings.NewReader(stdin), stdout: &bytes.Buffer{}, stderr: &stderr}, &stderr
}

func TestPasswordReader_Stdin(t *testing.T) {
	opts, _ := newTestOptions("first\r\nsecond")
	r := opts.passwordReader(true)

	first, err := r.Read("Password")
	require.NoError(t, err)
	assert.Equal(t, "first", first)

	second, err := r.Read("Password")
	require.NoError(t, err)
	assert.Equal(t, "second", second)

	exhausted, err := r.Read("Password")
	require.NoError(t, err)
	assert.Empty(t, exhausted)
}

func TestPasswordReader_EmptyInputMatchesBlankLine(t *testing.T) {
	for _, stdin := range []string{"", "\n"} {
		opts, _ := newTestOptions(stdin)

		got, err := opts.passwordReader(true).Read("Password")

		require.NoError(t, err, "stdin %q", stdin)
		assert.Empty(t, got, "stdin %q", stdin)
	}
}

func TestPasswordReader_EmptyLine(t *testing.T) {
	opts, _ := newTestOptions("\n")

	got, err := opts.passwordReader(true).Read("Password")

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestPasswordReader_Terminal(t *testing.T) {
	stubTerminal(t, true, "s3cret")
	opts, stderr := newTestOptions("")

	got, err := opts.passwordReader(false).Read("Password")

	require.NoError(t, err)
	assert.Equal(t, "s3cret", got)
	assert.Equal(t, "Password: \n", stderr.String())
}

func TestPasswordReader_NotATerminal(t *testing.T) {
	stubTerminal(t, false)
	opts, _ := newTestOptions("")

	_, err := opts.passwordReader(false).Read("Password")

	assert.ErrorContains(t, err, "--password-stdin")
}

func TestReadNewPassword(t *testing.T) {
	t.Run("confirmed on a terminal", func(t *testing.T) {
		stubTerminal(t, true, "N3w-Secret!", "N3w-Secret!")
		opts, _ := newTestOptions("")

		got, err := readNewPassword(opts.passwordReader(false), "New password")

		require.NoError(t, err)
		assert.Equal(t, "N3w-Secret!", got)
	})

	t.Run("confirmation differs", func(t *testing.T) {
		stubTerminal(t, true, "N3w-Secret!", "typo")
		opts, _ := newTestOptions("")

		_, err := readNewPassword(opts.passwordReader(false), "New password")

		assert.True(t, errors.Is(err, domainerrors.ErrValidationFailed))
	})

	t.Run("stdin is not confirmed", func(t *testing.T) {
		opts, _ := newTestOptions("N3w-Secret!\n")

		got, err := readNewPassword(opts.passwordReader(true), "New password")

		require.NoError(t, err)
		assert.Equal(t, "N3w-Secret!", got)
	})
}
