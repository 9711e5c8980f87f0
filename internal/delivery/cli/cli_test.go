package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	domainerrors "credcheck/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const bootstrapPassword = "Boot-Str4p-Secret"

// writeTestConfig creates a config.yaml backed by a file bucket in a temp dir.
func writeTestConfig(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	bucketDir := filepath.Join(dir, "bucket")
	require.NoError(t, os.MkdirAll(bucketDir, 0o700))

	content := `env:
  env: test
  serviceName: credcheck
  log:
    level: warn

store:
  driver: blob

lookup:
  fields: [username, email]

blob:
  url: "file://` + filepath.ToSlash(bucketDir) + `?no_tmp_dir=true"
  key: credentials.json

auth:
  algorithm: bcrypt
  bcryptCost: 4

passwordStrength:
  minLength: 10
  requireUppercase: true
  requireNumbers: true

verify:
  timeout: 5s

bootstrap:
  username: root
  email: root@example.com
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o600))

	return dir
}

type runOutput struct {
	code   int
	stdout string
	stderr string
}

func runCLI(t *testing.T, stdin string, args ...string) runOutput {
	t.Helper()

	var stdout, stderr bytes.Buffer
	code := Run(args, strings.NewReader(stdin), &stdout, &stderr)

	return runOutput{code: code, stdout: stdout.String(), stderr: stderr.String()}
}

func decodeReport(t *testing.T, raw string) map[string]any {
	t.Helper()

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &report), raw)

	return report
}

func TestCLI_CredentialLifecycle(t *testing.T) {
	dir := writeTestConfig(t)
	t.Setenv("CREDCHECK_BOOTSTRAP_PASSWORD", bootstrapPassword)

	// Unknown identifier before anything is seeded.
	out := runCLI(t, bootstrapPassword+"\n", "--config-dir", dir, "verify", "--identifier", "root", "--password-stdin")
	assert.Equal(t, domainerrors.ExitRejected, out.code)
	assert.Contains(t, out.stderr, "CREDENTIAL_NOT_FOUND")

	out = runCLI(t, "", "--config-dir", dir, "--ci", "bootstrap")
	require.Equal(t, domainerrors.ExitOK, out.code, out.stderr)
	report := decodeReport(t, out.stdout)
	assert.Equal(t, true, report["data"].(map[string]any)["created"])
	assert.NotEmpty(t, report["meta"].(map[string]any)["run_id"])

	// Bootstrap is idempotent.
	out = runCLI(t, "", "--config-dir", dir, "bootstrap")
	require.Equal(t, domainerrors.ExitOK, out.code, out.stderr)
	assert.Contains(t, out.stdout, "already present")

	// The seeded credential must be rotated before it is accepted.
	out = runCLI(t, bootstrapPassword+"\n", "--config-dir", dir, "--ci", "verify", "--identifier", "ROOT@example.com", "--password-stdin")
	assert.Equal(t, domainerrors.ExitRejected, out.code)
	report = decodeReport(t, out.stdout)
	assert.Equal(t, "ROTATION_REQUIRED", report["error"].(map[string]any)["code"])
	assert.Equal(t, "rotation_required", report["data"].(map[string]any)["outcome"])

	out = runCLI(t, "wrong-Passw0rd\n", "--config-dir", dir, "verify", "--identifier", "root", "--password-stdin")
	assert.Equal(t, domainerrors.ExitRejected, out.code)
	assert.Contains(t, out.stdout, "mismatch")

	out = runCLI(t, bootstrapPassword+"\nRotated-Secret-42\n", "--config-dir", dir, "rotate", "--identifier", "root", "--password-stdin")
	require.Equal(t, domainerrors.ExitOK, out.code, out.stderr)
	assert.Contains(t, out.stdout, "rotated credential")

	out = runCLI(t, "Rotated-Secret-42\n", "--config-dir", dir, "verify", "--identifier", "root", "--password-stdin")
	assert.Equal(t, domainerrors.ExitOK, out.code, out.stderr)
	assert.Equal(t, "match\n", out.stdout)

	out = runCLI(t, bootstrapPassword+"\n", "--config-dir", dir, "verify", "--identifier", "root", "--password-stdin")
	assert.Equal(t, domainerrors.ExitRejected, out.code)

	// No input at all is an empty candidate, not a read failure.
	out = runCLI(t, "", "--config-dir", dir, "verify", "--identifier", "root", "--password-stdin")
	assert.Equal(t, domainerrors.ExitRejected, out.code)
	assert.Equal(t, "mismatch\n", out.stdout)
}

func TestCLI_MalformedStoredHash(t *testing.T) {
	dir := writeTestConfig(t)
	snapshot := `{"version":1,"credentials":[{"id":"6f1c2a3e-7d4b-4f0e-9a51-0c2b8d3e4f11","username":"root","password_hash":"plaintext","must_rotate":false}]}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bucket", "credentials.json"), []byte(snapshot), 0o600))

	out := runCLI(t, "anything\n", "--config-dir", dir, "--ci", "verify", "--identifier", "root", "--password-stdin")

	assert.Equal(t, domainerrors.ExitDataProblem, out.code)
	report := decodeReport(t, out.stdout)
	assert.Equal(t, "MALFORMED_CREDENTIAL", report["error"].(map[string]any)["code"])
}

func TestCLI_Hash(t *testing.T) {
	dir := writeTestConfig(t)

	out := runCLI(t, "Hash-Me-Please-7\n", "--config-dir", dir, "hash", "--password-stdin")
	require.Equal(t, domainerrors.ExitOK, out.code, out.stderr)
	assert.True(t, strings.HasPrefix(out.stdout, "$2a$04$"), out.stdout)

	out = runCLI(t, "short\n", "--config-dir", dir, "--ci", "hash", "--password-stdin")
	assert.Equal(t, domainerrors.ExitFailure, out.code)
	report := decodeReport(t, out.stdout)
	assert.Equal(t, "PASSWORD_POLICY", report["error"].(map[string]any)["code"])
}

func TestCLI_BootstrapWithoutPassword(t *testing.T) {
	dir := writeTestConfig(t)
	t.Setenv("CREDCHECK_BOOTSTRAP_PASSWORD", "")

	out := runCLI(t, "", "--config-dir", dir, "bootstrap")

	assert.Equal(t, domainerrors.ExitFailure, out.code)
	assert.Contains(t, out.stderr, "VALIDATION_FAILED")
}

func TestCLI_MissingIdentifierFlag(t *testing.T) {
	out := runCLI(t, "", "verify", "--password-stdin")

	assert.Equal(t, domainerrors.ExitFailure, out.code)
	assert.Contains(t, out.stderr, `required flag(s) "identifier" not set`)
}

func TestCLI_MissingConfig(t *testing.T) {
	out := runCLI(t, "x\n", "--config-dir", t.TempDir(), "--ci", "hash", "--password-stdin")

	assert.Equal(t, domainerrors.ExitFailure, out.code)
	report := decodeReport(t, out.stdout)
	assert.Equal(t, "INTERNAL_ERROR", report["error"].(map[string]any)["code"])
}
