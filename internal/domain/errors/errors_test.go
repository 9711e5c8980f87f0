package errors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestBaseError_IsSurvivesWrappingAndDetails(t *testing.T) {
	err := ErrMalformedCredential.WithDetails("unrecognized hash prefix").WrapMessage("verify credential")

	assert.True(t, errors.Is(err, ErrMalformedCredential))
	assert.False(t, errors.Is(err, ErrInvalidCredentials))
	assert.Contains(t, err.Error(), "unrecognized hash prefix")
}

func TestExitCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: ExitOK},
		{name: "not found", err: ErrCredentialNotFound.WrapMessage("lookup"), want: ExitRejected},
		{name: "malformed", err: errors.WithStack(ErrMalformedCredential), want: ExitDataProblem},
		{name: "store", err: NewStoreExecuteError(errors.New("conn refused"), "find"), want: ExitFailure},
		{name: "plain", err: errors.New("boom"), want: ExitFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeOf(tt.err))
		})
	}
}

func TestToErrorInfo(t *testing.T) {
	assert.Nil(t, ToErrorInfo(nil))

	info := ToErrorInfo(ErrMalformedCredential.WithDetails("empty hash").WrapMessage("check"))
	assert.Equal(t, "MALFORMED_CREDENTIAL", info.Code)
	assert.Equal(t, "empty hash", info.Details)

	info = ToErrorInfo(errors.New("socket closed"))
	assert.Equal(t, "INTERNAL_ERROR", info.Code)
	assert.Equal(t, "socket closed", info.Details)
}

func TestStoreExecuteError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewStoreExecuteError(cause, "find credential")

	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "find credential", err.Details())
}
