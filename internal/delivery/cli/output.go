package cli

import (
	"encoding/json"
	"fmt"
	"io"

	domainerrors "credcheck/internal/domain/errors"

	"github.com/pkg/errors"
)

// reportedError marks an error whose report was already written.
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

func asReported(err error, target **reportedError) bool {
	return errors.As(err, target)
}

// result is what a command hands back for reporting.
type result struct {
	// Data is encoded under "data" in --ci mode.
	Data any
	// Text is printed to stdout otherwise.
	Text string
}

// report writes res or err and returns err marked as reported.
// In --ci mode the output is a single JSON document on stdout.
func (o *options) report(runID string, res *result, err error) error {
	meta := &domainerrors.MetaInfo{RunID: runID}

	if o.ci {
		enc := json.NewEncoder(o.stdout)
		enc.SetIndent("", "  ")

		var encErr error
		switch {
		case err != nil:
			report := struct {
				domainerrors.ErrorReport
				Data any `json:"data,omitempty"`
			}{ErrorReport: domainerrors.ErrorReport{Error: domainerrors.ToErrorInfo(err), Meta: meta}}
			if res != nil {
				report.Data = res.Data
			}
			encErr = enc.Encode(report)
		case res != nil:
			encErr = enc.Encode(domainerrors.SuccessReport{Data: res.Data, Meta: meta})
		}
		if encErr != nil && err == nil {
			return errors.Wrap(encErr, "write report")
		}
	} else {
		if res != nil && res.Text != "" {
			_, _ = fmt.Fprintln(o.stdout, res.Text)
		}
		if err != nil {
			writeHumanError(o.stderr, err)
		}
	}

	if err == nil {
		return nil
	}

	return &reportedError{err: err}
}

func writeHumanError(w io.Writer, err error) {
	info := domainerrors.ToErrorInfo(err)
	if info.Details != nil {
		_, _ = fmt.Fprintf(w, "%s: %s (%v)\n", info.Code, info.Message, info.Details)

		return
	}
	_, _ = fmt.Fprintf(w, "%s: %s\n", info.Code, info.Message)
}
