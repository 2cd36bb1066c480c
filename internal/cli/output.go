package cli

import (
	"errors"
	"fmt"
	"io"

	"orchard/pkg/genome"
)

// Exit codes for CLI commands.
const (
	ExitSuccess = 0
	ExitFailure = 1 // invalid record, storage or configuration failure
	ExitUsage   = 2 // malformed arguments
)

// ExitError carries the process exit code for a failed command. An empty
// Message means the command already reported the failure on stdout.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Message
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps err to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// silent reports whether err was already shown to the user.
func silent(err error) bool {
	var exitErr *ExitError
	return errors.As(err, &exitErr) && exitErr.Message == "" && exitErr.Err == nil
}

// printHaploid writes one haploid in the badge shell layout.
func printHaploid(w io.Writer, label string, h genome.Haploid) error {
	rows := []struct {
		value uint16
		name  string
	}{
		{uint16(h.CDPeriod), "cd_period"},
		{uint16(h.CDRate), "cd_rate"},
		{uint16(h.CDDir), "cd_dir"},
		{uint16(h.Sat), "sat"},
		{uint16(h.HueBase), "hue_base"},
		{uint16(h.HueRateDir), "hue_ratedir"},
		{uint16(h.HueBound), "hue_bound"},
		{uint16(h.Lin), "lin"},
		{uint16(h.Strobe), "strobe"},
		{uint16(h.Accel), "accel"},
		{uint16(h.Mic), "mic"},
	}
	if _, err := fmt.Fprintf(w, "Individual %s:\n", label); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintf(w, " %3d %s\n", row.value, row.name); err != nil {
			return err
		}
	}
	return nil
}
