// Package oracle invokes the external build driver and classifies its
// diagnostic output into build error records: spec.md §4.5's build oracle.
package oracle

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"

	"github.com/dekarrin/ddreduce/internal/rderrors"
)

// BuildError is a single diagnostic record extracted from the build
// driver's output. ErrorCode and HasCode are absent (HasCode false) when
// the diagnostic carried no bracketed code, per spec §3.
type BuildError struct {
	ErrorCode  string
	HasCode    bool
	SourceFile string
	ErrorSrc   string
}

// SignaturesEqual implements the oracle-signature equality rule of spec §3:
// equal if both carry the same error_code, or both lack a code and their
// full diagnostic text (error_src) is equal.
func SignaturesEqual(a, b BuildError) bool {
	if a.HasCode != b.HasCode {
		return false
	}
	if a.HasCode {
		return a.ErrorCode == b.ErrorCode
	}
	return a.ErrorSrc == b.ErrorSrc
}

// Driver runs the external build tool in dir and returns its captured
// standard error stream. A nonzero exit status is the expected case and
// must not itself be treated as an error; Run returns an error only when
// the driver could not be spawned or its output could not be read.
type Driver interface {
	Run(ctx context.Context, dir string) ([]byte, error)
}

// ExecDriver is the default Driver, spawning a configured build command
// with a trailing "build" verb via os/exec, matching the subprocess
// conventions the teacher uses for its own server/game subprocess tooling.
type ExecDriver struct {
	// Command is the executable to invoke, e.g. "cargo".
	Command string
	// Args are extra arguments inserted before the "build" verb.
	Args []string
	// Timeout bounds a single invocation; zero means no timeout.
	Timeout time.Duration
}

// Run implements Driver.
func (d ExecDriver) Run(ctx context.Context, dir string) ([]byte, error) {
	if d.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.Timeout)
		defer cancel()
	}

	args := make([]string, 0, len(d.Args)+1)
	args = append(args, d.Args...)
	args = append(args, "build")

	cmd := exec.CommandContext(ctx, d.Command, args...)
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Nonzero exit is the expected case: the build is supposed to
			// fail. Only a spawn/IO failure is a real error.
			return stderr.Bytes(), nil
		}
		return nil, err
	}

	return stderr.Bytes(), nil
}

// CollectErrors runs drv in projectDir and parses its stderr stream into
// BuildError records using the narrow line grammar of spec §4.5: an
// "error" line opens a record (capturing an optional "[code]"), and the
// next "-->" line supplies its source_file and closes the record. Errors
// with no attached location are discarded; an orphan "-->" line is a hard
// DiagnosticParse failure.
func CollectErrors(ctx context.Context, projectDir string, drv Driver) ([]BuildError, error) {
	out, err := drv.Run(ctx, projectDir)
	if err != nil {
		return nil, rderrors.Wrap(rderrors.KindBuildDriverIO, err, "running build driver")
	}

	var results []BuildError
	var pending *BuildError

	scanner := bufio.NewScanner(bytes.NewReader(out))
	// Diagnostic lines from real build tools can be long (long type names,
	// long paths); grow past bufio's default 64KiB line cap.
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		trimmed := strings.TrimSpace(line)

		switch {
		case strings.HasPrefix(trimmed, "error"):
			pending = parseErrorLine(trimmed)
		case strings.HasPrefix(trimmed, "-->"):
			if pending == nil {
				return nil, rderrors.Newf(rderrors.KindDiagnosticParse,
					"UnmatchedLocation: %q has no preceding error line", trimmed)
			}
			rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "-->"))
			file := rest
			if idx := strings.Index(rest, ":"); idx >= 0 {
				file = rest[:idx]
			}
			pending.SourceFile = file
			results = append(results, *pending)
			pending = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, rderrors.Wrap(rderrors.KindBuildDriverIO, err, "reading build driver output")
	}

	return results, nil
}

// parseErrorLine starts a new pending BuildError from an "error" line,
// capturing a bracketed code immediately following the keyword if present.
func parseErrorLine(line string) *BuildError {
	be := &BuildError{ErrorSrc: line}

	rest := strings.TrimPrefix(line, "error")
	if strings.HasPrefix(rest, "[") {
		if end := strings.Index(rest, "]"); end > 0 {
			be.ErrorCode = rest[1:end]
			be.HasCode = true
		}
	}

	return be
}
