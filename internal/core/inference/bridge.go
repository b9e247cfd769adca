// Package inference runs the external NL-to-SQL model binary.
package inference

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/satishbabariya/nlsql/internal/apperr"
	"github.com/satishbabariya/nlsql/internal/debug"
)

// DefaultMaxTokens is the token budget passed with -n when none is given.
const DefaultMaxTokens = 128

const maxLineSize = 1 << 20

// pipeCloseDelay bounds how long output is read after cancellation or a
// kill. A grandchild that inherited the pipes can keep them open after the
// process itself is gone.
const pipeCloseDelay = 2 * time.Second

// Bridge spawns one inference process per call. A process is never reused.
type Bridge struct {
	// CLIPath is the inference binary.
	CLIPath string
	// ModelPath is passed with -m.
	ModelPath string
}

// New returns a bridge for the given binary and model.
func New(cliPath, modelPath string) *Bridge {
	return &Bridge{CLIPath: cliPath, ModelPath: modelPath}
}

func (b *Bridge) args(prompt string, maxTokens int, extra ...string) []string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	args := []string{"-m", b.ModelPath, "-p", prompt, "-n", strconv.Itoa(maxTokens)}
	return append(args, extra...)
}

func (b *Bridge) command(ctx context.Context, args []string) (*exec.Cmd, io.ReadCloser, io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, b.CLIPath, args...)
	cmd.WaitDelay = pipeCloseDelay
	// Stdin stays nil: the child reads the null device and sees EOF at once.
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, nil, apperr.Wrap(apperr.EngineExecutionError, err, "")
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, nil, apperr.Wrap(apperr.EngineExecutionError, err, "")
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, nil, apperr.Wrap(apperr.EngineExecutionError, err, "")
	}
	debug.With("pid", cmd.Process.Pid, "bin", b.CLIPath).Debug("inference process started")
	return cmd, stdout, stderr, nil
}

// Run executes the binary with the prompt and returns its stdout lines joined
// by single spaces. The process is reaped before Run returns.
func (b *Bridge) Run(ctx context.Context, prompt string, maxTokens int) (string, error) {
	cmd, stdout, stderr, err := b.command(ctx, b.args(prompt, maxTokens))
	if err != nil {
		return "", err
	}

	stop := context.AfterFunc(ctx, func() { closeLater(stdout, stderr) })
	defer stop()

	var lines []string
	g := new(errgroup.Group)
	g.Go(func() error {
		return readLines(stdout, func(line string) {
			lines = append(lines, line)
		})
	})
	g.Go(func() error {
		return readLines(stderr, logStderr)
	})
	readErr := g.Wait()
	waitErr := cmd.Wait()

	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", apperr.Wrap(apperr.EngineExecutionError, ctxErr, "inference interrupted")
	}
	if readErr != nil {
		return "", apperr.Wrap(apperr.EngineExecutionError, readErr, "")
	}

	output := strings.Join(lines, " ")
	if waitErr != nil {
		if output == "" {
			return "", apperr.Wrap(apperr.EngineExecutionError, waitErr, "inference process failed")
		}
		debug.Warn("inference process exited with error", "error", waitErr)
	}
	debug.Debug("inference output", "text", output)
	return output, nil
}

// Prime runs the binary in conversation mode, reads at most one line of
// output and then kills and reaps the process.
func (b *Bridge) Prime(ctx context.Context, prompt string, maxTokens int) (string, error) {
	cmd, stdout, stderr, err := b.command(ctx, b.args(prompt, maxTokens, "-cnv"))
	if err != nil {
		return "", err
	}

	g := new(errgroup.Group)
	g.Go(func() error {
		return readLines(stderr, logStderr)
	})

	line, readErr := bufio.NewReaderSize(stdout, 64*1024).ReadString('\n')

	if err := cmd.Process.Kill(); err != nil {
		debug.Debug("priming process kill", "error", err)
	}
	defer closeLater(stdout, stderr).Stop()
	drainErr := g.Wait()
	waitErr := cmd.Wait()
	debug.Debug("priming process reaped", "pid", cmd.Process.Pid)

	if readErr != nil && !errors.Is(readErr, io.EOF) {
		return "", apperr.Wrap(apperr.EngineExecutionError, readErr, "")
	}
	if drainErr != nil {
		return "", apperr.Wrap(apperr.EngineExecutionError, drainErr, "")
	}
	line = strings.TrimRight(line, "\r\n")

	// An exit status means the process ended on its own; a kill shows up as
	// a signal instead.
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) && exitErr.Exited() && line == "" {
		return "", apperr.Wrap(apperr.EngineExecutionError, waitErr, "priming process failed")
	}
	return line, nil
}

// closeLater closes the read ends of the pipes after pipeCloseDelay, which
// unblocks readLines once the write ends outlive the process.
func closeLater(pipes ...io.Closer) *time.Timer {
	return time.AfterFunc(pipeCloseDelay, func() {
		for _, p := range pipes {
			_ = p.Close()
		}
	})
}

func logStderr(line string) {
	debug.Debug("inference stderr", "line", line)
}

// readLines calls fn for each line of r until EOF or until closeLater closes
// r. On a scan failure the rest of r is discarded so the child never blocks
// on a full pipe.
func readLines(r io.Reader, fn func(string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for sc.Scan() {
		fn(sc.Text())
	}
	err := sc.Err()
	if errors.Is(err, os.ErrClosed) {
		return nil
	}
	if err != nil {
		_, _ = io.Copy(io.Discard, r)
	}
	return err
}
