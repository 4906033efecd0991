package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// maxOutputSize caps captured stdout and stderr.
const maxOutputSize = 10 << 20

// Process runs an executable per invocation. The payload, when present,
// is written to stdin which is then closed. The process runs in the
// directory holding the executable.
type Process struct {
	Path string
	// WaitDelay bounds how long Wait blocks on inherited pipes after the
	// process is killed.
	WaitDelay time.Duration
}

func NewProcess(path string) *Process {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &Process{Path: path, WaitDelay: 2 * time.Second}
}

func (p *Process) Run(ctx context.Context, args []string, payload []byte) ([]byte, error) {
	info, err := os.Stat(p.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &Error{Kind: KindNotFound, Err: err}
		}
		return nil, &Error{Kind: KindSpawn, Err: err}
	}
	if info.IsDir() {
		return nil, &Error{Kind: KindNotFound, Err: fmt.Errorf("%s is a directory", p.Path)}
	}

	cmd := exec.CommandContext(ctx, p.Path, args...)
	cmd.Dir = filepath.Dir(p.Path)
	cmd.WaitDelay = p.WaitDelay
	if payload != nil {
		cmd.Stdin = bytes.NewReader(payload)
	}

	stdout := &limitedWriter{w: &bytes.Buffer{}, limit: maxOutputSize}
	stderr := &limitedWriter{w: &bytes.Buffer{}, limit: maxOutputSize}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		if ctxErr := contextError(ctx); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &Error{Kind: KindSpawn, Err: err}
	}

	err = cmd.Wait()
	if ctxErr := contextError(ctx); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &Error{Kind: KindExit, Code: exitErr.ExitCode(), Stderr: stderr.String()}
		}
		return nil, &Error{Kind: KindSpawn, Err: err}
	}
	if stdout.overflow {
		return nil, &Error{Kind: KindParse, Err: fmt.Errorf("output exceeded %d bytes", maxOutputSize)}
	}
	return stdout.Bytes(), nil
}

// limitedWriter discards everything past limit and remembers that it did.
type limitedWriter struct {
	w        *bytes.Buffer
	limit    int
	written  int
	overflow bool
}

var _ io.Writer = (*limitedWriter)(nil)

func (lw *limitedWriter) Write(p []byte) (int, error) {
	remaining := lw.limit - lw.written
	if remaining <= 0 {
		lw.overflow = lw.overflow || len(p) > 0
		return len(p), nil
	}
	toWrite := p
	if len(p) > remaining {
		toWrite = p[:remaining]
		lw.overflow = true
	}
	n, err := lw.w.Write(toWrite)
	lw.written += n
	return len(p), err
}

func (lw *limitedWriter) Bytes() []byte  { return lw.w.Bytes() }
func (lw *limitedWriter) String() string { return lw.w.String() }
