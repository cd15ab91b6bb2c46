package shell

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/josephlewis42/accsh/core/env"
	"github.com/josephlewis42/accsh/core/vio"
	"github.com/spf13/afero"
)

const (
	// StatusAbnormal is reported for children that didn't exit normally
	// (e.g. killed by a signal) and for children that couldn't be created.
	StatusAbnormal = -1
	// StatusLaunchFailure is reported when the program couldn't be found or
	// started in a freshly created child.
	StatusLaunchFailure = 1
)

const (
	// DefaultSearchPath is searched for programs when PATH is unset.
	DefaultSearchPath = "/bin:/usr/bin"
	// BourneShell runs executable files that have no recognized format.
	BourneShell = "/bin/sh"
)

// ErrNotFound is the error resulting if a path search failed to find an executable file.
var ErrNotFound = exec.ErrNotFound

// Request describes a program to run.
type Request struct {
	// Argv is the argument vector, Argv[0] names the program.
	Argv []string
	// Env is the complete environment of the child.
	Env []string
	// Dir is the absolute working directory of the child.
	Dir string
	IO  vio.VIO
}

// Executor starts a program and blocks until it terminates.
//
// Spawn returns the child's exit code if it exited normally,
// StatusAbnormal if it terminated any other way or couldn't be created, and
// StatusLaunchFailure if the program couldn't be found or started. Failures
// are reported on the request's stderr.
type Executor interface {
	Spawn(req *Request) int
}

// LaunchFailure reports that name couldn't be started and returns
// StatusLaunchFailure.
func LaunchFailure(w io.Writer, name string, err error) int {
	fmt.Fprintf(w, "execvp: %s: %v\n", name, err)
	return StatusLaunchFailure
}

// ProcessExecutor runs programs as real processes.
type ProcessExecutor struct {
	// Fs is used to search for programs, it should be backed by the OS.
	Fs afero.Fs
}

var _ Executor = (*ProcessExecutor)(nil)

// Spawn implements Executor.Spawn.
func (p *ProcessExecutor) Spawn(req *Request) int {
	name := req.Argv[0]
	searchPath, ok := env.NewMapEnvFromEnvList(req.Env).LookupEnv(env.KeyPath)
	if !ok {
		searchPath = DefaultSearchPath
	}

	path, err := LookPath(p.Fs, searchPath, req.Dir, name)
	if err != nil {
		return LaunchFailure(req.IO.Stderr(), name, err)
	}

	cmd := newCmd(req, path, req.Argv)
	err = cmd.Start()
	if errors.Is(err, syscall.ENOEXEC) {
		// Executable files the kernel can't load are shell scripts.
		args := append([]string{BourneShell, path}, req.Argv[1:]...)
		cmd = newCmd(req, BourneShell, args)
		err = cmd.Start()
	}
	if err != nil {
		if isForkError(err) {
			fmt.Fprintf(req.IO.Stderr(), "fork: %v\n", err)
			return StatusAbnormal
		}
		return LaunchFailure(req.IO.Stderr(), name, err)
	}

	// Errors here are either a non-zero exit, which is classified below, or
	// an I/O copying failure which doesn't change how the child ended.
	_ = cmd.Wait()
	return ExitStatus(cmd.ProcessState)
}

func newCmd(req *Request, path string, args []string) *exec.Cmd {
	return &exec.Cmd{
		Path:   path,
		Args:   args,
		Env:    req.Env,
		Dir:    req.Dir,
		Stdin:  req.IO.Stdin(),
		Stdout: req.IO.Stdout(),
		Stderr: req.IO.Stderr(),
	}
}

// ExitStatus classifies how a process terminated.
func ExitStatus(state *os.ProcessState) int {
	if state == nil || !state.Exited() {
		return StatusAbnormal
	}
	return state.ExitCode()
}

// isForkError reports whether the child couldn't be created at all, as
// opposed to the program failing to load in it.
func isForkError(err error) bool {
	return errors.Is(err, syscall.EAGAIN) || errors.Is(err, syscall.ENOMEM)
}

func findExecutable(fsys afero.Fs, file string) error {
	d, err := fsys.Stat(file)
	if err != nil {
		return err
	}
	if m := d.Mode(); !m.IsDir() && m&0111 != 0 {
		return nil
	}
	return fs.ErrPermission
}

// LookPath searches for an executable named file in the directories named by
// searchPath, a list in the PATH format. An empty searchPath is a single
// empty element, which names dir. If file contains a slash, it is tried
// directly and searchPath is not consulted. Relative paths are resolved
// against dir and the result is always absolute.
func LookPath(fsys afero.Fs, searchPath, dir, file string) (string, error) {
	resolve := func(p string) string {
		if filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(dir, p)
	}

	if strings.Contains(file, "/") {
		path := resolve(file)
		if err := findExecutable(fsys, path); err != nil {
			return "", err
		}
		return path, nil
	}
	if file == "" {
		return "", ErrNotFound
	}

	elems := filepath.SplitList(searchPath)
	if searchPath == "" {
		elems = []string{""}
	}
	for _, elem := range elems {
		if elem == "" {
			// Unix shell semantics: path element "" means "."
			elem = "."
		}
		path := resolve(filepath.Join(elem, file))
		if err := findExecutable(fsys, path); err == nil {
			return path, nil
		}
	}
	return "", ErrNotFound
}
