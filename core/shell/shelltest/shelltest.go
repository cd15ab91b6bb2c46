// Package shelltest runs shells against an in-memory filesystem and scripted
// programs so their output is deterministic.
package shelltest

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/josephlewis42/accsh/core/config"
	"github.com/josephlewis42/accsh/core/env"
	"github.com/josephlewis42/accsh/core/logger"
	"github.com/josephlewis42/accsh/core/shell"
	"github.com/josephlewis42/accsh/core/vio"
	"github.com/spf13/afero"
)

const (
	// Name is stored in $0.
	Name = "accsh"
	// Home is the home directory of the test user.
	Home = "/home/tester"
)

// DefaultEnv is the environment test shells start with.
func DefaultEnv() []string {
	return []string{
		"HOME=" + Home,
		"PATH=/bin:/usr/bin",
		"USER=tester",
	}
}

// NewFs creates an in-memory filesystem with a minimal directory layout.
func NewFs() afero.Fs {
	fsys := afero.NewMemMapFs()
	for _, dir := range []string{"/bin", "/usr/bin", "/tmp", Home} {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			panic(err)
		}
	}
	if err := afero.WriteFile(fsys, "/etc/motd", []byte("hello\n"), 0644); err != nil {
		panic(err)
	}
	return fsys
}

// Program is a scripted external command.
type Program func(req *shell.Request) int

// ExitWith creates a program that exits with the given status.
func ExitWith(status int) Program {
	return func(*shell.Request) int {
		return status
	}
}

// Echo prints its arguments separated by spaces.
func Echo(req *shell.Request) int {
	fmt.Fprintln(req.IO.Stdout(), strings.Join(req.Argv[1:], " "))
	return 0
}

// Killed simulates a child terminated by a signal.
func Killed(*shell.Request) int {
	return shell.StatusAbnormal
}

// FakeExecutor records requests and runs scripted programs in-process.
type FakeExecutor struct {
	Programs map[string]Program
	Requests []*shell.Request
}

var _ shell.Executor = (*FakeExecutor)(nil)

// DefaultPrograms holds the programs every FakeExecutor starts with.
func DefaultPrograms() map[string]Program {
	return map[string]Program{
		"true":  ExitWith(0),
		"false": ExitWith(1),
		"echo":  Echo,
		"kill9": Killed,
	}
}

// NewFakeExecutor creates an executor with DefaultPrograms.
func NewFakeExecutor() *FakeExecutor {
	return &FakeExecutor{Programs: DefaultPrograms()}
}

// Spawn implements shell.Executor.Spawn.
func (f *FakeExecutor) Spawn(req *shell.Request) int {
	f.Requests = append(f.Requests, req)

	if program, ok := f.Programs[req.Argv[0]]; ok {
		return program(req)
	}
	return shell.LaunchFailure(req.IO.Stderr(), req.Argv[0], shell.ErrNotFound)
}

// Cmd runs a script through a test shell, similar to exec.Cmd.
type Cmd struct {
	// Script is the text fed to the shell in batch mode.
	Script string
	// Env is the initial environment, DefaultEnv if nil.
	Env []string
	// Dir is the initial working directory, "/" if empty.
	Dir string
	// Config overrides the default configuration.
	Config *config.Configuration
	// Events receives executed lines.
	Events logger.EventRecorder

	Stdout io.Writer
	Stderr io.Writer

	Fs       afero.Fs
	Executor *FakeExecutor
	Shell    *shell.Shell

	ExitStatus int
}

// Script creates a Cmd that runs the given lines.
func Script(lines ...string) *Cmd {
	return &Cmd{
		Script:   strings.Join(lines, "\n") + "\n",
		Fs:       NewFs(),
		Executor: NewFakeExecutor(),
	}
}

// NewShell creates a shell with the command's settings without running it.
func (c *Cmd) NewShell() (*shell.Shell, error) {
	environ := c.Env
	if environ == nil {
		environ = DefaultEnv()
	}
	dir := c.Dir
	if dir == "" {
		dir = "/"
	}
	if c.Fs == nil {
		c.Fs = NewFs()
	}
	if c.Executor == nil {
		c.Executor = NewFakeExecutor()
	}

	sh, err := shell.NewShell(shell.Options{
		Name:     Name,
		Dir:      dir,
		Env:      env.NewMapEnvFromEnvList(environ),
		Fs:       c.Fs,
		Executor: c.Executor,
		IO:       vio.NewAdapter(nil, c.Stdout, c.Stderr),
		Events:   c.Events,
		Config:   c.Config,
	})
	if err != nil {
		return nil, err
	}
	c.Shell = sh
	return sh, nil
}

// Run runs the script and waits for it to complete.
func (c *Cmd) Run() error {
	sh, err := c.NewShell()
	if err != nil {
		return err
	}

	c.ExitStatus = sh.RunBatch(strings.NewReader(c.Script))
	return nil
}

// CombinedOutput runs the script and returns its stdout and stderr.
func (c *Cmd) CombinedOutput() ([]byte, error) {
	buf := &bytes.Buffer{}
	c.Stdout = buf
	c.Stderr = buf

	if err := c.Run(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Output runs the script and returns its stdout.
func (c *Cmd) Output() ([]byte, error) {
	buf := &bytes.Buffer{}
	c.Stdout = buf

	if err := c.Run(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ScriptedReader is a LineReader that returns canned lines and errors.
type ScriptedReader struct {
	Inputs []Input
	// Prompts records every prompt that was set.
	Prompts []string
}

// Input is a single Readline result.
type Input struct {
	Line string
	Err  error
}

var _ shell.LineReader = (*ScriptedReader)(nil)

// Lines creates a reader that returns each line then io.EOF.
func Lines(lines ...string) *ScriptedReader {
	r := &ScriptedReader{}
	for _, line := range lines {
		r.Inputs = append(r.Inputs, Input{Line: line})
	}
	return r
}

func (r *ScriptedReader) SetPrompt(prompt string) {
	r.Prompts = append(r.Prompts, prompt)
}

func (r *ScriptedReader) Readline() (string, error) {
	if len(r.Inputs) == 0 {
		return "", io.EOF
	}
	next := r.Inputs[0]
	r.Inputs = r.Inputs[1:]
	return next.Line, next.Err
}
