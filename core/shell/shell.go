// Package shell implements the command interpreter: variable substitution,
// tokenizing, built-in dispatch, conditional execution and external program
// invocation, plus the interactive and batch command loops that drive them.
package shell

import (
	"fmt"
	"io/fs"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/josephlewis42/accsh/core/config"
	"github.com/josephlewis42/accsh/core/env"
	"github.com/josephlewis42/accsh/core/logger"
	"github.com/josephlewis42/accsh/core/vio"
	"github.com/spf13/afero"
)

const (
	// GateMarker prefixes a line that only runs if the last status was 0.
	GateMarker = "?"
	// SubstitutionMarker prefixes a word that is replaced by a variable.
	SubstitutionMarker = "$"
	// TracePrefix starts the line echoed before an external command runs.
	TracePrefix = "Executing: "
)

// Options configures a new Shell.
type Options struct {
	// Name is the name the interpreter was invoked with, stored in $0.
	Name string
	// Dir is the absolute initial working directory.
	Dir string

	Env      env.Store
	Fs       afero.Fs
	Executor Executor
	IO       vio.VIO
	// Events receives every executed line, it may be nil.
	Events logger.EventRecorder
	// Config provides limits and prompt settings, defaults are used if nil.
	Config *config.Configuration
}

// Shell is a single-threaded command interpreter. All state a command can
// observe or change (variables, working directory) lives here rather than in
// the process.
type Shell struct {
	Env      env.Store
	Fs       afero.Fs
	Executor Executor
	IO       vio.VIO
	Events   logger.EventRecorder

	// PromptText is shown before the working directory in interactive mode.
	PromptText string
	// MaxArgs is the size of the argument vector including its terminator.
	MaxArgs int
	// MaxLineLength is the size of the line buffer including its terminator.
	MaxLineLength int

	Color ColorPrinter

	dir      string
	quit     bool
	exitCode int
}

// NewShell creates a shell and initializes $0 and $?.
func NewShell(opts Options) (*Shell, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if !filepath.IsAbs(opts.Dir) {
		return nil, fmt.Errorf("getcwd: working directory %q is not absolute", opts.Dir)
	}
	if err := checkDir(opts.Fs, opts.Dir); err != nil {
		return nil, fmt.Errorf("getcwd: %w", err)
	}

	s := &Shell{
		Env:           opts.Env,
		Fs:            opts.Fs,
		Executor:      opts.Executor,
		IO:            opts.IO,
		Events:        opts.Events,
		PromptText:    cfg.Prompt,
		MaxArgs:       cfg.MaxArgs,
		MaxLineLength: cfg.MaxLineLength,
		Color:         ColorPrinter{Mode: cfg.Color, Out: opts.IO.Stdout()},
		dir:           filepath.Clean(opts.Dir),
	}

	if err := s.Env.Setenv(env.KeyStatus, "0"); err != nil {
		return nil, err
	}
	if err := s.Env.Setenv(env.KeyName, opts.Name); err != nil {
		return nil, err
	}

	return s, nil
}

// Getwd returns the working directory commands run in.
func (s *Shell) Getwd() string {
	return s.dir
}

// Exited reports whether the exit builtin ran and the code it requested.
func (s *Shell) Exited() (bool, int) {
	return s.quit, s.exitCode
}

// RunLine executes a line and stores its status in $?.
func (s *Shell) RunLine(line string) int {
	status := s.Execute(line)
	if err := s.Env.Setenv(env.KeyStatus, strconv.Itoa(status)); err != nil {
		// The key is constant and valid, this can't happen with MapEnv.
		log.Printf("storing status: %v", err)
	}
	return status
}

// Execute runs a single line and returns its exit status without storing it.
func (s *Shell) Execute(line string) int {
	start := time.Now()
	status, kind, argv := s.execute(line)

	if s.Events != nil {
		err := s.Events.Record(&logger.Event{
			Time:     start,
			Line:     line,
			Argv:     argv,
			Kind:     kind,
			Status:   status,
			Duration: time.Since(start),
		})
		if err != nil {
			log.Printf("recording event: %v", err)
		}
	}

	return status
}

func (s *Shell) execute(line string) (int, logger.Kind, []string) {
	// The gate is textual: it looks at the raw line, not at the first word.
	if strings.HasPrefix(line, GateMarker) {
		if Atoi(s.Env.Getenv(env.KeyStatus)) != 0 {
			return 0, logger.KindSkipped, nil
		}
		return s.execute(line[len(GateMarker):])
	}

	argv := s.Tokenize(line)
	if len(argv) == 0 {
		return 0, logger.KindEmpty, nil
	}

	if builtin, ok := AllBuiltins[argv[0]]; ok {
		return builtin.Main(s, argv), logger.KindBuiltin, argv
	}

	return s.runExternal(line, argv), logger.KindExternal, argv
}

func (s *Shell) runExternal(line string, argv []string) int {
	if s.Env.Getenv(env.KeyNoEcho) == "" {
		fmt.Fprintf(s.IO.Stdout(), "%s%s\n", TracePrefix, line)
	}

	return s.Executor.Spawn(&Request{
		Argv: argv,
		Env:  s.Env.Environ(),
		Dir:  s.dir,
		IO:   s.IO,
	})
}

func checkDir(fsys afero.Fs, dir string) error {
	info, err := fsys.Stat(dir)
	switch {
	case err != nil:
		return err
	case !info.IsDir():
		return &fs.PathError{Op: "chdir", Path: dir, Err: ErrNotDirectory}
	default:
		return nil
	}
}
