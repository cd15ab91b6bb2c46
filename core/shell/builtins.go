package shell

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"text/tabwriter"

	"github.com/josephlewis42/accsh/core/env"
	"github.com/pborman/getopt/v2"
)

// AllBuiltins holds all registered shell builtins by name.
var AllBuiltins = make(map[string]ShellBuiltin)

// builtinDocs holds the usage synopsis and description of each builtin.
var builtinDocs = make(map[string]builtinDoc)

type builtinDoc struct {
	use   string
	short string
}

// ShellBuiltin is a command run inside the interpreter. Main receives the
// full argument vector, including the command name, and returns its status.
//
// Builtins report their own failures and return 0 for every handled case,
// so a failing builtin never changes the outcome seen by the conditional
// gate. Only exit ends the interpreter.
type ShellBuiltin interface {
	Main(s *Shell, args []string) int
}

type ShellBuiltinFunc func(s *Shell, args []string) int

func (f ShellBuiltinFunc) Main(s *Shell, args []string) int {
	return f(s, args)
}

var _ ShellBuiltin = (ShellBuiltinFunc)(nil)

func addBuiltin(name, use, short string, fn ShellBuiltinFunc) {
	AllBuiltins[name] = fn
	builtinDocs[name] = builtinDoc{use: use, short: short}
}

// ErrNotDirectory is reported when changing into something that isn't a
// directory.
var ErrNotDirectory = errors.New("not a directory")

// describePathError gives filesystem errors the same wording regardless of
// the afero backend that produced them.
func describePathError(path string, err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf("%s: no such file or directory", path)
	case errors.Is(err, fs.ErrPermission):
		return fmt.Sprintf("%s: permission denied", path)
	case errors.Is(err, ErrNotDirectory):
		return fmt.Sprintf("%s: %v", path, ErrNotDirectory)
	case errors.Is(err, ErrTooManyLinks):
		return fmt.Sprintf("%s: %v", path, ErrTooManyLinks)
	default:
		return err.Error()
	}
}

// Exit stops the interpreter with the code in args[1], 0 by default.
func Exit(s *Shell, args []string) int {
	code := 0
	if len(args) > 1 {
		code = Atoi(args[1])
	}

	s.quit = true
	s.exitCode = code
	return code
}

// Cd changes the working directory to args[1], or $HOME if it's missing.
func Cd(s *Shell, args []string) int {
	var target string
	switch {
	case len(args) > 1:
		target = args[1]
	case s.Env.Getenv(env.KeyHome) != "":
		target = s.Env.Getenv(env.KeyHome)
	default:
		fmt.Fprintln(s.IO.Stderr(), "chdir: HOME not set")
		return 0
	}

	dir, err := physicalDir(s.Fs, s.dir, target)
	if err != nil {
		fmt.Fprintf(s.IO.Stderr(), "chdir: %s\n", describePathError(target, err))
		return 0
	}

	s.dir = dir
	return 0
}

// Pwd prints the working directory.
func Pwd(s *Shell, args []string) int {
	fmt.Fprintln(s.IO.Stdout(), s.Getwd())
	return 0
}

// AddAcc adds args[1] to $ACC, or 1 if it's missing. An unset $ACC counts
// as 0.
func AddAcc(s *Shell, args []string) int {
	delta := 1
	if len(args) > 1 {
		delta = Atoi(args[1])
	}

	acc := Atoi(s.Env.Getenv(env.KeyAccumulator))
	setAccumulator(s, addInt32(acc, delta))
	return 0
}

func setAccumulator(s *Shell, value int) {
	if err := s.Env.Setenv(env.KeyAccumulator, strconv.Itoa(value)); err != nil {
		fmt.Fprintf(s.IO.Stderr(), "addacc: %v\n", err)
	}
}

// SetEnv sets args[1] to args[2]. $ACC is normalized to an integer.
func SetEnv(s *Shell, args []string) int {
	if len(args) < 3 {
		fmt.Fprintln(s.IO.Stderr(), "Usage: setenv VAR VALUE")
		return 0
	}

	name, value := args[1], args[2]
	if name == env.KeyAccumulator {
		setAccumulator(s, Atoi(value))
		return 0
	}

	if err := s.Env.Setenv(name, value); err != nil {
		fmt.Fprintf(s.IO.Stderr(), "setenv: %v\n", err)
	}
	return 0
}

// PrintEnv prints every variable, or only args[1].
func PrintEnv(s *Shell, args []string) int {
	w := s.IO.Stdout()
	if len(args) < 2 {
		for _, entry := range s.Env.Environ() {
			fmt.Fprintln(w, entry)
		}
		return 0
	}

	name := args[1]
	if value, ok := s.Env.LookupEnv(name); ok {
		fmt.Fprintf(w, "%s=%s\n", name, value)
	} else {
		fmt.Fprintf(w, "%s is not set\n", name)
	}
	return 0
}

// Unset removes the variable args[1].
func Unset(s *Shell, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(s.IO.Stderr(), "Usage: unset VAR")
		return 0
	}

	if err := s.Env.Unsetenv(args[1]); err != nil {
		fmt.Fprintf(s.IO.Stderr(), "unset: %v\n", err)
	}
	return 0
}

// Help describes the builtins.
func Help(s *Shell, args []string) int {
	opts := getopt.New()
	opts.SetProgram("help")
	opts.SetParameters("[NAME...]")
	synopsis := opts.Bool('s', "print only a short usage synopsis")
	helpOpt := opts.BoolLong("help", 'h', "show help and exit")

	if err := opts.Getopt(args, nil); err != nil || *helpOpt {
		w := s.IO.Stderr()
		if err != nil {
			fmt.Fprintln(w, err)
		}
		opts.PrintUsage(w)
		return 0
	}

	names := opts.Args()
	if len(names) == 0 {
		for name := range AllBuiltins {
			names = append(names, name)
		}
		sort.Strings(names)
	}

	w := s.IO.Stdout()
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	defer tw.Flush()

	for _, name := range names {
		doc, ok := builtinDocs[name]
		switch {
		case !ok:
			fmt.Fprintf(s.IO.Stderr(), "help: no help topics match %q\n", name)
		case *synopsis:
			fmt.Fprintf(tw, "%s:\t%s\n", name, doc.use)
		default:
			fmt.Fprintf(tw, "%s\t%s\n", doc.use, doc.short)
		}
	}

	return 0
}

func init() {
	addBuiltin("exit", "exit [CODE]", "leave the interpreter with CODE, 0 by default", Exit)
	addBuiltin("cd", "cd [DIR]", "change the working directory, to $HOME without DIR", Cd)
	addBuiltin("pwd", "pwd", "print the working directory", Pwd)
	addBuiltin("addacc", "addacc [N]", "add N, 1 by default, to $ACC", AddAcc)
	addBuiltin("setenv", "setenv VAR VALUE", "set the variable VAR to VALUE", SetEnv)
	addBuiltin("printenv", "printenv [VAR]", "print all variables, or only VAR", PrintEnv)
	addBuiltin("unset", "unset VAR", "remove the variable VAR", Unset)
	addBuiltin("help", "help [-s] [NAME...]", "describe builtin commands", Help)
}
