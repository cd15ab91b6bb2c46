package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/abiosoft/readline"
	"github.com/josephlewis42/accsh/core/config"
	"github.com/josephlewis42/accsh/core/env"
	"github.com/josephlewis42/accsh/core/logger"
	"github.com/josephlewis42/accsh/core/shell"
	"github.com/josephlewis42/accsh/core/signals"
	"github.com/josephlewis42/accsh/core/ttylog"
	"github.com/josephlewis42/accsh/core/vio"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

const (
	// exitOpenFailure is returned when the script can't be opened.
	exitOpenFailure = 1
	// exitNoWorkingDir is returned when the initial working directory is
	// unavailable.
	exitNoWorkingDir = 2
)

var (
	cfgPath      string
	recordPath   string
	eventLogPath string
)

func loadConfig(fsys afero.Fs) (*config.Configuration, error) {
	if cfgPath == "" {
		return config.Default(), nil
	}

	configuration, err := config.Load(fsys, cfgPath)
	if errors.Is(err, fs.ErrNotExist) {
		log.Println("Couldn't load config: did you run init?")
	}

	return configuration, err
}

// rootCmd runs the interpreter when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "accsh [SCRIPT]",
	Short: "A tiny shell with an accumulator.",
	Long: `accsh runs commands one line at a time, either interactively or from
SCRIPT. Words starting with $ are replaced by variables, lines starting
with ? only run if the previous command succeeded, and the addacc builtin
adds to the ACC variable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		code, err := runShell(cmd, args)
		if err != nil {
			return err
		}

		os.Exit(code)
		return nil
	},
}

// runShell runs the interpreter and returns the process exit code. Errors
// are reserved for problems with the command line and its flags.
func runShell(cmd *cobra.Command, args []string) (int, error) {
	// Interrupts and stop requests are ignored in both modes, children get
	// the default dispositions back when they exec.
	stop := signals.Suppress()
	defer stop()

	fsys := afero.NewOsFs()
	stderr := cmd.ErrOrStderr()

	cfg, err := loadConfig(fsys)
	if err != nil {
		return 0, err
	}

	var stdio vio.VIO = vio.NewOSIO()

	var events logger.EventRecorder
	if eventLogPath != "" {
		fd, err := fsys.OpenFile(eventLogPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0600)
		if err != nil {
			return 0, err
		}
		defer fd.Close()

		events = logger.NewJSONLinesLogRecorder(fd).NewSession()
	}

	var recorder *ttylog.Recorder
	if recordPath != "" {
		fd, err := fsys.Create(recordPath)
		if err != nil {
			return 0, err
		}
		defer fd.Close()

		sink := ttylog.NewAsciicastLogSink(fd, ttylog.AsciicastHeader{
			Width: readline.GetScreenWidth(),
			Title: "accsh session",
			Env: map[string]string{
				"SHELL": os.Args[0],
				"TERM":  os.Getenv("TERM"),
			},
		})
		recorder = ttylog.NewRecorder(stdio, ttylog.NewCRLFAdapter(sink))
		stdio = recorder
	}

	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(stderr, "getcwd: %v\n", err)
		return exitNoWorkingDir, nil
	}

	sh, err := shell.NewShell(shell.Options{
		Name:     os.Args[0],
		Dir:      dir,
		Env:      env.NewMapEnvFromEnvList(os.Environ()),
		Fs:       fsys,
		Executor: &shell.ProcessExecutor{Fs: fsys},
		IO:       stdio,
		Events:   events,
		Config:   cfg,
	})
	if err != nil {
		fmt.Fprintln(stderr, err)
		return exitNoWorkingDir, nil
	}

	if len(args) == 1 {
		return runBatch(sh, fsys, args[0], stderr), nil
	}
	return runInteractive(sh, cfg, recorder)
}

func runBatch(sh *shell.Shell, fsys afero.Fs, path string, stderr io.Writer) int {
	script, err := fsys.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening file: %v\n", err)
		return exitOpenFailure
	}
	defer script.Close()

	return sh.RunBatch(script)
}

func runInteractive(sh *shell.Shell, cfg *config.Configuration, recorder *ttylog.Recorder) (int, error) {
	historyPath := cfg.HistoryPath()
	if historyPath != "" {
		if err := os.MkdirAll(filepath.Dir(historyPath), 0700); err != nil {
			log.Printf("Couldn't create history directory: %v", err)
		}
	}

	rl, err := readline.NewEx(&readline.Config{
		Stdout:          sh.IO.Stdout(),
		Stderr:          sh.IO.Stderr(),
		HistoryFile:     historyPath,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return 0, err
	}
	defer rl.Close()

	var lines shell.LineReader = rl
	if recorder != nil {
		lines = recorder.WrapLineReader(rl)
	}

	return sh.RunInteractive(lines), nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config directory or config.yaml path, built-in defaults if empty")
	rootCmd.Flags().StringVar(&recordPath, "record", "", "record the session to an asciicast file (e.g. session.cast)")
	rootCmd.Flags().StringVar(&eventLogPath, "event-log", "", "append executed commands to a JSON lines file")
}
