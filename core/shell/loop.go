package shell

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/abiosoft/readline"
)

// LineReader reads interactive input, *readline.Instance implements it.
type LineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
}

var _ LineReader = (*readline.Instance)(nil)

// truncateLine drops the line terminator and limits line to what fits in a
// buffer of MaxLineLength bytes, terminator included. The remainder of an
// overlong line is discarded rather than being read as another line.
func (s *Shell) truncateLine(line string) string {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")

	if limit := s.MaxLineLength - 1; limit >= 0 && len(line) > limit {
		line = line[:limit]
	}
	return line
}

// result is the process exit code once a loop ends.
func (s *Shell) result(lastStatus int) int {
	if s.quit {
		return s.exitCode
	}
	return lastStatus
}

// RunBatch executes every line of script in order. It stops early if exit
// runs and returns the exit code, otherwise it returns the status of the last
// line.
func (s *Shell) RunBatch(script io.Reader) int {
	r := bufio.NewReader(script)
	status := 0

	for !s.quit {
		line, err := r.ReadString('\n')
		if line != "" {
			status = s.RunLine(s.truncateLine(line))
		}

		switch {
		case err == io.EOF:
			return s.result(status)
		case err != nil:
			fmt.Fprintf(s.IO.Stderr(), "read: %v\n", err)
			return s.result(status)
		}
	}

	return s.result(status)
}

// Prompt renders "<prompt> [<working directory>]> ". It returns an error
// alongside the prompt if the working directory is no longer accessible.
func (s *Shell) Prompt() (string, error) {
	prompt := fmt.Sprintf("%s [%s]> ", s.PromptText, s.Color.Sprint(dirColor, s.dir))
	if err := checkDir(s.Fs, s.dir); err != nil {
		return prompt, err
	}
	return prompt, nil
}

// RunInteractive prompts for and executes lines until exit runs or the input
// ends. Interrupts while reading discard the line and prompt again.
func (s *Shell) RunInteractive(rl LineReader) int {
	status := 0

	for !s.quit {
		prompt, err := s.Prompt()
		if err != nil {
			fmt.Fprintf(s.IO.Stderr(), "getcwd: %v\n", err)
		}
		rl.SetPrompt(prompt)

		line, err := rl.Readline()
		switch {
		case err == io.EOF:
			return s.result(status)

		case err == readline.ErrInterrupt:
			continue

		case err != nil:
			log.Printf("Error readline: %v", err)
			continue

		default:
			status = s.RunLine(s.truncateLine(line))
		}
	}

	return s.result(status)
}
