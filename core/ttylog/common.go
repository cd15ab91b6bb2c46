package ttylog

import (
	"io"
	"log"
	"regexp"
	"sync"
	"time"

	"github.com/josephlewis42/accsh/core/vio"
)

var crlf = regexp.MustCompile(`\r?\n`)

// LogSink receives log entries.
type LogSink func(e *Entry) error

// LogSource adapts log readers.
type LogSource interface {
	// Next fetches the next available log entry. It returns io.EOF if the
	// source has no more log entries.
	Next() (*Entry, error)
}

// NewRealTimePlayback plays back the entries with their original timing.
// If maxSleep > 0, it's used as the maximum duration to pause, otherwise
// entries are forwarded without pausing.
func NewRealTimePlayback(maxSleep time.Duration, next LogSink) LogSink {
	return newPlayback(maxSleep, time.Sleep, next)
}

func newPlayback(maxSleep time.Duration, sleep func(time.Duration), next LogSink) LogSink {
	started := false
	var prevMicros int64

	return func(e *Entry) error {
		if !started {
			started = true
			prevMicros = e.TimestampMicros
		}

		delta := time.Duration(e.TimestampMicros-prevMicros) * time.Microsecond
		prevMicros = e.TimestampMicros

		if maxSleep > 0 && delta > 0 {
			if delta > maxSleep {
				delta = maxSleep
			}
			sleep(delta)
		}

		return next(e)
	}
}

// NewCRLFAdapter rewrites bare newlines in output as CRLF. Output captured
// before the terminal's line discipline only contains "\n", which makes
// playback creep across the screen in raw terminals.
func NewCRLFAdapter(next LogSink) LogSink {
	return func(e *Entry) error {
		if !e.IsInput() {
			e.Data = crlf.ReplaceAll(e.Data, []byte("\r\n"))
		}
		return next(e)
	}
}

// NewClientOutput writes stdout and stderr to the given writer.
func NewClientOutput(w io.Writer) LogSink {
	return func(e *Entry) error {
		if e.IsInput() {
			return nil
		}
		_, err := w.Write(e.Data)
		return err
	}
}

// Replay reads a stream of entries to a callback.
func Replay(recording LogSource, callback LogSink) error {
	for {
		e, err := recording.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return err
		}

		if err := callback(e); err != nil {
			return err
		}
	}
}

// LineReader reads a line of interactive input after showing a prompt.
type LineReader interface {
	SetPrompt(prompt string)
	Readline() (string, error)
}

// Recorder wraps the streams of a session and forwards everything written
// to them to a LogSink.
//
// Standard input is passed through untouched so child processes can keep
// inheriting the terminal; typed lines are captured with WrapLineReader.
type Recorder struct {
	*vio.Adapter

	mu     sync.Mutex
	output LogSink
	now    func() time.Time
}

var _ vio.VIO = (*Recorder)(nil)

// NewRecorder creates a Recorder that forwards all events to output.
func NewRecorder(toWrap vio.VIO, output LogSink) *Recorder {
	r := &Recorder{
		output: output,
		now:    time.Now,
	}

	r.Adapter = &vio.Adapter{
		IStdin:  toWrap.Stdin(),
		IStdout: &recorderWriteCloser{r: r, fd: FDStdout, wrapped: toWrap.Stdout()},
		IStderr: &recorderWriteCloser{r: r, fd: FDStderr, wrapped: toWrap.Stderr()},
	}

	return r
}

// Record sends data to the sink. Failures are logged rather than returned
// so a broken recording never interrupts the session.
func (r *Recorder) Record(fd FD, data []byte) {
	// Writers may reuse their buffer once Write returns.
	buf := make([]byte, len(data))
	copy(buf, data)

	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.output(&Entry{
		TimestampMicros: r.now().UnixMicro(),
		FD:              fd,
		Data:            buf,
	})
	if err != nil {
		log.Printf("recording session: %v", err)
	}
}

// WrapLineReader records every line read from rl as input.
func (r *Recorder) WrapLineReader(rl LineReader) LineReader {
	return &recordingLineReader{r: r, LineReader: rl}
}

type recordingLineReader struct {
	LineReader
	r *Recorder
}

func (rl *recordingLineReader) Readline() (string, error) {
	line, err := rl.LineReader.Readline()
	if err == nil {
		rl.r.Record(FDStdin, []byte(line+"\n"))
	}
	return line, err
}

type recorderWriteCloser struct {
	r       *Recorder
	fd      FD
	wrapped io.WriteCloser
}

var _ io.WriteCloser = (*recorderWriteCloser)(nil)

func (rc *recorderWriteCloser) Write(p []byte) (int, error) {
	n, err := rc.wrapped.Write(p)
	if n > 0 {
		rc.r.Record(rc.fd, p[:n])
	}
	return n, err
}

func (rc *recorderWriteCloser) Close() error {
	return rc.wrapped.Close()
}
