package ttylog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"
)

// AsciicastFileExt holds the suggested file extension for asciicast files.
const AsciicastFileExt = "cast"

const asciicastVersion = 2

// ErrUnsupportedVersion is returned when reading asciicast files other than
// version 2.
var ErrUnsupportedVersion = errors.New("unsupported asciicast version")

// AsciicastHeader is the first line of an asciicast v2 file.
//
// See: https://github.com/asciinema/asciinema/blob/develop/doc/asciicast-v2.md
type AsciicastHeader struct {
	Version   int               `json:"version"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Timestamp int64             `json:"timestamp,omitempty"`
	Title     string            `json:"title,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
}

func writeJSONLine(w io.Writer, structure interface{}) error {
	line, err := json.Marshal(structure)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "%s\n", line)
	return err
}

// NewAsciicastLogSink creates a LogSink that writes asciicast v2. The header
// is written with the first entry, zero dimensions default to 80x24.
func NewAsciicastLogSink(w io.Writer, header AsciicastHeader) LogSink {
	header.Version = asciicastVersion
	if header.Width <= 0 {
		header.Width = 80
	}
	if header.Height <= 0 {
		header.Height = 24
	}

	wroteHeader := false
	var firstMicros int64

	return func(e *Entry) error {
		if !wroteHeader {
			firstMicros = e.TimestampMicros
			header.Timestamp = time.UnixMicro(firstMicros).Unix()
			if err := writeJSONLine(w, &header); err != nil {
				return err
			}
			wroteHeader = true
		}

		// Asciicast doesn't support stderr so it's collapsed into stdout.
		eventType := "o"
		if e.IsInput() {
			eventType = "i"
		}

		return writeJSONLine(w, &asciicastLogLine{
			TimeSeconds: microsecondsToSeconds(e.TimestampMicros - firstMicros),
			EventType:   eventType,
			EventData:   string(e.Data),
		})
	}
}

// AsciicastLogSource reads entries from an asciicast v2 file.
type AsciicastLogSource struct {
	r *bufio.Reader

	header     *AsciicastHeader
	baseMicros int64
}

var _ LogSource = (*AsciicastLogSource)(nil)

// NewAsciicastLogSource reads log events from an asciicast formatted file.
func NewAsciicastLogSource(r io.Reader) *AsciicastLogSource {
	return &AsciicastLogSource{r: bufio.NewReader(r)}
}

// Header returns the file's header, reading it if needed.
func (s *AsciicastLogSource) Header() (*AsciicastHeader, error) {
	if s.header != nil {
		return s.header, nil
	}

	line, err := s.nextLine()
	if err != nil {
		return nil, err
	}

	var header AsciicastHeader
	if err := json.Unmarshal(line, &header); err != nil {
		return nil, fmt.Errorf("malformed header: %w", err)
	}
	if header.Version != asciicastVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header.Version)
	}

	s.header = &header
	s.baseMicros = header.Timestamp * int64(time.Second/time.Microsecond)
	return s.header, nil
}

// nextLine returns the next non-blank line.
func (s *AsciicastLogSource) nextLine() ([]byte, error) {
	for {
		line, err := s.r.ReadBytes('\n')
		if len(line) > 0 && len(trimNewline(line)) > 0 {
			return line, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func trimNewline(line []byte) []byte {
	for len(line) > 0 && (line[len(line)-1] == '\n' || line[len(line)-1] == '\r') {
		line = line[:len(line)-1]
	}
	return line
}

// Next gets the next log entry, it returns io.EOF if there are no more.
func (s *AsciicastLogSource) Next() (*Entry, error) {
	if _, err := s.Header(); err != nil {
		return nil, err
	}

	for {
		line, err := s.nextLine()
		if err != nil {
			return nil, err
		}

		var asciicastLine asciicastLogLine
		if err := json.Unmarshal(line, &asciicastLine); err != nil {
			return nil, err
		}

		var fd FD
		switch asciicastLine.EventType {
		case "o":
			fd = FDStdout
		case "i":
			fd = FDStdin
		default:
			// Markers and resizes have no terminal output.
			continue
		}

		return &Entry{
			TimestampMicros: s.baseMicros + secondsToMicroseconds(asciicastLine.TimeSeconds),
			FD:              fd,
			Data:            []byte(asciicastLine.EventData),
		}, nil
	}
}

type asciicastLogLine struct {
	TimeSeconds float64
	EventType   string
	EventData   string
}

func (l *asciicastLogLine) UnmarshalJSON(data []byte) error {
	var v []interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if count := len(v); count != 3 {
		return fmt.Errorf("malformed line, expected 3 entries got %d", count)
	}

	var timeOk, typeOk, dataOk bool
	l.TimeSeconds, timeOk = v[0].(float64)
	l.EventType, typeOk = v[1].(string)
	l.EventData, dataOk = v[2].(string)

	if !timeOk || !typeOk || !dataOk {
		return fmt.Errorf("malformed data in line: %q", v)
	}

	return nil
}

func (l *asciicastLogLine) MarshalJSON() ([]byte, error) {
	return json.Marshal([]interface{}{l.TimeSeconds, l.EventType, l.EventData})
}

func microsecondsToSeconds(microseconds int64) (seconds float64) {
	return (float64(microseconds) * float64(time.Microsecond)) / float64(time.Second)
}

func secondsToMicroseconds(seconds float64) (microseconds int64) {
	return int64(seconds*float64(time.Second)) / int64(time.Microsecond)
}
