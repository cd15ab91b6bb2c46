package logger

import (
	"fmt"
	"time"

	"google.golang.org/protobuf/types/known/structpb"
)

// Kind describes how a command line was handled.
type Kind string

const (
	// KindEmpty is a line without any words.
	KindEmpty Kind = "empty"
	// KindBuiltin is a line handled inside the interpreter.
	KindBuiltin Kind = "builtin"
	// KindExternal is a line that started a program.
	KindExternal Kind = "external"
	// KindSkipped is a conditional line whose command didn't run.
	KindSkipped Kind = "skipped"
)

// Event is a single executed command line.
type Event struct {
	SessionID string
	Time      time.Time
	// Line is the raw text that was executed.
	Line string
	// Argv is the argument vector after substitution.
	Argv     []string
	Kind     Kind
	Status   int
	Duration time.Duration
}

const (
	fieldSessionID = "session_id"
	fieldTime      = "time"
	fieldLine      = "line"
	fieldArgv      = "argv"
	fieldKind      = "kind"
	fieldStatus    = "status"
	fieldDuration  = "duration_ms"
)

// Struct converts the event to a protobuf Struct.
func (e *Event) Struct() (*structpb.Struct, error) {
	argv := make([]interface{}, len(e.Argv))
	for i, arg := range e.Argv {
		argv[i] = arg
	}

	return structpb.NewStruct(map[string]interface{}{
		fieldSessionID: e.SessionID,
		fieldTime:      e.Time.UTC().Format(time.RFC3339Nano),
		fieldLine:      e.Line,
		fieldArgv:      argv,
		fieldKind:      string(e.Kind),
		fieldStatus:    e.Status,
		fieldDuration:  float64(e.Duration) / float64(time.Millisecond),
	})
}

// EventFromStruct is the inverse of Event.Struct.
func EventFromStruct(s *structpb.Struct) (*Event, error) {
	fields := s.GetFields()
	out := &Event{
		SessionID: fields[fieldSessionID].GetStringValue(),
		Line:      fields[fieldLine].GetStringValue(),
		Kind:      Kind(fields[fieldKind].GetStringValue()),
		Status:    int(fields[fieldStatus].GetNumberValue()),
		Duration:  time.Duration(fields[fieldDuration].GetNumberValue() * float64(time.Millisecond)),
	}

	if ts := fields[fieldTime].GetStringValue(); ts != "" {
		parsed, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("bad %s: %w", fieldTime, err)
		}
		out.Time = parsed
	}

	for _, arg := range fields[fieldArgv].GetListValue().GetValues() {
		out.Argv = append(out.Argv, arg.GetStringValue())
	}

	return out, nil
}
