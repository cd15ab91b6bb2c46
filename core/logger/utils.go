package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// EventRecorder receives executed command events.
type EventRecorder interface {
	Record(event *Event) error
}

// NopEventRecorder discards all events.
type NopEventRecorder struct{}

var _ EventRecorder = (*NopEventRecorder)(nil)

func (*NopEventRecorder) Record(*Event) error {
	return nil
}

// LogRecorder is a callback that stores events in an external datastore.
type LogRecorder func(e *Event) error

var _ EventRecorder = (LogRecorder)(nil)

// Record implements EventRecorder.
func (f LogRecorder) Record(e *Event) error {
	return f(e)
}

// Logger captures the events of interpreter sessions.
type Logger struct {
	Record LogRecorder
}

// NewJSONLinesLogRecorder creates a Logger that exports events in newline
// delimited JSON object format.
func NewJSONLinesLogRecorder(w io.Writer) *Logger {
	var mu sync.Mutex

	return &Logger{
		Record: func(e *Event) error {
			s, err := e.Struct()
			if err != nil {
				return err
			}
			entry, err := protojson.Marshal(s)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			_, err = fmt.Fprintln(w, string(entry))
			return err
		},
	}
}

// NewSession creates a logger with a fresh session ID.
func (l *Logger) NewSession() *SessionLogger {
	return &SessionLogger{Logger: l, sessionID: uuid.NewString(), now: time.Now}
}

// SessionLogger logs events with a shared session ID.
type SessionLogger struct {
	*Logger
	sessionID string
	now       func() time.Time
}

var _ EventRecorder = (*SessionLogger)(nil)

// SessionID returns the ID attached to every event.
func (l *SessionLogger) SessionID() string {
	return l.sessionID
}

// Record fills in the session ID and timestamp if missing and logs the event.
func (l *SessionLogger) Record(event *Event) error {
	if event.SessionID == "" {
		event.SessionID = l.sessionID
	}
	if event.Time.IsZero() {
		event.Time = l.now()
	}

	return l.Logger.Record(event)
}

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(e *Event)) error {
	decoder := json.NewDecoder(r)
	for decoder.More() {
		var rawEntry json.RawMessage
		if err := decoder.Decode(&rawEntry); err != nil {
			return err
		}

		var entry structpb.Struct
		if err := protojson.Unmarshal(rawEntry, &entry); err != nil {
			return err
		}

		event, err := EventFromStruct(&entry)
		if err != nil {
			return err
		}

		handler(event)
	}
	return nil
}
