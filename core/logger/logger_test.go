package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"sigs.k8s.io/yaml"
)

func TestJSONLinesRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	session := NewJSONLinesLogRecorder(buf).NewSession()
	assert.NotEmpty(t, session.SessionID())

	stamp := time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
	session.now = func() time.Time { return stamp }

	assert.Nil(t, session.Record(&Event{
		Line:     "ls -l $HOME",
		Argv:     []string{"ls", "-l", "/home/tester"},
		Kind:     KindExternal,
		Status:   2,
		Duration: 1500 * time.Microsecond,
	}))
	assert.Nil(t, session.Record(&Event{Line: "", Kind: KindEmpty}))

	// One object per line.
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))

	var events []*Event
	assert.Nil(t, ReadJSONLinesLog(buf, func(e *Event) {
		events = append(events, e)
	}))

	assert.Len(t, events, 2)
	assert.Equal(t, &Event{
		SessionID: session.SessionID(),
		Time:      stamp,
		Line:      "ls -l $HOME",
		Argv:      []string{"ls", "-l", "/home/tester"},
		Kind:      KindExternal,
		Status:    2,
		Duration:  1500 * time.Microsecond,
	}, events[0])
	assert.Equal(t, KindEmpty, events[1].Kind)
	assert.Nil(t, events[1].Argv)
}

func TestReadJSONLinesLog_malformed(t *testing.T) {
	cases := map[string]string{
		"not-json":   "{\n",
		"not-object": "[1, 2]\n",
		"bad-time":   `{"time": "yesterday"}` + "\n",
	}

	for tn, input := range cases {
		t.Run(tn, func(t *testing.T) {
			err := ReadJSONLinesLog(strings.NewReader(input), func(*Event) {})
			assert.Error(t, err)
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestNewJSONLinesLogRecorder_writeError(t *testing.T) {
	logger := NewJSONLinesLogRecorder(failingWriter{})
	assert.EqualError(t, logger.NewSession().Record(&Event{}), "disk full")
}

func TestReport(t *testing.T) {
	var report Report
	for _, e := range []*Event{
		{SessionID: "a", Kind: KindBuiltin, Argv: []string{"cd", "/tmp"}},
		{SessionID: "a", Kind: KindExternal, Argv: []string{"false"}, Status: 1},
		{SessionID: "a", Kind: KindExternal, Argv: []string{"false"}, Status: 1},
		{SessionID: "b", Kind: KindExternal, Argv: []string{"sleep", "10"}, Status: -1},
		{SessionID: "b", Kind: KindExternal, Argv: []string{"true"}},
		{SessionID: "b", Kind: KindSkipped},
		{SessionID: "b", Kind: KindEmpty},
	} {
		report.Update(e)
	}

	assert.Equal(t, 7, report.LogEntries)
	assert.Equal(t, 4, report.Sessions.Count("b"))
	assert.Equal(t, 4, report.Kinds.Count(string(KindExternal)))
	assert.Equal(t, 1, report.Builtins.CommandNames.Count("cd"))
	assert.Equal(t, 2, report.External.Failures.Count("false", "1"))
	assert.Equal(t, 1, report.External.Failures.Count("sleep", "-1"))
	assert.Equal(t, 0, report.External.Failures.Count("true", "0"))

	out, err := yaml.Marshal(report)
	assert.Nil(t, err)
	assert.Contains(t, string(out), "log_entries: 7")
	assert.Contains(t, string(out), "command: \"false\"")
}

func TestPathCounter_wrongColumns(t *testing.T) {
	ctr := NewPathCounter("a", "b")
	assert.Panics(t, func() { ctr.Increment("only-one") })
}
