package ttylog

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/josephlewis42/accsh/core/vio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeConversions(t *testing.T) {
	cases := map[string]struct {
		microseconds int64
		seconds      float64
	}{
		"precision": {
			microseconds: 1,
			seconds:      1e-6,
		},
		"negative": {
			microseconds: -631119539e6,
			seconds:      -631119539,
		},
		"positive": {
			microseconds: 631119539e6,
			seconds:      631119539,
		},
		"bigprecise": {
			microseconds: 123456789987654,
			seconds:      123456789.987654,
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			s2m := secondsToMicroseconds(tc.seconds)
			m2s := microsecondsToSeconds(tc.microseconds)

			// Only allow delta to be to the NS
			assert.InDelta(t, m2s, tc.seconds, float64(time.Nanosecond)/float64(time.Second))
			assert.Equal(t, s2m, tc.microseconds)
		})
	}
}

const startMicros = int64(1600000000) * 1e6

func sampleEntries() []*Entry {
	return []*Entry{
		{TimestampMicros: startMicros, FD: FDStdout, Data: []byte("  [/]> ")},
		{TimestampMicros: startMicros + 250000, FD: FDStdin, Data: []byte("pwd\n")},
		{TimestampMicros: startMicros + 1500000, FD: FDStdout, Data: []byte("/\n")},
	}
}

func TestAsciicast_roundTrip(t *testing.T) {
	var buf bytes.Buffer
	sink := NewAsciicastLogSink(&buf, AsciicastHeader{Title: "test session"})
	for _, e := range sampleEntries() {
		require.NoError(t, sink(e))
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)

	var header AsciicastHeader
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &header))
	assert.Equal(t, AsciicastHeader{
		Version:   2,
		Width:     80,
		Height:    24,
		Timestamp: 1600000000,
		Title:     "test session",
	}, header)
	assert.Equal(t, `[0.25,"i","pwd\n"]`, lines[2])

	source := NewAsciicastLogSource(&buf)
	var got []*Entry
	require.NoError(t, Replay(source, func(e *Entry) error {
		got = append(got, e)
		return nil
	}))
	assert.Equal(t, sampleEntries(), got)
}

func TestAsciicastLogSource(t *testing.T) {
	cases := map[string]struct {
		input   string
		want    []*Entry
		wantErr string
	}{
		"skips-blank-and-unknown": {
			input: `{"version": 2, "width": 80, "height": 24}` + "\n\n" +
				`[0.5, "m", ""]` + "\n" +
				`[1.0, "o", "hi"]` + "\n",
			want: []*Entry{{TimestampMicros: 1000000, FD: FDStdout, Data: []byte("hi")}},
		},
		"no-trailing-newline": {
			input: `{"version": 2, "width": 80, "height": 24}` + "\n" + `[0, "i", "x"]`,
			want:  []*Entry{{TimestampMicros: 0, FD: FDStdin, Data: []byte("x")}},
		},
		"empty": {
			input: "",
		},
		"wrong-version": {
			input:   `{"version": 1}` + "\n",
			wantErr: "unsupported asciicast version: 1",
		},
		"malformed-line": {
			input:   `{"version": 2}` + "\n" + `[1, "o"]` + "\n",
			wantErr: "malformed line, expected 3 entries got 2",
		},
		"malformed-data": {
			input:   `{"version": 2}` + "\n" + `["1", "o", "x"]` + "\n",
			wantErr: "malformed data in line",
		},
	}

	for tn, tc := range cases {
		t.Run(tn, func(t *testing.T) {
			var got []*Entry
			err := Replay(NewAsciicastLogSource(strings.NewReader(tc.input)), func(e *Entry) error {
				got = append(got, e)
				return nil
			})

			if tc.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestReplay_callbackError(t *testing.T) {
	var buf bytes.Buffer
	sink := NewAsciicastLogSink(&buf, AsciicastHeader{})
	for _, e := range sampleEntries() {
		require.NoError(t, sink(e))
	}

	stop := errors.New("stop")
	calls := 0
	err := Replay(NewAsciicastLogSource(&buf), func(*Entry) error {
		calls++
		return stop
	})

	assert.Equal(t, stop, err)
	assert.Equal(t, 1, calls)
}

func TestPlayback(t *testing.T) {
	var slept []time.Duration
	var out bytes.Buffer
	sink := newPlayback(time.Second, func(d time.Duration) {
		slept = append(slept, d)
	}, NewClientOutput(&out))

	for _, e := range sampleEntries() {
		require.NoError(t, sink(e))
	}

	assert.Equal(t, []time.Duration{250 * time.Millisecond, time.Second}, slept)
	assert.Equal(t, "  [/]> /\n", out.String(), "input isn't replayed")
}

func TestNewCRLFAdapter(t *testing.T) {
	var got []*Entry
	sink := NewCRLFAdapter(func(e *Entry) error {
		got = append(got, e)
		return nil
	})

	require.NoError(t, sink(&Entry{FD: FDStdout, Data: []byte("a\nb\r\nc")}))
	require.NoError(t, sink(&Entry{FD: FDStdin, Data: []byte("ls\n")}))

	assert.Equal(t, "a\r\nb\r\nc", string(got[0].Data))
	assert.Equal(t, "ls\n", string(got[1].Data))
}

type fakeLineReader struct {
	lines  []string
	prompt string
}

func (f *fakeLineReader) SetPrompt(prompt string) {
	f.prompt = prompt
}

func (f *fakeLineReader) Readline() (string, error) {
	if len(f.lines) == 0 {
		return "", io.EOF
	}
	line := f.lines[0]
	f.lines = f.lines[1:]
	return line, nil
}

func TestRecorder(t *testing.T) {
	var stdout, stderr bytes.Buffer
	stdin := io.NopCloser(strings.NewReader("unused"))
	inner := vio.NewAdapter(stdin, &stdout, &stderr)

	var got []*Entry
	recorder := NewRecorder(inner, func(e *Entry) error {
		got = append(got, e)
		return nil
	})
	tick := startMicros
	recorder.now = func() time.Time {
		tick += 1000
		return time.UnixMicro(tick)
	}

	assert.Equal(t, stdin, recorder.Stdin(), "stdin is passed through")

	rl := recorder.WrapLineReader(&fakeLineReader{lines: []string{"pwd"}})
	rl.SetPrompt("> ")

	line, err := rl.Readline()
	require.NoError(t, err)
	assert.Equal(t, "pwd", line)

	_, err = io.WriteString(recorder.Stdout(), "/\n")
	require.NoError(t, err)
	_, err = io.WriteString(recorder.Stderr(), "oops\n")
	require.NoError(t, err)

	_, err = rl.Readline()
	assert.Equal(t, io.EOF, err)

	assert.Equal(t, "/\n", stdout.String())
	assert.Equal(t, "oops\n", stderr.String())
	assert.Equal(t, []*Entry{
		{TimestampMicros: startMicros + 1000, FD: FDStdin, Data: []byte("pwd\n")},
		{TimestampMicros: startMicros + 2000, FD: FDStdout, Data: []byte("/\n")},
		{TimestampMicros: startMicros + 3000, FD: FDStderr, Data: []byte("oops\n")},
	}, got)
}

func TestRecorder_sinkErrorIsNotFatal(t *testing.T) {
	var stdout bytes.Buffer
	recorder := NewRecorder(vio.NewAdapter(nil, &stdout, nil), func(*Entry) error {
		return errors.New("disk full")
	})

	n, err := io.WriteString(recorder.Stdout(), "still here")
	assert.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, "still here", stdout.String())
}
