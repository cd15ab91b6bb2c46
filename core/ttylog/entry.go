// Package ttylog records interpreter sessions and plays them back.
package ttylog

// FD identifies the stream an entry was captured from.
type FD int

const (
	FDStdin FD = iota
	FDStdout
	FDStderr
)

func (fd FD) String() string {
	switch fd {
	case FDStdin:
		return "stdin"
	case FDStdout:
		return "stdout"
	case FDStderr:
		return "stderr"
	default:
		return "unknown"
	}
}

// Entry is a chunk of terminal I/O.
type Entry struct {
	// TimestampMicros is the UNIX time the chunk was seen, in microseconds.
	TimestampMicros int64
	FD              FD
	Data            []byte
}

// IsInput reports whether the entry was typed by the user.
func (e *Entry) IsInput() bool {
	return e.FD == FDStdin
}
