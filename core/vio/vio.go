// Package vio bundles the standard streams handed to the interpreter and to
// the commands it starts.
package vio

import (
	"io"
	"os"
)

// VIO provides standard input and output streams.
type VIO interface {
	Stdin() io.ReadCloser
	Stdout() io.WriteCloser
	Stderr() io.WriteCloser
}

// Adapter is a VIO over fixed streams.
type Adapter struct {
	IStdin  io.ReadCloser
	IStdout io.WriteCloser
	IStderr io.WriteCloser
}

var _ VIO = (*Adapter)(nil)

// NewAdapter creates a VIO from the given streams. Nil readers are closed
// and nil writers discard everything. Streams that are already closers
// (e.g. *os.File) are kept as-is so children can inherit them directly.
func NewAdapter(stdin io.Reader, stdout, stderr io.Writer) *Adapter {
	return &Adapter{
		IStdin:  toReadCloserOrClosed(stdin),
		IStdout: toWriteCloserOrDiscard(stdout),
		IStderr: toWriteCloserOrDiscard(stderr),
	}
}

// NewOSIO creates a VIO over the process' own standard streams.
func NewOSIO() VIO {
	return NewAdapter(os.Stdin, os.Stdout, os.Stderr)
}

// NewNullIO creates a valid /dev/null style I/O, reads won't work and
// writes will be discarded.
func NewNullIO() VIO {
	return NewAdapter(nil, nil, nil)
}

func (a *Adapter) Stdin() io.ReadCloser {
	return a.IStdin
}

func (a *Adapter) Stdout() io.WriteCloser {
	return a.IStdout
}

func (a *Adapter) Stderr() io.WriteCloser {
	return a.IStderr
}

func toWriteCloserOrDiscard(w io.Writer) io.WriteCloser {
	if w == nil {
		return &NopWriteCloser{}
	}
	if wc, ok := w.(io.WriteCloser); ok {
		return wc
	}

	return nopCloser{w}
}

func toReadCloserOrClosed(r io.Reader) io.ReadCloser {
	if r == nil {
		return &ClosedReader{}
	}
	if rc, ok := r.(io.ReadCloser); ok {
		return rc
	}

	return io.NopCloser(r)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// ClosedReader implements io.Reader and always returns os.ErrClosed on Read.
type ClosedReader struct{}

var _ io.ReadCloser = (*ClosedReader)(nil)

func (*ClosedReader) Read([]byte) (int, error) {
	return 0, os.ErrClosed
}

func (*ClosedReader) Close() error {
	return nil
}

// NopWriteCloser discards all writes.
type NopWriteCloser struct{}

var _ io.WriteCloser = (*NopWriteCloser)(nil)

func (*NopWriteCloser) Write(b []byte) (int, error) {
	return len(b), nil
}

func (*NopWriteCloser) Close() error {
	return nil
}
