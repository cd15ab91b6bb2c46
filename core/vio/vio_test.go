package vio

import (
	"bytes"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewNullIO(t *testing.T) {
	nullIO := NewNullIO()

	_, err := nullIO.Stdin().Read(make([]byte, 1))
	assert.ErrorIs(t, err, os.ErrClosed)

	n, err := nullIO.Stdout().Write([]byte("hello"))
	assert.Nil(t, err)
	assert.Equal(t, 5, n)

	n, err = nullIO.Stderr().Write([]byte("hi"))
	assert.Nil(t, err)
	assert.Equal(t, 2, n)
}

func TestNewAdapter(t *testing.T) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	adapter := NewAdapter(bytes.NewBufferString("input"), stdout, stderr)

	in, err := io.ReadAll(adapter.Stdin())
	assert.Nil(t, err)
	assert.Equal(t, "input", string(in))

	io.WriteString(adapter.Stdout(), "out")
	io.WriteString(adapter.Stderr(), "err")
	assert.Nil(t, adapter.Stdout().Close())

	assert.Equal(t, "out", stdout.String())
	assert.Equal(t, "err", stderr.String())
}

func TestNewAdapter_keepsFiles(t *testing.T) {
	adapter := NewAdapter(os.Stdin, os.Stdout, os.Stderr)

	assert.Same(t, os.Stdin, adapter.Stdin())
	assert.Same(t, os.Stdout, adapter.Stdout())
	assert.Same(t, os.Stderr, adapter.Stderr())
}
