package iocli

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeStdio подменяет ввод на pipe с заданным содержимым
func pipeStdio(t *testing.T, input string) (*Stdio, *bytes.Buffer) {
	t.Helper()

	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	go func() {
		_, _ = w.Write([]byte(input))
		_ = w.Close()
	}()

	out := &bytes.Buffer{}
	return newStdio(r, out), out
}

func TestNewStdio(t *testing.T) {
	assert.NotNil(t, NewStdio())
}

func TestPrintlnAndPrintf(t *testing.T) {
	s, out := pipeStdio(t, "")

	s.Println("hello", "world")
	s.Printf("test %d %s", 1, "abc")
	_, err := s.Write([]byte("!"))
	require.NoError(t, err)

	assert.Equal(t, "hello world\ntest 1 abc!", out.String())
}

func TestReadInput(t *testing.T) {
	s, out := pipeStdio(t, "  user input \n")

	result, err := s.ReadInput("Prompt: ")
	require.NoError(t, err)
	assert.Equal(t, "user input", result)
	assert.Equal(t, "Prompt: ", out.String())
}

// Несколько строк подряд не теряются между вызовами
func TestReadInput_Sequential(t *testing.T) {
	s, _ := pipeStdio(t, "first\nsecond\nlast")

	for _, want := range []string{"first", "second", "last"} {
		got, err := s.ReadInput("> ")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := s.ReadInput("> ")
	assert.Error(t, err)
}

func TestReadPassword_NotTerminal(t *testing.T) {
	s, _ := pipeStdio(t, "secret123\n")

	got, err := s.ReadPassword("Password: ")
	require.NoError(t, err)
	assert.Equal(t, "secret123", got)
}
