package vm

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

const helloWorld = "++++++++++[>+++++++>++++++++++>+++>++++<<<<-]>++.>+.+++++++..+++.>>++++.<++.<++++++++.--------.+++.------.--------.>+."

func newTestVM(t *testing.T, program string, tapeSize int, input string) (*VM, *bytes.Buffer) {
	t.Helper()

	var out bytes.Buffer
	opts := NewOptions()
	opts.TapeSize = tapeSize
	opts.Input = strings.NewReader(input)
	opts.Output = &out

	v, err := New([]byte(program), opts)
	assert.NoError(t, err)
	return v, &out
}

func runToEnd(t *testing.T, v *VM) int {
	t.Helper()

	ticks := 0
	for v.Tick() {
		ticks++
		if ticks > 1_000_000 {
			t.Fatal("program did not terminate")
		}
	}
	return ticks
}

func cellAt(t *testing.T, v *VM, i int) byte {
	t.Helper()

	b, ok := v.Cell(i)
	assert.True(t, ok)
	return b
}

func TestHelloWorld(t *testing.T) {
	for _, jumpTable := range []bool{false, true} {
		var out bytes.Buffer
		opts := NewOptions()
		opts.TapeSize = 5
		opts.JumpTable = jumpTable
		opts.Output = &out

		v, err := New([]byte(helloWorld), opts)
		assert.NoError(t, err)

		runToEnd(t, v)
		assert.NoError(t, v.Err())
		assert.Equal(t, StatusFinished, v.Status())
		assert.Equal(t, len(helloWorld), v.State().PC)
		assert.Equal(t, "Hello, world!", out.String())
	}
}

func TestEchoInput(t *testing.T) {
	v, out := newTestVM(t, ",.", 1, "A")

	ticks := runToEnd(t, v)
	assert.Equal(t, 2, ticks)
	assert.Equal(t, uint64(2), v.State().Ticks)
	assert.Equal(t, "A", out.String())
	assert.Equal(t, StatusFinished, v.Status())
}

func TestInputEndOfStream(t *testing.T) {
	v, _ := newTestVM(t, ",", 1, "")
	runToEnd(t, v)
	assert.Equal(t, byte(DefaultEOF), cellAt(t, v, 0))

	opts := NewOptions()
	opts.TapeSize = 1
	opts.EOF = 0
	opts.Input = strings.NewReader("")
	opts.Output = &bytes.Buffer{}
	v, err := New([]byte("+,"), opts)
	assert.NoError(t, err)
	runToEnd(t, v)
	assert.Equal(t, byte(0), cellAt(t, v, 0))
}

func TestLoopAddition(t *testing.T) {
	v, out := newTestVM(t, "+++>++<[->+<]>.", 2, "")
	runToEnd(t, v)
	assert.True(t, bytes.Equal([]byte{5}, out.Bytes()))
	assert.True(t, bytes.Equal([]byte{0, 5}, v.Tape()))
}

func TestLoopSkippedOnZeroCell(t *testing.T) {
	v, _ := newTestVM(t, "[+]", 3, "")
	ticks := runToEnd(t, v)
	assert.Equal(t, 1, ticks)
	assert.True(t, bytes.Equal([]byte{0, 0, 0}, v.Tape()))
	assert.Equal(t, 3, v.State().PC)
	assert.Equal(t, 0, v.State().LD)
}

func TestTapeWraparound(t *testing.T) {
	for _, size := range []int{1, 2, 5, 30000} {
		v, _ := newTestVM(t, "<", size, "")
		assert.True(t, v.Tick())
		assert.Equal(t, size-1, v.State().TP)

		v, _ = newTestVM(t, strings.Repeat(">", size), size, "")
		runToEnd(t, v)
		assert.Equal(t, 0, v.State().TP)
	}
}

func TestCellWraparound(t *testing.T) {
	v, _ := newTestVM(t, "-", 1, "")
	runToEnd(t, v)
	assert.Equal(t, byte(255), cellAt(t, v, 0))

	v, _ = newTestVM(t, "-+", 1, "")
	runToEnd(t, v)
	assert.Equal(t, byte(0), cellAt(t, v, 0))
}

func TestReset(t *testing.T) {
	v, out := newTestVM(t, "+[>+<-]>>+<<+.", 4, "")
	runToEnd(t, v)
	assert.True(t, v.State().PC > 0)
	assert.Equal(t, 1, out.Len())

	v.Reset()
	fresh, _ := newTestVM(t, "+[>+<-]>>+<<+.", 4, "")
	assert.Equal(t, fresh.State(), v.State())
	assert.True(t, bytes.Equal(fresh.Tape(), v.Tape()))
	assert.Equal(t, StatusRunning, v.Status())

	runToEnd(t, v)
	assert.Equal(t, 2, out.Len())
}

func TestTickAfterStop(t *testing.T) {
	v, _ := newTestVM(t, "+", 1, "")
	assert.True(t, v.Tick())
	assert.False(t, v.Tick())
	assert.False(t, v.Tick())
	assert.Equal(t, uint64(1), v.State().Ticks)
}

func TestNewRejectsInvalidPrograms(t *testing.T) {
	tests := []struct {
		name    string
		program string
		opts    func(*Options)
		kind    ErrorKind
	}{
		{"empty program", "", nil, ErrKindEmptyProgram},
		{"zero tape", "+", func(o *Options) { o.TapeSize = 0 }, ErrKindInvalidTapeSize},
		{"unbalanced", "[[]", nil, ErrKindUnbalanced},
		{"unmatched close", "+]", nil, ErrKindUnmatchedClose},
		{"strict unknown", "+a", func(o *Options) { o.Strict = true }, ErrKindUnknownInstruction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NewOptions()
			opts.Output = &bytes.Buffer{}
			if tt.opts != nil {
				tt.opts(&opts)
			}

			v, err := New([]byte(tt.program), opts)
			assert.True(t, v == nil)
			assert.Equal(t, tt.kind, KindOf(err))
		})
	}
}

func TestPermissiveSkipsComments(t *testing.T) {
	v, out := newTestVM(t, "hello +++ world .", 1, "")
	runToEnd(t, v)
	assert.True(t, bytes.Equal([]byte{3}, out.Bytes()))
}

func TestProgramIsCopied(t *testing.T) {
	program := []byte("+.")
	opts := NewOptions()
	opts.Output = &bytes.Buffer{}
	v, err := New(program, opts)
	assert.NoError(t, err)

	program[0] = '-'
	runToEnd(t, v)
	assert.Equal(t, byte(1), cellAt(t, v, 0))
	assert.True(t, bytes.Equal([]byte("+."), v.Program()))
}

func TestRuntimeUnmatchedBrackets(t *testing.T) {
	opts := NewOptions()
	opts.TapeSize = 1
	opts.Output = &bytes.Buffer{}

	v, err := newMachine([]byte("+[+"), opts)
	assert.NoError(t, err)
	assert.True(t, v.Tick())
	assert.True(t, v.Tick())
	assert.Equal(t, 1, v.State().LD)

	v, err = newMachine([]byte("["), opts)
	assert.NoError(t, err)
	assert.False(t, v.Tick())
	assert.Equal(t, StatusFaulted, v.Status())
	assert.Equal(t, ErrKindUnmatchedOpenAtRuntime, KindOf(v.Err()))

	v, err = newMachine([]byte("+]"), opts)
	assert.NoError(t, err)
	assert.True(t, v.Tick())
	assert.False(t, v.Tick())
	assert.Equal(t, ErrKindUnmatchedCloseAtRuntime, KindOf(v.Err()))
	assert.False(t, v.Tick())

	v.Reset()
	assert.NoError(t, v.Err())
	assert.Equal(t, StatusRunning, v.Status())
}

func TestValidateOnDemandRefusesExecution(t *testing.T) {
	opts := NewOptions()
	opts.Output = &bytes.Buffer{}

	v, err := newMachine([]byte("]["), opts)
	assert.NoError(t, err)

	err = v.Validate()
	assert.Equal(t, ErrKindUnmatchedClose, KindOf(err))
	assert.Equal(t, StatusInvalid, v.Status())
	assert.False(t, v.Tick())

	v.Reset()
	assert.Equal(t, StatusInvalid, v.Status())
	assert.False(t, v.Tick())
}

func TestDestroy(t *testing.T) {
	v, _ := newTestVM(t, "+", 1, "")
	v.Destroy()
	assert.False(t, v.Tick())
	assert.Equal(t, StatusDestroyed, v.Status())
	assert.Equal(t, ErrKindRefused, KindOf(v.Err()))
	assert.Equal(t, ErrKindRefused, KindOf(v.Validate()))
	v.Reset()
	assert.Equal(t, StatusDestroyed, v.Status())

	_, ok := v.Cell(0)
	assert.False(t, ok)
}

func TestCellOutOfRange(t *testing.T) {
	v, _ := newTestVM(t, "+", 2, "")
	runToEnd(t, v)

	b, ok := v.Cell(0)
	assert.True(t, ok)
	assert.Equal(t, byte(1), b)

	_, ok = v.Cell(2)
	assert.False(t, ok)
	_, ok = v.Cell(-1)
	assert.False(t, ok)
}

func TestRun(t *testing.T) {
	v, out := newTestVM(t, helloWorld, 5, "")
	assert.NoError(t, v.Run(context.Background()))
	assert.Equal(t, "Hello, world!", out.String())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	v, _ = newTestVM(t, "+[]", 1, "")
	err := v.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, StatusRunning, v.Status())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestOutputFailureFaults(t *testing.T) {
	opts := NewOptions()
	opts.Output = failingWriter{}
	v, err := New([]byte("."), opts)
	assert.NoError(t, err)

	assert.False(t, v.Tick())
	assert.Equal(t, StatusFaulted, v.Status())
	assert.Equal(t, ErrKindIO, KindOf(v.Err()))
	assert.ErrorContains(t, v.Err(), "broken pipe")
}

func TestConcurrentMachines(t *testing.T) {
	done := make(chan string, 4)
	for range 4 {
		go func() {
			var out bytes.Buffer
			opts := NewOptions()
			opts.Output = &out
			v, err := New([]byte(helloWorld), opts)
			if err != nil {
				done <- err.Error()
				return
			}
			for v.Tick() {
			}
			done <- out.String()
		}()
	}
	for range 4 {
		assert.Equal(t, "Hello, world!", <-done)
	}
}
