package vm

import (
	"errors"
	"io"
)

// execute runs a single decoded instruction. All instructions except the
// loop brackets advance the program counter by one.
func (v *VM) execute(ins Instruction) error {
	switch ins {
	case LoopOpen:
		return v.loopOpen()
	case LoopClose:
		return v.loopClose()

	case MoveRight:
		v.tp++
		if v.tp == len(v.tape) {
			v.tp = 0
		}
	case MoveLeft:
		if v.tp == 0 {
			v.tp = len(v.tape)
		}
		v.tp--
	case Increment:
		v.tape[v.tp]++
	case Decrement:
		v.tape[v.tp]--
	case Output:
		if err := v.write(v.tape[v.tp]); err != nil {
			return err
		}
	case Input:
		b, err := v.read()
		if err != nil {
			return err
		}
		v.tape[v.tp] = b

	case Halt:
		v.status = StatusHalted
	case StorePosition:
		// ST is one byte wide, positions above 255 are truncated.
		v.st = byte(v.pc)
	case RecallPosition:
		v.tape[v.tp] = v.st
	case ShiftRight:
		v.tape[v.tp] >>= 1
	case ShiftLeft:
		v.tape[v.tp] <<= 1
	case Not:
		// logical negation, not a bitwise complement
		if v.tape[v.tp] == 0 {
			v.tape[v.tp] = 1
		} else {
			v.tape[v.tp] = 0
		}
	case Xor:
		v.tape[v.tp] ^= v.st
	case And:
		v.tape[v.tp] &= v.st
	case Or:
		v.tape[v.tp] |= v.st

	case Unbound:
		// comment byte
	}

	v.pc++
	return nil
}

func (v *VM) write(b byte) error {
	v.buf[0] = b
	if _, err := v.out.Write(v.buf[:]); err != nil {
		return &Error{Kind: ErrKindIO, Index: v.pc, Err: err}
	}
	return nil
}

func (v *VM) read() (byte, error) {
	b, err := v.in.ReadByte()
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, io.EOF):
		return v.opts.EOF, nil
	default:
		return 0, &Error{Kind: ErrKindIO, Index: v.pc, Err: err}
	}
}
