package vm

// Validate checks a program against the instruction set of a dialect without
// constructing a machine. Unknown bytes are rejected only in strict mode.
// The bracket structure is always checked: the running depth may never become
// negative and has to return to zero at the end of the program.
func Validate(program []byte, dialect Dialect, strict bool) error {
	if len(program) == 0 {
		return newError(ErrKindEmptyProgram, -1)
	}
	return validate(program, dialect.set(), strict)
}

func validate(program []byte, set *InstructionSet, strict bool) error {
	depth := 0
	for i, b := range program {
		ins := set.Lookup(b)
		if strict && ins == Unbound {
			return &Error{Kind: ErrKindUnknownInstruction, Index: i, Byte: b}
		}

		switch ins {
		case LoopOpen:
			depth++
		case LoopClose:
			depth--
			if depth < 0 {
				return &Error{Kind: ErrKindUnmatchedClose, Index: i, Byte: b}
			}
		}
	}

	if depth != 0 {
		return newError(ErrKindUnbalanced, -1)
	}
	return nil
}

// buildJumpTable maps the position of every bracket to the position of its
// partner. The program has to be validated before.
func buildJumpTable(program []byte, set *InstructionSet) []int {
	jumps := make([]int, len(program))
	var open []int
	for i, b := range program {
		switch set.Lookup(b) {
		case LoopOpen:
			open = append(open, i)
		case LoopClose:
			start := open[len(open)-1]
			open = open[:len(open)-1]
			jumps[start] = i
			jumps[i] = start
		}
	}
	return jumps
}
