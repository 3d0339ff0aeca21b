package vm

// loopOpen enters the loop body if the current cell is not zero, otherwise
// execution continues after the matching close bracket.
func (v *VM) loopOpen() error {
	if v.tape[v.tp] != 0 {
		v.ld++
		v.pc++
		return nil
	}

	target, ok := v.matchForward(v.pc)
	if !ok {
		return newError(ErrKindUnmatchedOpenAtRuntime, v.pc)
	}
	v.pc = target + 1
	return nil
}

// loopClose leaves the loop if the current cell is zero, otherwise execution
// continues at the matching open bracket which evaluates the cell again.
func (v *VM) loopClose() error {
	if v.tape[v.tp] == 0 {
		v.ld--
		v.pc++
		return nil
	}

	target, ok := v.matchBackward(v.pc)
	if !ok {
		return newError(ErrKindUnmatchedCloseAtRuntime, v.pc)
	}
	v.pc = target
	return nil
}

func (v *VM) matchForward(pc int) (int, bool) {
	if v.jumps != nil {
		return v.jumps[pc], true
	}
	return scanForward(v.program, v.set, pc)
}

func (v *VM) matchBackward(pc int) (int, bool) {
	if v.jumps != nil {
		return v.jumps[pc], true
	}
	return scanBackward(v.program, v.set, pc)
}

// scanForward returns the position of the close bracket matching the open
// bracket at pc.
func scanForward(program []byte, set *InstructionSet, pc int) (int, bool) {
	depth := 1
	for i := pc + 1; i < len(program); i++ {
		switch set.Lookup(program[i]) {
		case LoopOpen:
			depth++
		case LoopClose:
			depth--
		}
		if depth == 0 {
			return i, true
		}
	}
	return 0, false
}

// scanBackward returns the position of the open bracket matching the close
// bracket at pc.
func scanBackward(program []byte, set *InstructionSet, pc int) (int, bool) {
	depth := -1
	for i := pc - 1; i >= 0; i-- {
		switch set.Lookup(program[i]) {
		case LoopOpen:
			depth++
		case LoopClose:
			depth--
		}
		if depth == 0 {
			return i, true
		}
	}
	return 0, false
}
