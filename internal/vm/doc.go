// Package vm provides a tape based virtual machine for Brainfuck programs.
//
// The machine owns a copy of the program and a fixed size tape of byte cells.
// Execution is driven by the caller through Tick, which fetches and executes
// exactly one instruction. Two dialects are supported: the classic eight
// instruction set and an extended set that adds halting, an auxiliary store
// register and bitwise cell operations.
package vm
