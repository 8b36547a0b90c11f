// Package cpu implements the processor and assembler for the DCPU-16 system.
//
// The CPU consists of eight 16-bit general-purpose registers (A, B, C, X,
// Y, Z, I, J), a 64K word memory, a stack pointer (SP) growing down from the
// top of memory, a program counter (PC), an overflow/extend register (EX) and
// a one-shot skip flag set by the conditional instructions.
//
// Instructions are one word, followed by up to two extra words consumed by
// the operand addressing modes. Basic instructions take a destination (b) and
// a source (a) operand; special instructions take a single a operand.
//
// The assembler provides a DCPU-16 assembly language with labels, equates,
// macros and compile-time expression evaluation.
package cpu
