package cpu

// The stack lives in memory, growing down from STACK_TOP.
// SP addresses the current top of stack word.

// Push decrements SP and writes value at the new SP.
func (st *State) Push(value uint16) {
	st.Sp--
	st.Memory[st.Sp] = value
}

// Pop reads the value at SP, then increments SP.
func (st *State) Pop() (value uint16) {
	value = st.Memory[st.Sp]
	st.Sp++
	return
}

// Peek reads the value at SP.
func (st *State) Peek() uint16 {
	return st.Memory[st.Sp]
}

// StackFull returns true when another push would wrap SP around the
// address space.
func (st *State) StackFull() bool {
	return st.Sp == 0
}

// StackDepth returns the number of words pushed since reset.
func (st *State) StackDepth() int {
	return int(STACK_TOP - st.Sp)
}
