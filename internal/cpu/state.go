package cpu

// State is a gob-encodable snapshot of CPU register and pending-interrupt
// state, used by the machine package's save-state support.
type State struct {
	A, X, Y, SP uint8
	PC          uint16

	C, Z, I, D, B, V, N bool

	Cycles      uint64
	StallCycles uint64

	NMIPending bool
	IRQPending bool
}

// Save captures the CPU's architectural state.
func (c *CPU) Save() State {
	return State{
		A: c.A, X: c.X, Y: c.Y, SP: c.SP, PC: c.PC,
		C: c.C, Z: c.Z, I: c.I, D: c.D, B: c.B, V: c.V, N: c.N,
		Cycles:      c.Cycles,
		StallCycles: c.StallCycles,
		NMIPending:  c.nmiPending,
		IRQPending:  c.irqPending,
	}
}

// Load restores a previously captured CPU state.
func (c *CPU) Load(s State) {
	c.A, c.X, c.Y, c.SP, c.PC = s.A, s.X, s.Y, s.SP, s.PC
	c.C, c.Z, c.I, c.D, c.B, c.V, c.N = s.C, s.Z, s.I, s.D, s.B, s.V, s.N
	c.Cycles = s.Cycles
	c.StallCycles = s.StallCycles
	c.nmiPending = s.NMIPending
	c.irqPending = s.IRQPending
}
