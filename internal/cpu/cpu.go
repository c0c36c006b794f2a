// Package cpu implements the 6502 CPU interpreter used by the NES.
package cpu

// AddressingMode identifies one of the thirteen 6502 addressing modes.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndexedIndirect // (zp,X)
	IndirectIndexed // (zp),Y
)

const (
	stackBase = 0x0100

	nFlagMask  = 0x80
	vFlagMask  = 0x40
	unusedMask = 0x20
	bFlagMask  = 0x10
	dFlagMask  = 0x08
	iFlagMask  = 0x04
	zFlagMask  = 0x02
	cFlagMask  = 0x01

	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// Interrupt identifies the two interrupt kinds the CPU services.
type Interrupt int

const (
	InterruptNMI Interrupt = iota
	InterruptIRQ
)

// Instruction is one row of the 256-entry opcode table.
type Instruction struct {
	Name   string
	Opcode uint8
	Bytes  uint8
	Cycles uint8
	Mode   AddressingMode
}

// MemoryInterface is the CPU's sole read/write port onto the rest of the machine.
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU is a cycle-accurate 6502 interpreter.
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	C bool
	Z bool
	I bool
	D bool
	B bool
	V bool
	N bool

	memory MemoryInterface

	Cycles uint64

	// StallCycles accumulates cycles the CPU does not execute instructions
	// during: OAM DMA and DMC sample-byte bus-steal both add to it.
	StallCycles uint64

	instructions [256]*Instruction

	nmiPending bool
	irqPending bool

	enableDebugLogging  bool
	enableLoopDetection bool
	lastPC              uint16
	pcStayCount         int
}

// New creates a CPU wired to the given memory port. Call Initialize (cold
// boot) or Reset (warm reset) before stepping.
func New(memory MemoryInterface) *CPU {
	cpu := &CPU{memory: memory}
	cpu.initInstructions()
	return cpu
}

// Initialize performs the cold power-on sequence: PC from the reset vector,
// S = 0xFD, P = 0x24.
func (cpu *CPU) Initialize() {
	cpu.A, cpu.X, cpu.Y = 0, 0, 0
	cpu.SP = 0xFD
	cpu.setFlagsByte(0x24)
	low := uint16(cpu.memory.Read(resetVector))
	high := uint16(cpu.memory.Read(resetVector + 1))
	cpu.PC = (high << 8) | low
	cpu.Cycles = 0
	cpu.StallCycles = 0
	cpu.nmiPending = false
	cpu.irqPending = false
}

// Reset performs a warm reset: re-read the reset vector, decrement S by 3,
// set I. Unlike Initialize, other registers and flags are left untouched.
func (cpu *CPU) Reset() {
	cpu.SP -= 3
	cpu.I = true
	low := uint16(cpu.memory.Read(resetVector))
	high := uint16(cpu.memory.Read(resetVector + 1))
	cpu.PC = (high << 8) | low
}

// TriggerNMI posts a non-maskable interrupt, serviced at the start of the next Step.
func (cpu *CPU) TriggerNMI() {
	cpu.nmiPending = true
}

// TriggerIRQ posts a maskable interrupt, serviced at the start of the next
// Step unless the I flag is set.
func (cpu *CPU) TriggerIRQ() {
	cpu.irqPending = true
}

// TriggerInterrupt posts the named interrupt kind.
func (cpu *CPU) TriggerInterrupt(kind Interrupt) {
	switch kind {
	case InterruptNMI:
		cpu.TriggerNMI()
	case InterruptIRQ:
		cpu.TriggerIRQ()
	}
}

func (cpu *CPU) flagsByte(pushedBit bool) uint8 {
	var p uint8
	if cpu.C {
		p |= cFlagMask
	}
	if cpu.Z {
		p |= zFlagMask
	}
	if cpu.I {
		p |= iFlagMask
	}
	if cpu.D {
		p |= dFlagMask
	}
	if pushedBit {
		p |= bFlagMask
	}
	p |= unusedMask
	if cpu.V {
		p |= vFlagMask
	}
	if cpu.N {
		p |= nFlagMask
	}
	return p
}

func (cpu *CPU) setFlagsByte(p uint8) {
	cpu.C = p&cFlagMask != 0
	cpu.Z = p&zFlagMask != 0
	cpu.I = p&iFlagMask != 0
	cpu.D = p&dFlagMask != 0
	cpu.B = p&bFlagMask != 0
	cpu.V = p&vFlagMask != 0
	cpu.N = p&nFlagMask != 0
}

func (cpu *CPU) push(value uint8) {
	cpu.memory.Write(stackBase+uint16(cpu.SP), value)
	cpu.SP--
}

func (cpu *CPU) pop() uint8 {
	cpu.SP++
	return cpu.memory.Read(stackBase + uint16(cpu.SP))
}

// serviceInterrupt implements the push-PCH/PCL/P, set I, jump-to-vector
// sequence common to NMI, IRQ, and BRK. pushedB is true only for BRK.
func (cpu *CPU) serviceInterrupt(vector uint16, pushedB bool) {
	cpu.push(uint8(cpu.PC >> 8))
	cpu.push(uint8(cpu.PC & 0xFF))
	cpu.push(cpu.flagsByte(pushedB))
	cpu.I = true
	low := uint16(cpu.memory.Read(vector))
	high := uint16(cpu.memory.Read(vector + 1))
	cpu.PC = (high << 8) | low
}

// pollInterrupts services one pending interrupt, if any, at instruction
// boundaries. NMI takes priority over IRQ; NMI is never masked.
func (cpu *CPU) pollInterrupts() uint64 {
	if cpu.nmiPending {
		cpu.nmiPending = false
		cpu.serviceInterrupt(nmiVector, false)
		cpu.Cycles += 7
		return 7
	}
	if cpu.irqPending && !cpu.I {
		cpu.irqPending = false
		cpu.serviceInterrupt(irqVector, false)
		cpu.Cycles += 7
		return 7
	}
	return 0
}

// Step executes at most one instruction (or one stall cycle, or one
// interrupt-service sequence) and returns the number of CPU cycles consumed.
func (cpu *CPU) Step() uint64 {
	if cpu.StallCycles > 0 {
		cpu.StallCycles--
		cpu.Cycles++
		return 1
	}

	if consumed := cpu.pollInterrupts(); consumed > 0 {
		return consumed
	}

	currentPC := cpu.PC
	opcode := cpu.memory.Read(cpu.PC)
	instruction := cpu.instructions[opcode]

	if cpu.enableLoopDetection {
		cpu.detectInfiniteLoop(currentPC, opcode)
	}
	if cpu.enableDebugLogging {
		cpu.logInstruction(currentPC, opcode, instruction)
	}

	address, pageCrossed := cpu.getOperandAddress(instruction.Mode)
	extraCycles := cpu.executeInstruction(opcode, address, pageCrossed)

	if pageCrossed {
		switch opcode {
		case 0x9D, 0x99, 0x91: // STA abs,X / abs,Y / (zp),Y always pay the cycle; their base count already includes it
		default:
			switch instruction.Mode {
			case AbsoluteX, AbsoluteY, IndirectIndexed:
				extraCycles++
			}
		}
	}

	total := uint64(instruction.Cycles) + uint64(extraCycles)
	cpu.Cycles += total
	cpu.PC += uint16(instruction.Bytes)
	return total
}

// Read exposes the CPU's authoritative memory port to peers (e.g. DMC fetches).
func (cpu *CPU) Read(address uint16) uint8 { return cpu.memory.Read(address) }

// Write exposes the CPU's authoritative memory port to peers.
func (cpu *CPU) Write(address uint16, value uint8) { cpu.memory.Write(address, value) }

// AddStallCycles accumulates cycles the CPU will consume without stepping,
// used by OAM DMA and DMC sample fetches.
func (cpu *CPU) AddStallCycles(n uint64) { cpu.StallCycles += n }

// EnableDebugLogging toggles per-instruction logging.
func (cpu *CPU) EnableDebugLogging(enable bool) { cpu.enableDebugLogging = enable }

// EnableLoopDetection toggles the stuck-PC heuristic used by tests.
func (cpu *CPU) EnableLoopDetection(enable bool) { cpu.enableLoopDetection = enable }
