package cpu

// getOperandAddress resolves the operand address (or 0 for modes with none)
// for the given addressing mode, advancing no state itself — PC is bumped by
// Instruction.Bytes once the instruction has been dispatched. Returns the
// address and whether an indexed fetch crossed a page boundary.
func (cpu *CPU) getOperandAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		return 0, false

	case Immediate:
		return cpu.PC + 1, false

	case ZeroPage:
		return uint16(cpu.memory.Read(cpu.PC + 1)), false

	case ZeroPageX:
		return uint16(cpu.memory.Read(cpu.PC+1) + cpu.X), false

	case ZeroPageY:
		return uint16(cpu.memory.Read(cpu.PC+1) + cpu.Y), false

	case Relative:
		offset := int8(cpu.memory.Read(cpu.PC + 1))
		base := cpu.PC + 2
		return uint16(int32(base) + int32(offset)), pageCrossed(base, uint16(int32(base)+int32(offset)))

	case Absolute:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		return (high << 8) | low, false

	case AbsoluteX:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		base := (high << 8) | low
		addr := base + uint16(cpu.X)
		return addr, pageCrossed(base, addr)

	case AbsoluteY:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		base := (high << 8) | low
		addr := base + uint16(cpu.Y)
		return addr, pageCrossed(base, addr)

	case Indirect:
		low := uint16(cpu.memory.Read(cpu.PC + 1))
		high := uint16(cpu.memory.Read(cpu.PC + 2))
		ptr := (high << 8) | low
		// 6502 page-wrap bug: if the low byte of ptr is 0xFF, the high byte
		// is fetched from the start of the same page, not the next page.
		var hiAddr uint16
		if ptr&0x00FF == 0x00FF {
			hiAddr = ptr & 0xFF00
		} else {
			hiAddr = ptr + 1
		}
		lo := uint16(cpu.memory.Read(ptr))
		hi := uint16(cpu.memory.Read(hiAddr))
		return (hi << 8) | lo, false

	case IndexedIndirect:
		zp := cpu.memory.Read(cpu.PC+1) + cpu.X
		lo := uint16(cpu.memory.Read(uint16(zp)))
		hi := uint16(cpu.memory.Read(uint16(zp + 1)))
		return (hi << 8) | lo, false

	case IndirectIndexed:
		zp := cpu.memory.Read(cpu.PC + 1)
		lo := uint16(cpu.memory.Read(uint16(zp)))
		hi := uint16(cpu.memory.Read(uint16(zp + 1)))
		base := (hi << 8) | lo
		addr := base + uint16(cpu.Y)
		return addr, pageCrossed(base, addr)

	default:
		return 0, false
	}
}

func pageCrossed(a, b uint16) bool {
	return a&0xFF00 != b&0xFF00
}
