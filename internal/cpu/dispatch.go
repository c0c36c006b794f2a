package cpu

// executeInstruction dispatches one opcode to its handler and returns any
// extra cycles the handler itself is responsible for (beyond the table's
// base cycle count and the page-cross penalty applied by Step).
func (cpu *CPU) executeInstruction(opcode uint8, address uint16, pageCrossed bool) uint8 {
	instruction := cpu.instructions[opcode]
	mode := instruction.Mode

	switch opcode {
	// Loads
	case 0xA9, 0xA5, 0xB5, 0xAD, 0xBD, 0xB9, 0xA1, 0xB1:
		cpu.lda(address)
	case 0xA2, 0xA6, 0xB6, 0xAE, 0xBE:
		cpu.ldx(address)
	case 0xA0, 0xA4, 0xB4, 0xAC, 0xBC:
		cpu.ldy(address)

	// Stores
	case 0x85, 0x95, 0x8D, 0x9D, 0x99, 0x81, 0x91:
		cpu.sta(address)
	case 0x86, 0x96, 0x8E:
		cpu.stx(address)
	case 0x84, 0x94, 0x8C:
		cpu.sty(address)

	// Transfers
	case 0xAA:
		cpu.tax()
	case 0xA8:
		cpu.tay()
	case 0x8A:
		cpu.txa()
	case 0x98:
		cpu.tya()
	case 0xBA:
		cpu.tsx()
	case 0x9A:
		cpu.txs()

	// Stack
	case 0x48:
		cpu.pha()
	case 0x08:
		cpu.php()
	case 0x68:
		cpu.pla()
	case 0x28:
		cpu.plp()

	// Arithmetic
	case 0x69, 0x65, 0x75, 0x6D, 0x7D, 0x79, 0x61, 0x71:
		cpu.adc(address)
	case 0xE9, 0xEB, 0xE5, 0xF5, 0xED, 0xFD, 0xF9, 0xE1, 0xF1:
		cpu.sbc(address)
	case 0xC9, 0xC5, 0xD5, 0xCD, 0xDD, 0xD9, 0xC1, 0xD1:
		cpu.cmp(address)
	case 0xE0, 0xE4, 0xEC:
		cpu.cpx(address)
	case 0xC0, 0xC4, 0xCC:
		cpu.cpy(address)

	// Logic
	case 0x29, 0x25, 0x35, 0x2D, 0x3D, 0x39, 0x21, 0x31:
		cpu.and(address)
	case 0x09, 0x05, 0x15, 0x0D, 0x1D, 0x19, 0x01, 0x11:
		cpu.ora(address)
	case 0x49, 0x45, 0x55, 0x4D, 0x5D, 0x59, 0x41, 0x51:
		cpu.eor(address)
	case 0x24, 0x2C:
		cpu.bit(address)

	// Inc/Dec
	case 0xE6, 0xF6, 0xEE, 0xFE:
		cpu.inc(address)
	case 0xC6, 0xD6, 0xCE, 0xDE:
		cpu.dec(address)
	case 0xE8:
		cpu.inx()
	case 0xC8:
		cpu.iny()
	case 0xCA:
		cpu.dex()
	case 0x88:
		cpu.dey()

	// Shifts / rotates
	case 0x0A, 0x06, 0x16, 0x0E, 0x1E:
		cpu.asl(mode, address)
	case 0x4A, 0x46, 0x56, 0x4E, 0x5E:
		cpu.lsr(mode, address)
	case 0x2A, 0x26, 0x36, 0x2E, 0x3E:
		cpu.rol(mode, address)
	case 0x6A, 0x66, 0x76, 0x6E, 0x7E:
		cpu.ror(mode, address)

	// Flags
	case 0x18:
		cpu.clc()
	case 0x38:
		cpu.sec()
	case 0x58:
		cpu.cli()
	case 0x78:
		cpu.sei()
	case 0xB8:
		cpu.clv()
	case 0xD8:
		cpu.cld()
	case 0xF8:
		cpu.sed()

	// Control flow
	case 0x4C, 0x6C:
		cpu.jmp(address)
	case 0x20:
		cpu.jsr(address)
	case 0x60:
		cpu.rts()
	case 0x40:
		cpu.rti()
	case 0x00:
		cpu.brk()
	case 0xEA:
		cpu.nop()

	// Branches
	case 0x90:
		return cpu.bcc(address, pageCrossed)
	case 0xB0:
		return cpu.bcs(address, pageCrossed)
	case 0xD0:
		return cpu.bne(address, pageCrossed)
	case 0xF0:
		return cpu.beq(address, pageCrossed)
	case 0x10:
		return cpu.bpl(address, pageCrossed)
	case 0x30:
		return cpu.bmi(address, pageCrossed)
	case 0x50:
		return cpu.bvc(address, pageCrossed)
	case 0x70:
		return cpu.bvs(address, pageCrossed)

	// Unofficial
	case 0xA7, 0xB7, 0xAF, 0xBF, 0xA3, 0xB3:
		cpu.lax(address)
	case 0x87, 0x97, 0x8F, 0x83:
		cpu.sax(address)
	case 0xC7, 0xD7, 0xCF, 0xDF, 0xDB, 0xC3, 0xD3:
		cpu.dcp(address)
	case 0xE7, 0xF7, 0xEF, 0xFF, 0xFB, 0xE3, 0xF3:
		cpu.isc(address)
	case 0x07, 0x17, 0x0F, 0x1F, 0x1B, 0x03, 0x13:
		cpu.slo(address)
	case 0x27, 0x37, 0x2F, 0x3F, 0x3B, 0x23, 0x33:
		cpu.rla(address)
	case 0x47, 0x57, 0x4F, 0x5F, 0x5B, 0x43, 0x53:
		cpu.sre(address)
	case 0x67, 0x77, 0x6F, 0x7F, 0x7B, 0x63, 0x73:
		cpu.rra(address)
	case 0x0B, 0x2B:
		cpu.anc(address)
	case 0x4B:
		cpu.alr(address)
	case 0x6B:
		cpu.arr(address)
	case 0xCB:
		cpu.axs(address)
	case 0x9F, 0x93:
		cpu.sha(address)
	case 0x9E:
		cpu.shx(address)
	case 0x9C:
		cpu.shy(address)
	case 0x9B:
		cpu.tas(address)
	case 0xBB:
		cpu.las(address)
	case 0x8B:
		cpu.xaa(address)

	// Unofficial NOPs (various addressing modes, no additional effect beyond
	// the read they perform and the page-cross penalty already accounted for)
	case 0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA,
		0x80, 0x82, 0x89, 0xC2, 0xE2,
		0x04, 0x44, 0x64, 0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4,
		0x0C, 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC:
		cpu.nop()

	default:
		cpu.nop()
	}

	return 0
}
