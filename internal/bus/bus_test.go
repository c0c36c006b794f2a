package bus

import "testing"

// fakeCartridge is a minimal memory.CartridgeInterface implementation:
// 32KB PRG mirrored from a single bank, 8KB CHR RAM.
type fakeCartridge struct {
	prg [0x8000]uint8
	chr [0x2000]uint8
}

func newFakeCartridge() *fakeCartridge { return &fakeCartridge{} }

func (c *fakeCartridge) ReadPRG(address uint16) uint8 { return c.prg[address%0x8000] }
func (c *fakeCartridge) WritePRG(address uint16, value uint8) {
	c.prg[address%0x8000] = value
}
func (c *fakeCartridge) ReadCHR(address uint16) uint8        { return c.chr[address%0x2000] }
func (c *fakeCartridge) WriteCHR(address uint16, value uint8) { c.chr[address%0x2000] = value }

func (c *fakeCartridge) setResetVector(pc uint16) {
	c.prg[0x7FFC] = uint8(pc)
	c.prg[0x7FFD] = uint8(pc >> 8)
}

func (c *fakeCartridge) loadProgram(address uint16, program ...uint8) {
	for i, b := range program {
		c.prg[(address-0x8000)+uint16(i)] = b
	}
}

func TestNewBusBootsCPUFromResetVector(t *testing.T) {
	cart := newFakeCartridge()
	cart.setResetVector(0x8000)

	b := New()
	b.LoadCartridge(cart)

	if b.CPU.PC != 0x8000 {
		t.Fatalf("expected PC loaded from cartridge reset vector, got %04X", b.CPU.PC)
	}
}

func TestStepAdvancesPPUThreeTimesPerCPUCycle(t *testing.T) {
	cart := newFakeCartridge()
	cart.setResetVector(0x8000)
	cart.loadProgram(0x8000, 0xEA) // NOP, 2 cycles

	b := New()
	b.LoadCartridge(cart)

	startPPUCycles := b.ppuCycles
	b.Step()

	if b.ppuCycles-startPPUCycles != 6 {
		t.Fatalf("expected 6 PPU cycles per 2-cycle CPU instruction, got %d", b.ppuCycles-startPPUCycles)
	}
}

func TestOAMDMAStallsCPUFor513Or514Cycles(t *testing.T) {
	cart := newFakeCartridge()
	cart.setResetVector(0x8000)
	cart.loadProgram(0x8000, 0xEA)

	b := New()
	b.LoadCartridge(cart)
	b.cpuCycles = 0 // force even-cycle start

	b.TriggerOAMDMA(0x02)

	if !b.IsDMAInProgress() {
		t.Fatalf("expected DMA in progress immediately after trigger")
	}
	if b.dmaSuspendCycles != 513 {
		t.Fatalf("expected 513 stall cycles starting on an even CPU cycle, got %d", b.dmaSuspendCycles)
	}
}

func TestOAMDMACopiesSourcePageIntoPPUOAM(t *testing.T) {
	cart := newFakeCartridge()
	cart.setResetVector(0x8000)

	b := New()
	b.LoadCartridge(cart)
	b.Memory.Write(0x0200, 0x42)

	b.TriggerOAMDMA(0x02)

	oam := b.PPU.ObjectAttributeMemory()
	if oam[0] != 0x42 {
		t.Fatalf("expected OAM DMA to copy source page byte 0 into OAM, got %02X", oam[0])
	}
}

func TestResetReReadsPCButPreservesCPURegisters(t *testing.T) {
	cart := newFakeCartridge()
	cart.setResetVector(0x8000)

	b := New()
	b.LoadCartridge(cart)
	b.CPU.A = 0x55
	cart.setResetVector(0x9000)

	b.Reset()

	if b.CPU.A != 0x55 {
		t.Fatalf("expected warm reset to preserve accumulator")
	}
	if b.CPU.PC != 0x9000 {
		t.Fatalf("expected PC re-read from reset vector after Reset, got %04X", b.CPU.PC)
	}
}

func TestFrameAdvancesAtLeastOneNTSCFrameOfCycles(t *testing.T) {
	cart := newFakeCartridge()
	cart.setResetVector(0x8000)
	for i := uint16(0); i < 0x100; i++ {
		cart.loadProgram(0x8000+i, 0xEA)
	}

	b := New()
	b.LoadCartridge(cart)

	start := b.cpuCycles
	b.Frame()

	if b.cpuCycles-start < 29781 {
		t.Fatalf("expected at least 29781 CPU cycles after one frame, got %d", b.cpuCycles-start)
	}
}
