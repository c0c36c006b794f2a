package ppu

import "testing"

// flatMemory is a minimal MemoryInterface backing store for unit tests.
type flatMemory struct {
	data [0x4000]uint8
}

func (m *flatMemory) Read(address uint16) uint8        { return m.data[address&0x3FFF] }
func (m *flatMemory) Write(address uint16, value uint8) { m.data[address&0x3FFF] = value }

func newTestPPU() (*PPU, *flatMemory) {
	mem := &flatMemory{}
	p := New()
	p.SetMemory(mem)
	return p, mem
}

func TestPPUSTATUSReadClearsVBlankAndWriteLatch(t *testing.T) {
	p, _ := newTestPPU()
	p.vblank = true
	p.w = true

	status := p.ReadRegister(0x2002)

	if status&0x80 == 0 {
		t.Fatalf("expected VBlank bit set in status read")
	}
	if p.vblank {
		t.Fatalf("expected VBlank flag cleared after PPUSTATUS read")
	}
	if p.w {
		t.Fatalf("expected write latch cleared after PPUSTATUS read")
	}
}

func TestPPUSCROLLThenPPUADDRSetLoopyRegisters(t *testing.T) {
	p, _ := newTestPPU()

	p.WriteRegister(0x2005, 0x7D) // x scroll: coarse 15, fine 5
	p.WriteRegister(0x2005, 0x5E) // y scroll

	if p.fineX != 5 {
		t.Fatalf("expected fineX=5, got %d", p.fineX)
	}

	p.WriteRegister(0x2006, 0x21)
	p.WriteRegister(0x2006, 0x08)

	if p.v != 0x2108 {
		t.Fatalf("expected v=0x2108 after PPUADDR write, got %04X", p.v)
	}
}

func TestOAMDMAWriteAndReadback(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteOAM(0x04, 0xAB)

	p.WriteRegister(0x2003, 0x04)
	got := p.ReadRegister(0x2004)

	if got != 0xAB {
		t.Fatalf("expected OAMDATA readback 0xAB, got %02X", got)
	}
}

func TestVBlankSetAtScanline241Cycle1(t *testing.T) {
	p, _ := newTestPPU()
	p.WriteRegister(0x2000, 0x80) // enable NMI

	nmiFired := false
	p.SetNMICallback(func() { nmiFired = true })

	// Step processes the current dot and then advances.
	p.scanline = 241
	p.cycle = 1
	p.Step()

	if !p.vblank {
		t.Fatalf("expected VBlank flag set at scanline 241 cycle 1")
	}
	if !nmiFired {
		t.Fatalf("expected NMI callback invoked when NMI enabled")
	}
}

func TestPreRenderScanlineClearsStatusFlags(t *testing.T) {
	p, _ := newTestPPU()
	p.sprite0Hit = true
	p.spriteOverflow = true
	p.scanline = preRenderScanline
	p.cycle = 1

	p.Step()

	if p.sprite0Hit || p.spriteOverflow {
		t.Fatalf("expected sprite0Hit/spriteOverflow cleared at pre-render scanline cycle 1")
	}
}

func TestFrameCompleteCallbackFiresOnWrap(t *testing.T) {
	p, _ := newTestPPU()
	completed := false
	p.SetFrameCompleteCallback(func() { completed = true })

	p.scanline = lastScanline
	p.cycle = 340
	p.Step()

	if !completed {
		t.Fatalf("expected frame complete callback at end of last scanline")
	}
	if p.scanline != preRenderScanline {
		t.Fatalf("expected scanline to wrap to pre-render, got %d", p.scanline)
	}
}

func TestCoarseXIncrementWrapsNametable(t *testing.T) {
	p, _ := newTestPPU()
	p.v = 0x001F // coarse X maxed out
	p.incrementCoarseX()

	if p.v&0x001F != 0 {
		t.Fatalf("expected coarse X to wrap to 0, got %d", p.v&0x001F)
	}
	if p.v&0x0400 == 0 {
		t.Fatalf("expected horizontal nametable bit to toggle on coarse X wrap")
	}
}

func TestIncrementYWrapsAt240(t *testing.T) {
	p, _ := newTestPPU()
	p.v = 0x7000 | (29 << 5) // fine Y maxed, coarse Y = 29 (last row of nametable)
	p.incrementY()

	if (p.v>>5)&0x1F != 0 {
		t.Fatalf("expected coarse Y to wrap to 0 at row 29, got %d", (p.v>>5)&0x1F)
	}
	if p.v&0x0800 == 0 {
		t.Fatalf("expected vertical nametable bit to toggle on coarse Y wrap")
	}
}

func TestSpriteEvaluationRespectsEightSpriteLimit(t *testing.T) {
	p, _ := newTestPPU()
	for i := 0; i < 16; i++ {
		p.oam[i*4+0] = 10 // all on scanline 10
	}
	p.scanline = 10

	p.evaluateSprites()

	if p.spriteCount != 8 {
		t.Fatalf("expected evaluation to cap at 8 sprites, got %d", p.spriteCount)
	}
	if !p.spriteOverflow {
		t.Fatalf("expected sprite overflow flag set with 16 sprites on one line")
	}
}

func TestReverseBitsFlipsSpritePattern(t *testing.T) {
	if got := reverseBits(0b10000001); got != 0b10000001 {
		t.Fatalf("expected palindromic byte unchanged, got %08b", got)
	}
	if got := reverseBits(0b00000001); got != 0b10000000 {
		t.Fatalf("expected bit 0 to move to bit 7, got %08b", got)
	}
}
