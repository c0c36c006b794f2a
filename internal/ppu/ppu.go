// Package ppu implements the dot-accurate NES picture processing unit.
package ppu

// MemoryInterface is the PPU's memory port: pattern tables (via the mapper),
// nametables (mirrored), and palette RAM.
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// BankReader is implemented by memory backends that expose raw PPU
// address-space banks for debug/inspection tooling (the machine package's
// ChrBank/NametableBank accessors).
type BankReader interface {
	ChrBank(i int) []uint8
	NametableBank(i int) []uint8
}

const (
	lastScanline      = 260
	preRenderScanline = -1
)

// spriteSlot carries one evaluated sprite's contribution for the current
// scanline, produced during sprite evaluation and consumed during pixel
// composition.
type spriteSlot struct {
	x            uint8
	patternLo    uint8
	patternHi    uint8
	paletteHi    uint8 // attribute palette bits (0-3, unshifted; outputPixel scales by 4)
	behindBG     bool
	isSpriteZero bool
}

// PPU is the NES picture processing unit: loopy scroll registers, the
// background shift-register pipeline, sprite evaluation, and the dot/scanline
// grid that drives VBlank/NMI timing.
type PPU struct {
	memory MemoryInterface

	// Loopy scroll registers.
	v, t  uint16
	fineX uint8
	w     bool

	// PPUCTRL
	vramIncrement      uint16
	spritePatternTable uint16
	bgPatternTable     uint16
	tallSprites        bool
	nmiEnable          bool

	// PPUMASK
	grayscale       bool
	showBGLeft      bool
	showSpritesLeft bool
	showBG          bool
	showSprites     bool
	emphasizeRed    bool
	emphasizeGreen  bool
	emphasizeBlue   bool

	oamAddr uint8
	oam     [256]uint8

	secondaryOAM    [8]int // indices into oam of sprites selected for next scanline, -1 = empty
	secondaryCount  int
	sprites         [8]spriteSlot
	spriteCount     int
	spriteZeroOnLine bool

	spriteOverflow bool
	sprite0Hit     bool
	vblank         bool

	openBus    uint8
	dataBuffer uint8

	nametableByte uint8
	attributeByte uint8
	lowTileByte   uint8
	highTileByte  uint8
	bgPatternLo   uint16
	bgPatternHi   uint16
	bgAttrLo      uint16
	bgAttrHi      uint16

	cycle    int
	scanline int
	frame    uint64

	frameBuffer [256 * 240 * 4]uint8

	nmiCallback           func()
	frameCompleteCallback func()

	debugLogging bool
}

// New creates an idle PPU. Call SetMemory before Step.
func New() *PPU {
	p := &PPU{}
	p.Reset()
	return p
}

// Reset restores power-up dot position; register state is left at zero value,
// matching a cold power-on.
func (p *PPU) Reset() {
	p.cycle = 340
	p.scanline = 240
	p.frame = 0
	p.w = false
	p.vblank = false
	for i := range p.secondaryOAM {
		p.secondaryOAM[i] = -1
	}
}

// SetMemory attaches the PPU address space (pattern tables + nametables + palette RAM).
func (p *PPU) SetMemory(memory MemoryInterface) { p.memory = memory }

// SetNMICallback registers the function invoked when VBlank starts with NMI enabled.
func (p *PPU) SetNMICallback(callback func()) { p.nmiCallback = callback }

// SetFrameCompleteCallback registers the function invoked when a frame finishes.
func (p *PPU) SetFrameCompleteCallback(callback func()) { p.frameCompleteCallback = callback }

// EnableDebugLogging turns on verbose per-event logging, mirroring the
// opt-in debug switches found elsewhere in the machine.
func (p *PPU) EnableDebugLogging(enabled bool) { p.debugLogging = enabled }

// ReadRegister implements the $2000-$2007 register file as seen from the CPU side.
func (p *PPU) ReadRegister(address uint16) uint8 {
	switch address & 0x0007 {
	case 0, 1, 3, 5, 6: // write-only registers return open bus
		return p.openBus
	case 2: // PPUSTATUS
		var status uint8
		if p.vblank {
			status |= 0x80
		}
		if p.sprite0Hit {
			status |= 0x40
		}
		if p.spriteOverflow {
			status |= 0x20
		}
		status |= p.openBus & 0x1F
		p.vblank = false
		p.w = false
		p.openBus = status
		return status
	case 4: // OAMDATA
		value := p.oam[p.oamAddr]
		p.openBus = value
		return value
	case 7: // PPUDATA
		value := p.readPPUData()
		p.openBus = value
		return value
	}
	return p.openBus
}

// WriteRegister implements the $2000-$2007 register file as seen from the CPU side.
func (p *PPU) WriteRegister(address uint16, value uint8) {
	p.openBus = value
	switch address & 0x0007 {
	case 0: // PPUCTRL
		p.t = (p.t & 0xF3FF) | (uint16(value&0x03) << 10)
		if value&0x04 != 0 {
			p.vramIncrement = 32
		} else {
			p.vramIncrement = 1
		}
		if value&0x08 != 0 {
			p.spritePatternTable = 0x1000
		} else {
			p.spritePatternTable = 0
		}
		if value&0x10 != 0 {
			p.bgPatternTable = 0x1000
		} else {
			p.bgPatternTable = 0
		}
		p.tallSprites = value&0x20 != 0
		p.nmiEnable = value&0x80 != 0
	case 1: // PPUMASK
		p.grayscale = value&0x01 != 0
		p.showBGLeft = value&0x02 != 0
		p.showSpritesLeft = value&0x04 != 0
		p.showBG = value&0x08 != 0
		p.showSprites = value&0x10 != 0
		p.emphasizeRed = value&0x20 != 0
		p.emphasizeGreen = value&0x40 != 0
		p.emphasizeBlue = value&0x80 != 0
	case 2: // PPUSTATUS is read-only
	case 3: // OAMADDR
		p.oamAddr = value
	case 4: // OAMDATA
		p.oam[p.oamAddr] = value
		p.oamAddr++
	case 5: // PPUSCROLL
		p.writePPUScroll(value)
	case 6: // PPUADDR
		p.writePPUAddr(value)
	case 7: // PPUDATA
		p.writePPUData(value)
	}
}

// WriteOAM writes a single byte directly into primary OAM at the given
// index, bypassing OAMADDR auto-increment. Used by OAM DMA.
func (p *PPU) WriteOAM(address uint8, value uint8) {
	p.oam[address] = value
}

// OAMAddr returns the current OAMADDR value.
func (p *PPU) OAMAddr() uint8 { return p.oamAddr }

func (p *PPU) writePPUScroll(value uint8) {
	if !p.w {
		p.t = (p.t & 0xFFE0) | (uint16(value) >> 3)
		p.fineX = value & 0x07
		p.w = true
	} else {
		p.t = (p.t & 0x8FFF) | (uint16(value&0x07) << 12)
		p.t = (p.t & 0xFC1F) | (uint16(value&0xF8) << 2)
		p.w = false
	}
}

func (p *PPU) writePPUAddr(value uint8) {
	if !p.w {
		p.t = (p.t & 0x00FF) | (uint16(value&0x3F) << 8)
		p.w = true
	} else {
		p.t = (p.t & 0xFF00) | uint16(value)
		p.v = p.t
		p.w = false
	}
}

func (p *PPU) readPPUData() uint8 {
	addr := p.v & 0x3FFF
	value := p.memory.Read(addr)
	var ret uint8
	if addr < 0x3F00 {
		ret = p.dataBuffer
		p.dataBuffer = value
	} else {
		ret = value
		p.dataBuffer = p.memory.Read(addr - 0x1000)
	}
	p.v += p.vramIncrement
	return ret
}

func (p *PPU) writePPUData(value uint8) {
	p.memory.Write(p.v&0x3FFF, value)
	p.v += p.vramIncrement
}

// RenderingEnabled reports whether background or sprite rendering is on —
// mappers with scanline counters (e.g. MMC3) gate their IRQ clock on this.
func (p *PPU) RenderingEnabled() bool { return p.showBG || p.showSprites }

// GetScanline, GetCycle, GetFrameCount expose dot position for debug overlays
// and mapper scanline counters.
func (p *PPU) GetScanline() int      { return p.scanline }
func (p *PPU) GetCycle() int         { return p.cycle }
func (p *PPU) GetFrameCount() uint64 { return p.frame }
func (p *PPU) IsVBlank() bool        { return p.vblank }

// ImageBuffer returns the 256x240 row-major RGBA framebuffer produced by the
// last completed frame.
func (p *PPU) ImageBuffer() []uint8 { return p.frameBuffer[:] }

// Palettes returns the 32-byte palette RAM contents for debug overlays.
func (p *PPU) Palettes() [32]uint8 {
	var out [32]uint8
	for i := range out {
		out[i] = p.memory.Read(0x3F00 + uint16(i))
	}
	return out
}

// ObjectAttributeMemory returns a copy of primary OAM for debug overlays.
func (p *PPU) ObjectAttributeMemory() [256]uint8 { return p.oam }

// TallSpritesEnabled reports whether PPUCTRL selected 8x16 sprites.
func (p *PPU) TallSpritesEnabled() bool { return p.tallSprites }

// ChrBank returns a copy of 1KB pattern-table bank i (0-7), or nil if the
// wired memory backend doesn't expose raw banks.
func (p *PPU) ChrBank(i int) []uint8 {
	if br, ok := p.memory.(BankReader); ok {
		return br.ChrBank(i)
	}
	return nil
}

// NametableBank returns a copy of resolved 1KB nametable bank i (0-3), or
// nil if the wired memory backend doesn't expose raw banks.
func (p *PPU) NametableBank(i int) []uint8 {
	if br, ok := p.memory.(BankReader); ok {
		return br.NametableBank(i)
	}
	return nil
}

// BackgroundCHRBank returns the pattern-table base address selected for background tiles.
func (p *PPU) BackgroundCHRBank() uint16 { return p.bgPatternTable }

// Step advances the PPU by one dot: the background pipeline, sprite
// evaluation, VBlank/NMI, and scroll-copy events described in the dot grid.
func (p *PPU) Step() {
	p.runBackgroundPipeline()
	p.runSpritePipeline()
	p.runFrameEvents()

	p.cycle++
	if p.cycle > 340 {
		p.cycle = 0
		p.scanline++
		if p.scanline > lastScanline {
			p.scanline = preRenderScanline
			p.frame++
			if p.frameCompleteCallback != nil {
				p.frameCompleteCallback()
			}
		}
	}
}

func (p *PPU) visibleOrPreRender() bool {
	return p.scanline == preRenderScanline || (p.scanline >= 0 && p.scanline <= 239)
}

func (p *PPU) runFrameEvents() {
	if p.scanline == 241 && p.cycle == 1 {
		p.vblank = true
		if p.nmiEnable && p.nmiCallback != nil {
			p.nmiCallback()
		}
	}
	if p.scanline == preRenderScanline && p.cycle == 1 {
		p.vblank = false
		p.sprite0Hit = false
		p.spriteOverflow = false
	}
}
