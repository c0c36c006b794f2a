package ppu

// runBackgroundPipeline drives the nametable/attribute/pattern fetch sequence
// and the four parallel 16-bit background shift registers. The fetch/reload
// schedule follows the standard 8-dot tile cadence: nametable byte at dot
// 1 mod 8, attribute at 3, pattern low at 5, pattern high at 7, coarse-X
// increment at 0 mod 8.
func (p *PPU) runBackgroundPipeline() {
	if !p.visibleOrPreRender() {
		return
	}

	fetching := (p.cycle >= 1 && p.cycle <= 256) || (p.cycle >= 321 && p.cycle <= 336)
	if fetching {
		switch p.cycle % 8 {
		case 1:
			p.loadBackgroundShiftRegisters()
			p.nametableByte = p.fetchNametableByte()
		case 3:
			p.attributeByte = p.fetchAttributeBits()
		case 5:
			p.lowTileByte = p.fetchPatternByte(0)
		case 7:
			p.highTileByte = p.fetchPatternByte(8)
		case 0:
			p.incrementCoarseX()
		}
	}

	if p.scanline >= 0 && p.scanline <= 239 && p.cycle >= 1 && p.cycle <= 256 {
		p.outputPixel()
	}

	if fetching {
		p.shiftBackgroundRegisters()
	}

	if p.cycle == 256 {
		p.incrementY()
	}
	if p.cycle == 257 {
		p.copyX()
	}
	if p.scanline == preRenderScanline && p.cycle >= 280 && p.cycle <= 304 {
		p.copyY()
	}
}

func (p *PPU) fetchNametableByte() uint8 {
	addr := 0x2000 | (p.v & 0x0FFF)
	return p.memory.Read(addr)
}

func (p *PPU) fetchAttributeBits() uint8 {
	addr := 0x23C0 | (p.v & 0x0C00) | ((p.v >> 4) & 0x38) | ((p.v >> 2) & 0x07)
	attr := p.memory.Read(addr)
	shift := ((p.v >> 4) & 0x04) | (p.v & 0x02)
	return (attr >> shift) & 0x03
}

func (p *PPU) fetchPatternByte(plane uint16) uint8 {
	fineY := (p.v >> 12) & 0x07
	addr := p.bgPatternTable + uint16(p.nametableByte)*16 + fineY + plane
	return p.memory.Read(addr)
}

func (p *PPU) loadBackgroundShiftRegisters() {
	p.bgPatternLo = (p.bgPatternLo & 0xFF00) | uint16(p.lowTileByte)
	p.bgPatternHi = (p.bgPatternHi & 0xFF00) | uint16(p.highTileByte)
	if p.attributeByte&0x01 != 0 {
		p.bgAttrLo = (p.bgAttrLo & 0xFF00) | 0x00FF
	} else {
		p.bgAttrLo = p.bgAttrLo & 0xFF00
	}
	if p.attributeByte&0x02 != 0 {
		p.bgAttrHi = (p.bgAttrHi & 0xFF00) | 0x00FF
	} else {
		p.bgAttrHi = p.bgAttrHi & 0xFF00
	}
}

func (p *PPU) shiftBackgroundRegisters() {
	p.bgPatternLo <<= 1
	p.bgPatternHi <<= 1
	p.bgAttrLo <<= 1
	p.bgAttrHi <<= 1
}

func (p *PPU) incrementCoarseX() {
	if p.v&0x001F == 31 {
		p.v &^= 0x001F
		p.v ^= 0x0400
	} else {
		p.v++
	}
}

func (p *PPU) incrementY() {
	if p.v&0x7000 != 0x7000 {
		p.v += 0x1000
		return
	}
	p.v &^= 0x7000
	y := (p.v & 0x03E0) >> 5
	switch y {
	case 29:
		y = 0
		p.v ^= 0x0800
	case 31:
		y = 0
	default:
		y++
	}
	p.v = (p.v &^ 0x03E0) | (y << 5)
}

func (p *PPU) copyX() {
	p.v = (p.v & 0xFBE0) | (p.t & 0x041F)
}

func (p *PPU) copyY() {
	p.v = (p.v & 0x841F) | (p.t & 0x7BE0)
}

// outputPixel composes the background and sprite contributions for the
// current dot and writes the resolved RGBA color into the framebuffer.
func (p *PPU) outputPixel() {
	x := p.cycle - 1
	y := p.scanline

	bit := uint16(0x8000) >> p.fineX
	bgPixel := uint8(0)
	if p.bgPatternLo&bit != 0 {
		bgPixel |= 1
	}
	if p.bgPatternHi&bit != 0 {
		bgPixel |= 2
	}
	bgPalette := uint8(0)
	if p.bgAttrLo&bit != 0 {
		bgPalette |= 1
	}
	if p.bgAttrHi&bit != 0 {
		bgPalette |= 2
	}
	if !p.showBG || (x < 8 && !p.showBGLeft) {
		bgPixel = 0
	}

	spritePixel, spritePalette, spriteBehind, spriteIsZero := p.spritePixelAt(x)
	if !p.showSprites || (x < 8 && !p.showSpritesLeft) {
		spritePixel = 0
	}

	if spriteIsZero && bgPixel != 0 && spritePixel != 0 && x != 255 {
		p.sprite0Hit = true
	}

	var paletteAddr uint16
	switch {
	case bgPixel == 0 && spritePixel == 0:
		paletteAddr = 0x3F00
	case bgPixel == 0:
		paletteAddr = 0x3F10 + uint16(spritePalette)*4 + uint16(spritePixel)
	case spritePixel == 0:
		paletteAddr = 0x3F00 + uint16(bgPalette)*4 + uint16(bgPixel)
	case spriteBehind:
		paletteAddr = 0x3F00 + uint16(bgPalette)*4 + uint16(bgPixel)
	default:
		paletteAddr = 0x3F10 + uint16(spritePalette)*4 + uint16(spritePixel)
	}

	colorIndex := p.memory.Read(paletteAddr) & 0x3F
	r, g, b := nesPalette[colorIndex][0], nesPalette[colorIndex][1], nesPalette[colorIndex][2]

	offset := (y*256 + x) * 4
	p.frameBuffer[offset+0] = r
	p.frameBuffer[offset+1] = g
	p.frameBuffer[offset+2] = b
	p.frameBuffer[offset+3] = 0xFF
}
