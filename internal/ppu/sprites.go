package ppu

// runSpritePipeline performs sprite evaluation for the upcoming scanline at
// dot 257, the point in the real hardware pipeline where secondary OAM has
// been filled and sprite pattern fetches begin.
func (p *PPU) runSpritePipeline() {
	if p.cycle != 257 {
		return
	}
	if !(p.scanline >= 0 && p.scanline <= 239) {
		p.spriteCount = 0
		return
	}
	p.evaluateSprites()
}

func (p *PPU) evaluateSprites() {
	height := 8
	if p.tallSprites {
		height = 16
	}

	count := 0
	p.spriteOverflow = false
	for i := 0; i < 64; i++ {
		y := p.oam[i*4+0]
		row := p.scanline - int(y)
		if row < 0 || row >= height {
			continue
		}
		if count == 8 {
			p.spriteOverflow = true
			break
		}

		tile := p.oam[i*4+1]
		attr := p.oam[i*4+2]
		x := p.oam[i*4+3]

		flipV := attr&0x80 != 0
		flipH := attr&0x40 != 0
		behind := attr&0x20 != 0
		paletteHi := attr & 0x03

		spriteRow := row
		if flipV {
			spriteRow = height - 1 - row
		}

		var patternAddr uint16
		if !p.tallSprites {
			patternAddr = p.spritePatternTable + uint16(tile)*16 + uint16(spriteRow)
		} else {
			table := uint16(tile&0x01) * 0x1000
			tileIndex := uint16(tile &^ 0x01)
			if spriteRow >= 8 {
				tileIndex++
				spriteRow -= 8
			}
			patternAddr = table + tileIndex*16 + uint16(spriteRow)
		}

		lo := p.memory.Read(patternAddr)
		hi := p.memory.Read(patternAddr + 8)
		if flipH {
			lo = reverseBits(lo)
			hi = reverseBits(hi)
		}

		p.sprites[count] = spriteSlot{
			x:            x,
			patternLo:    lo,
			patternHi:    hi,
			paletteHi:    paletteHi,
			behindBG:     behind,
			isSpriteZero: i == 0,
		}
		count++
	}
	p.spriteCount = count
}

// spritePixelAt returns the highest-priority sprite's pixel value, palette
// index, and priority/sprite-zero flags at screen column x, or a
// transparent pixel if no evaluated sprite covers that column.
func (p *PPU) spritePixelAt(x int) (pixel uint8, palette uint8, behind bool, isZero bool) {
	for i := 0; i < p.spriteCount; i++ {
		s := &p.sprites[i]
		offset := x - int(s.x)
		if offset < 0 || offset > 7 {
			continue
		}
		bit := uint(7 - offset)
		value := uint8(0)
		if s.patternLo&(1<<bit) != 0 {
			value |= 1
		}
		if s.patternHi&(1<<bit) != 0 {
			value |= 2
		}
		if value == 0 {
			continue // transparent pixel, lower-priority sprites may still show through
		}
		return value, s.paletteHi, s.behindBG, s.isSpriteZero
	}
	return 0, 0, false, false
}

func reverseBits(b uint8) uint8 {
	var r uint8
	for i := 0; i < 8; i++ {
		r <<= 1
		r |= b & 1
		b >>= 1
	}
	return r
}
