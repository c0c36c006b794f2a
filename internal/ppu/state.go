package ppu

// State is a gob-encodable snapshot of PPU register and dot-position state,
// used by the machine package's save-state support. The pixel frame buffer
// is intentionally excluded: it is fully reproduced by the time the next
// frame completes, and re-deriving it avoids a 256*240*4-byte payload.
type State struct {
	V, T  uint16
	FineX uint8
	W     bool

	VRAMIncrement      uint16
	SpritePatternTable uint16
	BGPatternTable     uint16
	TallSprites        bool
	NMIEnable          bool

	Grayscale       bool
	ShowBGLeft      bool
	ShowSpritesLeft bool
	ShowBG          bool
	ShowSprites     bool
	EmphasizeRed    bool
	EmphasizeGreen  bool
	EmphasizeBlue   bool

	OAMAddr uint8
	OAM     [256]uint8

	SpriteOverflow bool
	Sprite0Hit     bool
	VBlank         bool

	OpenBus    uint8
	DataBuffer uint8

	NametableByte uint8
	AttributeByte uint8
	LowTileByte   uint8
	HighTileByte  uint8
	BGPatternLo   uint16
	BGPatternHi   uint16
	BGAttrLo      uint16
	BGAttrHi      uint16

	Cycle    int
	Scanline int
	Frame    uint64
}

// Save captures the PPU's architectural state.
func (p *PPU) Save() State {
	return State{
		V: p.v, T: p.t, FineX: p.fineX, W: p.w,

		VRAMIncrement:      p.vramIncrement,
		SpritePatternTable: p.spritePatternTable,
		BGPatternTable:     p.bgPatternTable,
		TallSprites:        p.tallSprites,
		NMIEnable:          p.nmiEnable,

		Grayscale:       p.grayscale,
		ShowBGLeft:      p.showBGLeft,
		ShowSpritesLeft: p.showSpritesLeft,
		ShowBG:          p.showBG,
		ShowSprites:     p.showSprites,
		EmphasizeRed:    p.emphasizeRed,
		EmphasizeGreen:  p.emphasizeGreen,
		EmphasizeBlue:   p.emphasizeBlue,

		OAMAddr: p.oamAddr,
		OAM:     p.oam,

		SpriteOverflow: p.spriteOverflow,
		Sprite0Hit:     p.sprite0Hit,
		VBlank:         p.vblank,

		OpenBus:    p.openBus,
		DataBuffer: p.dataBuffer,

		NametableByte: p.nametableByte,
		AttributeByte: p.attributeByte,
		LowTileByte:   p.lowTileByte,
		HighTileByte:  p.highTileByte,
		BGPatternLo:   p.bgPatternLo,
		BGPatternHi:   p.bgPatternHi,
		BGAttrLo:      p.bgAttrLo,
		BGAttrHi:      p.bgAttrHi,

		Cycle:    p.cycle,
		Scanline: p.scanline,
		Frame:    p.frame,
	}
}

// Load restores a previously captured PPU state. The caller is responsible
// for re-running enough cycles to repopulate the frame buffer before the
// image is next presented.
func (p *PPU) Load(s State) {
	p.v, p.t, p.fineX, p.w = s.V, s.T, s.FineX, s.W

	p.vramIncrement = s.VRAMIncrement
	p.spritePatternTable = s.SpritePatternTable
	p.bgPatternTable = s.BGPatternTable
	p.tallSprites = s.TallSprites
	p.nmiEnable = s.NMIEnable

	p.grayscale = s.Grayscale
	p.showBGLeft = s.ShowBGLeft
	p.showSpritesLeft = s.ShowSpritesLeft
	p.showBG = s.ShowBG
	p.showSprites = s.ShowSprites
	p.emphasizeRed = s.EmphasizeRed
	p.emphasizeGreen = s.EmphasizeGreen
	p.emphasizeBlue = s.EmphasizeBlue

	p.oamAddr = s.OAMAddr
	p.oam = s.OAM

	p.spriteOverflow = s.SpriteOverflow
	p.sprite0Hit = s.Sprite0Hit
	p.vblank = s.VBlank

	p.openBus = s.OpenBus
	p.dataBuffer = s.DataBuffer

	p.nametableByte = s.NametableByte
	p.attributeByte = s.AttributeByte
	p.lowTileByte = s.LowTileByte
	p.highTileByte = s.HighTileByte
	p.bgPatternLo = s.BGPatternLo
	p.bgPatternHi = s.BGPatternHi
	p.bgAttrLo = s.BGAttrLo
	p.bgAttrHi = s.BGAttrHi

	p.cycle = s.Cycle
	p.scanline = s.Scanline
	p.frame = s.Frame
}
