package cartridge

// MapperState is a gob-encodable superset of every mapper's runtime
// registers. Each mapper's SaveMapperState/LoadMapperState populates only
// the fields it uses; the rest stay zero-valued.
type MapperState struct {
	ShiftReg     uint8
	Mirror       uint8
	PrgBankMode  uint8
	ChrBankMode  uint8
	ChrBank0     uint8
	ChrBank1     uint8
	PrgBank      uint8
	ChrBank      uint8
	PrgRAMEnable bool

	Bank            [8]uint8
	Current         uint8
	RAMWriteEnabled bool
	RAMEnabled      bool
	IRQLatch        uint8
	IRQCounter      uint8
	IRQEnabled      bool
	IRQPendingFlag  bool
	LastA12         bool
}

// StateSaver is implemented by mappers with runtime-switchable registers
// beyond plain PRG/CHR RAM. Mapper 0 (NROM) has no registers and does not
// implement it.
type StateSaver interface {
	SaveMapperState() MapperState
	LoadMapperState(MapperState)
}

// State is a gob-encodable snapshot of the whole cartridge: PRG RAM/CHR RAM
// contents plus the current mapper's register state.
type State struct {
	SRAM        []uint8
	CHRRAM      []uint8
	MapperState MapperState
}

// Save captures the cartridge's battery/work RAM, CHR RAM (if present), and
// mapper register state, for the machine package's save-state support.
func (c *Cartridge) Save() State {
	s := State{SRAM: append([]uint8(nil), c.sram...)}
	if c.hasCHRRAM {
		s.CHRRAM = append([]uint8(nil), c.chrROM...)
	}
	if saver, ok := c.mapper.(StateSaver); ok {
		s.MapperState = saver.SaveMapperState()
	}
	return s
}

// Load restores a previously captured cartridge state. PRG RAM is copied
// rather than re-sliced so the cartridge keeps the size it was allocated
// with at load time, regardless of what the snapshot's header reported.
func (c *Cartridge) Load(s State) {
	if len(s.SRAM) == len(c.sram) {
		copy(c.sram, s.SRAM)
	}
	if c.hasCHRRAM && s.CHRRAM != nil {
		copy(c.chrROM, s.CHRRAM)
	}
	if saver, ok := c.mapper.(StateSaver); ok {
		saver.LoadMapperState(s.MapperState)
	}
}
