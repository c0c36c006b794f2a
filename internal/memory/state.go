package memory

// State is a gob-encodable snapshot of CPU-visible RAM, used by the machine
// package's save-state support.
type State struct {
	RAM          [0x800]uint8
	OpenBusValue uint8
}

// Save captures the CPU RAM contents.
func (m *Memory) Save() State {
	return State{RAM: m.ram, OpenBusValue: m.openBusValue}
}

// Load restores previously captured CPU RAM contents.
func (m *Memory) Load(s State) {
	m.ram = s.RAM
	m.openBusValue = s.OpenBusValue
}

// PPUState is a gob-encodable snapshot of PPU-visible VRAM and palette RAM.
type PPUState struct {
	VRAM       [0x1000]uint8
	PaletteRAM [32]uint8
}

// Save captures the PPU's nametable VRAM and palette RAM.
func (pm *PPUMemory) Save() PPUState {
	return PPUState{VRAM: pm.vram, PaletteRAM: pm.paletteRAM}
}

// Load restores previously captured nametable VRAM and palette RAM.
func (pm *PPUMemory) Load(s PPUState) {
	pm.vram = s.VRAM
	pm.paletteRAM = s.PaletteRAM
}
