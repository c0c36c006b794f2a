package cartridge

// prgBankMode4 selects which two of MMC3's four 8K PRG windows are fixed.
type prgBankMode4 uint8

const (
	prgTwoSwitchTwoFix prgBankMode4 = iota
	prgFixTwoSwitchFix
)

// chrBankMode4 selects which half of CHR space holds the four 1K banks vs
// the two 2K banks.
type chrBankMode4 uint8

const (
	chrTwo2KFour1K chrBankMode4 = iota
	chrFour1KTwo2K
)

// Mapper004 implements MMC3: eight bank-data registers selected through a
// bank-select/bank-data register pair, plus a scanline counter clocked by
// PPU A12 rising edges (observed here as CHR reads crossing the 0x1000
// boundary) that raises an IRQ when it reaches zero.
type Mapper004 struct {
	cart *Cartridge

	prgMode prgBankMode4
	chrMode chrBankMode4
	bank    [8]uint8
	current uint8

	mirror          MirrorMode
	ramWriteEnabled bool
	ramEnabled      bool

	irqLatch   uint8
	irqCounter uint8
	irqEnabled bool
	irqPending bool

	lastA12 bool
}

// NewMapper004 creates a new MMC3 mapper.
func NewMapper004(cart *Cartridge) *Mapper004 {
	return &Mapper004{
		cart:            cart,
		mirror:          MirrorVertical,
		ramWriteEnabled: true,
		ramEnabled:      true,
	}
}

func (m *Mapper004) prgBanks() int { return m.cart.prgBankCount() * 2 }

func (m *Mapper004) ReadPRG(address uint16) uint8 {
	if address >= 0x6000 && address < 0x8000 {
		if m.ramEnabled {
			return m.cart.sram[address-0x6000]
		}
		return 0
	}
	if address < 0x8000 {
		return 0
	}

	banks := m.prgBanks()
	var offset int
	switch m.prgMode {
	case prgTwoSwitchTwoFix:
		switch {
		case address < 0xA000:
			offset = int(m.bank[6])*0x2000 + int(address-0x8000)
		case address < 0xC000:
			offset = int(m.bank[7])*0x2000 + int(address-0xA000)
		case address < 0xE000:
			offset = (banks-2)*0x2000 + int(address-0xC000)
		default:
			offset = (banks-1)*0x2000 + int(address-0xE000)
		}
	case prgFixTwoSwitchFix:
		switch {
		case address < 0xA000:
			offset = (banks-2)*0x2000 + int(address-0x8000)
		case address < 0xC000:
			offset = int(m.bank[7])*0x2000 + int(address-0xA000)
		case address < 0xE000:
			offset = int(m.bank[6])*0x2000 + int(address-0xC000)
		default:
			offset = (banks-1)*0x2000 + int(address-0xE000)
		}
	}
	if offset >= 0 && offset < len(m.cart.prgROM) {
		return m.cart.prgROM[offset]
	}
	return 0
}

func (m *Mapper004) WritePRG(address uint16, value uint8) {
	if address >= 0x6000 && address < 0x8000 {
		if m.ramWriteEnabled {
			m.cart.sram[address-0x6000] = value
		}
		return
	}
	if address < 0x8000 {
		return
	}

	even := address&0x01 == 0
	switch {
	case address < 0xA000:
		if even {
			m.prgMode = prgBankMode4((value >> 6) & 0x01)
			m.chrMode = chrBankMode4((value >> 7) & 0x01)
			m.current = value & 0x07
		} else {
			m.bank[m.current] = value
		}
	case address < 0xC000:
		if even {
			if value&0x01 == 0 {
				m.mirror = MirrorVertical
			} else {
				m.mirror = MirrorHorizontal
			}
		} else {
			m.ramWriteEnabled = value&0x40 == 0
			m.ramEnabled = value&0x80 != 0
		}
	case address < 0xE000:
		if even {
			m.irqLatch = value
		} else {
			m.irqCounter = m.irqLatch
		}
	default:
		if even {
			m.irqEnabled = false
			m.irqPending = false
		} else {
			m.irqEnabled = true
		}
	}
}

func (m *Mapper004) ReadCHR(address uint16) uint8 {
	m.observeA12(address)
	offset := m.chrOffset(address)
	if int(offset) < len(m.cart.chrROM) {
		return m.cart.chrROM[offset]
	}
	return 0
}

func (m *Mapper004) WriteCHR(address uint16, value uint8) {
	if !m.cart.hasCHRRAM {
		return
	}
	m.observeA12(address)
	offset := m.chrOffset(address)
	if int(offset) < len(m.cart.chrROM) {
		m.cart.chrROM[offset] = value
	}
}

func (m *Mapper004) chrOffset(address uint16) uint32 {
	switch m.chrMode {
	case chrTwo2KFour1K:
		switch {
		case address < 0x0800:
			return uint32(m.bank[0]&^0x01)*0x400 + uint32(address)
		case address < 0x1000:
			return uint32(m.bank[1]&^0x01)*0x400 + uint32(address-0x0800)
		case address < 0x1400:
			return uint32(m.bank[2])*0x400 + uint32(address-0x1000)
		case address < 0x1800:
			return uint32(m.bank[3])*0x400 + uint32(address-0x1400)
		case address < 0x1C00:
			return uint32(m.bank[4])*0x400 + uint32(address-0x1800)
		default:
			return uint32(m.bank[5])*0x400 + uint32(address-0x1C00)
		}
	default: // chrFour1KTwo2K
		switch {
		case address < 0x0400:
			return uint32(m.bank[2])*0x400 + uint32(address)
		case address < 0x0800:
			return uint32(m.bank[3])*0x400 + uint32(address-0x0400)
		case address < 0x0C00:
			return uint32(m.bank[4])*0x400 + uint32(address-0x0800)
		case address < 0x1000:
			return uint32(m.bank[5])*0x400 + uint32(address-0x0C00)
		case address < 0x1800:
			return uint32(m.bank[0]&^0x01)*0x400 + uint32(address-0x1000)
		default:
			return uint32(m.bank[1]&^0x01)*0x400 + uint32(address-0x1800)
		}
	}
}

// observeA12 clocks the scanline counter on the rising edge of PPU address
// line A12 (bit 0x1000), the real hardware's actual IRQ trigger.
func (m *Mapper004) observeA12(address uint16) {
	a12 := address&0x1000 != 0
	if a12 && !m.lastA12 {
		m.clockIRQCounter()
	}
	m.lastA12 = a12
}

func (m *Mapper004) clockIRQCounter() {
	if m.irqCounter == 0 {
		m.irqCounter = m.irqLatch
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnabled {
		m.irqPending = true
	}
}

func (m *Mapper004) MirrorMode() MirrorMode { return m.mirror }
func (m *Mapper004) Step()                  {}
func (m *Mapper004) IRQPending() bool       { return m.irqPending }
func (m *Mapper004) ClearIRQ()              { m.irqPending = false }

func (m *Mapper004) SaveBattery() []uint8 {
	out := make([]uint8, len(m.cart.sram))
	copy(out, m.cart.sram[:])
	return out
}

func (m *Mapper004) LoadBattery(data []uint8) { copy(m.cart.sram[:], data) }

func (m *Mapper004) SaveMapperState() MapperState {
	return MapperState{
		Mirror:          uint8(m.mirror),
		PrgBankMode:     uint8(m.prgMode),
		ChrBankMode:     uint8(m.chrMode),
		Bank:            m.bank,
		Current:         m.current,
		RAMWriteEnabled: m.ramWriteEnabled,
		RAMEnabled:      m.ramEnabled,
		IRQLatch:        m.irqLatch,
		IRQCounter:      m.irqCounter,
		IRQEnabled:      m.irqEnabled,
		IRQPendingFlag:  m.irqPending,
		LastA12:         m.lastA12,
	}
}

func (m *Mapper004) LoadMapperState(s MapperState) {
	m.mirror = MirrorMode(s.Mirror)
	m.prgMode = prgBankMode4(s.PrgBankMode)
	m.chrMode = chrBankMode4(s.ChrBankMode)
	m.bank = s.Bank
	m.current = s.Current
	m.ramWriteEnabled = s.RAMWriteEnabled
	m.ramEnabled = s.RAMEnabled
	m.irqLatch = s.IRQLatch
	m.irqCounter = s.IRQCounter
	m.irqEnabled = s.IRQEnabled
	m.irqPending = s.IRQPendingFlag
	m.lastA12 = s.LastA12
}
