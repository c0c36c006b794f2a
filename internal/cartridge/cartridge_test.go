package cartridge

import (
	"bytes"
	"testing"
)

// buildINES assembles a minimal iNES image: 16-byte header, PRG ROM,
// CHR ROM (no trainer).
func buildINES(prgBanks, chrBanks uint8, flags6, flags7 uint8, prgFill uint8) []byte {
	return buildINESWithPRGRAM(prgBanks, chrBanks, flags6, flags7, 0, prgFill)
}

// buildINESWithPRGRAM is buildINES plus an explicit header byte 8 (PRG RAM
// size in 8KB units).
func buildINESWithPRGRAM(prgBanks, chrBanks uint8, flags6, flags7, prgRAMUnits uint8, prgFill uint8) []byte {
	header := []byte{'N', 'E', 'S', 0x1A, prgBanks, chrBanks, flags6, flags7, prgRAMUnits, 0, 0, 0, 0, 0, 0, 0}
	prg := bytes.Repeat([]byte{prgFill}, int(prgBanks)*16384)
	chr := bytes.Repeat([]byte{0}, int(chrBanks)*8192)
	buf := append(header, prg...)
	buf = append(buf, chr...)
	return buf
}

func TestLoadFromReaderDefaultsPRGRAMTo16KWhenHeaderByteIsZero(t *testing.T) {
	data := buildINESWithPRGRAM(1, 1, 0, 0, 0, 0xAA)
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cart.sram) != defaultPRGRAMSize {
		t.Fatalf("expected %d bytes of PRG RAM, got %d", defaultPRGRAMSize, len(cart.sram))
	}
}

func TestLoadFromReaderSizesPRGRAMFromHeaderByte8(t *testing.T) {
	data := buildINESWithPRGRAM(1, 1, 0, 0, 2, 0xAA) // 2 * 8KB = 16KB
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := 2 * prgRAMUnitSize
	if len(cart.sram) != want {
		t.Fatalf("expected %d bytes of PRG RAM, got %d", want, len(cart.sram))
	}
}

func TestLoadFromReaderRejectsBadMagic(t *testing.T) {
	data := buildINES(1, 1, 0, 0, 0xAA)
	data[0] = 'X'
	if _, err := LoadFromReader(bytes.NewReader(data)); err == nil {
		t.Fatalf("expected error for bad magic")
	}
}

func TestLoadFromReaderRejectsUnsupportedMapper(t *testing.T) {
	data := buildINES(1, 1, 0xF0, 0xF0, 0xAA) // mapper 255
	if _, err := LoadFromReader(bytes.NewReader(data)); err == nil {
		t.Fatalf("expected error for unsupported mapper")
	}
}

func TestLoadFromReaderIgnoresMapperHighNibbleWhenPaddingDirty(t *testing.T) {
	data := buildINES(1, 1, 0x10, 0x10, 0xAA) // low nibble mapper 1, high nibble would add mapper 16 -> 17
	data[12] = 0x7F                           // dirty padding byte
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.MapperID() != 1 {
		t.Fatalf("expected mapper 1 (high nibble ignored), got %d", cart.MapperID())
	}
}

func TestLoadFromReaderUsesMapperHighNibbleWhenPaddingClean(t *testing.T) {
	data := buildINES(1, 1, 0x40, 0xB0, 0xAA) // low nibble 4 from Flags6, high nibble 0xB0 from Flags7 -> mapper 180
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.MapperID() != 180 {
		t.Fatalf("expected mapper 180, got %d", cart.MapperID())
	}
}

func TestLoadFromReaderZeroCHRAllocatesRAM(t *testing.T) {
	data := buildINES(1, 0, 0, 0, 0xAA)
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cart.WriteCHR(0x0000, 0x42)
	if got := cart.ReadCHR(0x0000); got != 0x42 {
		t.Fatalf("expected CHR RAM to be writable, got %02X", got)
	}
}

func TestLoadFromReaderVerticalMirroring(t *testing.T) {
	data := buildINES(1, 1, 0x01, 0, 0xAA)
	cart, err := LoadFromReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cart.GetMirrorMode() != MirrorVertical {
		t.Fatalf("expected vertical mirroring")
	}
}

func TestLoadFromReaderSkipsTrainer(t *testing.T) {
	header := []byte{'N', 'E', 'S', 0x1A, 1, 1, 0x04, 0, 0, 0, 0, 0, 0, 0, 0, 0}
	trainer := bytes.Repeat([]byte{0xFF}, 512)
	prg := bytes.Repeat([]byte{0xAA}, 16384)
	chr := bytes.Repeat([]byte{0}, 8192)
	buf := append(header, trainer...)
	buf = append(buf, prg...)
	buf = append(buf, chr...)

	cart, err := LoadFromReader(bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cart.ReadPRG(0x8000); got != 0xAA {
		t.Fatalf("expected PRG ROM to start right after trainer, got %02X", got)
	}
}
