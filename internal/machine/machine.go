// Package machine is the host-facing API for embedding the emulator: load a
// ROM, step it one frame at a time, feed it controller input, and pull out
// the video/audio buffers and save state. internal/app and cmd/gones build
// on top of this instead of driving internal/bus directly.
package machine

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"gones/internal/bus"
	"gones/internal/cartridge"
	"gones/internal/input"
)

// Machine wraps a system bus with the loaded-ROM bookkeeping needed for
// save states and battery persistence.
type Machine struct {
	bus     *bus.Bus
	romData []byte
}

// New creates a machine with no cartridge loaded, wired for the given audio
// sample rate.
func New(sampleFrequency int) *Machine {
	b := bus.New()
	b.SetAudioSampleRate(sampleFrequency)
	return &Machine{bus: b}
}

// LoadROM parses an iNES image and installs it as the running cartridge,
// performing a cold power-on.
func (m *Machine) LoadROM(data []byte) error {
	cart, err := cartridge.LoadFromReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("machine: load ROM: %w", err)
	}
	m.bus.LoadCartridge(cart)
	m.romData = append([]byte(nil), data...)
	return nil
}

// StepFrame runs the emulator forward at least one NTSC frame of CPU cycles;
// it stops on an instruction boundary, so it may run a few cycles past.
func (m *Machine) StepFrame() {
	m.bus.Frame()
}

// Reset performs a warm reset, equivalent to pressing the console's reset
// button.
func (m *Machine) Reset() {
	m.bus.Reset()
}

// PressButton marks a controller button as held down.
func (m *Machine) PressButton(port int, bit input.Button) {
	m.bus.SetControllerButton(port, bit, true)
}

// ReleaseButton marks a controller button as released.
func (m *Machine) ReleaseButton(port int, bit input.Button) {
	m.bus.SetControllerButton(port, bit, false)
}

// ImageBuffer returns the current 256x240 RGBA frame, row-major.
func (m *Machine) ImageBuffer() []byte {
	return m.bus.ImageBuffer()
}

// AudioBuffer returns the pending audio samples generated since the last call.
func (m *Machine) AudioBuffer() []float32 {
	return m.bus.AudioBuffer()
}

// AudioBufferLen reports how many pending audio samples were queued. It reads
// them through AudioBuffer, so the queue is drained.
func (m *Machine) AudioBufferLen() int {
	return len(m.bus.AudioBuffer())
}

// Palettes returns the 32-byte palette RAM contents.
func (m *Machine) Palettes() [32]uint8 {
	return m.bus.PPU.Palettes()
}

// ChrBank returns a copy of 1KB pattern-table bank i (0-7).
func (m *Machine) ChrBank(i int) []byte {
	return m.bus.PPU.ChrBank(i)
}

// NametableBank returns a copy of resolved 1KB nametable bank i (0-3).
func (m *Machine) NametableBank(i int) []byte {
	return m.bus.PPU.NametableBank(i)
}

// ObjectAttributeMemory returns a copy of primary OAM.
func (m *Machine) ObjectAttributeMemory() [256]uint8 {
	return m.bus.PPU.ObjectAttributeMemory()
}

// TallSpritesEnabled reports whether PPUCTRL selected 8x16 sprites.
func (m *Machine) TallSpritesEnabled() bool {
	return m.bus.PPU.TallSpritesEnabled()
}

// BackgroundCHRBank reports which pattern table background tiles are
// currently fetched from.
func (m *Machine) BackgroundCHRBank() uint16 {
	return m.bus.PPU.BackgroundCHRBank()
}

// SaveBattery returns the loaded cartridge's battery-backed PRG RAM, or nil
// if there is no cartridge or it has no battery.
func (m *Machine) SaveBattery() []byte {
	return m.bus.SaveBattery()
}

// LoadBattery restores previously saved battery-backed PRG RAM.
func (m *Machine) LoadBattery(data []byte) error {
	if m.bus.Cartridge == nil {
		return fmt.Errorf("machine: load battery: no cartridge loaded")
	}
	m.bus.LoadBattery(data)
	return nil
}

// snapshot is the gob-encoded payload behind SaveState/LoadState. It embeds
// the ROM image itself so a state can be restored into a freshly constructed
// Machine that hasn't called LoadROM yet.
type snapshot struct {
	ROMData []byte
	Bus     bus.State
}

// SaveState serializes the entire machine (CPU/PPU/APU/memory/cartridge
// registers, plus the loaded ROM image) to a portable byte slice.
func (m *Machine) SaveState() ([]byte, error) {
	if m.bus.Cartridge == nil {
		return nil, fmt.Errorf("machine: save state: no cartridge loaded")
	}
	var buf bytes.Buffer
	snap := snapshot{ROMData: m.romData, Bus: m.bus.Save()}
	if err := gob.NewEncoder(&buf).Encode(&snap); err != nil {
		return nil, fmt.Errorf("machine: save state: %w", err)
	}
	return buf.Bytes(), nil
}

// LoadState restores a snapshot produced by SaveState, reloading the
// embedded ROM image first if this machine doesn't already have one loaded.
func (m *Machine) LoadState(data []byte) error {
	var snap snapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("machine: load state: %w", err)
	}
	if m.bus.Cartridge == nil || !bytes.Equal(m.romData, snap.ROMData) {
		if err := m.LoadROM(snap.ROMData); err != nil {
			return fmt.Errorf("machine: load state: %w", err)
		}
	}
	m.bus.Load(snap.Bus)
	return nil
}
