// Package bus implements the system bus for communication between NES components.
package bus

import (
	"fmt"

	"gones/internal/apu"
	"gones/internal/cartridge"
	"gones/internal/cpu"
	"gones/internal/input"
	"gones/internal/memory"
	"gones/internal/ppu"
)

// Bus connects all NES components together and drives the 1 CPU : 3 PPU : 1
// APU clocking ratio.
type Bus struct {
	CPU       *cpu.CPU
	PPU       *ppu.PPU
	APU       *apu.APU
	Memory    *memory.Memory
	PPUMemory *memory.PPUMemory
	Input     *input.InputState
	Cartridge *cartridge.Cartridge

	totalCycles uint64
	cpuCycles   uint64
	ppuCycles   uint64
	frameCount  uint64

	dmaSuspendCycles uint64
	dmaInProgress    bool
	nmiPending       bool

	cyclesPerFrame uint64

	executionLog   []BusExecutionEvent
	loggingEnabled bool

	memoryWatchpoints map[uint16]uint8
	watchpointLogging bool
}

// New creates a system bus with all components wired together but no
// cartridge loaded.
func New() *Bus {
	bus := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(),
		Input: input.NewInputState(),

		cyclesPerFrame: 89342,

		memoryWatchpoints: make(map[uint16]uint8),
	}

	bus.Memory = memory.New(bus.PPU, bus.APU, nil)
	bus.Memory.SetInputSystem(bus.Input)

	bus.CPU = cpu.New(bus.Memory)

	bus.PPU.SetNMICallback(bus.triggerNMI)
	bus.PPU.SetFrameCompleteCallback(bus.handleFrameComplete)
	bus.Memory.SetDMACallback(bus.TriggerOAMDMA)
	bus.APU.SetStallCallback(bus.CPU.AddStallCycles)
	bus.APU.SetMemoryReader(bus.Memory.Read)

	bus.CPU.Initialize()
	bus.PPU.Reset()
	bus.APU.Reset()
	bus.Input.Reset()

	return bus
}

// Reset performs a warm reset, equivalent to pressing the console's reset
// button: the CPU keeps its registers but re-reads PC from the reset vector,
// while the PPU and APU clear their working state.
func (b *Bus) Reset() {
	b.CPU.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()

	b.totalCycles = 0
	b.cpuCycles = 0
	b.ppuCycles = 0
	b.frameCount = 0
	b.dmaSuspendCycles = 0
	b.dmaInProgress = false
	b.nmiPending = false

	b.executionLog = make([]BusExecutionEvent, 0)
	b.loggingEnabled = false
	b.memoryWatchpoints = make(map[uint16]uint8)
	b.watchpointLogging = false
}

func (b *Bus) triggerNMI() {
	b.nmiPending = true
}

func (b *Bus) handleFrameComplete() {
	b.frameCount = b.PPU.GetFrameCount()
}

// Step executes one CPU instruction (or one DMA-stall cycle) and advances
// the PPU and APU by the matching number of cycles.
func (b *Bus) Step() {
	var cpuCycles uint64

	preFrameCount := b.frameCount
	prePC := b.CPU.PC
	var preOpcode uint8
	if b.Memory != nil {
		preOpcode = b.Memory.Read(prePC)
	}

	if b.dmaSuspendCycles > 0 {
		cpuCycles = 1
		b.dmaSuspendCycles--
		if b.dmaSuspendCycles == 0 {
			b.dmaInProgress = false
		}
	} else {
		if b.nmiPending {
			b.CPU.TriggerNMI()
			b.nmiPending = false
		}
		cpuCycles = b.CPU.Step()
	}

	ppuCyclesToRun := cpuCycles * 3
	for i := uint64(0); i < ppuCyclesToRun; i++ {
		b.PPU.Step()
		b.ppuCycles++
		if b.Cartridge != nil {
			b.Cartridge.Step()
		}
	}

	for i := uint64(0); i < cpuCycles; i++ {
		b.APU.Step()
	}

	if b.APU.IRQPending() {
		b.CPU.TriggerIRQ()
	}
	if b.Cartridge != nil && b.Cartridge.IRQPending() {
		b.CPU.TriggerIRQ()
	}

	b.cpuCycles += cpuCycles
	b.totalCycles += cpuCycles

	if b.watchpointLogging && b.frameCount%300 == 0 {
		b.CheckMemoryWatchpoints()
	}

	if b.loggingEnabled {
		event := BusExecutionEvent{
			StepNumber:    len(b.executionLog) + 1,
			CPUCycles:     b.cpuCycles,
			PPUCycles:     b.cpuCycles * 3,
			FrameCount:    b.frameCount,
			DMAActive:     b.dmaInProgress,
			NMIProcessed:  b.frameCount > preFrameCount,
			PCValue:       prePC,
			InstructionOp: preOpcode,
		}
		b.executionLog = append(b.executionLog, event)
	}
}

// TriggerOAMDMA initiates a 256-byte OAM DMA transfer from the given CPU
// memory page, stalling the CPU for 513 or 514 cycles depending on parity.
func (b *Bus) TriggerOAMDMA(sourcePage uint8) {
	if b.dmaInProgress {
		return
	}

	dmaCycles := uint64(513)
	if b.cpuCycles%2 == 1 {
		dmaCycles = 514
	}

	b.dmaInProgress = true
	b.dmaSuspendCycles = dmaCycles

	sourceAddress := uint16(sourcePage) << 8
	for i := 0; i < 256; i++ {
		data := b.Memory.Read(sourceAddress + uint16(i))
		b.PPU.WriteOAM(uint8(i), data)
	}
}

// LoadCartridge installs a cartridge, rebuilds the CPU/PPU memory maps
// around it, and performs a cold power-on of the CPU.
func (b *Bus) LoadCartridge(cart memory.CartridgeInterface) {
	b.Memory = memory.New(b.PPU, b.APU, cart)
	b.Memory.SetInputSystem(b.Input)

	b.CPU = cpu.New(b.Memory)

	var mirrorMode memory.MirrorMode
	if c, ok := cart.(*cartridge.Cartridge); ok {
		b.Cartridge = c
		switch c.GetMirrorMode() {
		case 0:
			mirrorMode = memory.MirrorHorizontal
		case 1:
			mirrorMode = memory.MirrorVertical
		case 2:
			mirrorMode = memory.MirrorSingleScreen0
		case 3:
			mirrorMode = memory.MirrorSingleScreen1
		case 4:
			mirrorMode = memory.MirrorFourScreen
		default:
			mirrorMode = memory.MirrorHorizontal
		}
	} else {
		mirrorMode = memory.MirrorHorizontal
	}

	ppuMemory := memory.NewPPUMemory(cart, mirrorMode)
	b.PPUMemory = ppuMemory
	b.PPU.SetMemory(ppuMemory)

	b.PPU.SetNMICallback(b.triggerNMI)
	b.Memory.SetDMACallback(b.TriggerOAMDMA)
	b.APU.SetStallCallback(b.CPU.AddStallCycles)
	b.APU.SetMemoryReader(b.Memory.Read)

	b.CPU.Initialize()
}

// Run executes the emulator for a given number of frames.
func (b *Bus) Run(frames int) {
	targetFrames := b.frameCount + uint64(frames)
	for b.frameCount < targetFrames {
		b.Step()
	}
}

// RunCycles executes the emulator for a given number of CPU cycles.
func (b *Bus) RunCycles(cycles uint64) {
	targetCycles := b.cpuCycles + cycles
	for b.cpuCycles < targetCycles {
		b.Step()
	}
}

// GetFrameRate returns the NTSC frame rate.
func (b *Bus) GetFrameRate() float64 {
	cpuFrequency := 1789773.0
	cpuCyclesPerFrame := cpuFrequency / 60.098803
	return cpuFrequency / cpuCyclesPerFrame
}

// ImageBuffer returns the current PPU frame buffer (256x240 RGBA, row-major).
func (b *Bus) ImageBuffer() []uint8 {
	return b.PPU.ImageBuffer()
}

// AudioBuffer returns the pending audio samples from the APU.
func (b *Bus) AudioBuffer() []float32 {
	return b.APU.GetSamples()
}

// SetAudioSampleRate sets the target audio sample rate for the APU.
func (b *Bus) SetAudioSampleRate(rate int) {
	b.APU.SetSampleRate(rate)
}

// GetCycleCount returns the current CPU cycle count.
func (b *Bus) GetCycleCount() uint64 { return b.cpuCycles }

// GetFrameCount returns the current frame count.
func (b *Bus) GetFrameCount() uint64 { return b.frameCount }

// SaveBattery returns the loaded cartridge's battery-backed PRG RAM, or nil
// if there is no cartridge or it has no battery.
func (b *Bus) SaveBattery() []uint8 {
	if b.Cartridge == nil {
		return nil
	}
	return b.Cartridge.SaveBattery()
}

// LoadBattery restores previously saved battery-backed PRG RAM into the
// loaded cartridge.
func (b *Bus) LoadBattery(data []uint8) {
	if b.Cartridge != nil {
		b.Cartridge.LoadBattery(data)
	}
}

// IsDMAInProgress reports whether an OAM DMA transfer is stalling the CPU.
func (b *Bus) IsDMAInProgress() bool { return b.dmaInProgress }

func (b *Bus) isRenderingEnabled() bool {
	return b.PPU.RenderingEnabled()
}

// SetControllerButton sets the state of a single controller button.
func (b *Bus) SetControllerButton(controller int, button input.Button, pressed bool) {
	switch controller {
	case 0, 1:
		b.Input.Controller1.SetButton(button, pressed)
	case 2:
		b.Input.Controller2.SetButton(button, pressed)
	}
}

// SetControllerButtons sets all eight button states for a controller at once.
func (b *Bus) SetControllerButtons(controller int, buttons [8]bool) {
	switch controller {
	case 0, 1:
		b.Input.SetButtons1(buttons)
	case 2:
		b.Input.SetButtons2(buttons)
	}
}

// EnableInputDebug enables debug logging for the input system.
func (b *Bus) EnableInputDebug(enable bool) {
	b.Input.EnableDebug(enable)
}

// GetInputState returns the input state for direct access.
func (b *Bus) GetInputState() *input.InputState {
	return b.Input
}

// Frame steps whole CPU instructions until at least one NTSC frame worth of
// CPU cycles (29781) has elapsed; the last instruction may run a few cycles past it.
func (b *Bus) Frame() {
	targetCycles := b.cpuCycles + 29781
	for b.cpuCycles < targetCycles {
		b.Step()
	}
}

// GetExecutionLog returns the recorded execution trace (see EnableExecutionLogging).
func (b *Bus) GetExecutionLog() []BusExecutionEvent { return b.executionLog }

// EnableExecutionLogging turns on per-step execution trace recording.
func (b *Bus) EnableExecutionLogging() { b.loggingEnabled = true }

// DisableExecutionLogging turns off per-step execution trace recording.
func (b *Bus) DisableExecutionLogging() { b.loggingEnabled = false }

// ClearExecutionLog discards the recorded execution trace.
func (b *Bus) ClearExecutionLog() { b.executionLog = make([]BusExecutionEvent, 0) }

// BusExecutionEvent records one Step() call for test assertions and trace tooling.
type BusExecutionEvent struct {
	StepNumber    int
	CPUCycles     uint64
	PPUCycles     uint64
	FrameCount    uint64
	DMAActive     bool
	NMIProcessed  bool
	PCValue       uint16
	InstructionOp uint8
}

// GetCPUState returns a snapshot of CPU registers and flags for debug tooling.
func (b *Bus) GetCPUState() CPUState {
	return CPUState{
		PC:     b.CPU.PC,
		A:      b.CPU.A,
		X:      b.CPU.X,
		Y:      b.CPU.Y,
		SP:     b.CPU.SP,
		Cycles: b.cpuCycles,
		Flags: CPUFlags{
			N: b.CPU.N,
			V: b.CPU.V,
			B: b.CPU.B,
			D: b.CPU.D,
			I: b.CPU.I,
			Z: b.CPU.Z,
			C: b.CPU.C,
		},
	}
}

// CPUState is a CPU register/flag snapshot for debug tooling.
type CPUState struct {
	PC      uint16
	A, X, Y uint8
	SP      uint8
	Cycles  uint64
	Flags   CPUFlags
}

// CPUFlags is a CPU status flag snapshot for debug tooling.
type CPUFlags struct {
	N, V, B, D, I, Z, C bool
}

// GetPPUState returns a snapshot of PPU dot position and status for debug tooling.
func (b *Bus) GetPPUState() PPUState {
	scanline := int((b.ppuCycles % b.cyclesPerFrame) / 341)
	cycle := int((b.ppuCycles % b.cyclesPerFrame) % 341)

	return PPUState{
		Scanline:    scanline,
		Cycle:       cycle,
		FrameCount:  b.frameCount,
		VBlankFlag:  b.PPU.IsVBlank(),
		RenderingOn: b.isRenderingEnabled(),
	}
}

// PPUState is a PPU dot-position/status snapshot for debug tooling.
type PPUState struct {
	Scanline    int
	Cycle       int
	FrameCount  uint64
	VBlankFlag  bool
	RenderingOn bool
}

// AddMemoryWatchpoint records an address's current value so future changes can be logged.
func (b *Bus) AddMemoryWatchpoint(address uint16) {
	if b.Memory != nil {
		b.memoryWatchpoints[address] = b.Memory.Read(address)
	}
}

// EnableWatchpointLogging enables or disables memory watchpoint change logging.
func (b *Bus) EnableWatchpointLogging(enabled bool) {
	b.watchpointLogging = enabled
}

// CheckMemoryWatchpoints logs any watched address whose value changed since it was added.
func (b *Bus) CheckMemoryWatchpoints() {
	if !b.watchpointLogging || b.Memory == nil {
		return
	}
	for address, previousValue := range b.memoryWatchpoints {
		currentValue := b.Memory.Read(address)
		if currentValue != previousValue {
			fmt.Printf("[MEMORY_WATCH] Frame %d: $%04X changed from $%02X to $%02X\n",
				b.frameCount, address, previousValue, currentValue)
			b.memoryWatchpoints[address] = currentValue
		}
	}
}

// EnableCPUDebug enables or disables CPU instruction logging and infinite-loop detection.
func (b *Bus) EnableCPUDebug(enable bool) {
	if b.CPU != nil {
		b.CPU.EnableDebugLogging(enable)
		b.CPU.EnableLoopDetection(enable)
	}
}

// State is a gob-encodable snapshot of the whole machine: every component's
// architectural state plus the bus's own cycle/frame counters. A cartridge
// must already be loaded before Load is called, since Bus does not persist
// ROM contents itself (the caller re-supplies the ROM via LoadCartridge).
type State struct {
	CPU       cpu.State
	PPU       ppu.State
	APU       apu.State
	Memory    memory.State
	PPUMemory memory.PPUState
	Cartridge cartridge.State

	TotalCycles uint64
	CPUCycles   uint64
	PPUCycles   uint64
	FrameCount  uint64

	DMASuspendCycles uint64
	DMAInProgress    bool
	NMIPending       bool
}

// Save captures a full-fidelity snapshot of the running machine.
func (b *Bus) Save() State {
	s := State{
		CPU:    b.CPU.Save(),
		PPU:    b.PPU.Save(),
		APU:    b.APU.Save(),
		Memory: b.Memory.Save(),

		TotalCycles: b.totalCycles,
		CPUCycles:   b.cpuCycles,
		PPUCycles:   b.ppuCycles,
		FrameCount:  b.frameCount,

		DMASuspendCycles: b.dmaSuspendCycles,
		DMAInProgress:    b.dmaInProgress,
		NMIPending:       b.nmiPending,
	}
	if b.PPUMemory != nil {
		s.PPUMemory = b.PPUMemory.Save()
	}
	if b.Cartridge != nil {
		s.Cartridge = b.Cartridge.Save()
	}
	return s
}

// Load restores a previously captured snapshot onto an already-running
// machine (same cartridge already loaded via LoadCartridge).
func (b *Bus) Load(s State) {
	b.CPU.Load(s.CPU)
	b.PPU.Load(s.PPU)
	b.APU.Load(s.APU)
	b.Memory.Load(s.Memory)
	if b.PPUMemory != nil {
		b.PPUMemory.Load(s.PPUMemory)
	}
	if b.Cartridge != nil {
		b.Cartridge.Load(s.Cartridge)
	}

	b.totalCycles = s.TotalCycles
	b.cpuCycles = s.CPUCycles
	b.ppuCycles = s.PPUCycles
	b.frameCount = s.FrameCount

	b.dmaSuspendCycles = s.DMASuspendCycles
	b.dmaInProgress = s.DMAInProgress
	b.nmiPending = s.NMIPending
}
