// Package apu implements the Audio Processing Unit for the NES.
package apu

// maxBufferedSamples bounds sample buffer growth to roughly one frame's
// worth of audio at 44.1kHz/60fps so a caller that falls behind on draining
// GetSamples never accumulates unbounded memory.
const maxBufferedSamples = 745

// APU represents the NES Audio Processing Unit.
type APU struct {
	pulse1   PulseChannel
	pulse2   PulseChannel
	triangle TriangleChannel
	noise    NoiseChannel
	dmc      DMCChannel

	frameCounter     uint16
	frameMode        bool
	frameIRQEnable   bool
	frameCounterStep uint8
	frameIRQFlag     bool

	channelEnable [5]bool

	sampleBuffer     []float32
	sampleRate       int
	cpuFrequency     float64
	cycleAccumulator float64

	// filters is the three-stage high-pass/high-pass/low-pass RC chain the
	// mixed signal is run through before it's buffered; see filter.go.
	filters [3]firstOrderFilter

	cycles uint64

	// readMemory fetches a byte from CPU address space for DMC sample
	// playback; stallCPU accounts the CPU cycles the DMC fetch steals.
	readMemory func(uint16) uint8
	stallCPU   func(uint64)
}

// PulseChannel represents a pulse wave channel.
type PulseChannel struct {
	dutyCycle       uint8
	envelopeLoop    bool
	envelopeDisable bool
	volume          uint8

	sweepEnable  bool
	sweepPeriod  uint8
	sweepNegate  bool
	sweepShift   uint8
	sweepReload  bool
	sweepCounter uint8

	timer        uint16
	timerCounter uint16

	lengthCounter uint8
	lengthHalt    bool

	envelopeStart   bool
	envelopeCounter uint8
	envelopeDivider uint8

	dutyIndex    uint8
	output       uint8
	sequencerPos uint8
}

// TriangleChannel represents the triangle wave channel.
type TriangleChannel struct {
	lengthCounterHalt bool
	linearCounterLoad uint8

	timer        uint16
	timerCounter uint16

	lengthCounter uint8

	linearCounter       uint8
	linearCounterReload bool

	sequencerPos uint8
	output       uint8
}

// NoiseChannel represents the noise channel.
type NoiseChannel struct {
	envelopeLoop    bool
	envelopeDisable bool
	volume          uint8

	mode         bool
	periodIndex  uint8
	timerCounter uint16

	lengthCounter uint8
	lengthHalt    bool

	envelopeStart   bool
	envelopeCounter uint8
	envelopeDivider uint8

	shiftRegister uint16
	output        uint8
}

// DMCChannel represents the delta modulation (sample playback) channel.
type DMCChannel struct {
	irqEnable bool
	loop      bool
	rateIndex uint8

	outputLevel uint8

	sampleAddress uint16
	sampleLength  uint16

	timerCounter      uint16
	sampleBuffer      uint8
	sampleBufferBits  uint8
	sampleBufferEmpty bool
	bytesRemaining    uint16
	currentAddress    uint16

	irqFlag bool

	output uint8
}

// New creates a new APU instance.
func New() *APU {
	apu := &APU{
		sampleBuffer:   make([]float32, 0, maxBufferedSamples),
		sampleRate:     44100,
		cpuFrequency:   1789773.0,
		frameMode:      false,
		frameIRQEnable: true,
	}
	apu.noise.shiftRegister = 1
	apu.initFilters(float64(apu.sampleRate))
	return apu
}

// SetMemoryReader attaches the CPU-side memory read used for DMC sample
// fetches ($C000-$FFFF sample data).
func (apu *APU) SetMemoryReader(reader func(uint16) uint8) {
	apu.readMemory = reader
}

// SetStallCallback attaches the CPU cycle-stall hook used to account for the
// 4-cycle bus steal a DMC sample fetch performs.
func (apu *APU) SetStallCallback(stall func(uint64)) {
	apu.stallCPU = stall
}

// Reset resets the APU to its initial state.
func (apu *APU) Reset() {
	apu.pulse1 = PulseChannel{}
	apu.pulse2 = PulseChannel{}
	apu.triangle = TriangleChannel{}
	apu.noise = NoiseChannel{shiftRegister: 1}
	apu.dmc = DMCChannel{}

	apu.frameCounter = 0
	apu.frameCounterStep = 0
	apu.frameMode = false
	apu.frameIRQEnable = true
	apu.frameIRQFlag = false

	for i := range apu.channelEnable {
		apu.channelEnable[i] = false
	}

	apu.cycles = 0
	apu.cycleAccumulator = 0
	apu.sampleBuffer = apu.sampleBuffer[:0]
	apu.initFilters(float64(apu.sampleRate))
}

// Step advances the APU by one CPU cycle.
func (apu *APU) Step() {
	apu.cycles++
	apu.stepFrameCounter()
	apu.stepChannelTimers()
	apu.generateSample()
}

// IRQPending reports whether the frame counter or DMC channel is currently
// asserting the shared CPU IRQ line.
func (apu *APU) IRQPending() bool {
	return apu.frameIRQFlag || apu.dmc.irqFlag
}

func (apu *APU) stepFrameCounter() {
	apu.frameCounter++

	if apu.frameMode {
		switch apu.frameCounter {
		case 7457:
			apu.clockEnvelopeAndLinear()
		case 14913:
			apu.clockEnvelopeAndLinear()
			apu.clockLengthAndSweep()
		case 22371:
			apu.clockEnvelopeAndLinear()
		case 37281:
			apu.clockEnvelopeAndLinear()
			apu.clockLengthAndSweep()
			apu.frameCounter = 0
			apu.frameCounterStep = 0
		}
	} else {
		switch apu.frameCounter {
		case 7457:
			apu.clockEnvelopeAndLinear()
		case 14913:
			apu.clockEnvelopeAndLinear()
			apu.clockLengthAndSweep()
		case 22371:
			apu.clockEnvelopeAndLinear()
		case 29829:
			apu.clockEnvelopeAndLinear()
			apu.clockLengthAndSweep()
		case 29830:
			if apu.frameIRQEnable {
				apu.frameIRQFlag = true
			}
			apu.frameCounter = 0
			apu.frameCounterStep = 0
		}
	}
}

func (apu *APU) clockEnvelopeAndLinear() {
	apu.clockPulseEnvelope(&apu.pulse1)
	apu.clockPulseEnvelope(&apu.pulse2)
	apu.clockNoiseEnvelope(&apu.noise)
	apu.clockTriangleLinear(&apu.triangle)
}

func (apu *APU) clockLengthAndSweep() {
	apu.clockPulseLength(&apu.pulse1)
	apu.clockPulseSweep(&apu.pulse1, true)
	apu.clockPulseLength(&apu.pulse2)
	apu.clockPulseSweep(&apu.pulse2, false)
	apu.clockTriangleLength(&apu.triangle)
	apu.clockNoiseLength(&apu.noise)
}

func (apu *APU) stepChannelTimers() {
	if apu.channelEnable[0] {
		apu.stepPulseTimer(&apu.pulse1)
	}
	if apu.channelEnable[1] {
		apu.stepPulseTimer(&apu.pulse2)
	}
	if apu.channelEnable[2] {
		apu.stepTriangleTimer(&apu.triangle)
	}
	if apu.channelEnable[3] {
		apu.stepNoiseTimer(&apu.noise)
	}
	if apu.channelEnable[4] {
		apu.stepDMCTimer(&apu.dmc)
	}
}

func (apu *APU) generateSample() {
	apu.cycleAccumulator += float64(apu.sampleRate) / apu.cpuFrequency

	if apu.cycleAccumulator >= 1.0 {
		apu.cycleAccumulator -= 1.0

		pulse1Out := apu.getPulseOutput(&apu.pulse1)
		pulse2Out := apu.getPulseOutput(&apu.pulse2)
		triangleOut := apu.getTriangleOutput(&apu.triangle)
		noiseOut := apu.getNoiseOutput(&apu.noise)
		dmcOut := apu.getDMCOutput(&apu.dmc)

		sample := apu.mixChannels(pulse1Out, pulse2Out, triangleOut, noiseOut, dmcOut)
		sample = float32(apu.applyFilters(float64(sample)))

		if len(apu.sampleBuffer) < maxBufferedSamples {
			apu.sampleBuffer = append(apu.sampleBuffer, sample)
		}
	}
}

// WriteRegister writes to an APU register.
func (apu *APU) WriteRegister(address uint16, value uint8) {
	switch address {
	case 0x4000:
		apu.writePulseControl(&apu.pulse1, value)
	case 0x4001:
		apu.writePulseSweep(&apu.pulse1, value)
	case 0x4002:
		apu.writePulseTimerLow(&apu.pulse1, value)
	case 0x4003:
		apu.writePulseTimerHigh(&apu.pulse1, value)

	case 0x4004:
		apu.writePulseControl(&apu.pulse2, value)
	case 0x4005:
		apu.writePulseSweep(&apu.pulse2, value)
	case 0x4006:
		apu.writePulseTimerLow(&apu.pulse2, value)
	case 0x4007:
		apu.writePulseTimerHigh(&apu.pulse2, value)

	case 0x4008:
		apu.writeTriangleControl(value)
	case 0x400A:
		apu.writeTriangleTimerLow(value)
	case 0x400B:
		apu.writeTriangleTimerHigh(value)

	case 0x400C:
		apu.writeNoiseControl(value)
	case 0x400E:
		apu.writeNoisePeriod(value)
	case 0x400F:
		apu.writeNoiseLength(value)

	case 0x4010:
		apu.writeDMCControl(value)
	case 0x4011:
		apu.writeDMCDirectLoad(value)
	case 0x4012:
		apu.writeDMCSampleAddress(value)
	case 0x4013:
		apu.writeDMCSampleLength(value)

	case 0x4015:
		apu.writeChannelEnable(value)
	case 0x4017:
		apu.writeFrameCounter(value)
	}
}

// GetSamples drains and returns the buffered audio samples.
func (apu *APU) GetSamples() []float32 {
	samples := make([]float32, len(apu.sampleBuffer))
	copy(samples, apu.sampleBuffer)
	apu.sampleBuffer = apu.sampleBuffer[:0]
	return samples
}

// ReadStatus reads the APU status register ($4015).
func (apu *APU) ReadStatus() uint8 {
	status := uint8(0)

	if apu.pulse1.lengthCounter > 0 {
		status |= 0x01
	}
	if apu.pulse2.lengthCounter > 0 {
		status |= 0x02
	}
	if apu.triangle.lengthCounter > 0 {
		status |= 0x04
	}
	if apu.noise.lengthCounter > 0 {
		status |= 0x08
	}
	if apu.dmc.bytesRemaining > 0 {
		status |= 0x10
	}
	if apu.frameIRQFlag {
		status |= 0x40
	}
	if apu.dmc.irqFlag {
		status |= 0x80
	}

	apu.frameIRQFlag = false

	return status
}

var lengthTable = [32]uint8{
	10, 254, 20, 2, 40, 4, 80, 6,
	160, 8, 60, 10, 14, 12, 26, 14,
	12, 16, 24, 8, 48, 6, 96, 4,
	192, 2, 72, 16, 28, 32, 52, 2,
}

var dutyTable = [4][8]uint8{
	{0, 1, 0, 0, 0, 0, 0, 0},
	{0, 1, 1, 0, 0, 0, 0, 0},
	{0, 1, 1, 1, 1, 0, 0, 0},
	{1, 0, 0, 1, 1, 1, 1, 1},
}

var triangleTable = [32]uint8{
	15, 14, 13, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1, 0,
	0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15,
}

var noisePeriodTable = [16]uint16{
	4, 8, 16, 32, 64, 96, 128, 160,
	202, 254, 380, 508, 762, 1016, 2034, 4068,
}

var dmcRateTable = [16]uint16{
	428, 380, 340, 320, 286, 254, 226, 214,
	190, 160, 142, 128, 106, 84, 72, 54,
}

// pulseTable and tndTable are the canonical non-linear NES mixer lookup
// tables: pulse_table[n] = 95.52/(8128.0/n+100.0), tnd_table[n] =
// 163.67/(24329.0/n+100.0). Precomputing them avoids a division per channel
// combination at mix time and matches hardware's non-linear summing exactly,
// rather than the linear per-channel additive approximation.
var pulseTable [31]float32
var tndTable [203]float32

func init() {
	for n := 1; n < len(pulseTable); n++ {
		pulseTable[n] = float32(95.52 / (8128.0/float64(n) + 100.0))
	}
	for n := 1; n < len(tndTable); n++ {
		tndTable[n] = float32(163.67 / (24329.0/float64(n) + 100.0))
	}
}

func (apu *APU) writePulseControl(pulse *PulseChannel, value uint8) {
	pulse.dutyCycle = (value >> 6) & 0x03
	pulse.envelopeLoop = (value & 0x20) != 0
	pulse.lengthHalt = pulse.envelopeLoop
	pulse.envelopeDisable = (value & 0x10) != 0
	pulse.volume = value & 0x0F
	pulse.envelopeStart = true
}

func (apu *APU) writePulseSweep(pulse *PulseChannel, value uint8) {
	pulse.sweepEnable = (value & 0x80) != 0
	pulse.sweepPeriod = (value >> 4) & 0x07
	pulse.sweepNegate = (value & 0x08) != 0
	pulse.sweepShift = value & 0x07
	pulse.sweepReload = true
}

func (apu *APU) writePulseTimerLow(pulse *PulseChannel, value uint8) {
	pulse.timer = (pulse.timer & 0xFF00) | uint16(value)
}

func (apu *APU) writePulseTimerHigh(pulse *PulseChannel, value uint8) {
	pulse.timer = (pulse.timer & 0x00FF) | (uint16(value&0x07) << 8)
	pulse.lengthCounter = lengthTable[(value>>3)&0x1F]
	pulse.envelopeStart = true
	pulse.dutyIndex = 0
}

func (apu *APU) stepPulseTimer(pulse *PulseChannel) {
	if pulse.timerCounter == 0 {
		pulse.timerCounter = pulse.timer
		pulse.sequencerPos = (pulse.sequencerPos + 1) & 0x07
	} else {
		pulse.timerCounter--
	}
}

func (apu *APU) clockPulseEnvelope(pulse *PulseChannel) {
	if pulse.envelopeStart {
		pulse.envelopeStart = false
		pulse.envelopeCounter = 15
		pulse.envelopeDivider = pulse.volume
	} else if pulse.envelopeDivider == 0 {
		pulse.envelopeDivider = pulse.volume
		if pulse.envelopeCounter > 0 {
			pulse.envelopeCounter--
		} else if pulse.envelopeLoop {
			pulse.envelopeCounter = 15
		}
	} else {
		pulse.envelopeDivider--
	}
}

func (apu *APU) clockPulseLength(pulse *PulseChannel) {
	if !pulse.lengthHalt && pulse.lengthCounter > 0 {
		pulse.lengthCounter--
	}
}

// clockPulseSweep clocks the pulse sweep unit. Pulse 1's negate path
// subtracts an extra 1 (one's complement) while Pulse 2's does not (two's
// complement) — this asymmetry is a hardware quirk, reproduced here exactly
// rather than "fixed" to a symmetric formula.
func (apu *APU) clockPulseSweep(pulse *PulseChannel, isPulse1 bool) {
	if pulse.sweepCounter == 0 && pulse.sweepEnable && pulse.sweepShift > 0 {
		changeAmount := pulse.timer >> pulse.sweepShift
		if pulse.sweepNegate {
			if isPulse1 {
				pulse.timer = pulse.timer - changeAmount - 1
			} else {
				pulse.timer = pulse.timer - changeAmount
			}
		} else {
			pulse.timer = pulse.timer + changeAmount
		}
	}

	if pulse.sweepCounter == 0 || pulse.sweepReload {
		pulse.sweepCounter = pulse.sweepPeriod
		pulse.sweepReload = false
	} else {
		pulse.sweepCounter--
	}
}

func (apu *APU) getPulseOutput(pulse *PulseChannel) uint8 {
	if pulse.lengthCounter == 0 || pulse.timer < 8 || pulse.timer > 0x7FF {
		return 0
	}
	if dutyTable[pulse.dutyCycle][pulse.sequencerPos] == 0 {
		return 0
	}
	if pulse.envelopeDisable {
		return pulse.volume
	}
	return pulse.envelopeCounter
}

func (apu *APU) writeTriangleControl(value uint8) {
	apu.triangle.lengthCounterHalt = (value & 0x80) != 0
	apu.triangle.linearCounterLoad = value & 0x7F
	apu.triangle.linearCounterReload = true
}

func (apu *APU) writeTriangleTimerLow(value uint8) {
	apu.triangle.timer = (apu.triangle.timer & 0xFF00) | uint16(value)
}

func (apu *APU) writeTriangleTimerHigh(value uint8) {
	apu.triangle.timer = (apu.triangle.timer & 0x00FF) | (uint16(value&0x07) << 8)
	apu.triangle.lengthCounter = lengthTable[(value>>3)&0x1F]
	apu.triangle.linearCounterReload = true
}

func (apu *APU) stepTriangleTimer(triangle *TriangleChannel) {
	if triangle.timerCounter == 0 {
		triangle.timerCounter = triangle.timer
		if triangle.lengthCounter > 0 && triangle.linearCounter > 0 {
			triangle.sequencerPos = (triangle.sequencerPos + 1) & 0x1F
		}
	} else {
		triangle.timerCounter--
	}
}

func (apu *APU) clockTriangleLinear(triangle *TriangleChannel) {
	if triangle.linearCounterReload {
		triangle.linearCounter = triangle.linearCounterLoad
	} else if triangle.linearCounter > 0 {
		triangle.linearCounter--
	}

	if !triangle.lengthCounterHalt {
		triangle.linearCounterReload = false
	}
}

func (apu *APU) clockTriangleLength(triangle *TriangleChannel) {
	if !triangle.lengthCounterHalt && triangle.lengthCounter > 0 {
		triangle.lengthCounter--
	}
}

func (apu *APU) getTriangleOutput(triangle *TriangleChannel) uint8 {
	if triangle.lengthCounter == 0 || triangle.linearCounter == 0 || triangle.timer < 2 {
		return 0
	}
	return triangleTable[triangle.sequencerPos]
}

func (apu *APU) writeNoiseControl(value uint8) {
	apu.noise.envelopeLoop = (value & 0x20) != 0
	apu.noise.lengthHalt = apu.noise.envelopeLoop
	apu.noise.envelopeDisable = (value & 0x10) != 0
	apu.noise.volume = value & 0x0F
	apu.noise.envelopeStart = true
}

func (apu *APU) writeNoisePeriod(value uint8) {
	apu.noise.mode = (value & 0x80) != 0
	apu.noise.periodIndex = value & 0x0F
}

func (apu *APU) writeNoiseLength(value uint8) {
	apu.noise.lengthCounter = lengthTable[(value>>3)&0x1F]
	apu.noise.envelopeStart = true
}

func (apu *APU) stepNoiseTimer(noise *NoiseChannel) {
	if noise.timerCounter == 0 {
		noise.timerCounter = noisePeriodTable[noise.periodIndex]

		feedback := noise.shiftRegister & 0x01
		if noise.mode {
			feedback ^= (noise.shiftRegister >> 6) & 0x01
		} else {
			feedback ^= (noise.shiftRegister >> 1) & 0x01
		}

		noise.shiftRegister = (noise.shiftRegister >> 1) | (feedback << 14)
	} else {
		noise.timerCounter--
	}
}

func (apu *APU) clockNoiseEnvelope(noise *NoiseChannel) {
	if noise.envelopeStart {
		noise.envelopeStart = false
		noise.envelopeCounter = 15
		noise.envelopeDivider = noise.volume
	} else if noise.envelopeDivider == 0 {
		noise.envelopeDivider = noise.volume
		if noise.envelopeCounter > 0 {
			noise.envelopeCounter--
		} else if noise.envelopeLoop {
			noise.envelopeCounter = 15
		}
	} else {
		noise.envelopeDivider--
	}
}

func (apu *APU) clockNoiseLength(noise *NoiseChannel) {
	if !noise.lengthHalt && noise.lengthCounter > 0 {
		noise.lengthCounter--
	}
}

func (apu *APU) getNoiseOutput(noise *NoiseChannel) uint8 {
	if noise.lengthCounter == 0 || (noise.shiftRegister&0x01) != 0 {
		return 0
	}
	if noise.envelopeDisable {
		return noise.volume
	}
	return noise.envelopeCounter
}

func (apu *APU) writeDMCControl(value uint8) {
	apu.dmc.irqEnable = (value & 0x80) != 0
	apu.dmc.loop = (value & 0x40) != 0
	apu.dmc.rateIndex = value & 0x0F

	if !apu.dmc.irqEnable {
		apu.dmc.irqFlag = false
	}
}

func (apu *APU) writeDMCDirectLoad(value uint8) {
	apu.dmc.outputLevel = value & 0x7F
}

func (apu *APU) writeDMCSampleAddress(value uint8) {
	apu.dmc.sampleAddress = 0xC000 + (uint16(value) << 6)
}

func (apu *APU) writeDMCSampleLength(value uint8) {
	apu.dmc.sampleLength = (uint16(value) << 4) + 1
}

// stepDMCTimer steps the DMC channel timer. When the sample buffer empties
// and bytes remain, it fetches the next byte directly from CPU memory and
// accounts for the 4-cycle bus-steal stall that fetch imposes on the CPU.
func (apu *APU) stepDMCTimer(dmc *DMCChannel) {
	if dmc.timerCounter == 0 {
		dmc.timerCounter = dmcRateTable[dmc.rateIndex]

		if dmc.sampleBufferEmpty && dmc.bytesRemaining > 0 {
			apu.fetchDMCSample(dmc)
		}

		if !dmc.sampleBufferEmpty {
			if (dmc.sampleBuffer & 0x01) != 0 {
				if dmc.outputLevel <= 125 {
					dmc.outputLevel += 2
				}
			} else {
				if dmc.outputLevel >= 2 {
					dmc.outputLevel -= 2
				}
			}

			dmc.sampleBuffer >>= 1
			dmc.sampleBufferBits--
			if dmc.sampleBufferBits == 0 {
				dmc.sampleBufferEmpty = true
			}
		}
	} else {
		dmc.timerCounter--
	}
}

func (apu *APU) fetchDMCSample(dmc *DMCChannel) {
	if apu.readMemory != nil {
		dmc.sampleBuffer = apu.readMemory(dmc.currentAddress)
	}
	if apu.stallCPU != nil {
		apu.stallCPU(4)
	}

	dmc.sampleBufferBits = 8
	dmc.sampleBufferEmpty = false

	dmc.currentAddress++
	if dmc.currentAddress == 0 {
		dmc.currentAddress = 0x8000
	}
	dmc.bytesRemaining--

	if dmc.bytesRemaining == 0 {
		if dmc.loop {
			dmc.currentAddress = dmc.sampleAddress
			dmc.bytesRemaining = dmc.sampleLength
		} else if dmc.irqEnable {
			dmc.irqFlag = true
		}
	}
}

func (apu *APU) getDMCOutput(dmc *DMCChannel) uint8 {
	return dmc.outputLevel
}

func (apu *APU) writeChannelEnable(value uint8) {
	apu.channelEnable[0] = (value & 0x01) != 0
	apu.channelEnable[1] = (value & 0x02) != 0
	apu.channelEnable[2] = (value & 0x04) != 0
	apu.channelEnable[3] = (value & 0x08) != 0
	apu.channelEnable[4] = (value & 0x10) != 0

	if !apu.channelEnable[0] {
		apu.pulse1.lengthCounter = 0
	}
	if !apu.channelEnable[1] {
		apu.pulse2.lengthCounter = 0
	}
	if !apu.channelEnable[2] {
		apu.triangle.lengthCounter = 0
	}
	if !apu.channelEnable[3] {
		apu.noise.lengthCounter = 0
	}
	if !apu.channelEnable[4] {
		apu.dmc.bytesRemaining = 0
	} else if apu.dmc.bytesRemaining == 0 {
		apu.dmc.currentAddress = apu.dmc.sampleAddress
		apu.dmc.bytesRemaining = apu.dmc.sampleLength
	}

	apu.dmc.irqFlag = false
}

func (apu *APU) writeFrameCounter(value uint8) {
	apu.frameMode = (value & 0x80) != 0
	apu.frameIRQEnable = (value & 0x40) == 0

	if !apu.frameIRQEnable {
		apu.frameIRQFlag = false
	}

	apu.frameCounter = 0
	apu.frameCounterStep = 0

	if apu.frameMode {
		apu.clockEnvelopeAndLinear()
		apu.clockLengthAndSweep()
	}
}

// mixChannels applies the canonical non-linear NES mixer lookup tables. The
// result is rescaled to [-1,1] and then run through the three-stage RC
// filter chain in generateSample before being buffered.
func (apu *APU) mixChannels(pulse1, pulse2, triangle, noise, dmc uint8) float32 {
	pulseOut := pulseTable[pulse1+pulse2]
	tndOut := tndTable[3*triangle+2*noise+dmc]

	output := pulseOut + tndOut
	return output*2.0 - 1.0
}

// GetFrameIRQ returns the current frame counter IRQ flag.
func (apu *APU) GetFrameIRQ() bool { return apu.frameIRQFlag }

// GetDMCIRQ returns the current DMC IRQ flag.
func (apu *APU) GetDMCIRQ() bool { return apu.dmc.irqFlag }

// SetSampleRate sets the target audio sample rate, rebuilding the RC filter
// chain since each filter's alpha is derived from the sample period.
func (apu *APU) SetSampleRate(rate int) {
	apu.sampleRate = rate
	apu.cycleAccumulator = 0
	apu.initFilters(float64(apu.sampleRate))
}

// GetSampleRate returns the current sample rate.
func (apu *APU) GetSampleRate() int { return apu.sampleRate }

// GetChannelOutput returns the output level for a specific channel, for debug overlays.
func (apu *APU) GetChannelOutput(channel int) uint8 {
	if !apu.channelEnable[channel] {
		return 0
	}

	switch channel {
	case 0:
		return apu.getPulseOutput(&apu.pulse1)
	case 1:
		return apu.getPulseOutput(&apu.pulse2)
	case 2:
		return apu.getTriangleOutput(&apu.triangle)
	case 3:
		return apu.getNoiseOutput(&apu.noise)
	case 4:
		return apu.getDMCOutput(&apu.dmc)
	default:
		return 0
	}
}

// IsChannelEnabled reports whether a channel is enabled.
func (apu *APU) IsChannelEnabled(channel int) bool {
	if channel < 0 || channel >= len(apu.channelEnable) {
		return false
	}
	return apu.channelEnable[channel]
}
