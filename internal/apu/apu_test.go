package apu

import "testing"

func TestMixerTablesMatchCanonicalFormula(t *testing.T) {
	want := float32(95.52 / (8128.0/15.0 + 100.0))
	if got := pulseTable[15]; got != want {
		t.Fatalf("pulseTable[15] = %v, want %v", got, want)
	}
	want = float32(163.67 / (24329.0/100.0 + 100.0))
	if got := tndTable[100]; got != want {
		t.Fatalf("tndTable[100] = %v, want %v", got, want)
	}
}

func TestPulseChannelSilentUntilLengthAndTimerSet(t *testing.T) {
	a := New()
	a.WriteRegister(0x4000, 0x30) // constant volume, vol=0, duty=0
	if out := a.getPulseOutput(&a.pulse1); out != 0 {
		t.Fatalf("expected silence with zero length counter, got %d", out)
	}

	a.WriteRegister(0x4015, 0x01) // enable pulse1
	a.WriteRegister(0x4002, 0xFF) // timer low
	a.WriteRegister(0x4003, 0x07) // timer high + length load
	if a.pulse1.lengthCounter == 0 {
		t.Fatalf("expected length counter to be loaded from table")
	}
}

func TestDMCFetchStallsCPUAndAdvancesAddress(t *testing.T) {
	a := New()

	mem := make(map[uint16]uint8)
	mem[0xC000] = 0xAA
	a.SetMemoryReader(func(addr uint16) uint8 { return mem[addr] })

	stalled := uint64(0)
	a.SetStallCallback(func(n uint64) { stalled += n })

	a.WriteRegister(0x4012, 0x00) // sample address = 0xC000
	a.WriteRegister(0x4013, 0x00) // sample length = 1 byte
	a.WriteRegister(0x4015, 0x10) // enable DMC, starts playback

	a.fetchDMCSample(&a.dmc)

	if stalled != 4 {
		t.Fatalf("expected DMC fetch to stall CPU for 4 cycles, got %d", stalled)
	}
	if a.dmc.sampleBuffer != 0xAA {
		t.Fatalf("expected sample buffer loaded from CPU memory, got %02X", a.dmc.sampleBuffer)
	}
	if a.dmc.currentAddress != 0xC001 {
		t.Fatalf("expected DMC address advanced to 0xC001, got %04X", a.dmc.currentAddress)
	}
}

func TestDMCSetsIRQFlagAtEndOfNonLoopingSample(t *testing.T) {
	a := New()
	a.SetMemoryReader(func(addr uint16) uint8 { return 0 })
	a.SetStallCallback(func(n uint64) {})

	a.WriteRegister(0x4010, 0x80) // IRQ enable, no loop
	a.WriteRegister(0x4012, 0x00)
	a.WriteRegister(0x4013, 0x00) // length = 1 byte
	a.WriteRegister(0x4015, 0x10)

	a.fetchDMCSample(&a.dmc)

	if !a.dmc.irqFlag {
		t.Fatalf("expected DMC IRQ flag set after last byte of non-looping sample")
	}
	if !a.IRQPending() {
		t.Fatalf("expected IRQPending to reflect DMC IRQ flag")
	}
}

func TestSampleBufferCappedAtMaxBuffered(t *testing.T) {
	a := New()
	a.SetSampleRate(1789773) // 1:1 with CPU cycles, saturates the buffer quickly
	for i := 0; i < maxBufferedSamples*2; i++ {
		a.Step()
	}
	if len(a.sampleBuffer) > maxBufferedSamples {
		t.Fatalf("expected sample buffer capped at %d, got %d", maxBufferedSamples, len(a.sampleBuffer))
	}
}

func TestLowPassFilterSmoothsStepInput(t *testing.T) {
	f := newFirstOrderFilter(lowPassFreq, 44100, true)
	first := f.apply(1.0)
	if first <= 0 || first >= 1.0 {
		t.Fatalf("expected low-pass step response strictly between 0 and 1, got %v", first)
	}
	second := f.apply(1.0)
	if second <= first {
		t.Fatalf("expected low-pass output to keep rising toward a constant input, got %v then %v", first, second)
	}
}

func TestHighPassFilterBlocksDC(t *testing.T) {
	f := newFirstOrderFilter(highPassFreq1, 44100, false)
	var last float64
	for i := 0; i < 10000; i++ {
		last = f.apply(1.0)
	}
	if last > 0.01 {
		t.Fatalf("expected high-pass output to decay toward 0 under constant input, got %v", last)
	}
}

func TestApplyFiltersChainsAllThreeStages(t *testing.T) {
	a := New()
	direct := a.filters[0].apply(0.5)
	direct = a.filters[1].apply(direct)
	direct = a.filters[2].apply(direct)

	a2 := New()
	chained := a2.applyFilters(0.5)

	if direct != chained {
		t.Fatalf("expected applyFilters to match manual three-stage chain, got %v want %v", chained, direct)
	}
}

func TestFilterStateRoundTripsThroughSaveLoad(t *testing.T) {
	a := New()
	a.applyFilters(0.5)
	a.applyFilters(0.25)

	s := a.Save()

	b := New()
	b.Load(s)

	for i := range a.filters {
		if b.filters[i] != a.filters[i] {
			t.Fatalf("filter %d state mismatch after Save/Load: got %+v, want %+v", i, b.filters[i], a.filters[i])
		}
	}
}

func TestWriteFrameCounterResetsSequencer(t *testing.T) {
	a := New()
	a.frameCounter = 5000
	a.WriteRegister(0x4017, 0x80) // 5-step mode

	if a.frameCounter != 0 {
		t.Fatalf("expected frame counter reset on $4017 write, got %d", a.frameCounter)
	}
	if !a.frameMode {
		t.Fatalf("expected 5-step mode selected")
	}
}
