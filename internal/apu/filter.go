package apu

import "math"

// Cutoff frequencies (Hz) for the three first-order RC filters the mixed
// signal passes through before it reaches the sample buffer, per the NES
// APU's analog output stage: https://wiki.nesdev.com/w/index.php/APU_Mixer
const (
	highPassFreq1 = 90.0
	highPassFreq2 = 440.0
	lowPassFreq   = 14000.0
)

// firstOrderFilter is a single-pole RC filter, either high-pass or low-pass.
// The low-pass form uses alpha = dt/(rc+dt), the high-pass form alpha = rc/(rc+dt).
type firstOrderFilter struct {
	alpha      float64
	lowPass    bool
	prevInput  float64
	prevOutput float64
}

func newFirstOrderFilter(frequencyHz, sampleRate float64, lowPass bool) firstOrderFilter {
	rc := 1.0 / (2.0 * math.Pi * frequencyHz)
	dt := 1.0 / sampleRate
	if lowPass {
		return firstOrderFilter{alpha: dt / (rc + dt), lowPass: true}
	}
	return firstOrderFilter{alpha: rc / (rc + dt), lowPass: false}
}

func (f *firstOrderFilter) apply(input float64) float64 {
	var output float64
	if f.lowPass {
		output = f.prevOutput + f.alpha*(input-f.prevOutput)
	} else {
		output = f.alpha * (f.prevOutput + input - f.prevInput)
	}
	f.prevInput = input
	f.prevOutput = output
	return output
}

// initFilters (re)builds the three-stage high-pass/high-pass/low-pass chain
// for the given output sample rate, resetting any carried-over filter state.
func (apu *APU) initFilters(sampleRate float64) {
	apu.filters[0] = newFirstOrderFilter(highPassFreq1, sampleRate, false)
	apu.filters[1] = newFirstOrderFilter(highPassFreq2, sampleRate, false)
	apu.filters[2] = newFirstOrderFilter(lowPassFreq, sampleRate, true)
}

// applyFilters runs a mixed sample through the three RC filters in series.
func (apu *APU) applyFilters(sample float64) float64 {
	for i := range apu.filters {
		sample = apu.filters[i].apply(sample)
	}
	return sample
}
