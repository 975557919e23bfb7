package codec2

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMelScale(t *testing.T) {
	// Monotonic and self-inverse over the band of interest.
	prev := mel(float64(rateKFmin))
	for f := float64(rateKFmin) + 100; f <= float64(rateKFmax); f += 100 {
		m := mel(f)
		assert.Greater(t, m, prev)
		prev = m
		assert.InDelta(t, f, melInv(m), 1e-6)
	}
}

func TestRateKGridSpansBand(t *testing.T) {
	require.Len(t, rateKGrid, rateK)
	assert.InDelta(t, float64(rateKFmin), rateKGrid[0], 1e-6)
	assert.InDelta(t, float64(rateKFmax), rateKGrid[rateK-1], 1e-6)
	for i := 1; i < rateK; i++ {
		assert.Greater(t, rateKGrid[i], rateKGrid[i-1])
	}
}

func TestResampleRateKFlatEnvelope(t *testing.T) {
	model := newModel()
	model.Wo = TWO_PI * 100.0 / float64(SampleRate)
	model.L = int(PI / model.Wo)
	for m := 1; m <= model.L; m++ {
		model.A[m] = 1.0 // 0 dB
	}

	ratekdB := resampleRateK(&model)
	require.Len(t, ratekdB, rateK)
	for i, v := range ratekdB {
		assert.InDelta(t, 0.0, v, 1e-4, "band %d", i)
	}

	// Resampling back recovers the flat envelope.
	out := newModel()
	out.Wo = model.Wo
	out.L = model.L
	resampleHarmonics(&out, ratekdB)
	for m := 1; m <= out.L; m++ {
		assert.InDelta(t, 1.0, out.A[m], 1e-3, "harmonic %d", m)
	}
}

func TestMean700RoundTrip(t *testing.T) {
	step := float64(newampEMaxDB-newampEMinDB) / float64(1<<newampEBits)
	for _, mean := range []float64{-15.0, 0.0, 20.0, 55.0} {
		index := encodeMean700(mean)
		assert.GreaterOrEqual(t, index, 0)
		assert.Less(t, index, 1<<newampEBits)
		assert.InDelta(t, mean, decodeMean700(index), step)
	}
}

func TestWo700UnvoicedIsIndexZero(t *testing.T) {
	wo := TWO_PI * 150.0 / float64(SampleRate)
	assert.Equal(t, 0, encodeWo700(wo, false))

	_, voiced := decodeWo700(0)
	assert.False(t, voiced)
}

func TestWo700VoicedRoundTrip(t *testing.T) {
	for _, f0 := range []float64{60.0, 100.0, 180.0, 300.0, 390.0} {
		wo := TWO_PI * f0 / float64(SampleRate)
		index := encodeWo700(wo, true)
		require.Greater(t, index, 0)
		require.Less(t, index, 1<<newampWoBits)

		got, voiced := decodeWo700(index)
		require.True(t, voiced)

		// Log-spaced grid: the ratio error per step is small.
		ratio := got / wo
		assert.InDelta(t, 1.0, ratio, 0.05, "f0 %.0f", f0)
	}
}

func TestWo700IndexClamped(t *testing.T) {
	wo, voiced := decodeWo700(1 << 16)
	assert.True(t, voiced)
	assert.Greater(t, wo, 0.0)

	wo, _ = decodeWo700(-3)
	assert.Greater(t, wo, 0.0)
}

func TestRateKPostfilterSharpens(t *testing.T) {
	// A single peak over a flat floor gets amplified relative to the floor.
	ratekdB := make([]float64, rateK)
	ratekdB[rateK/2] = 20.0

	energy := func(v []float64) float64 {
		e := 0.0
		for _, dB := range v {
			e += math.Pow(10.0, dB/10.0)
		}
		return e
	}

	before := ratekdB[rateK/2] - ratekdB[0]
	e1 := energy(ratekdB)
	rateKPostfilter(ratekdB)
	after := ratekdB[rateK/2] - ratekdB[0]
	assert.Greater(t, after, before)

	// Sharpening redistributes energy, it does not add any.
	assert.InDelta(t, 1.0, energy(ratekdB)/e1, 1e-9)

	for _, v := range ratekdB {
		assert.False(t, math.IsNaN(v))
	}
}

// A smooth mean-removed envelope built from low-order cosine shapes must be
// representable by the staged rate-K quantizer to within a few dB RMS.
func TestRateKVQAccuracy(t *testing.T) {
	target := make([]float64, rateK)
	for i := range target {
		x := math.Pi * (float64(i) + 0.5) / float64(rateK)
		target[i] = 10.0*math.Cos(x) - 5.0*math.Cos(3.0*x)
	}

	indexes := searchStages(rateKVQStages, rateK, target)
	require.Len(t, indexes, len(rateKVQStages))

	decoded := make([]float64, rateK)
	for s, stage := range rateKVQStages {
		for i := 0; i < rateK; i++ {
			decoded[i] += stage[indexes[s]*rateK+i]
		}
	}

	sumSq := 0.0
	for i := range target {
		d := decoded[i] - target[i]
		sumSq += d * d
	}
	rms := math.Sqrt(sumSq / float64(rateK))
	assert.Less(t, rms, 5.0)
}

func TestDeterminePhaseFillsHarmonics(t *testing.T) {
	c, err := New(Mode700C)
	require.NoError(t, err)

	model := newModel()
	model.Wo = TWO_PI * 120.0 / float64(SampleRate)
	model.L = int(PI / model.Wo)

	ratekdB := make([]float64, rateK)
	for i := range ratekdB {
		ratekdB[i] = 10.0
	}
	resampleHarmonics(&model, ratekdB)

	H := make([]COMP, MAX_AMP+1)
	c.determinePhase(&model, ratekdB, H)
	for m := 1; m <= model.L; m++ {
		mag := math.Hypot(H[m].Real, H[m].Imag)
		assert.InDelta(t, 1.0, mag, 1e-6, "harmonic %d", m)
		assert.False(t, math.IsNaN(H[m].Real))
	}
}
