package codec2

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLspLpcRoundTrip(t *testing.T) {
	// Start from a well separated ascending LSP set, build the LPC filter,
	// then recover the roots.
	lsp := []float64{0.2, 0.5, 0.8, 1.1, 1.4, 1.7, 2.0, 2.3, 2.6, 2.9}
	ak := make([]float64, LpcOrder+1)
	lspToLpc(lsp, ak, LpcOrder)
	assert.InDelta(t, 1.0, ak[0], 1e-9)

	recovered := make([]float64, LpcOrder)
	roots := lpcToLsp(ak, recovered, LpcOrder, 5, lspDelta1)
	require.Equal(t, LpcOrder, roots)

	for i := 0; i < LpcOrder; i++ {
		assert.InDelta(t, lsp[i], recovered[i], 0.02, "lsp %d", i)
	}
}

func TestLpcToLspFlatFilter(t *testing.T) {
	// A memoryless filter has LSPs evenly spread across the unit circle.
	ak := make([]float64, LpcOrder+1)
	ak[0] = 1.0

	lsp := make([]float64, LpcOrder)
	roots := lpcToLsp(ak, lsp, LpcOrder, 5, lspDelta1)
	require.Equal(t, LpcOrder, roots)
	for i := 1; i < LpcOrder; i++ {
		assert.Greater(t, lsp[i], lsp[i-1])
	}
}

func TestCheckLspOrder(t *testing.T) {
	lsp := []float64{0.5, 0.2, 0.8, 1.1, 1.0, 1.7, 2.0, 2.3, 2.6, 2.9}
	checkLspOrder(lsp, LpcOrder)
	for i := 1; i < LpcOrder; i++ {
		assert.GreaterOrEqual(t, lsp[i], lsp[i-1], "lsp %d", i)
	}
}

func TestCheckLspOrderSortedUnchanged(t *testing.T) {
	lsp := []float64{0.2, 0.5, 0.8, 1.1, 1.4, 1.7, 2.0, 2.3, 2.6, 2.9}
	want := append([]float64(nil), lsp...)
	swaps := checkLspOrder(lsp, LpcOrder)
	assert.Zero(t, swaps)
	assert.Equal(t, want, lsp)
}

func TestBwExpandLsps(t *testing.T) {
	// Two nearly coincident pairs, one below and one above 1kHz.
	lsp := []float64{0.30, 0.301, 0.8, 1.1, 1.4, 1.7, 2.0, 2.40, 2.401, 2.9}
	bwExpandLsps(lsp, LpcOrder, 50.0, 100.0)

	low := 50.0 * math.Pi / 4000.0
	high := 100.0 * math.Pi / 4000.0
	for i := 1; i < 4; i++ {
		assert.GreaterOrEqual(t, lsp[i]-lsp[i-1], low*0.999, "low band pair %d", i)
	}
	for i := 5; i < LpcOrder; i++ {
		assert.GreaterOrEqual(t, lsp[i]-lsp[i-1], high*0.999, "high band pair %d", i)
	}
}

func TestSpeechToUQLSPSSilence(t *testing.T) {
	mPitch := 320
	sn := make([]float64, mPitch)
	w := make([]float64, mPitch)
	for i := range w {
		w[i] = 1.0
	}

	e, lsp, ak := speechToUQLSPS(sn, w, mPitch, LpcOrder)
	assert.Zero(t, e)
	require.Len(t, lsp, LpcOrder)
	require.Len(t, ak, LpcOrder+1)
	assert.Equal(t, 1.0, ak[0])
	for i := 1; i < LpcOrder; i++ {
		assert.Greater(t, lsp[i], lsp[i-1])
	}
}

func TestSpeechToUQLSPSTone(t *testing.T) {
	mPitch := 320
	sn := make([]float64, mPitch)
	w := make([]float64, mPitch)
	for i := range sn {
		sn[i] = 1000.0 * math.Sin(TWO_PI*440.0*float64(i)/float64(SampleRate))
		w[i] = 1.0
	}

	e, lsp, _ := speechToUQLSPS(sn, w, mPitch, LpcOrder)
	assert.Greater(t, e, 0.0)
	for i := 1; i < LpcOrder; i++ {
		assert.Greater(t, lsp[i], lsp[i-1], "lsp %d", i)
	}
	for _, v := range lsp {
		assert.False(t, math.IsNaN(v))
	}
}
