package codec2

import "math"

// Rate-K amplitude vector quantizer for the 700C mode: two 9-bit stages over
// the mean-removed spectral envelope sampled at rateK mel-spaced points, in
// dB. Each stage is an 8x8x8 grid over three cosine basis shapes, so the two
// stages together span the six lowest-order envelope variations. Envelopes on
// the mel axis are smooth enough for the truncated basis to carry the formant
// structure. Trained stages can be dropped in without touching the search or
// bit layout.

const rateKVQStageBits = 9

var rateKVQStages [][]float64

// grid half-range per basis order, in dB
var rateKBasisAmp = [6]float64{30, 24, 18, 12, 9, 6}

func init() {
	entries := 1 << rateKVQStageBits

	basis := func(n, i int) float64 {
		return math.Cos(math.Pi * float64(n) * (float64(i) + 0.5) / float64(rateK))
	}
	level := func(n, k int) float64 {
		a := rateKBasisAmp[n-1]
		return -a + 2.0*a*float64(k)/7.0
	}

	build := func(n0 int) []float64 {
		st := make([]float64, entries*rateK)
		for j := 0; j < entries; j++ {
			c1 := level(n0, (j>>6)&7)
			c2 := level(n0+1, (j>>3)&7)
			c3 := level(n0+2, j&7)
			for i := 0; i < rateK; i++ {
				st[j*rateK+i] = c1*basis(n0, i) + c2*basis(n0+1, i) + c3*basis(n0+2, i)
			}
		}
		return st
	}

	rateKVQStages = [][]float64{build(1), build(4)}
}
