package codec2

import "math"

const codec2RandMax = 32767

// rand is the codec's own LCG. The phase dither stream must be identical
// across builds and platforms and must not be shared between instances, so
// the state lives on the Codec2 struct rather than in a package global.
func (c *Codec2) rand() int {
	c.rng = c.rng*1103515245 + 12345
	return int((c.rng / 65536) % 32768)
}

// phaseSynthZeroOrder advances the excitation phase track by one subframe
// and synthesizes a phase for each harmonic: the excitation (harmonics of
// the phase track for voiced frames, random for unvoiced) is run through the
// sampled synthesis filter phase H and the resulting angle is stored in
// model.Phi.
func (c *Codec2) phaseSynthZeroOrder(model *Model, H []COMP) {
	nSamp := c.c2const.NSamp

	c.exPhase += model.Wo * float64(nSamp)
	c.exPhase -= TWO_PI * math.Floor((c.exPhase/TWO_PI)+0.5)

	for m := 1; m <= model.L && m < len(H); m++ {
		var Ex COMP
		if model.Voiced {
			Ex.Real = math.Cos(c.exPhase * float64(m))
			Ex.Imag = math.Sin(c.exPhase * float64(m))
		} else {
			phi := TWO_PI * float64(c.rand()) / float64(codec2RandMax)
			Ex.Real = math.Cos(phi)
			Ex.Imag = math.Sin(phi)
		}
		var A COMP
		A.Real = H[m].Real*Ex.Real - H[m].Imag*Ex.Imag
		A.Imag = H[m].Imag*Ex.Real + H[m].Real*Ex.Imag
		model.Phi[m] = math.Atan2(A.Imag, A.Real+1e-12)
	}
}

// samplePhase samples the synthesis filter response Aw at each harmonic,
// storing the conjugate in H. The conjugate undoes the analysis-side
// convention so the synthesis filter applies the correct phase shift.
func samplePhase(model *Model, H []COMP, Aw []COMP) {
	r := TWO_PI / float64(FFTSize)
	for m := 1; m <= model.L && m < len(H); m++ {
		b := int(float64(m)*model.Wo/r + 0.5)
		if b < 0 {
			b = 0
		} else if b >= len(Aw) {
			b = len(Aw) - 1
		}
		H[m] = COMP{Real: Aw[b].Real, Imag: -Aw[b].Imag}
	}
}
