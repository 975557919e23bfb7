package codec2

import "math"

const (
	bgThresh = 40.0 // only consider low-energy frames for the noise estimate, dB
	bgBeta   = 0.1  // background noise estimate time constant
	bgMargin = 6.0  // harmonics this far above the noise floor keep their phase, dB
)

// postfilter tracks a background noise estimate from unvoiced low-energy
// frames and, on voiced frames, randomizes the phase of any harmonic buried
// in that noise floor. This masks the buzzy artefacts the harmonic model
// produces on mixed voiced/noise frames.
func (c *Codec2) postfilter(model *Model) {
	e := 1e-12
	for m := 1; m <= model.L; m++ {
		e += model.A[m] * model.A[m]
	}
	e = 10.0 * math.Log10(e/float64(model.L))

	if e < bgThresh && !model.Voiced {
		c.bgEst = c.bgEst*(1.0-bgBeta) + e*bgBeta
	}

	if model.Voiced {
		thresh := math.Pow(10.0, (c.bgEst+bgMargin)/20.0)
		for m := 1; m <= model.L; m++ {
			if model.A[m] < thresh {
				model.Phi[m] = (TWO_PI / float64(codec2RandMax)) * float64(c.rand())
			}
		}
	}
}
