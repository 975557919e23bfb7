package codec2

import "math"

// synthesizeOneFrame renders one 10ms subframe of speech from the model:
// phase synthesis against the sampled filter response H, the background
// noise postfilter, inverse FFT overlap-add synthesis, gain, the output
// limiter and conversion to 16-bit PCM.
func (c *Codec2) synthesizeOneFrame(model *Model, speech []int16, H []COMP, gain float64) {
	nsam := c.c2const.NSamp

	c.phaseSynthZeroOrder(model, H)
	c.postfilter(model)
	synthesise(nsam, c.fftInvCfg, c.SnSyn, model, c.Pn, true)

	for i := 0; i < nsam; i++ {
		c.SnSyn[i] *= gain
	}

	earProtection(c.SnSyn, nsam)

	for i := 0; i < nsam; i++ {
		s := c.SnSyn[i]
		if s > 32767.0 {
			speech[i] = 32767
		} else if s < -32767.0 {
			speech[i] = -32767
		} else {
			speech[i] = int16(s)
		}
	}
}

// synthesise places each harmonic in its DFT bin, reconstructs the full
// conjugate-symmetric spectrum, inverse transforms and overlap-adds the
// result into the synthesis buffer under the trapezoidal window Pn. With
// shift set the buffer is advanced one subframe first, so successive calls
// produce a continuous signal.
func synthesise(nSamp int, fftInvCfg FFT, snSyn []float64, model *Model, Pn []float64, shift bool) {
	N := FFTSize
	half := N/2 + 1
	Sw := make([]COMP, half)

	if shift {
		for i := 0; i < nSamp-1; i++ {
			snSyn[i] = snSyn[i+nSamp]
		}
		snSyn[nSamp-1] = 0.0
	}

	r := TWO_PI / float64(N)
	for m := 1; m <= model.L; m++ {
		bin := int(float64(m)*model.Wo/r + 0.5)
		if bin >= half {
			bin = half - 1
		}
		Sw[bin] = COMP{
			Real: model.A[m] * math.Cos(model.Phi[m]),
			Imag: model.A[m] * math.Sin(model.Phi[m]),
		}
	}

	// Full spectrum with conjugate symmetry so the IFFT comes out real.
	fullSpectrum := make([]complex128, N)
	fullSpectrum[0] = complex(Sw[0].Real, Sw[0].Imag)
	fullSpectrum[N/2] = complex(Sw[N/2].Real, Sw[N/2].Imag)
	for k := 1; k < N/2; k++ {
		fullSpectrum[k] = complex(Sw[k].Real, Sw[k].Imag)
		fullSpectrum[N-k] = complex(Sw[k].Real, -Sw[k].Imag)
	}

	sw := fftInvCfg.Inverse(fullSpectrum)

	// The IFFT is scaled by 1/N; undo that to match the unscaled kiss_fft
	// convention the window normalization assumes.
	scale := float64(N)
	for i := range sw {
		sw[i] *= scale
	}

	// Overlap-add: the tail of the IFFT result fades in over the first half
	// of the window, the head fades out over the second.
	for i := 0; i < nSamp-1; i++ {
		snSyn[i] += sw[N-nSamp+1+i] * Pn[i]
	}
	j := 0
	for i := nSamp - 1; i < 2*nSamp && j < len(sw); i++ {
		if shift {
			snSyn[i] = sw[j] * Pn[i]
		} else {
			snSyn[i] += sw[j] * Pn[i]
		}
		j++
	}
}

// makeSynthesisWindow generates the trapezoidal synthesis window: flat
// through the subframe centre with linear fade regions of 2*Tw samples at
// either end.
func makeSynthesisWindow(c2const *C2Const) []float64 {
	nsamp := c2const.NSamp
	tw := c2const.Tw
	total := 2 * nsamp

	Pn := make([]float64, total)

	win := 0.0
	increment := 1.0 / (2.0 * float64(tw))
	for i := nsamp/2 - tw; i < nsamp/2+tw; i++ {
		Pn[i] = win
		win += increment
	}
	for i := nsamp/2 + tw; i < 3*nsamp/2-tw; i++ {
		Pn[i] = 1.0
	}
	win = 1.0
	for i := 3*nsamp/2 - tw; i < 3*nsamp/2+tw; i++ {
		Pn[i] = win
		win -= increment
	}

	return Pn
}
