package codec2

import "math"

// makeAnalysisWindow computes the tapered analysis window w (length MPitch,
// only the central Nw samples nonzero, Hamming shaped, normalized against
// the FFT size) and its frequency-domain counterpart W, centred on the
// middle of the FFT, which est voicing uses to fit ideal harmonics.
func makeAnalysisWindow(c2const *C2Const, fftFwd FFT) (w []float64, W []float64) {
	mPitch := c2const.MPitch
	nw := c2const.Nw

	w = make([]float64, mPitch)
	start := mPitch/2 - nw/2
	sum := 0.0
	for i := start; i < start+nw; i++ {
		j := i - start
		w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(j)/float64(nw-1))
		sum += w[i] * w[i]
	}
	norm := 1.0 / math.Sqrt(sum*float64(FFTSize))
	for i := 0; i < mPitch; i++ {
		w[i] *= norm
	}

	// DFT of w with the window wrapped so its centre sits at time zero,
	// then swap halves so W is centred on FFTSize/2.
	temp := make([]float64, FFTSize)
	for i := 0; i < nw/2; i++ {
		temp[i] = w[mPitch/2+i]
		temp[FFTSize-nw/2+i] = w[mPitch/2-nw/2+i]
	}
	wfft := fftFwd.Forward(temp)
	W = make([]float64, FFTSize)
	for i := 0; i < FFTSize/2; i++ {
		W[i+FFTSize/2] = real(wfft[i])
		W[i] = real(wfft[i+FFTSize/2])
	}
	return w, W
}

// dftSpeech windows the analysis buffer Sn and computes its DFT with the
// window centre wrapped to time zero, so harmonic phases come out relative
// to the frame centre.
func dftSpeech(c2const *C2Const, fftFwd FFT, Sw []COMP, Sn []float64, w []float64) {
	mPitch := c2const.MPitch
	nw := c2const.Nw
	in := make([]float64, FFTSize)
	for i := 0; i < nw/2; i++ {
		in[i] = Sn[i+(mPitch/2)] * w[i+(mPitch/2)]
	}
	for i := 0; i < nw/2; i++ {
		in[FFTSize-nw/2+i] = Sn[i+(mPitch/2)-(nw/2)] * w[i+(mPitch/2)-(nw/2)]
	}
	fftRes := fftFwd.Forward(in)
	for i := 0; i < FFTSize && i < len(fftRes); i++ {
		Sw[i] = COMP{Real: real(fftRes[i]), Imag: imag(fftRes[i])}
	}
}

// hsPitchRefinement refines Wo by maximizing the energy sampled from Sw at
// harmonics of each candidate pitch over [pmin, pmax] in steps of pstep.
func hsPitchRefinement(model *Model, Sw []COMP, pmin, pmax, pstep float64) {
	emax := 0.0
	wom := model.Wo
	r := TWO_PI / FFTSize
	oneOnR := 1.0 / r
	for p := pmin; p <= pmax; p += pstep {
		e := 0.0
		wo := TWO_PI / p
		bFloat := wo * oneOnR
		currentBFloat := bFloat
		for m := 1; m <= model.L; m++ {
			b := int(currentBFloat + 0.5)
			if b < 0 {
				b = 0
			} else if b >= len(Sw) {
				b = len(Sw) - 1
			}
			e += Sw[b].Real*Sw[b].Real + Sw[b].Imag*Sw[b].Imag
			currentBFloat += bFloat
		}
		if e > emax {
			emax = e
			wom = wo
		}
	}
	model.Wo = wom
}

// twoStagePitchRefinement refines the coarse NLP pitch estimate, first over
// +/-5 samples in 1 sample steps, then +/-1 sample in 0.25 sample steps.
func twoStagePitchRefinement(c2const *C2Const, model *Model, Sw []COMP) {
	pmax := TWO_PI/model.Wo + 5
	pmin := TWO_PI/model.Wo - 5
	hsPitchRefinement(model, Sw, pmin, pmax, 1.0)

	pmax = TWO_PI/model.Wo + 1
	pmin = TWO_PI/model.Wo - 1
	hsPitchRefinement(model, Sw, pmin, pmax, 0.25)

	if model.Wo < TWO_PI/float64(c2const.PMax) {
		model.Wo = TWO_PI / float64(c2const.PMax)
	}
	if model.Wo > TWO_PI/float64(c2const.PMin) {
		model.Wo = TWO_PI / float64(c2const.PMin)
	}
	model.L = int(math.Floor(math.Pi / model.Wo))
	if model.Wo*float64(model.L) >= 0.95*math.Pi {
		model.L--
	}
}

// spectralPeakWo returns a candidate fundamental at the strongest DFT bin
// inside the pitch range, or false when the range carries no energy.
func spectralPeakWo(c2const *C2Const, Sw []COMP) (float64, bool) {
	minBin := int(c2const.WoMin*float64(FFTSize)/TWO_PI + 0.5)
	maxBin := int(c2const.WoMax*float64(FFTSize)/TWO_PI + 0.5)
	if minBin < 1 {
		minBin = 1
	}
	if maxBin > FFTSize/2-1 {
		maxBin = FFTSize/2 - 1
	}
	peak := 0.0
	peakBin := 0
	for b := minBin; b <= maxBin; b++ {
		e := Sw[b].Real*Sw[b].Real + Sw[b].Imag*Sw[b].Imag
		if e > peak {
			peak = e
			peakBin = b
		}
	}
	if peakBin == 0 {
		return 0, false
	}
	wo := float64(peakBin) * TWO_PI / float64(FFTSize)
	if wo < c2const.WoMin {
		wo = c2const.WoMin
	}
	if wo > c2const.WoMax {
		wo = c2const.WoMax
	}
	return wo, true
}

// harmonicEnergy sums the DFT energy at each harmonic of the model's Wo,
// the same criterion hsPitchRefinement maximizes.
func harmonicEnergy(model *Model, Sw []COMP) float64 {
	e := 0.0
	oneOnR := float64(FFTSize) / TWO_PI
	for m := 1; m <= model.L; m++ {
		b := int(float64(m)*model.Wo*oneOnR + 0.5)
		if b >= len(Sw) {
			b = len(Sw) - 1
		}
		e += Sw[b].Real*Sw[b].Real + Sw[b].Imag*Sw[b].Imag
	}
	return e
}

// estimateAmplitudes estimates the amplitude of each harmonic as the RMS
// energy of the DFT bins it spans.
func estimateAmplitudes(model *Model, Sw []COMP) {
	r := TWO_PI / FFTSize
	oneOnR := 1.0 / r
	for m := 1; m <= model.L; m++ {
		am := int((float64(m)-0.5)*model.Wo*oneOnR + 0.5)
		bm := int((float64(m)+0.5)*model.Wo*oneOnR + 0.5)
		if bm > len(Sw) {
			bm = len(Sw)
		}
		den := 0.0
		for i := am; i < bm; i++ {
			den += Sw[i].Real*Sw[i].Real + Sw[i].Imag*Sw[i].Imag
		}
		model.A[m] = math.Sqrt(den)
	}
}

// estVoicingMbe makes the voicing decision using the MBE criterion: fit an
// ideal windowed harmonic to each band below 1kHz and compare the residual
// against the signal energy. A set of heuristics on the low/high band energy
// ratio then cleans up the marginal cases.
func estVoicingMbe(c2const *C2Const, model *Model, Sw []COMP, W []float64) float64 {
	sig := 1e-4
	l1000 := int(float64(model.L) * 1000.0 / (float64(c2const.Fs) / 2))
	for l := 1; l <= l1000; l++ {
		sig += model.A[l] * model.A[l]
	}

	wo := model.Wo
	errorAcc := 1e-4
	for l := 1; l <= l1000; l++ {
		var Am COMP
		den := 0.0
		al := int(math.Ceil((float64(l)-0.5)*wo*float64(FFTSize)/TWO_PI + 0.5))
		bl := int(math.Ceil((float64(l)+0.5)*wo*float64(FFTSize)/TWO_PI + 0.5))
		offset := int(float64(FFTSize)/2 - float64(l)*wo*float64(FFTSize)/TWO_PI + 0.5)
		for m := al; m < bl; m++ {
			k := offset + m
			if k < 0 || k >= len(W) || m < 0 || m >= len(Sw) {
				continue
			}
			Am.Real += Sw[m].Real * W[k]
			Am.Imag += Sw[m].Imag * W[k]
			den += W[k] * W[k]
		}
		if den == 0.0 {
			continue
		}
		Am.Real /= den
		Am.Imag /= den
		for m := al; m < bl; m++ {
			k := offset + m
			if k < 0 || k >= len(W) || m < 0 || m >= len(Sw) {
				continue
			}
			ewReal := Sw[m].Real - Am.Real*W[k]
			ewImag := Sw[m].Imag - Am.Imag*W[k]
			errorAcc += ewReal*ewReal + ewImag*ewImag
		}
	}

	snr := 10.0 * math.Log10(sig/errorAcc)
	model.Voiced = snr > V_THRESH

	l2000 := int(float64(model.L) * 2000.0 / (float64(c2const.Fs) / 2))
	l4000 := int(float64(model.L) * 4000.0 / (float64(c2const.Fs) / 2))
	elow := 1e-4
	ehigh := 1e-4
	for l := 1; l <= l2000; l++ {
		elow += model.A[l] * model.A[l]
	}
	for l := l2000; l <= l4000; l++ {
		ehigh += model.A[l] * model.A[l]
	}
	eratio := 10.0 * math.Log10(elow/ehigh)

	if !model.Voiced && eratio > 10.0 {
		model.Voiced = true
	}
	if model.Voiced {
		if eratio < -10.0 {
			model.Voiced = false
		}
		sixty := 60.0 * TWO_PI / float64(c2const.Fs)
		if eratio < -4.0 && model.Wo <= sixty {
			model.Voiced = false
		}
	}
	return snr
}

// speechToUQLSPS computes unquantized LSPs and the LPC residual energy for
// the current analysis buffer: window, autocorrelate, Levinson-Durbin,
// bandwidth expand, then convert the LPCs to LSPs. A zero-energy buffer and
// a failed root search both fall back to evenly spaced LSPs.
func speechToUQLSPS(sn, w []float64, mPitch, order int) (energy float64, lsp []float64, ak []float64) {
	Wn := make([]float64, mPitch)
	energy = 0.0
	for i := 0; i < mPitch; i++ {
		Wn[i] = sn[i] * w[i]
		energy += Wn[i] * Wn[i]
	}

	if energy == 0.0 {
		lsp = make([]float64, order)
		for i := 0; i < order; i++ {
			lsp[i] = (math.Pi / float64(order)) * float64(i)
		}
		ak = make([]float64, order+1)
		ak[0] = 1.0
		return energy, lsp, ak
	}

	R := make([]float64, order+1)
	for i := 0; i <= order; i++ {
		for j := 0; j < mPitch-i; j++ {
			R[i] += Wn[j] * Wn[j+i]
		}
	}

	ak = levinsonDurbin(R, order)

	E := 0.0
	for i := 0; i <= order; i++ {
		E += ak[i] * R[i]
	}
	if E < 0.0 {
		E = 0.0
	}

	// Bandwidth expansion stabilizes the quantized filter.
	for i := 0; i <= order; i++ {
		ak[i] *= math.Pow(0.994, float64(i))
	}

	lsp = make([]float64, order)
	roots := lpcToLsp(ak, lsp, order, 5, lspDelta1)
	if roots != order {
		for i := 0; i < order; i++ {
			lsp[i] = (math.Pi / float64(order)) * float64(i)
		}
	}

	return E, lsp, ak
}

// levinsonDurbin solves for the LPC coefficients from the autocorrelation
// sequence R. ak[0] is always 1. The recursion stops early if the prediction
// error collapses, which happens on degenerate (near-silent) input.
func levinsonDurbin(R []float64, order int) []float64 {
	ak := make([]float64, order+1)
	err := R[0]
	ak[0] = 1.0
	for i := 1; i <= order; i++ {
		if err <= 0.0 {
			break
		}
		sum := 0.0
		for j := 1; j < i; j++ {
			sum += ak[j] * R[i-j]
		}
		k := -(R[i] + sum) / err
		if k > 0.999 {
			k = 0.999
		} else if k < -0.999 {
			k = -0.999
		}
		prevA := make([]float64, i+1)
		copy(prevA, ak[:i+1])
		for j := 1; j < i; j++ {
			ak[j] = prevA[j] + k*prevA[i-j]
		}
		ak[i] = k
		err *= 1 - k*k
	}
	return ak
}

// analyzeOneFrame shifts one subframe of speech into the analysis buffer and
// runs the full analysis chain: DFT, coarse NLP pitch, two-stage refinement,
// harmonic amplitudes and the voicing decision.
func (c *Codec2) analyzeOneFrame(speech []float64, model *Model) {
	nSamp := c.c2const.NSamp
	mPitch := c.c2const.MPitch

	for i := 0; i < mPitch-nSamp; i++ {
		c.Sn[i] = c.Sn[i+nSamp]
	}
	for i := 0; i < nSamp; i++ {
		c.Sn[i+mPitch-nSamp] = speech[i]
	}

	Sw := make([]COMP, FFTSize)
	dftSpeech(&c.c2const, c.fftFwdCfg, Sw, c.Sn, c.w)

	var pitch float64
	pitch, c.prevF0Enc = c.nlp.nlp(c.Sn, nSamp, c.prevF0Enc)
	model.Wo = TWO_PI / pitch
	model.L = int(math.Floor(math.Pi / model.Wo))

	twoStagePitchRefinement(&c.c2const, model, Sw)

	// The NLP works on the squared signal, which carries nothing at the
	// fundamental when the input is a single sinusoid. Check the strongest
	// spectral peak in the pitch range as an alternative candidate and keep
	// whichever harmonic grid captures more energy. A correct NLP estimate
	// always wins this comparison because its grid is a superset of any
	// higher sub-multiple's.
	if altWo, ok := spectralPeakWo(&c.c2const, Sw); ok {
		alt := Model{Wo: altWo}
		alt.L = int(math.Floor(math.Pi / alt.Wo))
		twoStagePitchRefinement(&c.c2const, &alt, Sw)
		if harmonicEnergy(&alt, Sw) > harmonicEnergy(model, Sw) {
			model.Wo = alt.Wo
			model.L = alt.L
		}
	}

	estimateAmplitudes(model, Sw)
	estVoicingMbe(&c.c2const, model, Sw, c.W)
}
