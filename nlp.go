package codec2

import "math"

// nlpFir: 48-tap 600Hz low-pass FIR used to smooth the squared speech signal
// before decimation.
var nlpFir = []float64{
	-1.0818124e-03, -1.1008344e-03, -9.2768838e-04, -4.2289438e-04,
	5.5034190e-04, 2.0029849e-03, 3.7058509e-03, 5.1449415e-03,
	5.5924666e-03, 4.3036754e-03, 8.0284511e-04, -4.8204610e-03,
	-1.1705810e-02, -1.8199275e-02, -2.2065282e-02, -2.0920610e-02,
	-1.2808831e-02, 3.2204775e-03, 2.6683811e-02, 5.5520624e-02,
	8.6305944e-02, 1.1480192e-01, 1.3674206e-01, 1.4867556e-01,
	1.4867556e-01, 1.3674206e-01, 1.1480192e-01, 8.6305944e-02,
	5.5520624e-02, 2.6683811e-02, 3.2204775e-03, -1.2808831e-02,
	-2.0920610e-02, -2.2065282e-02, -1.8199275e-02, -1.1705810e-02,
	-4.8204610e-03, 8.0284511e-04, 4.3036754e-03, 5.5924666e-03,
	5.1449415e-03, 3.7058509e-03, 2.0029849e-03, 5.5034190e-04,
	-4.2289438e-04, -9.2768838e-04, -1.1008344e-03, -1.0818124e-03,
}

// nlpCreate allocates the state for the non-linear pitch estimator.
func nlpCreate(c2const *C2Const) *NLP {
	m := c2const.MPitch
	nlpObj := &NLP{
		Fs:     c2const.Fs,
		m:      m,
		sq:     make([]float64, m),
		memFir: make([]float64, NLP_NTAP),
		fftCfg: NewFFT(PE_FFT_SIZE),
		pmin:   c2const.PMin,
		pmax:   c2const.PMax,
	}
	n := m / DEC
	nlpObj.w = make([]float64, n)
	for i := 0; i < n; i++ {
		nlpObj.w[i] = 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return nlpObj
}

// nlp estimates the pitch period of the latest n samples of Sn using the
// non-linear pitch algorithm: square the speech to regenerate the
// fundamental, notch out DC, low-pass and decimate, then pick the peak of
// the DFT of the decimated signal. Returns the pitch period in samples and
// the refined fundamental estimate in Hz (fed back in as prevF0 on the next
// call to bias the sub-multiple search).
func (nlpObj *NLP) nlp(Sn []float64, n int, prevF0 float64) (float64, float64) {
	m := nlpObj.m

	// Square the latest n samples.
	for i := m - n; i < m; i++ {
		nlpObj.sq[i] = Sn[i] * Sn[i]
	}

	// Notch filter at DC.
	for i := m - n; i < m; i++ {
		notch := nlpObj.sq[i] - nlpObj.memX
		notch += COEFF * nlpObj.memY
		nlpObj.memX = nlpObj.sq[i]
		nlpObj.memY = notch
		nlpObj.sq[i] = notch + 1.0
	}

	// Decimation FIR filter.
	for i := m - n; i < m; i++ {
		for j := 0; j < NLP_NTAP-1; j++ {
			nlpObj.memFir[j] = nlpObj.memFir[j+1]
		}
		nlpObj.memFir[NLP_NTAP-1] = nlpObj.sq[i]
		nlpObj.sq[i] = 0.0
		for j := 0; j < NLP_NTAP; j++ {
			nlpObj.sq[i] += nlpObj.memFir[j] * nlpFir[j]
		}
	}

	// Decimate, window and transform.
	in := make([]float64, PE_FFT_SIZE)
	for i := 0; i < m/DEC; i++ {
		in[i] = nlpObj.sq[i*DEC] * nlpObj.w[i]
	}
	fftRes := nlpObj.fftCfg.Forward(in)
	Fw := make([]float64, PE_FFT_SIZE)
	for i, v := range fftRes {
		if i >= PE_FFT_SIZE {
			break
		}
		Fw[i] = real(v)*real(v) + imag(v)*imag(v)
	}

	// Global peak search over the candidate pitch range.
	minBin := PE_FFT_SIZE * DEC / nlpObj.pmax
	maxBin := PE_FFT_SIZE * DEC / nlpObj.pmin
	if maxBin >= PE_FFT_SIZE {
		maxBin = PE_FFT_SIZE - 1
	}
	gmax := 0.0
	gmaxBin := minBin
	for i := minBin; i <= maxBin; i++ {
		if Fw[i] > gmax {
			gmax = Fw[i]
			gmaxBin = i
		}
	}

	bestF0 := postProcessSubMultiples(Fw, nlpObj.pmax, gmax, gmaxBin, prevF0)

	// Shift the squared buffer to make room for the next subframe.
	for i := 0; i < m-n; i++ {
		nlpObj.sq[i] = nlpObj.sq[i+n]
	}

	pitch := float64(nlpObj.Fs) / bestF0
	return pitch, bestF0
}

// postProcessSubMultiples guards the global peak against pitch doubling:
// each sub-multiple of the peak bin is inspected and adopted when it carries
// a significant local maximum, with a lower threshold near the previous
// frame's estimate to favour a smooth pitch track.
func postProcessSubMultiples(Fw []float64, pmax int, gmax float64, gmaxBin int, prevF0 float64) float64 {
	mult := 2
	minBin := PE_FFT_SIZE * DEC / pmax
	cmaxBin := gmaxBin
	prevF0Bin := int(prevF0 * float64(PE_FFT_SIZE*DEC) / float64(SampleRate))

	for gmaxBin/mult >= minBin {
		b := gmaxBin / mult
		bmin := int(0.8 * float64(b))
		bmax := int(1.2 * float64(b))
		if bmin < minBin {
			bmin = minBin
		}
		var thresh float64
		if prevF0Bin > bmin && prevF0Bin < bmax {
			thresh = CNLP * 0.5 * gmax
		} else {
			thresh = CNLP * gmax
		}
		lmax := 0.0
		lmaxBin := bmin
		for b2 := bmin; b2 <= bmax && b2 < len(Fw); b2++ {
			if Fw[b2] > lmax {
				lmax = Fw[b2]
				lmaxBin = b2
			}
		}
		if lmax > thresh {
			if lmaxBin-1 >= 0 && lmaxBin+1 < len(Fw) {
				if Fw[lmaxBin-1] < lmax && Fw[lmaxBin+1] < lmax {
					cmaxBin = lmaxBin
				}
			}
		}
		mult++
	}

	return float64(cmaxBin) * float64(SampleRate) / float64(PE_FFT_SIZE*DEC)
}
