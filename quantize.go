package codec2

import "math"

// LspCodebook holds one scalar LSP quantizer table.
type LspCodebook struct {
	K     int       // dimension of each vector
	Log2M int       // number of bits in the index
	M     int       // number of codebook entries
	CB    []float64 // the codebook data
}

// GeCodebook holds the joint Wo/energy vector quantizer table.
type GeCodebook struct {
	K     int
	Log2M int
	M     int
	CB    [][2]float64
}

// quantize finds the nearest codebook entry to vec under the weighted
// squared error and accumulates the residual into se.
func quantize(cb []float64, vec []float64, w []float64, k int, m int, se *float64) int {
	bestIndex := 0
	bestErr := 1.0e32
	for j := 0; j < m; j++ {
		var e float64
		for i := 0; i < k; i++ {
			diff := cb[j*k+i] - vec[i]
			e += diff * w[i] * diff * w[i]
		}
		if e < bestErr {
			bestErr = e
			bestIndex = j
		}
	}
	*se += bestErr
	return bestIndex
}

// --- Scalar Wo and energy quantizers ---

// encodeWo quantizes Wo uniformly between WoMin and WoMax over 2^WoBits
// levels.
func encodeWo(c2const *C2Const, wo float64) int {
	levels := 1 << WoBits
	step := (c2const.WoMax - c2const.WoMin) / float64(levels)
	index := int(math.Floor((wo-c2const.WoMin)/step + 0.5))
	if index < 0 {
		index = 0
	}
	if index > levels-1 {
		index = levels - 1
	}
	return index
}

// decodeWo maps a scalar Wo index back to radians.
func decodeWo(c2const *C2Const, index int) float64 {
	levels := 1 << WoBits
	if index < 0 {
		index = 0
	}
	if index > levels-1 {
		index = levels - 1
	}
	step := (c2const.WoMax - c2const.WoMin) / float64(levels)
	return c2const.WoMin + step*float64(index)
}

// encodeEnergy quantizes the LPC energy uniformly in dB over 2^EBits levels.
func encodeEnergy(e float64) int {
	levels := 1 << EBits
	if e < 0.0 {
		e = 0.0
	}
	edB := 10.0 * math.Log10(e+1e-12)
	if edB < EMinDB {
		edB = EMinDB
	}
	if edB > EMaxDB {
		edB = EMaxDB
	}
	step := (EMaxDB - EMinDB) / float64(levels)
	index := int(math.Floor((edB-EMinDB)/step + 0.5))
	if index > levels-1 {
		index = levels - 1
	}
	return index
}

// decodeEnergy maps an energy index back to the linear domain.
func decodeEnergy(index int) float64 {
	levels := 1 << EBits
	if index < 0 {
		index = 0
	}
	if index > levels-1 {
		index = levels - 1
	}
	step := (EMaxDB - EMinDB) / float64(levels)
	return math.Pow(10.0, (EMinDB+step*float64(index))/10.0)
}

// --- Joint Wo/energy quantization ---

// geCoeff are the prediction coefficients for the joint quantizer memory.
var geCoeff = []float64{0.8, 0.9}

// encodeWoE jointly quantizes log Wo and log energy against the GE codebook
// with first order prediction from the quantizer memory xq, which it
// updates.
func encodeWoE(model *Model, e float64, xq []float64) int {
	var x [2]float64
	var err [2]float64

	if e < 0.0 {
		e = 0.0
	}
	x[0] = math.Log10((model.Wo/math.Pi)*4000.0/50.0) / math.Log10(2.0)
	x[1] = 10.0 * math.Log10(1e-4+e)

	w := make([]float64, 2)
	computeWeights2(x[:], xq, w)

	for i := 0; i < 2; i++ {
		err[i] = x[i] - geCoeff[i]*xq[i]
	}
	n1 := findNearestWeighted(geCb.CB, geCb.M, err, w, geCb.K)
	for i := 0; i < geCb.K; i++ {
		xq[i] = geCoeff[i]*xq[i] + geCb.CB[n1][i]
	}
	return n1
}

// findNearestWeighted returns the index of the codebook entry minimizing the
// weighted squared distance from x.
func findNearestWeighted(codebook [][2]float64, nbEntries int, x [2]float64, w []float64, ndim int) int {
	minDist := 1e15
	nearest := 0
	for i := 0; i < nbEntries; i++ {
		dist := 0.0
		for j := 0; j < ndim; j++ {
			diff := x[j] - codebook[i][j]
			dist += w[j] * diff * diff
		}
		if dist < minDist {
			minDist = dist
			nearest = i
		}
	}
	return nearest
}

// decodeWoE advances the quantizer memory with the received index and
// reconstructs Wo (clamped to the instance pitch range) and the energy.
func decodeWoE(c2const *C2Const, model *Model, e *float64, xq []float64, index int) {
	if index < 0 {
		index = 0
	}
	if index >= geCb.M {
		index = geCb.M - 1
	}
	for i := 0; i < geCb.K; i++ {
		xq[i] = geCoeff[i]*xq[i] + geCb.CB[index][i]
	}
	model.Wo = math.Pow(2.0, xq[0]) * (math.Pi * 50.0) / 4000.0
	if model.Wo > c2const.WoMax {
		model.Wo = c2const.WoMax
	}
	if model.Wo < c2const.WoMin {
		model.Wo = c2const.WoMin
	}
	model.L = int(math.Floor(math.Pi / model.Wo))
	*e = math.Pow(10.0, xq[1]/10.0)
}

// computeWeights2 derives the error weights for the joint quantizer from the
// current vector x and the predictor state xp, then squares them.
func computeWeights2(x, xp, w []float64) {
	w[0] = 30.0
	w[1] = 1.0
	if x[1] < 0 {
		w[0] *= 0.6
		w[1] *= 0.3
	}
	if x[1] < -10 {
		w[0] *= 0.3
		w[1] *= 0.3
	}
	if math.Abs(x[0]-xp[0]) < 0.2 {
		w[0] *= 2.0
		w[1] *= 1.5
	} else if math.Abs(x[0]-xp[0]) > 0.5 {
		w[0] *= 0.5
	}
	if x[1] < xp[1]-10 {
		w[1] *= 0.5
	}
	if x[1] < xp[1]-20 {
		w[1] *= 0.5
	}
	w[0] = w[0] * w[0]
	w[1] = w[1] * w[1]
}

// --- LSP scalar quantization ---

func lspBits(i int) int {
	return lspCb[i].Log2M
}

func lspDeltaBits(i int) int {
	return lspdCb[i].Log2M
}

// encodeLSPScalar quantizes each LSP (converted to Hz) independently against
// its scalar codebook.
func encodeLSPScalar(indexes []int, lsp []float64, order int) {
	var se float64
	lspHz := make([]float64, order)
	for i := 0; i < order; i++ {
		lspHz[i] = (4000.0 / math.Pi) * lsp[i]
	}
	for i := 0; i < order; i++ {
		k := lspCb[i].K
		m := lspCb[i].M
		cb := lspCb[i].CB
		indexes[i] = quantize(cb, lspHz[i:i+1], []float64{1.0}, k, m, &se)
	}
}

// decodeLSPScalar recovers LSPs in radians from scalar indexes, clamping
// out-of-range indexes to the table.
func decodeLSPScalar(lsps []float64, indexes []int, order int) {
	for i := 0; i < order; i++ {
		k := lspCb[i].K
		cb := lspCb[i].CB
		idx := indexes[i]
		if idx < 0 {
			idx = 0
		}
		if idx >= len(cb)/k {
			idx = len(cb)/k - 1
		}
		lsps[i] = (math.Pi / 4000.0) * cb[idx*k]
	}
}

// encodeLSPDeltaScalar quantizes the first LSP absolutely and the remaining
// ones as differences from their lower neighbour, all in Hz. The difference
// representation spends the bit budget on the formant spacing, which is what
// the ear notices.
func encodeLSPDeltaScalar(indexes []int, lsp []float64, order int) {
	var se float64
	lspHz := make([]float64, order)
	for i := 0; i < order; i++ {
		lspHz[i] = (4000.0 / math.Pi) * lsp[i]
	}
	for i := 0; i < order; i++ {
		target := lspHz[i]
		if i > 0 {
			target = lspHz[i] - lspHz[i-1]
		}
		cb := lspdCb[i]
		indexes[i] = quantize(cb.CB, []float64{target}, []float64{1.0}, cb.K, cb.M, &se)
	}
}

// decodeLSPDeltaScalar rebuilds the LSP vector from the delta indexes by
// accumulating the decoded differences.
func decodeLSPDeltaScalar(lsps []float64, indexes []int, order int) {
	lspHz := 0.0
	for i := 0; i < order; i++ {
		cb := lspdCb[i]
		idx := indexes[i]
		if idx < 0 {
			idx = 0
		}
		if idx >= cb.M {
			idx = cb.M - 1
		}
		if i == 0 {
			lspHz = cb.CB[idx]
		} else {
			lspHz += cb.CB[idx]
		}
		lsps[i] = (math.Pi / 4000.0) * lspHz
	}
}

// --- Multi-stage LSP vector quantization (1200 mode) ---

// encodeLspVQ quantizes the whole LSP vector (in Hz) through the staged
// codebooks with an M-best search.
func encodeLspVQ(indexes []int, lsp []float64, order int) {
	lspHz := make([]float64, order)
	for i := 0; i < order; i++ {
		lspHz[i] = (4000.0 / math.Pi) * lsp[i]
	}
	found := searchStages(lspVQStages, order, lspHz)
	copy(indexes, found)
}

// decodeLspVQ reconstructs the LSP vector by summing the staged codebook
// entries, clamping each index to its table.
func decodeLspVQ(lsps []float64, indexes []int, order int) {
	lspHz := make([]float64, order)
	for s, stage := range lspVQStages {
		idx := indexes[s]
		entries := len(stage) / order
		if idx < 0 {
			idx = 0
		}
		if idx >= entries {
			idx = entries - 1
		}
		for i := 0; i < order; i++ {
			lspHz[i] += stage[idx*order+i]
		}
	}
	for i := 0; i < order; i++ {
		lsps[i] = (math.Pi / 4000.0) * lspHz[i]
	}
}

// --- LPC spectral envelope sampling ---

// aksToM2 transforms the LPC coefficients into spectral amplitude estimates
// for each harmonic of the model, replacing model.A. The raw FFT of the
// coefficients is left in Aw for phase sampling. Returns the SNR between the
// analysis amplitudes and the LPC fit in dB.
func aksToM2(fftFwdCfg FFT, ak []float64, order int, model *Model, E float64, pf bool, bassBoost bool, beta, gamma float64, Aw []COMP) float64 {
	r := TWO_PI / float64(FFTSize)

	a := make([]float64, FFTSize)
	for i := 0; i <= order; i++ {
		a[i] = ak[i]
	}
	fftRes := fftFwdCfg.Forward(a)
	for i := 0; i < FFTSize && i < len(fftRes); i++ {
		Aw[i] = COMP{Real: real(fftRes[i]), Imag: imag(fftRes[i])}
	}

	Pw := make([]float64, FFTSize/2)
	for i := 0; i < FFTSize/2; i++ {
		mag2 := Aw[i].Real*Aw[i].Real + Aw[i].Imag*Aw[i].Imag + 1e-6
		Pw[i] = 1.0 / mag2
	}

	if pf {
		lpcPostFilter(fftFwdCfg, Pw, ak, order, beta, gamma, bassBoost, E)
	} else {
		for i := 0; i < FFTSize/2; i++ {
			Pw[i] *= E
		}
	}

	signal := 1e-30
	noise := 1e-32
	for m := 1; m <= model.L; m++ {
		am := int((float64(m)-0.5)*model.Wo/r + 0.5)
		bm := int((float64(m)+0.5)*model.Wo/r + 0.5)
		if bm > FFTSize/2 {
			bm = FFTSize / 2
		}
		em := 0.0
		for i := am; i < bm; i++ {
			em += Pw[i]
		}
		Am := math.Sqrt(em)
		signal += model.A[m] * model.A[m]
		diff := model.A[m] - Am
		noise += diff * diff
		model.A[m] = Am
	}
	return 10.0 * math.Log10(signal/noise)
}

// applyLpcCorrection attenuates the first harmonic for low pitched speakers,
// where the LPC fit overestimates it.
func applyLpcCorrection(model *Model) {
	if model.Wo < (math.Pi * 150.0 / 4000.0) {
		model.A[1] *= 0.032
	}
}

// lpcPostFilter shapes the LPC power spectrum Pw to suppress inter-formant
// energy: the spectrum is tilted by the gamma-weighted filter response
// raised to beta, renormalized to the pre-filter energy, scaled by E, and
// optionally given a bass boost below 1kHz.
func lpcPostFilter(fftFwdCfg FFT, Pw []float64, ak []float64, order int, beta, gamma float64, bassBoost bool, E float64) {
	x := make([]float64, FFTSize)
	x[0] = ak[0]
	coeff := gamma
	for i := 1; i <= order; i++ {
		x[i] = ak[i] * coeff
		coeff *= gamma
	}

	wwRaw := fftFwdCfg.Forward(x)
	numBins := FFTSize / 2
	Ww := make([]float64, numBins)
	for i := 0; i < numBins && i < len(wwRaw); i++ {
		Ww[i] = real(wwRaw[i])*real(wwRaw[i]) + imag(wwRaw[i])*imag(wwRaw[i])
	}

	eBefore := 1e-4
	for i := 0; i < numBins; i++ {
		eBefore += Pw[i]
	}

	Rw := make([]float64, numBins)
	for i := 0; i < numBins; i++ {
		Rw[i] = math.Sqrt(Ww[i] * Pw[i])
	}

	eAfter := 1e-4
	for i := 0; i < numBins; i++ {
		pfw := math.Pow(Rw[i], beta)
		Pw[i] = Pw[i] * pfw * pfw
		eAfter += Pw[i]
	}

	gain := eBefore / eAfter
	gain *= E
	for i := 0; i < numBins; i++ {
		Pw[i] *= gain
	}

	if bassBoost {
		// +3dB on the first 1kHz.
		limit := FFTSize / 8
		if limit > numBins {
			limit = numBins
		}
		for i := 0; i < limit; i++ {
			Pw[i] *= 1.4 * 1.4
		}
	}
}
