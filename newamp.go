package codec2

import "math"

// 700C amplitude machinery: instead of LSPs, the spectral envelope is the
// harmonic magnitudes themselves, resampled to a fixed number of mel-spaced
// points (the rate-K vector, in dB), vector quantized, and resampled back to
// harmonics of the decoded Wo at synthesis time.

const (
	rateK     = 20
	rateKFmin = 200.0
	rateKFmax = 3700.0

	newampWoBits = 6
	newampEBits  = 4

	newampEMinDB = -20.0
	newampEMaxDB = 80.0

	newampF0Min = 50.0
	newampF0Max = 400.0

	// Post filter expansion of the envelope around its mean; sharpens
	// formants to compensate for VQ smearing.
	newampPFGain = 1.5
)

var rateKGrid []float64 // sample points in Hz, mel spaced

func init() {
	rateKGrid = make([]float64, rateK)
	melLo := mel(rateKFmin)
	melHi := mel(rateKFmax)
	for i := 0; i < rateK; i++ {
		m := melLo + (melHi-melLo)*float64(i)/float64(rateK-1)
		rateKGrid[i] = melInv(m)
	}
}

func mel(f float64) float64 {
	return 2595.0 * math.Log10(1.0+f/700.0)
}

func melInv(m float64) float64 {
	return 700.0 * (math.Pow(10.0, m/2595.0) - 1.0)
}

// interpEnvelope linearly interpolates the (x, y) envelope at point xi on
// the mel axis, clamping to the end points outside the sampled range.
func interpEnvelope(x, y []float64, xi float64) float64 {
	n := len(x)
	if n == 0 {
		return 0.0
	}
	if xi <= x[0] {
		return y[0]
	}
	if xi >= x[n-1] {
		return y[n-1]
	}
	for i := 1; i < n; i++ {
		if xi <= x[i] {
			t := (xi - x[i-1]) / (x[i] - x[i-1])
			return (1.0-t)*y[i-1] + t*y[i]
		}
	}
	return y[n-1]
}

// resampleRateK samples the model's harmonic magnitudes (in dB) at the fixed
// mel grid.
func resampleRateK(model *Model) []float64 {
	x := make([]float64, model.L)
	y := make([]float64, model.L)
	for m := 1; m <= model.L; m++ {
		fHz := float64(m) * model.Wo * 4000.0 / math.Pi
		x[m-1] = mel(fHz)
		y[m-1] = 20.0 * math.Log10(model.A[m]+1e-6)
	}
	ratekdB := make([]float64, rateK)
	for i := 0; i < rateK; i++ {
		ratekdB[i] = interpEnvelope(x, y, mel(rateKGrid[i]))
	}
	return ratekdB
}

// resampleHarmonics rebuilds the harmonic magnitudes of the model from a
// rate-K envelope.
func resampleHarmonics(model *Model, ratekdB []float64) {
	x := make([]float64, rateK)
	for i := 0; i < rateK; i++ {
		x[i] = mel(rateKGrid[i])
	}
	for m := 1; m <= model.L && m <= MAX_AMP; m++ {
		fHz := float64(m) * model.Wo * 4000.0 / math.Pi
		dB := interpEnvelope(x, ratekdB, mel(fHz))
		model.A[m] = math.Pow(10.0, dB/20.0)
	}
}

// rateKPostfilter expands the envelope's dynamic range around its mean,
// which boosts formants relative to the inter-formant valleys the VQ tends
// to fill in. The expanded envelope is renormalized so the frame energy is
// unchanged.
func rateKPostfilter(ratekdB []float64) {
	mean := 0.0
	e1 := 0.0
	for _, v := range ratekdB {
		mean += v
		e1 += math.Pow(10.0, v/10.0)
	}
	mean /= float64(len(ratekdB))

	e2 := 0.0
	for i := range ratekdB {
		ratekdB[i] = mean + newampPFGain*(ratekdB[i]-mean)
		e2 += math.Pow(10.0, ratekdB[i]/10.0)
	}

	gainDB := 10.0 * math.Log10(e1/e2)
	for i := range ratekdB {
		ratekdB[i] += gainDB
	}
}

// encodeMean700 quantizes the envelope mean (frame energy in dB) uniformly
// over 2^newampEBits levels.
func encodeMean700(meanDB float64) int {
	levels := 1 << newampEBits
	if meanDB < newampEMinDB {
		meanDB = newampEMinDB
	}
	if meanDB > newampEMaxDB {
		meanDB = newampEMaxDB
	}
	step := (newampEMaxDB - newampEMinDB) / float64(levels)
	index := int(math.Floor((meanDB-newampEMinDB)/step + 0.5))
	if index > levels-1 {
		index = levels - 1
	}
	return index
}

func decodeMean700(index int) float64 {
	levels := 1 << newampEBits
	if index < 0 {
		index = 0
	}
	if index > levels-1 {
		index = levels - 1
	}
	step := (newampEMaxDB - newampEMinDB) / float64(levels)
	return newampEMinDB + step*float64(index)
}

// encodeWo700 packs pitch and voicing into one field: index 0 flags an
// unvoiced frame, indexes 1..63 span the pitch range on a log scale.
func encodeWo700(wo float64, voiced bool) int {
	if !voiced {
		return 0
	}
	levels := (1 << newampWoBits) - 1
	f0 := (wo / TWO_PI) * float64(SampleRate)
	if f0 < newampF0Min {
		f0 = newampF0Min
	}
	if f0 > newampF0Max {
		f0 = newampF0Max
	}
	frac := math.Log2(f0/newampF0Min) / math.Log2(newampF0Max/newampF0Min)
	index := 1 + int(math.Floor(frac*float64(levels-1)+0.5))
	if index > levels {
		index = levels
	}
	return index
}

func decodeWo700(index int) (wo float64, voiced bool) {
	levels := (1 << newampWoBits) - 1
	if index <= 0 {
		// Unvoiced: neutral pitch for the noise synthesis bands.
		return TWO_PI * 100.0 / float64(SampleRate), false
	}
	if index > levels {
		index = levels
	}
	frac := float64(index-1) / float64(levels-1)
	f0 := newampF0Min * math.Pow(newampF0Max/newampF0Min, frac)
	return TWO_PI * f0 / float64(SampleRate), true
}

// determinePhase recovers a minimum-phase response for the decoded envelope
// via the cepstral method and samples it at the model's harmonics into H.
// With no phase transmitted, minimum phase plus the excitation phase track
// is what keeps 700C speech from sounding reverberant.
func (c *Codec2) determinePhase(model *Model, ratekdB []float64, H []COMP) {
	N := FFTSize

	x := make([]float64, rateK)
	for i := 0; i < rateK; i++ {
		x[i] = mel(rateKGrid[i])
	}

	// Log magnitude across the positive bins, mirrored for a real cepstrum.
	logMag := make([]complex128, N)
	for i := 0; i <= N/2; i++ {
		fHz := float64(i) * float64(SampleRate) / 2.0 / float64(N/2)
		dB := interpEnvelope(x, ratekdB, mel(fHz))
		v := complex(dB*math.Ln10/20.0, 0) // ln of the magnitude
		logMag[i] = v
		if i > 0 && i < N/2 {
			logMag[N-i] = v
		}
	}

	cep := c.fftInvCfg.Inverse(logMag)

	// Fold the cepstrum to its minimum-phase counterpart.
	folded := make([]float64, N)
	folded[0] = cep[0]
	for i := 1; i < N/2; i++ {
		folded[i] = 2.0 * cep[i]
	}
	folded[N/2] = cep[N/2]

	ph := c.fftFwdCfg.Forward(folded)

	r := TWO_PI / float64(N)
	for m := 1; m <= model.L && m < len(H); m++ {
		b := int(float64(m)*model.Wo/r + 0.5)
		if b < 0 {
			b = 0
		} else if b >= len(ph) {
			b = len(ph) - 1
		}
		phi := imag(ph[b])
		H[m] = COMP{Real: math.Cos(phi), Imag: math.Sin(phi)}
	}
}
