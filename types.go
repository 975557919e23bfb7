package codec2

import "math"

const (
	PI     = math.Pi
	TWO_PI = 2.0 * math.Pi
)

// FFT and pitch estimator constants.
const (
	FFTSize     = 512
	PE_FFT_SIZE = 512  // DFT size for pitch estimation
	DEC         = 5    // NLP decimation factor
	CNLP        = 0.3  // NLP post processor constant
	V_THRESH    = 6.0  // voicing threshold in dB
	NLP_NTAP    = 48   // decimation FIR filter order
	COEFF       = 0.95 // notch filter parameter
	MAX_AMP     = 160  // maximum number of harmonics
)

// Analysis/synthesis timing, in seconds.
const (
	MPitchS         = 0.0400 // pitch analysis window
	PMinS           = 0.0025 // minimum pitch period
	PMaxS           = 0.0200 // maximum pitch period
	TWS             = 0.0050 // trapezoidal synthesis window overlap
	FrameLengthSecs = 0.01   // internal analysis subframe length
)

const (
	SampleRate         = 8000
	SamplesPerSubFrame = 80 // SampleRate * FrameLengthSecs
	LpcOrder           = 10
)

// Scalar quantizer widths shared by several modes.
const (
	WoBits  = 7
	EBits   = 5
	WoEBits = 8

	EMinDB = -10.0
	EMaxDB = 40.0
)

// PCMBuffer defines PCM samples as int16.
type PCMBuffer []int16

// COMP represents a complex number.
type COMP struct {
	Real float64
	Imag float64
}

// Model holds the sinusoidal model parameters for one 10ms analysis subframe.
type Model struct {
	Wo     float64   // fundamental frequency estimate in radians
	L      int       // number of harmonics
	A      []float64 // harmonic amplitudes (indices 1..MAX_AMP; index 0 unused)
	Phi    []float64 // harmonic phases (indices 1..MAX_AMP; index 0 unused)
	Voiced bool      // voicing decision
	E      float64   // LPC energy
}

// C2Const holds constants derived from the sample rate at instance creation.
type C2Const struct {
	Fs     int     // sample rate
	NSamp  int     // samples per 10ms subframe
	MaxAmp int     // maximum number of harmonics
	MPitch int     // pitch estimation window size in samples
	PMin   int     // minimum pitch period in samples
	PMax   int     // maximum pitch period in samples
	WoMin  float64 // minimum fundamental frequency in radians
	WoMax  float64 // maximum fundamental frequency in radians
	Nw     int     // analysis window size in samples
	Tw     int     // trapezoidal synthesis window overlap in samples
}

// NLP holds the state for the non-linear pitch estimator.
type NLP struct {
	Fs     int       // sample rate
	m      int       // analysis window length
	sq     []float64 // squared speech samples
	memX   float64   // notch filter memory
	memY   float64   // notch filter memory
	memFir []float64 // FIR filter memory (length NLP_NTAP)
	fftCfg FFT       // FFT for the decimated squared signal
	w      []float64 // analysis window for the decimated signal (length m/DEC)
	pmin   int       // minimum pitch period in samples
	pmax   int       // maximum pitch period in samples
}

func newModel() (model Model) {
	model = Model{
		Voiced: false,
		E:      1.0,
		A:      make([]float64, MAX_AMP+1),
		Phi:    make([]float64, MAX_AMP+1),
	}
	return
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
