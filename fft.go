package codec2

import "github.com/mjibson/go-dsp/fft"

// FFT is the transform interface used throughout the codec.
type FFT interface {
	Forward(in []float64) []complex128
	Inverse(in []complex128) []float64
}

// defaultFFT implements FFT using go-dsp/fft.
type defaultFFT struct {
	size int
}

// NewFFT creates a new FFT instance for the given size.
func NewFFT(size int) FFT {
	return &defaultFFT{size: size}
}

// Forward returns the FFT of a real-valued input.
func (f *defaultFFT) Forward(in []float64) []complex128 {
	return fft.FFTReal(in)
}

// Inverse returns the real part of the inverse FFT of a complex-valued input.
// go-dsp scales the IFFT by 1/N; the synthesis code undoes that where the
// unscaled kiss_fft convention is needed.
func (f *defaultFFT) Inverse(in []complex128) []float64 {
	complexOut := fft.IFFT(in)
	realOut := make([]float64, len(complexOut))
	for i, v := range complexOut {
		realOut[i] = real(v)
	}
	return realOut
}
