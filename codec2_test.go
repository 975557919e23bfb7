package codec2

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allModes = []Mode{Mode3200, Mode2400, Mode1600, Mode1400, Mode1300, Mode1200, Mode700C}

// makeTone generates n samples of a sine at freq Hz with the given
// amplitude, continuing from sample offset phase0.
func makeTone(n int, freq, amplitude float64, offset int) []int16 {
	pcm := make([]int16, n)
	for i := range pcm {
		pcm[i] = int16(amplitude * math.Sin(TWO_PI*freq*float64(offset+i)/float64(SampleRate)))
	}
	return pcm
}

// makeVowel generates a harmonic-rich periodic waveform at f0 Hz, closer to
// voiced speech than a pure sine.
func makeVowel(n int, f0, amplitude float64, offset int) []int16 {
	pcm := make([]int16, n)
	for i := range pcm {
		var v float64
		for k := 1; k <= 10; k++ {
			v += math.Sin(TWO_PI*f0*float64(k)*float64(offset+i)/float64(SampleRate)) / float64(k)
		}
		pcm[i] = int16(amplitude * v)
	}
	return pcm
}

func TestModeTable(t *testing.T) {
	tests := []struct {
		mode    Mode
		samples int
		bits    int
		fps     int
		rate    int
	}{
		{Mode3200, 160, 64, 50, 3200},
		{Mode2400, 160, 48, 50, 2400},
		{Mode1600, 320, 64, 25, 1600},
		{Mode1400, 320, 56, 25, 1400},
		{Mode1300, 320, 52, 25, 1300},
		{Mode1200, 320, 48, 25, 1200},
		{Mode700C, 320, 28, 25, 700},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			c, err := New(tt.mode)
			require.NoError(t, err)
			assert.Equal(t, tt.samples, c.SamplesPerFrame())
			assert.Equal(t, tt.bits, c.BitsPerFrame())
			assert.Equal(t, (tt.bits+7)/8, c.BytesPerFrame())
			assert.Equal(t, tt.fps, c.FramesPerSecond())
			assert.Equal(t, tt.mode, c.Mode())

			// Every mode carries a whole number of 10ms subframes and the
			// sample rate, frame rate and frame length are consistent.
			assert.Equal(t, SampleRate, tt.samples*tt.fps)
			assert.Zero(t, tt.samples%SamplesPerSubFrame)

			// The advertised bit rate matches bits/frame at the frame rate.
			assert.Equal(t, tt.rate, tt.bits*tt.fps)
		})
	}
}

func TestNewInvalidMode(t *testing.T) {
	_, err := New(Mode(6))
	assert.ErrorIs(t, err, ErrInvalidMode)

	_, err = New(Mode(-1))
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestParseMode(t *testing.T) {
	for _, m := range allModes {
		got, err := ParseMode(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}

	_, err := ParseMode("9600")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestEncodeInvalidFrameLength(t *testing.T) {
	c, err := New(Mode1300)
	require.NoError(t, err)

	_, err = c.Encode(make([]int16, 160))
	assert.ErrorIs(t, err, ErrInvalidFrameLength)

	_, err = c.Encode(nil)
	assert.ErrorIs(t, err, ErrInvalidFrameLength)

	_, err = c.Encode(make([]int16, 321))
	assert.ErrorIs(t, err, ErrInvalidFrameLength)
}

func TestDecodeInvalidFrameLength(t *testing.T) {
	c, err := New(Mode3200)
	require.NoError(t, err)

	_, err = c.Decode(make([]byte, 7))
	assert.ErrorIs(t, err, ErrInvalidFrameLength)

	_, err = c.Decode(nil)
	assert.ErrorIs(t, err, ErrInvalidFrameLength)
}

// A rejected call must not disturb the encoder state: feeding the same
// valid frames afterwards yields the same bits as a fresh instance.
func TestInvalidCallLeavesStateUntouched(t *testing.T) {
	a, err := New(Mode2400)
	require.NoError(t, err)
	b, err := New(Mode2400)
	require.NoError(t, err)

	frame := makeTone(a.SamplesPerFrame(), 210, 8000, 0)

	_, err = a.Encode(frame[:10])
	require.ErrorIs(t, err, ErrInvalidFrameLength)

	bitsA, err := a.Encode(frame)
	require.NoError(t, err)
	bitsB, err := b.Encode(frame)
	require.NoError(t, err)
	assert.Equal(t, bitsB, bitsA)
}

func TestEncodeDecodeAllModes(t *testing.T) {
	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			enc, err := New(mode)
			require.NoError(t, err)
			dec, err := New(mode)
			require.NoError(t, err)

			offset := 0
			for i := 0; i < 10; i++ {
				pcm := makeTone(enc.SamplesPerFrame(), 155, 9000, offset)
				offset += len(pcm)

				bits, err := enc.Encode(pcm)
				require.NoError(t, err)
				require.Len(t, bits, enc.BytesPerFrame())

				out, err := dec.Decode(bits)
				require.NoError(t, err)
				require.Len(t, out, dec.SamplesPerFrame())
			}
		})
	}
}

func TestEncodeSilence(t *testing.T) {
	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			enc, err := New(mode)
			require.NoError(t, err)
			dec, err := New(mode)
			require.NoError(t, err)

			silence := make([]int16, enc.SamplesPerFrame())
			var sumSq float64
			var count int
			for i := 0; i < 5; i++ {
				bits, err := enc.Encode(silence)
				require.NoError(t, err)
				out, err := dec.Decode(bits)
				require.NoError(t, err)
				require.Len(t, out, dec.SamplesPerFrame())
				for _, s := range out {
					sumSq += float64(s) * float64(s)
					count++
				}
			}

			// Silence must come back out near-silent.
			rms := math.Sqrt(sumSq / float64(count))
			assert.Less(t, rms, 50.0)
		})
	}
}

// The decoder accepts any bit pattern of the right length without error.
func TestDecodeArbitraryBits(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			dec, err := New(mode)
			require.NoError(t, err)

			zero := make([]byte, dec.BytesPerFrame())
			out, err := dec.Decode(zero)
			require.NoError(t, err)
			require.Len(t, out, dec.SamplesPerFrame())

			ones := make([]byte, dec.BytesPerFrame())
			for i := range ones {
				ones[i] = 0xFF
			}
			out, err = dec.Decode(ones)
			require.NoError(t, err)
			require.Len(t, out, dec.SamplesPerFrame())

			for i := 0; i < 50; i++ {
				frame := make([]byte, dec.BytesPerFrame())
				rng.Read(frame)
				out, err = dec.Decode(frame)
				require.NoError(t, err)
				require.Len(t, out, dec.SamplesPerFrame())
			}
		})
	}
}

// Two instances in the same mode fed the same input produce byte-identical
// streams: there is no hidden shared state and no nondeterminism.
func TestDeterminism(t *testing.T) {
	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			encA, err := New(mode)
			require.NoError(t, err)
			encB, err := New(mode)
			require.NoError(t, err)
			decA, err := New(mode)
			require.NoError(t, err)
			decB, err := New(mode)
			require.NoError(t, err)

			offset := 0
			for i := 0; i < 8; i++ {
				pcm := makeTone(encA.SamplesPerFrame(), 180, 7500, offset)
				offset += len(pcm)

				bitsA, err := encA.Encode(pcm)
				require.NoError(t, err)
				bitsB, err := encB.Encode(pcm)
				require.NoError(t, err)
				require.Equal(t, bitsA, bitsB)

				outA, err := decA.Decode(bitsA)
				require.NoError(t, err)
				outB, err := decB.Decode(bitsB)
				require.NoError(t, err)
				require.Equal(t, outA, outB)
			}
		})
	}
}

// A sustained loud pure tone must survive a round trip with comparable
// energy and the right dominant frequency. A lone sinusoid is the hard case
// for the pitch estimator: squaring it leaves nothing at the fundamental, so
// only the spectral peak candidate keeps the harmonic grid anchored.
func TestToneRoundTripFidelity(t *testing.T) {
	enc, err := New(Mode3200)
	require.NoError(t, err)
	dec, err := New(Mode3200)
	require.NoError(t, err)

	const freq = 200.0
	var inEnergy, outEnergy float64
	var decoded []float64
	offset := 0
	for i := 0; i < 25; i++ {
		pcm := makeTone(enc.SamplesPerFrame(), freq, 10000, offset)
		offset += len(pcm)

		bits, err := enc.Encode(pcm)
		require.NoError(t, err)
		out, err := dec.Decode(bits)
		require.NoError(t, err)

		// Skip the first few frames while the analysis buffer fills.
		if i < 5 {
			continue
		}
		for j := range out {
			inEnergy += float64(pcm[j]) * float64(pcm[j])
			outEnergy += float64(out[j]) * float64(out[j])
			decoded = append(decoded, float64(out[j]))
		}
	}

	ratio := outEnergy / inEnergy
	assert.Greater(t, ratio, 0.1, "decoded energy collapsed")
	assert.Less(t, ratio, 10.0, "decoded energy exploded")

	// The strongest DFT bin of the decoded tail must sit at the tone.
	spectrum := NewFFT(FFTSize).Forward(decoded[len(decoded)-FFTSize:])
	peakBin := 1
	peak := 0.0
	for b := 1; b < FFTSize/2; b++ {
		if e := real(spectrum[b])*real(spectrum[b]) + imag(spectrum[b])*imag(spectrum[b]); e > peak {
			peak = e
			peakBin = b
		}
	}
	domFreq := float64(peakBin) * SampleRate / FFTSize
	assert.InDelta(t, freq, domFreq, 40.0)
}

// Energy must round trip within an order of magnitude in every mode for
// voiced speech-like input.
func TestVowelRoundTripEnergyAllModes(t *testing.T) {
	for _, mode := range allModes {
		t.Run(mode.String(), func(t *testing.T) {
			enc, err := New(mode)
			require.NoError(t, err)
			dec, err := New(mode)
			require.NoError(t, err)

			var inEnergy, outEnergy float64
			offset := 0
			for i := 0; i < 25; i++ {
				pcm := makeVowel(enc.SamplesPerFrame(), 200, 1000, offset)
				offset += len(pcm)

				bits, err := enc.Encode(pcm)
				require.NoError(t, err)
				out, err := dec.Decode(bits)
				require.NoError(t, err)

				if i < 5 {
					continue
				}
				for j := range out {
					inEnergy += float64(pcm[j]) * float64(pcm[j])
					outEnergy += float64(out[j]) * float64(out[j])
				}
			}

			ratio := outEnergy / inEnergy
			assert.Greater(t, ratio, 0.1, "decoded energy collapsed")
			assert.Less(t, ratio, 10.0, "decoded energy exploded")
		})
	}
}

func TestMode1300Stream(t *testing.T) {
	enc, err := New(Mode1300)
	require.NoError(t, err)
	dec, err := New(Mode1300)
	require.NoError(t, err)

	require.Equal(t, 7, enc.BytesPerFrame())

	const frames = 25
	var stream []byte
	var input [][]int16
	offset := 0
	for i := 0; i < frames; i++ {
		pcm := makeTone(enc.SamplesPerFrame(), 200, 10000, offset)
		offset += len(pcm)
		input = append(input, pcm)
		bits, err := enc.Encode(pcm)
		require.NoError(t, err)
		require.Len(t, bits, 7)
		stream = append(stream, bits...)
	}
	require.Len(t, stream, frames*7) // one second of speech in 175 bytes

	var decoded int
	var inEnergy, outEnergy float64
	for i := 0; i+7 <= len(stream); i += 7 {
		out, err := dec.Decode(stream[i : i+7])
		require.NoError(t, err)
		require.Len(t, out, 320)
		if decoded >= 5 {
			for j := range out {
				inEnergy += float64(input[decoded][j]) * float64(input[decoded][j])
				outEnergy += float64(out[j]) * float64(out[j])
			}
		}
		decoded++
	}
	assert.Equal(t, frames, decoded)

	ratio := outEnergy / inEnergy
	assert.Greater(t, ratio, 0.1, "decoded energy collapsed")
	assert.Less(t, ratio, 10.0, "decoded energy exploded")
}

// Decoder state advances per frame, so decoding the same frame twice at
// different points in the stream may legitimately differ. This pins down
// that a fresh decoder is self-consistent instead.
func TestDecoderFreshStateReproducible(t *testing.T) {
	enc, err := New(Mode1200)
	require.NoError(t, err)
	pcm := makeTone(enc.SamplesPerFrame(), 120, 6000, 0)
	bits, err := enc.Encode(pcm)
	require.NoError(t, err)

	decA, err := New(Mode1200)
	require.NoError(t, err)
	decB, err := New(Mode1200)
	require.NoError(t, err)

	outA, err := decA.Decode(bits)
	require.NoError(t, err)
	outB, err := decB.Decode(bits)
	require.NoError(t, err)
	assert.Equal(t, outA, outB)
}

func TestVoicedToneSetsVoicingBits(t *testing.T) {
	enc, err := New(Mode3200)
	require.NoError(t, err)

	// Prime the analysis buffer with several frames of a strong periodic
	// signal, then inspect the voicing bits of the last frame.
	var bits []byte
	offset := 0
	for i := 0; i < 10; i++ {
		pcm := makeVowel(enc.SamplesPerFrame(), 100, 6000, offset)
		offset += len(pcm)
		var err error
		bits, err = enc.Encode(pcm)
		require.NoError(t, err)
	}

	var nbit uint
	v1 := unpackBits(bits, &nbit, 1)
	v2 := unpackBits(bits, &nbit, 1)
	assert.Equal(t, 1, v1, "steady tone should be declared voiced")
	assert.Equal(t, 1, v2, "steady tone should be declared voiced")
}

// The 700C energy index reflects the whole 40ms frame, not just its last
// subframe: attenuating part of a frame lowers the index monotonically.
func TestEncode700CEnergyTracksWholeFrame(t *testing.T) {
	newEnc := func() *Codec2 {
		c, err := New(Mode700C)
		require.NoError(t, err)
		return c
	}
	encLoud, encMixed, encQuiet := newEnc(), newEnc(), newEnc()

	feed := func(c *Codec2, pcm []int16) []byte {
		bits, err := c.Encode(pcm)
		require.NoError(t, err)
		return bits
	}

	// Identical loud history for all three encoders.
	offset := 0
	for i := 0; i < 5; i++ {
		pcm := makeVowel(320, 200, 1000, offset)
		offset += 320
		feed(encLoud, pcm)
		feed(encMixed, pcm)
		feed(encQuiet, pcm)
	}

	attenuate := func(pcm []int16, subs ...int) []int16 {
		out := append([]int16(nil), pcm...)
		for _, s := range subs {
			for i := s * SamplesPerSubFrame; i < (s+1)*SamplesPerSubFrame; i++ {
				out[i] = int16(float64(out[i]) * 0.05)
			}
		}
		return out
	}

	// Two frames of each pattern so the analysis window lag flushes.
	var bitsLoud, bitsMixed, bitsQuiet []byte
	for i := 0; i < 2; i++ {
		pcm := makeVowel(320, 200, 1000, offset)
		offset += 320
		bitsLoud = feed(encLoud, pcm)
		bitsMixed = feed(encMixed, attenuate(pcm, 1, 3))
		bitsQuiet = feed(encQuiet, attenuate(pcm, 0, 1, 2, 3))
	}

	energyIndex := func(bits []byte) int {
		var nbit uint
		unpackBits(bits, &nbit, newampWoBits)
		return unpackBits(bits, &nbit, newampEBits)
	}
	idxLoud := energyIndex(bitsLoud)
	idxMixed := energyIndex(bitsMixed)
	idxQuiet := energyIndex(bitsQuiet)

	assert.Greater(t, idxLoud, idxQuiet)
	assert.GreaterOrEqual(t, idxLoud, idxMixed)
	assert.GreaterOrEqual(t, idxMixed, idxQuiet)
}
