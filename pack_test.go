package codec2

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPackUnpackRoundTrip(t *testing.T) {
	fields := []struct {
		value int
		width uint
	}{
		{1, 1},
		{0, 1},
		{127, 7},
		{5, 5},
		{255, 8},
		{0, 3},
		{9, 4},
		{511, 9},
	}

	total := uint(0)
	for _, f := range fields {
		total += f.width
	}
	buf := make([]byte, (total+7)/8)

	var nbit uint
	for _, f := range fields {
		packBits(buf, &nbit, f.value, f.width)
	}
	assert.Equal(t, total, nbit)

	nbit = 0
	for _, f := range fields {
		assert.Equal(t, f.value, unpackBits(buf, &nbit, f.width))
	}
}

func TestPackUnpackGray(t *testing.T) {
	for width := uint(1); width <= 8; width++ {
		buf := make([]byte, 2)
		for v := 0; v < 1<<width; v++ {
			for i := range buf {
				buf[i] = 0
			}
			var nbit uint
			packNaturalOrGray(buf, &nbit, v, width, true)
			nbit = 0
			assert.Equal(t, v, unpackNaturalOrGray(buf, &nbit, width, true))
		}
	}
}

// Adjacent Gray codewords differ in exactly one bit, which is the whole
// point of using them for channel robustness.
func TestGrayAdjacency(t *testing.T) {
	const width = 7
	for v := 0; v < (1<<width)-1; v++ {
		a := make([]byte, 1)
		b := make([]byte, 1)
		var nbit uint
		packNaturalOrGray(a, &nbit, v, width, true)
		nbit = 0
		packNaturalOrGray(b, &nbit, v+1, width, true)

		diff := a[0] ^ b[0]
		bitsSet := 0
		for diff != 0 {
			bitsSet += int(diff & 1)
			diff >>= 1
		}
		assert.Equal(t, 1, bitsSet, "values %d and %d", v, v+1)
	}
}

func TestPackMSBFirst(t *testing.T) {
	buf := make([]byte, 1)
	var nbit uint
	packNaturalOrGray(buf, &nbit, 0b101, 3, false)
	// Three bits packed from the MSB of the first byte down.
	assert.Equal(t, byte(0b10100000), buf[0])
}

// Reading past the end of the frame yields zero bits rather than an error,
// so a decoder never faults on a short buffer.
func TestUnpackPastEnd(t *testing.T) {
	buf := []byte{0xFF}
	var nbit uint
	assert.Equal(t, 0xFF, unpackNaturalOrGray(buf, &nbit, 8, false))
	assert.Equal(t, 0, unpackNaturalOrGray(buf, &nbit, 8, false))
	assert.Equal(t, 0, unpackBits(buf, &nbit, 5))
}
