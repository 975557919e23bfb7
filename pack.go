package codec2

const (
	wordSize   = 8   // size of an unsigned char in bits
	indexMask  = 0x7 // mask to pick the bit index within a byte
	shiftRight = 3   // right-shift amount to convert a bit index to a byte index
)

// packBits packs a bit field into a bit string using Gray code conversion.
func packBits(bitArray []byte, bitIndex *uint, field int, fieldWidth uint) {
	packNaturalOrGray(bitArray, bitIndex, field, fieldWidth, true)
}

// packNaturalOrGray packs the fieldWidth least significant bits of field into
// bitArray starting at *bitIndex, most significant bit first. The mode tables
// fix every field offset, so the caller guarantees the buffer is large enough.
func packNaturalOrGray(bitArray []byte, bitIndex *uint, field int, fieldWidth uint, gray bool) {
	if gray {
		field = (field >> 1) ^ field
	}
	for fieldWidth != 0 {
		bI := *bitIndex
		bitsLeft := wordSize - (bI & indexMask)
		sliceWidth := fieldWidth
		if bitsLeft < fieldWidth {
			sliceWidth = bitsLeft
		}
		wordIndex := bI >> shiftRight
		slice := byte((field >> (fieldWidth - sliceWidth)) << (bitsLeft - sliceWidth))
		bitArray[wordIndex] |= slice
		*bitIndex += sliceWidth
		fieldWidth -= sliceWidth
	}
}

// unpackBits unpacks a bit field from a bit string using Gray code conversion.
func unpackBits(bitArray []byte, bitIndex *uint, fieldWidth uint) int {
	return unpackNaturalOrGray(bitArray, bitIndex, fieldWidth, true)
}

// unpackNaturalOrGray extracts a fieldWidth-bit field starting at *bitIndex.
// Reads past the end of the buffer yield zero bits rather than failing, so a
// truncation bug in a caller degrades to a decodable index instead of a crash.
func unpackNaturalOrGray(bitArray []byte, bitIndex *uint, fieldWidth uint, gray bool) int {
	var field uint
	for fieldWidth != 0 {
		bI := *bitIndex
		bitsLeft := wordSize - (bI & indexMask)
		sliceWidth := fieldWidth
		if bitsLeft < fieldWidth {
			sliceWidth = bitsLeft
		}
		wordIndex := bI >> shiftRight
		var value uint
		if int(wordIndex) < len(bitArray) {
			value = (uint(bitArray[wordIndex]) >> (bitsLeft - sliceWidth)) & ((1 << sliceWidth) - 1)
		}
		field |= value << (fieldWidth - sliceWidth)
		*bitIndex += sliceWidth
		fieldWidth -= sliceWidth
	}
	t := field
	if gray {
		t = field ^ (field >> 8)
		t ^= t >> 4
		t ^= t >> 2
		t ^= t >> 1
	}
	return int(t)
}
