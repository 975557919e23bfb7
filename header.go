package codec2

// .c2 stream header: three magic bytes, a version, the mode byte and a flags
// byte. Streams are otherwise raw concatenated bit frames.

const (
	magicByte1   = byte(0xc0)
	magicByte2   = byte(0xde)
	magicByte3   = byte(0xc2)
	versionMajor = byte(0x01)
	versionMinor = byte(0x00)

	HeaderSize = 7
)

var magic = []byte{magicByte1, magicByte2, magicByte3}

// Header represents the .c2 file format header.
type Header struct {
	Magic        [3]byte
	VersionMajor byte
	VersionMinor byte
	Mode         byte
	Flags        byte
}

// NewHeader creates a header for the given mode.
func NewHeader(mode Mode) Header {
	h := Header{
		VersionMajor: versionMajor,
		VersionMinor: versionMinor,
		Mode:         byte(mode),
	}
	copy(h.Magic[:], magic)
	return h
}

// IsC2Header reports whether data starts with the .c2 magic bytes.
func IsC2Header(data []byte) bool {
	if len(data) < HeaderSize {
		return false
	}
	return data[0] == magicByte1 &&
		data[1] == magicByte2 &&
		data[2] == magicByte3
}

// HeaderMode returns the mode recorded in a .c2 header, or an
// ErrInvalidMode error if the header or mode byte is not recognised.
func HeaderMode(data []byte) (Mode, error) {
	if !IsC2Header(data) {
		return 0, ErrInvalidMode
	}
	mode := Mode(data[5])
	if _, ok := modeTable[mode]; !ok {
		return 0, ErrInvalidMode
	}
	return mode, nil
}
